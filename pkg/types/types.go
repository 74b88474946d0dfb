//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package types holds the constants and interfaces shared by the pagedit packages.
package types

import "errors"

// Screen geometry. A page of the file is exactly one screenful.
const (
	Cols      = 80
	Rows      = 10
	PageBytes = Cols * Rows
)

// InvalidOffset marks a page slot that is logically absent.
const InvalidOffset uint32 = 0xffffffff

// Editor modes
type Mode int

const (
	ModeNavigate Mode = iota
	ModeInsert
)

func (m Mode) String() string {
	switch m {
	case ModeNavigate:
		return "navigate"
	case ModeInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Control bytes as they arrive from a serial terminal.
const (
	KeyCtrlC     byte = 'C' - 64
	KeyCtrlP     byte = 'P' - 64
	KeyCtrlS     byte = 'S' - 64
	KeyBackspace byte = 8
	KeyTab       byte = '\t'
	KeyLineFeed  byte = '\n'
	KeyReturn    byte = '\r'
	KeyEsc       byte = 27
	KeyDelete    byte = 127
)

type Point struct {
	Row int
	Col int
}

// Offset returns the position of the point within a page.
func (p Point) Offset() int {
	return p.Row*Cols + p.Col
}

// PointAt converts a page position into a screen point.
func PointAt(pos int) Point {
	return Point{Row: pos / Cols, Col: pos % Cols}
}

// ErrNoData is returned by an Input that has nothing to deliver yet.
// Readers skip it and try again.
var ErrNoData = errors.New("no data")

// An Input delivers one byte at a time from the user's terminal.
type Input interface {
	ReadByte() (byte, error)
}

// A Renderer paints the editor's screen.
//
// Lines are numbered from 1 as on the terminal; page lines run from
// PageLine to PageLine+Rows-1.
type Renderer interface {
	PositionCursor(line, col int)
	PrintChar(c byte)
	DrawHeader(name string)
	DrawMode(mode Mode)
	DrawLegend()
	DrawError(text string)
	DrawStatus(pagePos, row, col int)
	DrawSeparator()
	RedrawAll(name string, mode Mode)
	PrintCurrentPage(page []byte)
	Finish(message string)
	Flush() error
}

// Screen lines of the editor layout.
const (
	HeaderLine    = 1
	ModeLine      = 2
	LegendLine    = 3
	StatusLine    = 4
	ErrorLine     = 5
	SeparatorLine = 6
	PageLine      = 8
)
