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

package screen

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	pagedit "github.com/timburks/pagedit/pkg/types"
)

// Escape sequences understood by VT100-style serial terminals.
const (
	clearScreen = "\033[2J"
	home        = "\033[H"
	clearLine   = "\033[K"
	reset       = "\033[0m"
	headerColor = "\033[47;30m" // black on white
	errorColor  = "\033[41;30m" // black on red
	green       = "\033[32m"
	breakGlyph  = "\033[44m \033[0m" // blue
	tabGlyph    = "\033[43m \033[0m" // yellow
	otherGlyph  = "\033[41m \033[0m" // red
)

// The ANSI renderer paints the editor with escape sequences, for terminals
// on the other end of a serial line.
type ANSI struct {
	w    *bufio.Writer
	last byte // last byte printed, to pair CR with LF
}

func NewANSI(w io.Writer) *ANSI {
	return &ANSI{w: bufio.NewWriter(w)}
}

func (a *ANSI) PositionCursor(line, col int) {
	fmt.Fprintf(a.w, "\033[%d;%dH", line, col)
}

func (a *ANSI) PrintChar(c byte) {
	kind := glyph(c, a.last)
	switch kind {
	case glyphPlain:
		a.w.WriteByte(c)
	case glyphBreak:
		a.w.WriteString(breakGlyph)
	case glyphPairedBreak:
		a.w.WriteByte(' ')
	case glyphTab:
		a.w.WriteString(tabGlyph)
	default:
		a.w.WriteString(otherGlyph)
	}
	a.last = follow(c, kind)
}

func (a *ANSI) DrawHeader(name string) {
	a.PositionCursor(pagedit.HeaderLine, 1)
	a.w.WriteString(headerColor)
	a.w.WriteString(headerText(name))
	a.w.WriteString(reset)
}

func (a *ANSI) DrawMode(mode pagedit.Mode) {
	a.PositionCursor(pagedit.ModeLine, 1)
	a.w.WriteString(clearLine)
	switch mode {
	case pagedit.ModeNavigate:
		a.w.WriteString("NAV mode: use " + green + "WASD" + reset + " to move around the document, CTRL-P to insert")
	case pagedit.ModeInsert:
		a.w.WriteString(modeText(mode))
	}
}

func (a *ANSI) DrawLegend() {
	a.PositionCursor(pagedit.LegendLine, 1)
	a.w.WriteString("\033[44;30mLine Break" + reset + " \033[43;30mTab" + reset + " \033[41;30mUnknown Character" + reset)
}

func (a *ANSI) DrawError(text string) {
	a.PositionCursor(pagedit.ErrorLine, 1)
	a.w.WriteString(clearLine)
	if text != "" {
		a.w.WriteString(errorColor + text + reset)
	}
}

func (a *ANSI) DrawStatus(pagePos, row, col int) {
	a.PositionCursor(pagedit.StatusLine, 1)
	a.w.WriteString(clearLine)
	a.w.WriteString(statusText(pagePos, row, col))
}

func (a *ANSI) DrawSeparator() {
	a.PositionCursor(pagedit.SeparatorLine, 1)
	a.w.WriteString(strings.Repeat("_", pagedit.Cols))
}

func (a *ANSI) RedrawAll(name string, mode pagedit.Mode) {
	a.w.WriteString(clearScreen)
	a.DrawHeader(name)
	a.DrawMode(mode)
	a.DrawLegend()
	a.DrawError("")
	a.DrawSeparator()
}

// PrintCurrentPage paints the page into the viewport, one byte per cell.
func (a *ANSI) PrintCurrentPage(page []byte) {
	a.last = 0
	for row := 0; row < pagedit.Rows; row++ {
		a.PositionCursor(pagedit.PageLine+row, 1)
		a.w.WriteString(clearLine)
		start := row * pagedit.Cols
		if start >= len(page) {
			continue
		}
		end := min(start+pagedit.Cols, len(page))
		for _, c := range page[start:end] {
			a.PrintChar(c)
		}
	}
}

func (a *ANSI) Finish(message string) {
	a.w.WriteString(clearScreen + home)
	a.w.WriteString(message + "\r\n")
}

func (a *ANSI) Flush() error {
	return a.w.Flush()
}
