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

// Package screen draws the pagedit editor. Both renderers paint the same
// layout: a header, a mode line, a legend, a status line, an error line
// and a separator above a viewport that shows one page of the file.
package screen

import (
	"fmt"
	"strings"

	pagedit "github.com/timburks/pagedit/pkg/types"
)

const exitHint = "CTRL-C to exit"

// maxName is the number of characters of a file name shown in the header.
const maxName = 12

// ShortName cuts a file name at its first space and at maxName characters.
func ShortName(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	if len(name) > maxName {
		name = name[:maxName]
	}
	return name
}

func headerText(name string) string {
	text := "EDITING " + ShortName(name)
	fill := pagedit.Cols - len(text) - len(exitHint)
	return text + strings.Repeat(" ", max(fill, 1)) + exitHint
}

func modeText(mode pagedit.Mode) string {
	switch mode {
	case pagedit.ModeInsert:
		return "INSERT mode: type to insert characters, CTRL-P to navigate"
	default:
		return "NAV mode: use WASD to move around the document, CTRL-P to insert"
	}
}

func statusText(pagePos, row, col int) string {
	return fmt.Sprintf("pos %d  line %d  col %d", pagePos, row+1, col+1)
}

type glyphKind int

const (
	glyphPlain glyphKind = iota
	glyphBreak
	glyphPairedBreak // second half of a CR/LF pair
	glyphTab
	glyphOther
)

// glyph classifies c, given the byte printed before it.
func glyph(c, last byte) glyphKind {
	switch {
	case c >= 32 && c <= 126:
		return glyphPlain
	case c == '\r' && last == '\n', c == '\n' && last == '\r':
		return glyphPairedBreak
	case c == '\r', c == '\n':
		return glyphBreak
	case c == '\t':
		return glyphTab
	default:
		return glyphOther
	}
}

// follow returns the byte that the next glyph pairs against. A completed
// CR/LF pair pairs with nothing.
func follow(c byte, kind glyphKind) byte {
	if kind == glyphPairedBreak {
		return 0
	}
	return c
}
