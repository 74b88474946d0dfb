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
	"strings"

	"github.com/nsf/termbox-go"
	pagedit "github.com/timburks/pagedit/pkg/types"
)

// The Termbox renderer paints the editor on the host terminal. It also
// reads keys from that terminal, delivering them as the bytes a serial
// terminal would send.
type Termbox struct {
	x, y int  // cell where the next character goes
	last byte // last byte printed, to pair CR with LF
}

func NewTermbox() (*Termbox, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	termbox.SetOutputMode(termbox.Output256)
	return &Termbox{}, nil
}

func (t *Termbox) Close() {
	termbox.Close()
}

// text writes s at the cursor with the given colors.
func (t *Termbox) text(s string, fg, bg termbox.Attribute) {
	for _, ch := range s {
		termbox.SetCell(t.x, t.y, ch, fg, bg)
		t.x++
	}
}

func (t *Termbox) clearLine(line int) {
	w, _ := termbox.Size()
	for x := 0; x < w; x++ {
		termbox.SetCell(x, line-1, ' ', termbox.ColorDefault, termbox.ColorDefault)
	}
	t.PositionCursor(line, 1)
}

func (t *Termbox) PositionCursor(line, col int) {
	t.x, t.y = col-1, line-1
	termbox.SetCursor(t.x, t.y)
}

func (t *Termbox) PrintChar(c byte) {
	kind := glyph(c, t.last)
	switch kind {
	case glyphPlain:
		termbox.SetCell(t.x, t.y, rune(c), termbox.ColorDefault, termbox.ColorDefault)
	case glyphBreak:
		termbox.SetCell(t.x, t.y, ' ', termbox.ColorDefault, termbox.ColorBlue)
	case glyphPairedBreak:
		termbox.SetCell(t.x, t.y, ' ', termbox.ColorDefault, termbox.ColorDefault)
	case glyphTab:
		termbox.SetCell(t.x, t.y, ' ', termbox.ColorDefault, termbox.ColorYellow)
	default:
		termbox.SetCell(t.x, t.y, ' ', termbox.ColorDefault, termbox.ColorRed)
	}
	t.x++
	t.last = follow(c, kind)
}

func (t *Termbox) DrawHeader(name string) {
	t.clearLine(pagedit.HeaderLine)
	t.text(headerText(name), termbox.ColorBlack, termbox.ColorWhite)
}

func (t *Termbox) DrawMode(mode pagedit.Mode) {
	t.clearLine(pagedit.ModeLine)
	if mode == pagedit.ModeInsert {
		t.text(modeText(mode), termbox.ColorDefault, termbox.ColorDefault)
		return
	}
	t.text("NAV mode: use ", termbox.ColorDefault, termbox.ColorDefault)
	t.text("WASD", termbox.ColorGreen, termbox.ColorDefault)
	t.text(" to move around the document, CTRL-P to insert", termbox.ColorDefault, termbox.ColorDefault)
}

func (t *Termbox) DrawLegend() {
	t.clearLine(pagedit.LegendLine)
	t.text("Line Break", termbox.ColorBlack, termbox.ColorBlue)
	t.text(" ", termbox.ColorDefault, termbox.ColorDefault)
	t.text("Tab", termbox.ColorBlack, termbox.ColorYellow)
	t.text(" ", termbox.ColorDefault, termbox.ColorDefault)
	t.text("Unknown Character", termbox.ColorBlack, termbox.ColorRed)
}

func (t *Termbox) DrawError(text string) {
	t.clearLine(pagedit.ErrorLine)
	t.text(text, termbox.ColorBlack, termbox.ColorRed)
}

func (t *Termbox) DrawStatus(pagePos, row, col int) {
	t.clearLine(pagedit.StatusLine)
	t.text(statusText(pagePos, row, col), termbox.ColorDefault, termbox.ColorDefault)
}

func (t *Termbox) DrawSeparator() {
	t.clearLine(pagedit.SeparatorLine)
	t.text(strings.Repeat("_", pagedit.Cols), termbox.ColorDefault, termbox.ColorDefault)
}

func (t *Termbox) RedrawAll(name string, mode pagedit.Mode) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	t.DrawHeader(name)
	t.DrawMode(mode)
	t.DrawLegend()
	t.DrawError("")
	t.DrawSeparator()
}

func (t *Termbox) PrintCurrentPage(page []byte) {
	t.last = 0
	for row := 0; row < pagedit.Rows; row++ {
		t.clearLine(pagedit.PageLine + row)
		start := row * pagedit.Cols
		if start >= len(page) {
			continue
		}
		end := min(start+pagedit.Cols, len(page))
		for _, c := range page[start:end] {
			t.PrintChar(c)
		}
	}
}

func (t *Termbox) Finish(message string) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	t.PositionCursor(1, 1)
	t.text(message, termbox.ColorDefault, termbox.ColorDefault)
}

func (t *Termbox) Flush() error {
	return termbox.Flush()
}

// ReadByte waits for the next key. Keys with no byte of their own, such
// as the arrows, and resizes are reported as pagedit.ErrNoData.
func (t *Termbox) ReadByte() (byte, error) {
	event := termbox.PollEvent()
	switch event.Type {
	case termbox.EventKey:
		if c, ok := keyByte(event.Key, event.Ch); ok {
			return c, nil
		}
	case termbox.EventResize:
		termbox.Flush()
	case termbox.EventError:
		return 0, event.Err
	}
	return 0, pagedit.ErrNoData
}

// keyByte converts a termbox key into the byte a serial terminal sends.
// Control keys already carry their ASCII codes.
func keyByte(key termbox.Key, ch rune) (byte, bool) {
	if ch != 0 {
		if ch > 126 {
			return 0, false
		}
		return byte(ch), true
	}
	switch key {
	case termbox.KeySpace:
		return ' ', true
	case termbox.KeyBackspace2:
		return pagedit.KeyDelete, true
	}
	if key < 0x20 {
		return byte(key), true
	}
	return 0, false
}
