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
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/nsf/termbox-go"
	pagedit "github.com/timburks/pagedit/pkg/types"
)

func render(f func(a *ANSI)) string {
	var b bytes.Buffer
	a := NewANSI(&b)
	f(a)
	a.Flush()
	return b.String()
}

func TestHeader(t *testing.T) {
	text := headerText("notes.txt")
	if len(text) != pagedit.Cols {
		t.Errorf("Header should span the screen: %d", len(text))
	}
	if !strings.HasPrefix(text, "EDITING notes.txt ") || !strings.HasSuffix(text, " CTRL-C to exit") {
		t.Errorf("Unexpected header: '%s'", text)
	}
	if got := ShortName("a-very-long-file-name.txt"); got != "a-very-long-" {
		t.Errorf("Unexpected short name: '%s'", got)
	}
	if got := ShortName("two words"); got != "two" {
		t.Errorf("Unexpected short name: '%s'", got)
	}
}

func TestPrintChar(t *testing.T) {
	out := render(func(a *ANSI) {
		for _, c := range []byte("a\r\n\r\nb\t\x01") {
			a.PrintChar(c)
		}
	})
	want := "a" + breakGlyph + " " + breakGlyph + " " + "b" + tabGlyph + otherGlyph
	if out != want {
		t.Errorf("Unexpected glyphs: %q", out)
	}
}

func TestPrintCurrentPage(t *testing.T) {
	page := bytes.Repeat([]byte("x"), pagedit.Cols+5)
	out := render(func(a *ANSI) {
		a.PrintCurrentPage(page)
	})
	for row := 0; row < pagedit.Rows; row++ {
		if !strings.Contains(out, "\033["+strconv.Itoa(pagedit.PageLine+row)+";1H"+clearLine) {
			t.Errorf("Row %d was not cleared", row)
		}
	}
	if n := strings.Count(out, "x"); n != len(page) {
		t.Errorf("Unexpected number of characters: %d", n)
	}
}

func TestLines(t *testing.T) {
	out := render(func(a *ANSI) {
		a.DrawError("Error when inserting character!")
		a.DrawStatus(81, 1, 1)
		a.DrawMode(pagedit.ModeInsert)
	})
	for _, want := range []string{
		"\033[5;1H" + clearLine + errorColor + "Error when inserting character!" + reset,
		"\033[4;1H" + clearLine + "pos 81  line 2  col 2",
		"\033[2;1H" + clearLine + "INSERT mode",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in %q", want, out)
		}
	}
}

func TestRedrawAll(t *testing.T) {
	out := render(func(a *ANSI) {
		a.RedrawAll("notes.txt", pagedit.ModeNavigate)
	})
	if !strings.HasPrefix(out, clearScreen) {
		t.Errorf("RedrawAll should clear the screen first")
	}
	for _, want := range []string{"EDITING notes.txt", "NAV mode", "Line Break", strings.Repeat("_", pagedit.Cols)} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q", want)
		}
	}
}

func TestFinish(t *testing.T) {
	out := render(func(a *ANSI) {
		a.Finish("Finished editing notes.txt")
	})
	if out != clearScreen+home+"Finished editing notes.txt\r\n" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestKeyByte(t *testing.T) {
	for _, tc := range []struct {
		key  termbox.Key
		ch   rune
		want byte
		ok   bool
	}{
		{0, 'w', 'w', true},
		{termbox.KeyCtrlC, 0, pagedit.KeyCtrlC, true},
		{termbox.KeyCtrlP, 0, pagedit.KeyCtrlP, true},
		{termbox.KeyEnter, 0, pagedit.KeyReturn, true},
		{termbox.KeyTab, 0, pagedit.KeyTab, true},
		{termbox.KeySpace, 0, ' ', true},
		{termbox.KeyEsc, 0, pagedit.KeyEsc, true},
		{termbox.KeyBackspace2, 0, pagedit.KeyDelete, true},
		{termbox.KeyArrowUp, 0, 0, false},
		{0, 'é', 0, false},
	} {
		got, ok := keyByte(tc.key, tc.ch)
		if got != tc.want || ok != tc.ok {
			t.Errorf("keyByte(%v, %q) = %d, %v", tc.key, tc.ch, got, ok)
		}
	}
}
