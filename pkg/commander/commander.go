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

package commander

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/timburks/pagedit/pkg/editor"
	"github.com/timburks/pagedit/pkg/screen"
	pagedit "github.com/timburks/pagedit/pkg/types"
)

const insertError = "Error when inserting character!"

// Screen regions that need repainting.
type region uint

const (
	regionMode region = 1 << iota
	regionStatus
	regionError
	regionPage
	regionScreen // clear the screen and paint everything
)

// The Commander converts key presses into edits of a Session.
type Commander struct {
	session  *editor.Session
	renderer pagedit.Renderer
	name     string        // name of the file being edited
	mode     pagedit.Mode  // editor mode
	cursor   pagedit.Point // cursor position within the page
	pagePos  int           // cursor position as an offset into the current page
	message  string        // error line text
	dirty    region        // regions to repaint
}

func NewCommander(s *editor.Session, r pagedit.Renderer) *Commander {
	return &Commander{session: s, renderer: r, mode: pagedit.ModeNavigate}
}

func (c *Commander) Mode() pagedit.Mode {
	return c.mode
}

func (c *Commander) Cursor() pagedit.Point {
	return c.cursor
}

func (c *Commander) PagePos() int {
	return c.pagePos
}

func (c *Commander) Message() string {
	return c.message
}

// Edit runs the editor on the session until the user presses Ctrl-C or
// the input ends. Nothing is saved on exit; the caller decides that.
// Errors that leave the session unusable end the editor and are returned.
func (c *Commander) Edit(in pagedit.Input, name string) error {
	c.name = name
	c.mode = pagedit.ModeNavigate
	c.cursor = pagedit.Point{}
	c.pagePos = 0
	c.message = ""
	c.invalidate(regionScreen)
	if err := c.repaint(); err != nil {
		return err
	}
	for {
		b, err := in.ReadByte()
		if errors.Is(err, pagedit.ErrNoData) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return c.finish("Finished editing " + screen.ShortName(name))
		}
		if err != nil {
			return err
		}
		done, err := c.ProcessByte(b)
		if err != nil {
			log.Printf("editing %s: %v", name, err)
			c.finish(fmt.Sprintf("Error editing %s: %v", screen.ShortName(name), err))
			return err
		}
		if done {
			return c.finish("Finished editing " + screen.ShortName(name))
		}
		if err := c.repaint(); err != nil {
			return err
		}
	}
}

func (c *Commander) finish(message string) error {
	c.renderer.Finish(message)
	return c.renderer.Flush()
}

// ProcessByte handles one input byte. It returns true when the user has
// asked to stop editing.
func (c *Commander) ProcessByte(b byte) (bool, error) {
	switch b {
	case pagedit.KeyCtrlC:
		return true, nil
	case pagedit.KeyCtrlP:
		c.toggleMode()
		return false, nil
	case pagedit.KeyCtrlS:
		return false, c.save()
	}
	switch c.mode {
	case pagedit.ModeNavigate:
		return false, c.processKeyNavigateMode(b)
	case pagedit.ModeInsert:
		return false, c.processKeyInsertMode(b)
	}
	return false, nil
}

func (c *Commander) toggleMode() {
	if c.mode == pagedit.ModeNavigate {
		c.mode = pagedit.ModeInsert
		// inserts may only go where the page has bytes, or just after them
		if n := c.session.Current().Len(); c.pagePos > n {
			c.moveTo(n)
		}
	} else {
		c.mode = pagedit.ModeNavigate
	}
	c.invalidate(regionMode)
}

func (c *Commander) moveTo(pos int) {
	c.pagePos = pos
	c.cursor = pagedit.PointAt(pos)
	c.invalidate(regionStatus)
}

func (c *Commander) processKeyNavigateMode(b byte) error {
	s := c.session
	row, col := c.cursor.Row, c.cursor.Col
	switch b {
	case 'w', 'W':
		if row > 0 {
			row--
		} else if !s.IsFirstPage() {
			if err := s.PageUp(); err != nil {
				return err
			}
			row = pagedit.Rows - 1
			c.invalidate(regionPage)
		}
	case 's', 'S':
		if row < pagedit.Rows-1 {
			row++
		} else if !s.IsLastPage() {
			if err := s.PageDown(); err != nil {
				return err
			}
			row = 0
			c.invalidate(regionPage)
		}
	case 'a', 'A':
		if col > 0 {
			col--
		} else if row > 0 {
			row, col = row-1, pagedit.Cols-1
		} else if !s.IsFirstPage() {
			if err := s.PageUp(); err != nil {
				return err
			}
			row, col = pagedit.Rows-1, pagedit.Cols-1
			c.invalidate(regionPage)
		}
	case 'd', 'D':
		if col < pagedit.Cols-1 {
			col++
		} else if row < pagedit.Rows-1 {
			row, col = row+1, 0
		} else if !s.IsLastPage() {
			if err := s.PageDown(); err != nil {
				return err
			}
			row, col = 0, 0
			c.invalidate(regionPage)
		}
	default:
		return nil
	}
	c.moveTo(pagedit.Point{Row: row, Col: col}.Offset())
	return nil
}

func insertable(b byte) bool {
	return (b >= 32 && b <= 126) || b == pagedit.KeyTab || b == pagedit.KeyReturn || b == pagedit.KeyLineFeed
}

func (c *Commander) processKeyInsertMode(b byte) error {
	s := c.session
	switch {
	case b == pagedit.KeyEsc:
		c.toggleMode()
	case b == pagedit.KeyDelete || b == pagedit.KeyBackspace:
		s.BackspaceChar(c.pagePos)
		if c.pagePos > 0 {
			c.moveTo(c.pagePos - 1)
		}
		c.invalidate(regionPage)
	case insertable(b):
		if err := s.InsertChar(b, c.pagePos); err != nil {
			if s.Corrupt() {
				return err
			}
			log.Printf("insert %q at %d: %v", b, c.pagePos, err)
			c.setMessage(insertError)
			return nil
		}
		c.setMessage("")
		pos := c.pagePos + 1
		if pos == pagedit.PageBytes {
			pos = 0
		}
		c.moveTo(pos)
		c.invalidate(regionPage)
	}
	return nil
}

func (c *Commander) save() error {
	if err := c.session.Save(); err != nil {
		return err
	}
	log.Printf("saved %s (%d bytes)", c.name, c.session.DiskSize())
	c.setMessage("")
	return nil
}

func (c *Commander) setMessage(message string) {
	if message != c.message {
		c.message = message
		c.invalidate(regionError)
	}
}

func (c *Commander) invalidate(r region) {
	c.dirty |= r
}

// repaint draws the invalidated regions and leaves the terminal cursor
// on the editing cursor.
func (c *Commander) repaint() error {
	r := c.renderer
	if c.dirty&regionScreen != 0 {
		r.RedrawAll(c.name, c.mode)
		c.dirty = regionStatus | regionPage
		if c.message != "" {
			c.dirty |= regionError
		}
	}
	if c.dirty&regionMode != 0 {
		r.DrawMode(c.mode)
	}
	if c.dirty&regionStatus != 0 {
		r.DrawStatus(c.pagePos, c.cursor.Row, c.cursor.Col)
	}
	if c.dirty&regionError != 0 {
		r.DrawError(c.message)
	}
	if c.dirty&regionPage != 0 {
		r.PrintCurrentPage(c.session.Current().Bytes())
	}
	c.dirty = 0
	r.PositionCursor(pagedit.PageLine+c.cursor.Row, c.cursor.Col+1)
	return r.Flush()
}
