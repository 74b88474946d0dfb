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

package editor

import (
	"errors"
	"fmt"

	"github.com/timburks/pagedit/pkg/storage"
	pagedit "github.com/timburks/pagedit/pkg/types"
)

var (
	// ErrStorageUnavailable wraps every failure reported by the storage port.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCacheFull is returned when an insert needed a save and the save failed.
	ErrCacheFull = errors.New("cache full")

	ErrOutOfRange = errors.New("out of range")
	ErrNoSession  = errors.New("no active session")

	// ErrCorrupt is returned by every operation that needs the card after a
	// save failed while moving the end of the file.
	ErrCorrupt = errors.New("file left inconsistent by a failed save")
)

// A Session edits one open file through a three page window.
type Session struct {
	port     storage.Port   // the card holding the file
	handle   storage.Handle // open file, owned by the session while active
	active   bool           // true between Init and Close
	broken   bool           // true after a save failed partway through moving data
	window   window         // prev, current and overflow
	saveTemp Page           // scratch page for saves
	diskSize uint32         // size of the file on the card
	growth   int            // bytes inserted minus bytes removed since the last save
}

func NewSession(port storage.Port) *Session {
	s := &Session{port: port}
	s.window.clear()
	return s
}

func (s *Session) prev() *Page {
	return s.window.page(rolePrev)
}

func (s *Session) current() *Page {
	return s.window.page(roleCurrent)
}

func (s *Session) overflow() *Page {
	return s.window.page(roleOverflow)
}

// Init starts editing the file open at h, saving any session in progress.
// A session that cannot size the new file stays as it was.
func (s *Session) Init(h storage.Handle) error {
	if s.active && s.Dirty() {
		if err := s.Save(); err != nil {
			return err
		}
	}
	if err := s.port.Seek(h, storage.FileEnd); err != nil {
		return storageError("init", err)
	}
	size, err := s.port.SeekPos(h)
	if err != nil {
		return storageError("init", err)
	}
	if err := s.port.Seek(h, 0); err != nil {
		return storageError("init", err)
	}
	s.active = false
	s.handle = h
	s.diskSize = size
	s.growth = 0
	s.broken = false
	s.window.clear()
	// nothing precedes the first page
	s.prev().reset(pagedit.InvalidOffset)
	current := s.current()
	current.reset(0)
	if err := s.fill(current, s.diskSize); err != nil {
		return err
	}
	s.overflow().reset(current.End())
	s.active = true
	return nil
}

// Close saves unsaved edits and ends the session. The file stays open;
// closing it is up to the caller.
func (s *Session) Close() error {
	if !s.active {
		return ErrNoSession
	}
	if s.Dirty() {
		if err := s.Save(); err != nil {
			return err
		}
	}
	s.active = false
	return nil
}

func (s *Session) Active() bool {
	return s.active
}

// Corrupt reports whether a failed save has left the file inconsistent.
// A corrupt session refuses every operation that needs the card.
func (s *Session) Corrupt() bool {
	return s.broken
}

func (s *Session) Handle() storage.Handle {
	return s.handle
}

// DiskSize returns the size of the file as of the last save.
func (s *Session) DiskSize() uint32 {
	return s.diskSize
}

// Size returns the size the file will have once it is saved.
func (s *Session) Size() uint32 {
	return uint32(int64(s.diskSize) + int64(s.growth))
}

// Dirty reports whether the window holds edits that are not on the card.
func (s *Session) Dirty() bool {
	return s.growth != 0 || s.window.modified()
}

func (s *Session) Prev() Page {
	return *s.prev()
}

func (s *Session) Current() Page {
	return *s.current()
}

func (s *Session) Overflow() Page {
	return *s.overflow()
}

func (s *Session) IsFirstPage() bool {
	return s.current().offset == 0
}

// IsLastPage reports whether no byte of the file follows the current page.
func (s *Session) IsLastPage() bool {
	return int64(s.current().End()) >= int64(s.diskSize)+int64(s.growth)
}

// tail returns the card offset of the first byte that follows the window.
func (s *Session) tail() uint32 {
	return uint32(int64(s.overflow().End()) - int64(s.growth))
}

func (s *Session) usable() error {
	if !s.active {
		return ErrNoSession
	}
	if s.broken {
		return ErrCorrupt
	}
	return nil
}

// InsertChar inserts c before position pos of the current page.
// A byte pushed off the end of a full page moves to the front of overflow;
// when overflow is full too the window is saved first.
func (s *Session) InsertChar(c byte, pos int) error {
	if !s.active {
		return ErrNoSession
	}
	current := s.current()
	if pos < 0 || pos > current.n {
		return fmt.Errorf("insert at %d of %d: %w", pos, current.n, ErrOutOfRange)
	}
	overflow := s.overflow()
	if current.full() && overflow.full() {
		if err := s.Save(); err != nil {
			return fmt.Errorf("insert: %w: %w", ErrCacheFull, err)
		}
	}
	switch {
	case !current.full():
		current.insert(pos, c)
	case pos == pagedit.PageBytes:
		overflow.insert(0, c)
	default:
		overflow.insert(0, current.data[pagedit.PageBytes-1])
		current.n--
		current.insert(pos, c)
	}
	overflow.offset = current.End()
	s.growth++
	return nil
}

// BackspaceChar removes the byte before position pos of the current page.
// It does nothing when pos is 0 or at or past the end of the page. The head
// of overflow, if any, moves back onto the page so that the page stays full.
func (s *Session) BackspaceChar(pos int) {
	if !s.active {
		return
	}
	current := s.current()
	if pos <= 0 || pos >= current.n {
		return
	}
	current.remove(pos - 1)
	overflow := s.overflow()
	if overflow.n > 0 {
		current.data[current.n] = overflow.remove(0)
		current.n++
	}
	overflow.offset = current.End()
	s.growth--
}

// DeleteChar removes the byte at position pos of the current page. The
// last byte of the page stays, as with BackspaceChar.
func (s *Session) DeleteChar(pos int) {
	s.BackspaceChar(pos + 1)
}

// PageDown scrolls the window forward by one page, saving first if the
// window holds edits.
func (s *Session) PageDown() error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.IsLastPage() {
		return fmt.Errorf("page down: %w", ErrOutOfRange)
	}
	if s.Dirty() {
		if err := s.Save(); err != nil {
			return err
		}
	}
	s.window.scrollDown()
	current := s.current()
	current.reset(current.offset)
	if err := s.fill(current, s.diskSize); err != nil {
		return err
	}
	s.overflow().reset(current.End())
	return nil
}

// PageUp scrolls the window back by one page, saving first if the window
// holds edits.
func (s *Session) PageUp() error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.IsFirstPage() {
		return fmt.Errorf("page up: %w", ErrOutOfRange)
	}
	if s.Dirty() {
		if err := s.Save(); err != nil {
			return err
		}
	}
	s.window.scrollUp()
	current := s.current()
	prev := s.prev()
	if current.offset == 0 {
		prev.reset(pagedit.InvalidOffset)
	} else {
		prev.reset(current.offset - min(current.offset, pagedit.PageBytes))
		if err := s.fill(prev, current.offset); err != nil {
			return err
		}
	}
	if err := s.fill(current, s.diskSize); err != nil {
		return err
	}
	s.overflow().reset(current.End())
	return nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
