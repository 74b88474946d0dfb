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

package storage

import (
	"errors"
	"io"
)

// An object is a file opened by a volume.
type object interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Size() (uint32, error)
	Truncate(size uint32) error
	Sync() error
	Close() error
}

// A volume opens objects by path; the card does the handle bookkeeping.
type volume interface {
	open(path string, mode OpenMode) (object, error)
}

type openFile struct {
	path string
	obj  object
	pos  uint32
	mode OpenMode
}

// Stats counts the transfers a card has performed.
type Stats struct {
	Reads        int
	Writes       int
	BytesRead    int
	BytesWritten int
	Truncates    int
	Commits      int
}

// card implements Port on top of a volume.
type card struct {
	vol   volume
	files [MaxOpen]*openFile
	stats Stats

	// MaxTransfer limits the size of a single Read or Write when nonzero.
	MaxTransfer int

	// countdowns to an injected failure; zero means disarmed
	failReads  int
	failWrites int
}

// FailReadsAfter makes the read after the next n succeed fail with CodeIO.
func (c *card) FailReadsAfter(n int) {
	c.failReads = n + 1
}

// FailWritesAfter makes the write after the next n succeed fail with CodeIO.
func (c *card) FailWritesAfter(n int) {
	c.failWrites = n + 1
}

func countdown(n *int) bool {
	if *n == 0 {
		return false
	}
	*n--
	return *n == 0
}

var errInjected = errors.New("injected failure")

// Stats returns the transfer counters.
func (c *card) Stats() Stats {
	return c.stats
}

// ResetStats clears the transfer counters.
func (c *card) ResetStats() {
	c.stats = Stats{}
}

func (c *card) file(op string, h Handle) (*openFile, error) {
	if int(h) >= len(c.files) || c.files[h] == nil {
		return nil, &Error{Op: op, Code: CodeBadHandle}
	}
	return c.files[h], nil
}

func (c *card) Open(path string, mode OpenMode) (Handle, error) {
	slot := -1
	for i, f := range c.files {
		if f == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return InvalidHandle, &Error{Op: "open", Path: path, Code: CodeTooManyOpen}
	}
	obj, err := c.vol.open(path, mode)
	if err != nil {
		return InvalidHandle, err
	}
	f := &openFile{path: path, obj: obj, mode: mode}
	if mode == ModeAppend {
		size, err := obj.Size()
		if err != nil {
			obj.Close()
			return InvalidHandle, &Error{Op: "open", Path: path, Code: CodeIO, Err: err}
		}
		f.pos = size
	}
	c.files[slot] = f
	return Handle(slot), nil
}

func (c *card) Close(h Handle) error {
	f, err := c.file("close", h)
	if err != nil {
		return err
	}
	c.files[h] = nil
	if err := f.obj.Close(); err != nil {
		return &Error{Op: "close", Path: f.path, Code: CodeIO, Err: err}
	}
	return nil
}

func (c *card) Seek(h Handle, offset uint32) error {
	f, err := c.file("seek", h)
	if err != nil {
		return err
	}
	size, err := f.obj.Size()
	if err != nil {
		return &Error{Op: "seek", Path: f.path, Code: CodeIO, Err: err}
	}
	if offset == FileEnd {
		offset = size
	}
	if offset > size {
		return &Error{Op: "seek", Path: f.path, Code: CodeRange}
	}
	f.pos = offset
	return nil
}

func (c *card) SeekPos(h Handle) (uint32, error) {
	f, err := c.file("seekpos", h)
	if err != nil {
		return 0, err
	}
	return f.pos, nil
}

func (c *card) Read(h Handle, buf []byte) error {
	f, err := c.file("read", h)
	if err != nil {
		return err
	}
	if c.MaxTransfer > 0 && len(buf) > c.MaxTransfer {
		return &Error{Op: "read", Path: f.path, Code: CodeRange}
	}
	if countdown(&c.failReads) {
		return &Error{Op: "read", Path: f.path, Code: CodeIO, Err: errInjected}
	}
	n := 0
	for n < len(buf) {
		m, err := f.obj.ReadAt(buf[n:], int64(f.pos)+int64(n))
		n += m
		if err != nil && n < len(buf) {
			if errors.Is(err, io.EOF) {
				return &Error{Op: "read", Path: f.path, Code: CodeRange}
			}
			return &Error{Op: "read", Path: f.path, Code: CodeIO, Err: err}
		}
		if m == 0 && n < len(buf) {
			return &Error{Op: "read", Path: f.path, Code: CodeRange}
		}
	}
	f.pos += uint32(n)
	c.stats.Reads++
	c.stats.BytesRead += n
	return nil
}

func (c *card) Write(h Handle, buf []byte) error {
	f, err := c.file("write", h)
	if err != nil {
		return err
	}
	if f.mode == ModeRead {
		return &Error{Op: "write", Path: f.path, Code: CodeReadOnly}
	}
	if c.MaxTransfer > 0 && len(buf) > c.MaxTransfer {
		return &Error{Op: "write", Path: f.path, Code: CodeRange}
	}
	if countdown(&c.failWrites) {
		return &Error{Op: "write", Path: f.path, Code: CodeIO, Err: errInjected}
	}
	n := 0
	for n < len(buf) {
		m, err := f.obj.WriteAt(buf[n:], int64(f.pos)+int64(n))
		n += m
		if err != nil {
			return &Error{Op: "write", Path: f.path, Code: CodeIO, Err: err}
		}
		if m == 0 {
			return &Error{Op: "write", Path: f.path, Code: CodeIO, Err: io.ErrShortWrite}
		}
	}
	f.pos += uint32(n)
	c.stats.Writes++
	c.stats.BytesWritten += n
	return nil
}

func (c *card) Truncate(h Handle, size uint32) error {
	f, err := c.file("truncate", h)
	if err != nil {
		return err
	}
	if f.mode == ModeRead {
		return &Error{Op: "truncate", Path: f.path, Code: CodeReadOnly}
	}
	if err := f.obj.Truncate(size); err != nil {
		return &Error{Op: "truncate", Path: f.path, Code: CodeIO, Err: err}
	}
	if f.pos > size {
		f.pos = size
	}
	c.stats.Truncates++
	return nil
}

func (c *card) Commit() error {
	for _, f := range c.files {
		if f == nil || f.mode == ModeRead {
			continue
		}
		if err := f.obj.Sync(); err != nil {
			return &Error{Op: "commit", Path: f.path, Code: CodeIO, Err: err}
		}
	}
	c.stats.Commits++
	return nil
}
