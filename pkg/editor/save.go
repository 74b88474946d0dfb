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
	"log"

	pagedit "github.com/timburks/pagedit/pkg/types"
)

// Save writes the window back to the card.
//
// The previous and current pages are written in place. If the window has
// grown, overflow is written just after the current page and the rest of
// the file is carried forward by the growth, one page at a time; if it has
// shrunk, the rest of the file is pulled back and the file is truncated.
// Afterwards overflow is empty and the current page is topped up from the
// card so that it is full unless the file ends inside it.
func (s *Session) Save() error {
	if err := s.usable(); err != nil {
		return err
	}
	prev, current, overflow := s.prev(), s.current(), s.overflow()
	tail := s.tail()
	for _, p := range []*Page{prev, current} {
		if p.modified && p.Valid() {
			if err := s.writeAt(p.Bytes(), p.offset); err != nil {
				return storageError("save", err)
			}
		}
	}
	size := s.diskSize
	var err error
	switch {
	case s.growth > 0:
		size, err = s.cascade(tail)
	case s.growth < 0:
		size, err = s.compact(overflow.End(), tail)
	}
	if err != nil {
		s.broken = true
		log.Printf("save failed after moving data: %v", err)
		return storageError("save", err)
	}
	if size != s.diskSize {
		log.Printf("file size %d -> %d", s.diskSize, size)
	}
	s.diskSize = size
	s.growth = 0
	prev.modified = false
	current.modified = false
	overflow.reset(current.End())
	if err := s.fill(current, s.diskSize); err != nil {
		return err
	}
	overflow.reset(current.End())
	if err := s.port.Commit(); err != nil {
		return storageError("commit", err)
	}
	return nil
}

// cascade writes overflow at its offset and moves everything from tail to
// the end of the file forward to follow it. Each page is read before the
// write that would overwrite it, which holds as long as the growth is at
// most one page. It returns the new size of the file.
func (s *Session) cascade(tail uint32) (uint32, error) {
	write, read := s.overflow(), &s.saveTemp
	readPos := tail
	for {
		read.n = 0
		if readPos < s.diskSize {
			read.n = min(pagedit.PageBytes, int(s.diskSize-readPos))
			if err := s.readAt(read.data[:read.n], readPos); err != nil {
				return 0, err
			}
			readPos += uint32(read.n)
		}
		if err := s.writeAt(write.Bytes(), write.offset); err != nil {
			return 0, err
		}
		end := write.End()
		if read.n == 0 {
			return end, nil
		}
		read.offset = end
		write, read = read, write
	}
}

// compact moves everything from src to the end of the file back to dst
// and truncates the file after it. It returns the new size of the file.
func (s *Session) compact(dst, src uint32) (uint32, error) {
	buf := s.saveTemp.data[:]
	for src < s.diskSize {
		n := min(pagedit.PageBytes, int(s.diskSize-src))
		if err := s.readAt(buf[:n], src); err != nil {
			return 0, err
		}
		if err := s.writeAt(buf[:n], dst); err != nil {
			return 0, err
		}
		src += uint32(n)
		dst += uint32(n)
	}
	if err := s.port.Truncate(s.handle, dst); err != nil {
		return 0, err
	}
	return dst, nil
}

// fill reads bytes from the card onto the end of p until p is full or
// the read reaches limit. It is only used when the window holds no edits,
// so file offsets and card offsets agree.
func (s *Session) fill(p *Page, limit uint32) error {
	limit = min(limit, s.diskSize)
	pos := p.End()
	if pos >= limit || p.full() {
		return nil
	}
	n := min(pagedit.PageBytes-p.n, int(limit-pos))
	if err := s.readAt(p.data[p.n:p.n+n], pos); err != nil {
		return storageError("fill", err)
	}
	p.n += n
	return nil
}

// readAt and writeAt move bytes in transfers of at most one line, which
// every card driver accepts.

func (s *Session) readAt(buf []byte, offset uint32) error {
	if len(buf) == 0 {
		return nil
	}
	if err := s.port.Seek(s.handle, offset); err != nil {
		return err
	}
	for len(buf) > 0 {
		n := min(pagedit.Cols, len(buf))
		if err := s.port.Read(s.handle, buf[:n]); err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

func (s *Session) writeAt(buf []byte, offset uint32) error {
	if len(buf) == 0 {
		return nil
	}
	if err := s.port.Seek(s.handle, offset); err != nil {
		return err
	}
	for len(buf) > 0 {
		n := min(pagedit.Cols, len(buf))
		if err := s.port.Write(s.handle, buf[:n]); err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
