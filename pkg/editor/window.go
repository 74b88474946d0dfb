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
	pagedit "github.com/timburks/pagedit/pkg/types"
)

// A Page holds a contiguous span of the file.
type Page struct {
	data     [pagedit.PageBytes]byte // only the first n bytes are live
	n        int                     // number of live bytes
	offset   uint32                  // file offset of data[0], or InvalidOffset
	modified bool                    // true if data differs from the card
}

func (p Page) Bytes() []byte {
	return p.data[:p.n]
}

func (p Page) Len() int {
	return p.n
}

func (p Page) Offset() uint32 {
	return p.offset
}

func (p Page) Modified() bool {
	return p.modified
}

// Valid is false for a slot that is logically absent.
func (p Page) Valid() bool {
	return p.offset != pagedit.InvalidOffset
}

// End returns the offset just past the page's live bytes.
func (p Page) End() uint32 {
	return p.offset + uint32(p.n)
}

func (p Page) full() bool {
	return p.n == pagedit.PageBytes
}

func (p *Page) reset(offset uint32) {
	p.n = 0
	p.offset = offset
	p.modified = false
}

// insert puts c at pos; the page must have room for it.
func (p *Page) insert(pos int, c byte) {
	copy(p.data[pos+1:p.n+1], p.data[pos:p.n])
	p.data[pos] = c
	p.n++
	p.modified = true
}

// remove deletes the byte at pos and returns it.
func (p *Page) remove(pos int) byte {
	c := p.data[pos]
	copy(p.data[pos:p.n-1], p.data[pos+1:p.n])
	p.n--
	p.modified = true
	return c
}

// Window roles. The three slots of a window rotate through these roles
// as the window scrolls; their bytes are never copied.
const (
	rolePrev = iota
	roleCurrent
	roleOverflow
)

type window struct {
	pages [3]Page
	roles [3]int // role -> slot
}

func (w *window) clear() {
	w.pages = [3]Page{}
	w.roles = [3]int{0, 1, 2}
}

func (w *window) page(role int) *Page {
	return &w.pages[w.roles[role]]
}

// scrollDown makes overflow the current page and current the previous one.
// The retired previous slot becomes the new overflow.
func (w *window) scrollDown() {
	w.roles = [3]int{w.roles[roleCurrent], w.roles[roleOverflow], w.roles[rolePrev]}
}

// scrollUp makes the previous page current and current the overflow.
// The retired overflow slot becomes the new previous page.
func (w *window) scrollUp() {
	w.roles = [3]int{w.roles[roleOverflow], w.roles[rolePrev], w.roles[roleCurrent]}
}

func (w *window) modified() bool {
	for i := range w.pages {
		if w.pages[i].modified {
			return true
		}
	}
	return false
}
