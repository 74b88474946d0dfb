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
	"io"
	"sort"
)

// A MemCard keeps its files in memory. It is used by tests and by scripts
// that should not touch a real card.
type MemCard struct {
	card
	store map[string]*memFile
}

func NewMemCard() *MemCard {
	m := &MemCard{store: make(map[string]*memFile)}
	m.vol = memVolume{m}
	return m
}

// Put creates or replaces a file.
func (m *MemCard) Put(path string, data []byte) {
	m.store[path] = &memFile{data: append([]byte(nil), data...)}
}

// Bytes returns a copy of a file's contents.
func (m *MemCard) Bytes(path string) ([]byte, bool) {
	f, ok := m.store[path]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

func (m *MemCard) Size(path string) (uint32, error) {
	f, ok := m.store[path]
	if !ok {
		return 0, &Error{Op: "size", Path: path, Code: CodeNotFound}
	}
	return uint32(len(f.data)), nil
}

func (m *MemCard) List() ([]Entry, error) {
	entries := make([]Entry, 0, len(m.store))
	for name, f := range m.store {
		entries = append(entries, Entry{Name: name, Size: uint32(len(f.data))})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

type memVolume struct {
	m *MemCard
}

func (v memVolume) open(path string, mode OpenMode) (object, error) {
	f, ok := v.m.store[path]
	switch mode {
	case ModeCreate:
		f = &memFile{}
		v.m.store[path] = f
	default:
		if !ok {
			return nil, &Error{Op: "open", Path: path, Code: CodeNotFound}
		}
	}
	return f, nil
}

type memFile struct {
	data []byte
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(f.data) {
		f.data = append(f.data, make([]byte, end-len(f.data))...)
	}
	return copy(f.data[off:], p), nil
}

func (f *memFile) Size() (uint32, error) {
	return uint32(len(f.data)), nil
}

func (f *memFile) Truncate(size uint32) error {
	if int(size) < len(f.data) {
		f.data = f.data[:size]
	} else {
		f.data = append(f.data, make([]byte, int(size)-len(f.data))...)
	}
	return nil
}

func (f *memFile) Sync() error {
	return nil
}

func (f *memFile) Close() error {
	return nil
}
