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
	"io/fs"
	"os"
	"path/filepath"
)

// A DirCard serves the files of a host directory, standing in for a card
// that has been mounted on the host.
type DirCard struct {
	card
	root string
}

func NewDirCard(root string) *DirCard {
	d := &DirCard{root: root}
	d.vol = dirVolume{d}
	return d
}

// path keeps every name inside the root.
func (d *DirCard) path(name string) string {
	return filepath.Join(d.root, filepath.Clean("/"+name))
}

func (d *DirCard) Size(path string) (uint32, error) {
	info, err := os.Stat(d.path(path))
	if err != nil {
		return 0, dirError("size", path, err)
	}
	return uint32(info.Size()), nil
}

func (d *DirCard) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, dirError("list", d.root, err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), IsDir: de.IsDir()}
		if info, err := de.Info(); err == nil && !de.IsDir() {
			entry.Size = uint32(info.Size())
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func dirError(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &Error{Op: op, Path: path, Code: CodeNotFound, Err: err}
	}
	return &Error{Op: op, Path: path, Code: CodeIO, Err: err}
}

type dirVolume struct {
	d *DirCard
}

func (v dirVolume) open(path string, mode OpenMode) (object, error) {
	var flag int
	switch mode {
	case ModeRead:
		flag = os.O_RDONLY
	case ModeCreate:
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(v.d.path(path), flag, 0666)
	if err != nil {
		return nil, dirError("open", path, err)
	}
	return dirFile{f}, nil
}

type dirFile struct {
	*os.File
}

func (f dirFile) Size() (uint32, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return uint32(info.Size()), nil
}

func (f dirFile) Truncate(size uint32) error {
	return f.File.Truncate(int64(size))
}
