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
	"strings"

	"9fans.net/go/plan9"
	"9fans.net/go/plan9/client"
)

// A NinePCard reaches the files of a card exported by a 9P file server,
// for example a board that serves its card over the network.
type NinePCard struct {
	card
	fsys *client.Fsys
}

func NewNinePCard(fsys *client.Fsys) *NinePCard {
	n := &NinePCard{fsys: fsys}
	n.vol = ninepVolume{n}
	return n
}

// DialNinePCard mounts the file server at addr, e.g. ("tcp", "board:564").
func DialNinePCard(network, addr string) (*NinePCard, error) {
	fsys, err := client.Mount(network, addr)
	if err != nil {
		return nil, &Error{Op: "mount", Path: addr, Code: CodeIO, Err: err}
	}
	return NewNinePCard(fsys), nil
}

func (n *NinePCard) Size(path string) (uint32, error) {
	d, err := n.fsys.Stat(path)
	if err != nil {
		return 0, ninepError("size", path, err)
	}
	return uint32(d.Length), nil
}

func (n *NinePCard) List() ([]Entry, error) {
	fid, err := n.fsys.Open("/", plan9.OREAD)
	if err != nil {
		return nil, ninepError("list", "/", err)
	}
	defer fid.Close()
	dirs, err := fid.Dirreadall()
	if err != nil {
		return nil, ninepError("list", "/", err)
	}
	entries := make([]Entry, 0, len(dirs))
	for _, d := range dirs {
		entries = append(entries, Entry{
			Name:  d.Name,
			Size:  uint32(d.Length),
			IsDir: d.Mode&plan9.DMDIR != 0,
		})
	}
	return entries, nil
}

func ninepError(op, path string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found") {
		return &Error{Op: op, Path: path, Code: CodeNotFound, Err: err}
	}
	return &Error{Op: op, Path: path, Code: CodeIO, Err: err}
}

type ninepVolume struct {
	n *NinePCard
}

func (v ninepVolume) open(path string, mode OpenMode) (object, error) {
	var fid *client.Fid
	var err error
	switch mode {
	case ModeRead:
		fid, err = v.n.fsys.Open(path, plan9.OREAD)
	case ModeAppend:
		fid, err = v.n.fsys.Open(path, plan9.ORDWR)
	case ModeCreate:
		fid, err = v.n.fsys.Open(path, plan9.ORDWR|plan9.OTRUNC)
		if err != nil {
			fid, err = v.n.fsys.Create(path, plan9.ORDWR, 0666)
		}
	}
	if err != nil {
		return nil, ninepError("open", path, err)
	}
	return ninepFile{fid}, nil
}

type ninepFile struct {
	fid *client.Fid
}

func (f ninepFile) ReadAt(p []byte, off int64) (int, error) {
	return f.fid.ReadAt(p, off)
}

func (f ninepFile) WriteAt(p []byte, off int64) (int, error) {
	return f.fid.WriteAt(p, off)
}

func (f ninepFile) Size() (uint32, error) {
	d, err := f.fid.Stat()
	if err != nil {
		return 0, err
	}
	return uint32(d.Length), nil
}

func (f ninepFile) Truncate(size uint32) error {
	var d plan9.Dir
	d.Null()
	d.Length = uint64(size)
	return f.fid.Wstat(&d)
}

// Sync has nothing to do: the server has every write once Twrite returns.
func (f ninepFile) Sync() error {
	return nil
}

func (f ninepFile) Close() error {
	return f.fid.Close()
}
