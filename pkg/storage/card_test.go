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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testCard interface {
	Port
	Lister
	Sizer
}

func cards(t *testing.T) map[string]testCard {
	return map[string]testCard{
		"mem": NewMemCard(),
		"dir": NewDirCard(t.TempDir()),
		"9p":  newNinePCard(t),
	}
}

func readAll(t *testing.T, c Port, path string) []byte {
	t.Helper()
	h, err := c.Open(path, ModeRead)
	if err != nil {
		t.Fatalf("Open failed: %+v", err)
	}
	defer c.Close(h)
	if err := c.Seek(h, FileEnd); err != nil {
		t.Fatalf("Seek failed: %+v", err)
	}
	size, err := c.SeekPos(h)
	if err != nil {
		t.Fatalf("SeekPos failed: %+v", err)
	}
	if err := c.Seek(h, 0); err != nil {
		t.Fatalf("Seek failed: %+v", err)
	}
	buf := make([]byte, size)
	if err := c.Read(h, buf); err != nil {
		t.Fatalf("Read failed: %+v", err)
	}
	return buf
}

func TestWriteSeekRead(t *testing.T) {
	for name, c := range cards(t) {
		t.Run(name, func(t *testing.T) {
			h, err := c.Open("a.txt", ModeCreate)
			if err != nil {
				t.Fatalf("Open failed: %+v", err)
			}
			if err := c.Write(h, []byte("hello world")); err != nil {
				t.Fatalf("Write failed: %+v", err)
			}
			if pos, _ := c.SeekPos(h); pos != 11 {
				t.Errorf("Unexpected position after write: %d", pos)
			}
			if err := c.Seek(h, 6); err != nil {
				t.Fatalf("Seek failed: %+v", err)
			}
			if err := c.Write(h, []byte("there!")); err != nil {
				t.Fatalf("Write failed: %+v", err)
			}
			if err := c.Seek(h, 0); err != nil {
				t.Fatalf("Seek failed: %+v", err)
			}
			buf := make([]byte, 5)
			if err := c.Read(h, buf); err != nil {
				t.Fatalf("Read failed: %+v", err)
			}
			if string(buf) != "hello" {
				t.Errorf("Unexpected read: '%s'", buf)
			}
			if err := c.Commit(); err != nil {
				t.Errorf("Commit failed: %+v", err)
			}
			if err := c.Close(h); err != nil {
				t.Errorf("Close failed: %+v", err)
			}
			if got := string(readAll(t, c, "a.txt")); got != "hello there!" {
				t.Errorf("Unexpected contents: '%s'", got)
			}
			if size, err := c.Size("a.txt"); err != nil || size != 12 {
				t.Errorf("Unexpected size: %d %v", size, err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	for name, c := range cards(t) {
		t.Run(name, func(t *testing.T) {
			h, err := c.Open("b.txt", ModeCreate)
			if err != nil {
				t.Fatalf("Open failed: %+v", err)
			}
			c.Write(h, []byte("0123456789"))
			if err := c.Truncate(h, 4); err != nil {
				t.Fatalf("Truncate failed: %+v", err)
			}
			if pos, _ := c.SeekPos(h); pos != 4 {
				t.Errorf("Position should move back to the new end: %d", pos)
			}
			c.Close(h)
			if got := string(readAll(t, c, "b.txt")); got != "0123" {
				t.Errorf("Unexpected contents: '%s'", got)
			}
		})
	}
}

func TestOpenModes(t *testing.T) {
	for name, c := range cards(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Open("missing.txt", ModeRead); Code(err) != CodeNotFound {
				t.Errorf("Opening a missing file should fail with CodeNotFound: %v", err)
			}
			if _, err := c.Open("missing.txt", ModeAppend); Code(err) != CodeNotFound {
				t.Errorf("Appending to a missing file should fail with CodeNotFound: %v", err)
			}
			h, _ := c.Open("c.txt", ModeCreate)
			c.Write(h, []byte("abc"))
			c.Close(h)

			h, err := c.Open("c.txt", ModeAppend)
			if err != nil {
				t.Fatalf("Open failed: %+v", err)
			}
			if pos, _ := c.SeekPos(h); pos != 3 {
				t.Errorf("Append should start at the end: %d", pos)
			}
			c.Write(h, []byte("def"))
			c.Close(h)

			h, err = c.Open("c.txt", ModeRead)
			if err != nil {
				t.Fatalf("Open failed: %+v", err)
			}
			if err := c.Write(h, []byte("x")); Code(err) != CodeReadOnly {
				t.Errorf("Writing a read-only handle should fail with CodeReadOnly: %v", err)
			}
			c.Close(h)
			if got := string(readAll(t, c, "c.txt")); got != "abcdef" {
				t.Errorf("Unexpected contents: '%s'", got)
			}

			h, _ = c.Open("c.txt", ModeCreate)
			c.Close(h)
			if size, _ := c.Size("c.txt"); size != 0 {
				t.Errorf("Create should truncate: %d", size)
			}
		})
	}
}

func TestRangeErrors(t *testing.T) {
	for name, c := range cards(t) {
		t.Run(name, func(t *testing.T) {
			h, _ := c.Open("d.txt", ModeCreate)
			c.Write(h, []byte("abc"))
			if err := c.Seek(h, 4); Code(err) != CodeRange {
				t.Errorf("Seeking past the end should fail with CodeRange: %v", err)
			}
			c.Seek(h, 1)
			if err := c.Read(h, make([]byte, 3)); Code(err) != CodeRange {
				t.Errorf("Reading past the end should fail with CodeRange: %v", err)
			}
			c.Close(h)
		})
	}
}

func TestHandles(t *testing.T) {
	c := NewMemCard()
	c.Put("e.txt", []byte("e"))
	var handles []Handle
	for i := 0; i < MaxOpen; i++ {
		h, err := c.Open("e.txt", ModeRead)
		if err != nil {
			t.Fatalf("Open failed: %+v", err)
		}
		handles = append(handles, h)
	}
	if h, err := c.Open("e.txt", ModeRead); Code(err) != CodeTooManyOpen || h != InvalidHandle {
		t.Errorf("Open beyond MaxOpen should fail with CodeTooManyOpen: %v", err)
	}
	c.Close(handles[1])
	if err := c.Seek(handles[1], 0); Code(err) != CodeBadHandle {
		t.Errorf("Using a closed handle should fail with CodeBadHandle: %v", err)
	}
	if err := c.Close(InvalidHandle); Code(err) != CodeBadHandle {
		t.Errorf("Closing InvalidHandle should fail with CodeBadHandle: %v", err)
	}
	if h, err := c.Open("e.txt", ModeRead); err != nil || h != handles[1] {
		t.Errorf("Open should reuse the free slot: %d %v", h, err)
	}
}

func TestStatsAndLimits(t *testing.T) {
	c := NewMemCard()
	h, _ := c.Open("f.txt", ModeCreate)
	c.MaxTransfer = 4
	if err := c.Write(h, []byte("12345")); Code(err) != CodeRange {
		t.Errorf("Oversized write should fail with CodeRange: %v", err)
	}
	c.Write(h, []byte("1234"))
	c.Write(h, []byte("5678"))
	c.Seek(h, 0)
	c.Read(h, make([]byte, 4))
	c.Truncate(h, 6)
	c.Commit()
	want := Stats{Reads: 1, Writes: 2, BytesRead: 4, BytesWritten: 8, Truncates: 1, Commits: 1}
	if diff := cmp.Diff(want, c.Stats()); diff != "" {
		t.Errorf("Unexpected stats (-want +got):\n%s", diff)
	}
	c.ResetStats()
	if c.Stats() != (Stats{}) {
		t.Errorf("ResetStats should clear the counters")
	}
}

func TestInjectedFailures(t *testing.T) {
	c := NewMemCard()
	h, _ := c.Open("g.txt", ModeCreate)
	c.FailWritesAfter(1)
	if err := c.Write(h, []byte("a")); err != nil {
		t.Errorf("First write should succeed: %v", err)
	}
	err := c.Write(h, []byte("b"))
	if Code(err) != CodeIO || !errors.Is(err, errInjected) {
		t.Errorf("Second write should fail with CodeIO: %v", err)
	}
	if err := c.Write(h, []byte("c")); err != nil {
		t.Errorf("Writes should work again after the failure: %v", err)
	}
	c.Seek(h, 0)
	c.FailReadsAfter(0)
	if err := c.Read(h, make([]byte, 1)); Code(err) != CodeIO {
		t.Errorf("Read should fail with CodeIO: %v", err)
	}
	if got, _ := c.Bytes("g.txt"); string(got) != "ac" {
		t.Errorf("Unexpected contents: '%s'", got)
	}
}

func TestList(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "one.txt"), []byte("1"), 0666)
	os.WriteFile(filepath.Join(root, "two.txt"), []byte("22"), 0666)
	os.Mkdir(filepath.Join(root, "dir"), 0777)
	entries, err := NewDirCard(root).List()
	if err != nil {
		t.Fatalf("List failed: %+v", err)
	}
	want := []Entry{
		{Name: "dir", IsDir: true},
		{Name: "one.txt", Size: 1},
		{Name: "two.txt", Size: 2},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Unexpected listing (-want +got):\n%s", diff)
	}

	m := NewMemCard()
	m.Put("b", []byte("bb"))
	m.Put("a", nil)
	entries, _ = m.List()
	if diff := cmp.Diff([]Entry{{Name: "a"}, {Name: "b", Size: 2}}, entries); diff != "" {
		t.Errorf("Unexpected listing (-want +got):\n%s", diff)
	}
}

func TestDirCardStaysInRoot(t *testing.T) {
	root := t.TempDir()
	c := NewDirCard(filepath.Join(root, "card"))
	os.Mkdir(filepath.Join(root, "card"), 0777)
	h, err := c.Open("../escape.txt", ModeCreate)
	if err != nil {
		t.Fatalf("Open failed: %+v", err)
	}
	c.Close(h)
	if _, err := os.Stat(filepath.Join(root, "card", "escape.txt")); err != nil {
		t.Errorf("File should have been created inside the card: %v", err)
	}
}

func TestErrorText(t *testing.T) {
	err := &Error{Op: "open", Path: "x.txt", Code: CodeNotFound}
	if got := err.Error(); got != "open x.txt: not found" {
		t.Errorf("Unexpected error text: '%s'", got)
	}
	if Code(nil) != CodeNone || Code(errors.New("other")) != CodeIO {
		t.Errorf("Unexpected codes for non-card errors")
	}
}

func TestNinePErrors(t *testing.T) {
	if Code(ninepError("open", "x.txt", errors.New("file does not exist"))) != CodeNotFound {
		t.Errorf("A missing file should map to CodeNotFound")
	}
	if Code(ninepError("read", "x.txt", errors.New("i/o on hungup channel"))) != CodeIO {
		t.Errorf("Other server errors should map to CodeIO")
	}
	// nothing listens on port 1
	if _, err := DialNinePCard("tcp", "127.0.0.1:1"); Code(err) != CodeIO {
		t.Errorf("Expected an I/O error, got %v", err)
	}
}
