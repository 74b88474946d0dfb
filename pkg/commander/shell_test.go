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
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sanity-io/litter"

	"github.com/timburks/pagedit/pkg/screen"
	"github.com/timburks/pagedit/pkg/storage"
)

func runShell(t *testing.T, card *storage.MemCard, input string) string {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(card, typed(input), &out, screen.NewANSI(&out))
	if err := sh.Run(); err != nil {
		t.Fatalf("Run failed: %+v", err)
	}
	return out.String()
}

func TestTokenize(t *testing.T) {
	for _, tc := range []struct {
		line string
		want []string
	}{
		{"", nil},
		{"  ls ", []string{"ls"}},
		{"print  notes.txt", []string{"print", "notes.txt"}},
		{"write a.txt hello  world ", []string{"write", "a.txt", "hello  world "}},
		{"  append a.txt x", []string{"append", "a.txt", "x"}},
		{"edit a b c", []string{"edit", "a", "b", "c"}},
	} {
		got := tokenize(tc.line)
		if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("tokenize(%q) (-want +got):\n%s\n%s", tc.line, diff, litter.Sdump(got))
		}
	}
}

func TestShellFiles(t *testing.T) {
	card := storage.NewMemCard()
	out := runShell(t, card, "write a.txt hello world\r"+
		"append a.txt !\r"+
		"append missing.txt x\r"+
		"print a.txt\r"+
		"lz\x7fs\r"+
		"print\r"+
		"bogus\r"+
		"exit\r"+
		"print a.txt\r")
	if b, _ := card.Bytes("a.txt"); string(b) != "hello world!" {
		t.Errorf("Unexpected contents: %q", b)
	}
	for _, want := range []string{
		"pagedit console",
		"error creating missing.txt",
		"hello world!\r\n",
		"a.txt",
		"print requires one argument",
		"unknown command",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in %q", want, out)
		}
	}
	if strings.Count(out, "hello world!\r\n") != 1 {
		t.Errorf("Commands after exit should not run")
	}
	if _, ok := card.Bytes("missing.txt"); ok {
		t.Errorf("append should not create files")
	}
}

func TestShellSizes(t *testing.T) {
	card := storage.NewMemCard()
	card.Put("a.txt", []byte("hello"))
	card.Put("b.txt", records(1234))
	out := runShell(t, card, "ls b.txt missing.txt a.txt")
	want := "      b.txt         1234\r\n" +
		"      missing.txt   not found\r\n" +
		"      a.txt         5\r\n"
	if !strings.Contains(out, want) {
		t.Errorf("Missing %q in %q", want, out)
	}
}

func TestShellLineLimit(t *testing.T) {
	card := storage.NewMemCard()
	out := runShell(t, card, strings.Repeat("x", maxLine+3)+"\r")
	if n := strings.Count(out, "\a"); n != 3 {
		t.Errorf("Expected 3 bells, got %d", n)
	}
}

func TestShellEdit(t *testing.T) {
	card := storage.NewMemCard()
	out := runShell(t, card, "edit new.txt\r\x10hi\r\x03exit\r")
	if b, _ := card.Bytes("new.txt"); string(b) != "hi\r" {
		t.Errorf("Edits should be saved when the editor exits: %q", b)
	}
	if !strings.Contains(out, "Finished editing new.txt") {
		t.Errorf("Missing finish message in %q", out)
	}
	// every handle was closed
	for i := 0; i < storage.MaxOpen; i++ {
		if _, err := card.Open("new.txt", storage.ModeRead); err != nil {
			t.Fatalf("Open failed: %+v", err)
		}
	}
}

func TestShellEditFailure(t *testing.T) {
	card := storage.NewMemCard()
	card.Put("big.txt", records(2000))
	card.FailReadsAfter(0)
	out := runShell(t, card, "edit big.txt\rexit\r")
	if !strings.Contains(out, "can't edit") {
		t.Errorf("Missing error in %q", out)
	}
}

func TestShellKeycode(t *testing.T) {
	card := storage.NewMemCard()
	out := runShell(t, card, "keycode\rA\x7f\x03exit\r")
	if !strings.Contains(out, "65\r\n127\r\n") {
		t.Errorf("Missing key codes in %q", out)
	}
}

func TestShellEval(t *testing.T) {
	card := storage.NewMemCard()
	card.Put("s.lisp", []byte(`(open-file "c.txt") (insert "hello" 0) (save)`))
	card.Put("bad.lisp", []byte(`(page-down)`))
	out := runShell(t, card, "eval s.lisp\reval bad.lisp\reval none.lisp\r")
	if b, _ := card.Bytes("c.txt"); string(b) != "hello" {
		t.Errorf("Unexpected contents: %q", b)
	}
	for _, want := range []string{"5\r\n", "error: ", "error opening none.lisp"} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in %q", want, out)
		}
	}
}
