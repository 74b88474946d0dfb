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
	"log"

	"github.com/steelseries/golisp"

	"github.com/timburks/pagedit/pkg/editor"
	"github.com/timburks/pagedit/pkg/storage"
	pagedit "github.com/timburks/pagedit/pkg/types"
)

// A Script drives a Session from lisp, without a terminal.
//
//	(open-file "notes.txt")
//	(insert "hello" 0)
//	(save)
//	(close-file)
type Script struct {
	card    storage.Port
	session *editor.Session
}

func NewScript(card storage.Port) *Script {
	return &Script{card: card, session: editor.NewSession(card)}
}

// golisp primitives are global, so they act on the script being evaluated.
var active *Script

func init() {
	golisp.Global.BindTo(golisp.SymbolWithName("PAGE-BYTES"), golisp.IntegerWithValue(int64(pagedit.PageBytes)))
	golisp.MakePrimitiveFunction("open-file", "1", OpenFileImpl)
	golisp.MakePrimitiveFunction("close-file", "0", CloseFileImpl)
	golisp.MakePrimitiveFunction("insert", "2", InsertImpl)
	golisp.MakePrimitiveFunction("insert-char", "2", InsertCharImpl)
	golisp.MakePrimitiveFunction("backspace", "1", BackspaceImpl)
	golisp.MakePrimitiveFunction("delete-char", "1", DeleteCharImpl)
	golisp.MakePrimitiveFunction("page-down", "0", PageDownImpl)
	golisp.MakePrimitiveFunction("page-up", "0", PageUpImpl)
	golisp.MakePrimitiveFunction("save", "0", SaveImpl)
	golisp.MakePrimitiveFunction("first-page?", "0", FirstPageImpl)
	golisp.MakePrimitiveFunction("last-page?", "0", LastPageImpl)
	golisp.MakePrimitiveFunction("page-text", "0", PageTextImpl)
	golisp.MakePrimitiveFunction("disk-size", "0", DiskSizeImpl)
	golisp.MakePrimitiveFunction("file-size", "0", FileSizeImpl)
}

// Eval runs lisp source and returns the printed value of its last form.
func (sc *Script) Eval(source string) (string, error) {
	active = sc
	defer func() { active = nil }()
	value, err := golisp.ParseAndEval("(begin " + source + "\n)")
	if err != nil {
		log.Printf("ERR %+v", err)
		return "", err
	}
	return golisp.String(value), nil
}

// Close ends the script's session, saving it, and closes its file. When
// the save fails the file stays open and Close may be called again.
func (sc *Script) Close() error {
	if !sc.session.Active() {
		return nil
	}
	h := sc.session.Handle()
	if err := sc.session.Close(); err != nil {
		return err
	}
	return sc.card.Close(h)
}

var errNoFile = errors.New("no file is open")

func session() (*editor.Session, error) {
	if active == nil || !active.session.Active() {
		return nil, errNoFile
	}
	return active.session, nil
}

func intArg(args *golisp.Data, name string) (int, error) {
	val := golisp.Car(args)
	if !golisp.IntegerP(val) {
		return 0, fmt.Errorf("%s requires an integer position", name)
	}
	return int(golisp.IntegerValue(val)), nil
}

func OpenFileImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	val := golisp.Car(args)
	if !golisp.StringP(val) {
		return nil, errors.New("open-file requires a file name")
	}
	if active == nil {
		return nil, errNoFile
	}
	if err := active.Close(); err != nil {
		return nil, err
	}
	h, err := OpenForEdit(active.card, golisp.StringValue(val))
	if err != nil {
		return nil, err
	}
	if err := active.session.Init(h); err != nil {
		active.card.Close(h)
		return nil, err
	}
	return golisp.IntegerWithValue(int64(h)), nil
}

func CloseFileImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	if _, err := session(); err != nil {
		return nil, err
	}
	if err := active.Close(); err != nil {
		return nil, err
	}
	return golisp.BooleanWithValue(true), nil
}

// InsertImpl inserts a string at a position of the current page, paging
// down when the position runs past the page. It returns the position
// after the inserted text.
func InsertImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	text := golisp.Car(args)
	if !golisp.StringP(text) {
		return nil, errors.New("insert requires a string")
	}
	pos, err := intArg(golisp.Cdr(args), "insert")
	if err != nil {
		return nil, err
	}
	for _, c := range []byte(golisp.StringValue(text)) {
		for pos >= pagedit.PageBytes && !s.IsLastPage() {
			before := s.Current().Offset()
			if err := s.PageDown(); err != nil {
				return nil, err
			}
			pos -= int(s.Current().Offset() - before)
		}
		if err := s.InsertChar(c, pos); err != nil {
			return nil, err
		}
		pos++
	}
	return golisp.IntegerWithValue(int64(pos)), nil
}

// InsertCharImpl takes a character code or a one character string.
func InsertCharImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	var c byte
	val := golisp.Car(args)
	switch {
	case golisp.IntegerP(val):
		c = byte(golisp.IntegerValue(val))
	case golisp.StringP(val) && len(golisp.StringValue(val)) == 1:
		c = golisp.StringValue(val)[0]
	default:
		return nil, errors.New("insert-char requires a character code or a one character string")
	}
	pos, err := intArg(golisp.Cdr(args), "insert-char")
	if err != nil {
		return nil, err
	}
	if err := s.InsertChar(c, pos); err != nil {
		return nil, err
	}
	return golisp.IntegerWithValue(int64(pos + 1)), nil
}

func BackspaceImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	pos, err := intArg(args, "backspace")
	if err != nil {
		return nil, err
	}
	s.BackspaceChar(pos)
	return golisp.IntegerWithValue(int64(max(pos-1, 0))), nil
}

func DeleteCharImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	pos, err := intArg(args, "delete-char")
	if err != nil {
		return nil, err
	}
	s.DeleteChar(pos)
	return golisp.IntegerWithValue(int64(pos)), nil
}

func PageDownImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	if s.IsLastPage() {
		return golisp.BooleanWithValue(false), nil
	}
	if err := s.PageDown(); err != nil {
		return nil, err
	}
	return golisp.BooleanWithValue(true), nil
}

func PageUpImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	if s.IsFirstPage() {
		return golisp.BooleanWithValue(false), nil
	}
	if err := s.PageUp(); err != nil {
		return nil, err
	}
	return golisp.BooleanWithValue(true), nil
}

func SaveImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return golisp.IntegerWithValue(int64(s.DiskSize())), nil
}

func FirstPageImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	return golisp.BooleanWithValue(s.IsFirstPage()), nil
}

func LastPageImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	return golisp.BooleanWithValue(s.IsLastPage()), nil
}

func PageTextImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	return golisp.StringWithValue(string(s.Current().Bytes())), nil
}

func DiskSizeImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	return golisp.IntegerWithValue(int64(s.DiskSize())), nil
}

func FileSizeImpl(args *golisp.Data, env *golisp.SymbolTableFrame) (result *golisp.Data, err error) {
	s, err := session()
	if err != nil {
		return nil, err
	}
	return golisp.IntegerWithValue(int64(s.Size())), nil
}
