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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/timburks/pagedit/pkg/editor"
	"github.com/timburks/pagedit/pkg/storage"
	pagedit "github.com/timburks/pagedit/pkg/types"
)

// maxLine is the longest command line the shell accepts.
const maxLine = 256

const bell = 7

// The Shell is the command prompt a serial terminal sees before and
// after editing.
type Shell struct {
	card     storage.Port
	in       pagedit.Input
	out      *bufio.Writer
	renderer pagedit.Renderer // used by edit
}

func NewShell(card storage.Port, in pagedit.Input, out io.Writer, r pagedit.Renderer) *Shell {
	return &Shell{card: card, in: in, out: bufio.NewWriter(out), renderer: r}
}

// Run reads and performs commands until "exit" or the end of the input.
func (sh *Shell) Run() error {
	sh.out.WriteString("=====================\r\n")
	sh.out.WriteString("pagedit console\r\n")
	sh.out.WriteString("\r\nType 'help' for available commands\r\n\r\n")
	for {
		line, err := sh.readLine()
		if errors.Is(err, io.EOF) {
			return sh.out.Flush()
		}
		if err != nil {
			return err
		}
		exit, err := sh.Execute(line)
		if err != nil {
			return err
		}
		if exit {
			return sh.out.Flush()
		}
	}
}

// readLine prompts and collects one line, echoing it as it is typed.
func (sh *Shell) readLine() (string, error) {
	sh.out.WriteString("> ")
	var line []byte
	for {
		if err := sh.out.Flush(); err != nil {
			return "", err
		}
		c, err := sh.in.ReadByte()
		if errors.Is(err, pagedit.ErrNoData) {
			continue
		}
		if err != nil {
			return "", err
		}
		switch {
		case c == '\r' || c == '\n':
			sh.out.WriteString("\r\n")
			return string(line), nil
		case c == pagedit.KeyBackspace || c == pagedit.KeyDelete:
			if len(line) > 0 {
				line = line[:len(line)-1]
				sh.out.WriteString("\033[1D\033[K")
			}
		case c >= 32 && c < 127:
			if len(line) < maxLine {
				line = append(line, c)
				sh.out.WriteByte(c)
			} else {
				sh.out.WriteByte(bell)
			}
		}
	}
}

// tokenize splits a command line into words. The data given to write and
// append is kept whole as the third token.
func tokenize(line string) []string {
	words := strings.Fields(line)
	if len(words) < 3 || (words[0] != "write" && words[0] != "append") {
		return words
	}
	rest := strings.TrimLeft(line, " \t")
	rest = strings.TrimLeft(rest[len(words[0]):], " \t")
	rest = strings.TrimLeft(rest[len(words[1]):], " \t")
	return []string{words[0], words[1], rest}
}

// Execute performs one command line. It returns true for "exit".
func (sh *Shell) Execute(line string) (bool, error) {
	defer sh.out.Flush()
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return false, nil
	}
	switch tokens[0] {
	case "help":
		sh.printf("Commands: help, ls [file...], print, write, append, edit, eval, keycode, exit\r\n")
	case "ls":
		if len(tokens) > 1 {
			sh.sizes(tokens[1:])
			return false, nil
		}
		sh.ls()
	case "print":
		if len(tokens) != 2 {
			sh.printf("print requires one argument (the file to print)\r\n")
			return false, nil
		}
		sh.print(tokens[1])
	case "write", "append":
		if len(tokens) < 3 {
			sh.printf("%s requires a filename, followed by the data to write\r\n", tokens[0])
			return false, nil
		}
		mode := storage.ModeCreate
		if tokens[0] == "append" {
			mode = storage.ModeAppend
		}
		sh.write(tokens[1], mode, []byte(tokens[2]))
	case "edit":
		if len(tokens) < 2 {
			sh.printf("edit requires a filename\r\n")
			return false, nil
		}
		return false, sh.edit(tokens[1])
	case "eval":
		if len(tokens) != 2 {
			sh.printf("eval requires one argument (the script to run)\r\n")
			return false, nil
		}
		sh.eval(tokens[1])
	case "keycode":
		return false, sh.keycodes()
	case "exit":
		return true, nil
	default:
		sh.printf("unknown command\r\n")
	}
	return false, nil
}

func (sh *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *Shell) ls() {
	lister, ok := sh.card.(storage.Lister)
	if !ok {
		sh.printf("this card cannot list its files\r\n")
		return
	}
	entries, err := lister.List()
	if err != nil {
		sh.printf("error listing files: %v\r\n", err)
		return
	}
	for _, e := range entries {
		if e.IsDir {
			sh.printf("[DIR] %-14s\r\n", e.Name)
		} else {
			sh.printf("      %-14s%d\r\n", e.Name, e.Size)
		}
	}
}

// sizes prints the size of each named file.
func (sh *Shell) sizes(names []string) {
	sizer, ok := sh.card.(storage.Sizer)
	if !ok {
		sh.printf("this card cannot size its files\r\n")
		return
	}
	for _, name := range names {
		size, err := sizer.Size(name)
		if err != nil {
			sh.printf("      %-14s%s\r\n", name, storage.Code(err))
			continue
		}
		sh.printf("      %-14s%d\r\n", name, size)
	}
}

func (sh *Shell) print(name string) {
	data, err := ReadFile(sh.card, name)
	if err != nil {
		sh.printf("error opening %s\r\n", name)
		return
	}
	sh.out.Write(data)
	sh.printf("\r\n")
}

func (sh *Shell) write(name string, mode storage.OpenMode, data []byte) {
	h, err := sh.card.Open(name, mode)
	if err != nil {
		sh.printf("error creating %s\r\n", name)
		return
	}
	if err := sh.card.Write(h, data); err != nil {
		sh.printf("error writing to %s\r\n", name)
	}
	sh.card.Close(h)
	sh.card.Commit()
}

// OpenForEdit opens a file for reading and writing, creating it if it
// does not exist.
func OpenForEdit(card storage.Port, name string) (storage.Handle, error) {
	h, err := card.Open(name, storage.ModeAppend)
	if storage.Code(err) == storage.CodeNotFound {
		h, err = card.Open(name, storage.ModeCreate)
	}
	return h, err
}

// ReadFile returns the contents of a file on the card.
func ReadFile(card storage.Port, name string) ([]byte, error) {
	h, err := card.Open(name, storage.ModeRead)
	if err != nil {
		return nil, err
	}
	defer card.Close(h)
	if err := card.Seek(h, storage.FileEnd); err != nil {
		return nil, err
	}
	size, err := card.SeekPos(h)
	if err != nil {
		return nil, err
	}
	if err := card.Seek(h, 0); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	for done := 0; done < len(data); {
		n := min(pagedit.Cols, len(data)-done)
		if err := card.Read(h, data[done:done+n]); err != nil {
			return nil, err
		}
		done += n
	}
	return data, nil
}

// edit runs the editor on a file, then saves it and closes it. A session
// that failed is not saved.
func (sh *Shell) edit(name string) error {
	h, err := OpenForEdit(sh.card, name)
	if err != nil {
		sh.printf("Couldn't open/create file %s\r\n", name)
		return nil
	}
	defer func() {
		if err := sh.card.Close(h); err != nil {
			sh.printf("Error closing file! Error code %d\r\n", int(storage.Code(err)))
		}
	}()
	session := editor.NewSession(sh.card)
	if err := session.Init(h); err != nil {
		sh.printf("Error getting file size, can't edit (error %d)\r\n", int(storage.Code(err)))
		return nil
	}
	if err := sh.out.Flush(); err != nil {
		return err
	}
	c := NewCommander(session, sh.renderer)
	if err := c.Edit(sh.in, name); err != nil {
		if !sessionError(err) {
			return err
		}
		sh.printf("%v\r\n", err)
		return nil
	}
	if err := session.Close(); err != nil {
		log.Printf("saving %s: %v", name, err)
		sh.printf("Error saving %s: %v\r\n", name, err)
	}
	return nil
}

// sessionError reports whether err came from the page cache. Other errors
// come from the terminal, and the shell cannot go on after them.
func sessionError(err error) bool {
	return errors.Is(err, editor.ErrStorageUnavailable) ||
		errors.Is(err, editor.ErrCorrupt) ||
		errors.Is(err, editor.ErrOutOfRange) ||
		errors.Is(err, editor.ErrNoSession)
}

func (sh *Shell) eval(name string) {
	source, err := ReadFile(sh.card, name)
	if err != nil {
		sh.printf("error opening %s\r\n", name)
		return
	}
	script := NewScript(sh.card)
	defer script.Close()
	result, err := script.Eval(string(source))
	if err != nil {
		sh.printf("error: %v\r\n", err)
		return
	}
	sh.printf("%s\r\n", result)
}

// keycodes prints the value of every byte received until Ctrl-C.
func (sh *Shell) keycodes() error {
	for {
		if err := sh.out.Flush(); err != nil {
			return err
		}
		c, err := sh.in.ReadByte()
		if errors.Is(err, pagedit.ErrNoData) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if c == pagedit.KeyCtrlC {
			sh.printf("\r\n")
			return nil
		}
		sh.printf("%d\r\n", c)
	}
}
