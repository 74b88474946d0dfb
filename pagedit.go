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
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/timburks/pagedit/pkg/commander"
	"github.com/timburks/pagedit/pkg/editor"
	"github.com/timburks/pagedit/pkg/screen"
	"github.com/timburks/pagedit/pkg/serial"
	"github.com/timburks/pagedit/pkg/storage"
	pagedit "github.com/timburks/pagedit/pkg/types"
)

const usage = "usage: pagedit [--card DIR | --9p ADDR] [--serial DEV [--baud N]] [--eval SCRIPT] [--shell] [FILE]"

type options struct {
	card   string // directory standing in for the card
	ninep  string // address of a 9P server holding the files
	serial string // tty of the terminal, empty for the host terminal
	baud   int
	script string // lisp script to run instead of the editor
	shell  bool
	file   string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{card: ".", baud: 115200}
	value := func(i int, flag string) (string, error) {
		if i < len(args) {
			return args[i], nil
		}
		return "", fmt.Errorf("no value specified for %s option", flag)
	}
	var err error
	for i := 0; i < len(args); i++ {
		argi := args[i]
		switch argi {
		case "--card":
			i++
			opts.card, err = value(i, argi)
		case "--9p":
			i++
			opts.ninep, err = value(i, argi)
		case "--serial":
			i++
			opts.serial, err = value(i, argi)
		case "--baud":
			i++
			var baud string
			if baud, err = value(i, argi); err == nil {
				opts.baud, err = strconv.Atoi(baud)
			}
		case "--eval":
			i++
			opts.script, err = value(i, argi)
		case "--shell":
			opts.shell = true
		default:
			if opts.file != "" {
				return nil, errors.New(usage)
			}
			opts.file = argi
		}
		if err != nil {
			return nil, err
		}
	}
	if opts.script == "" && !opts.shell && opts.file == "" {
		return nil, errors.New(usage)
	}
	if opts.shell && opts.serial == "" {
		// the shell talks to the host terminal as if it were a serial line
		opts.serial = "/dev/tty"
	}
	return opts, nil
}

func openCard(opts *options) (storage.Port, error) {
	if opts.ninep != "" {
		card, err := storage.DialNinePCard("tcp", opts.ninep)
		if err != nil {
			return nil, err
		}
		return card, nil
	}
	info, err := os.Stat(opts.card)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", opts.card)
	}
	return storage.NewDirCard(opts.card), nil
}

// evalScript runs a lisp script, first opening file if one is named,
// and prints its result.
func evalScript(card storage.Port, path, file string, out io.Writer) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	script := commander.NewScript(card)
	defer script.Close()
	if file != "" {
		if _, err := script.Eval("(open-file " + strconv.Quote(file) + ")"); err != nil {
			return err
		}
	}
	result, err := script.Eval(string(source))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return script.Close()
}

// edit runs the editor on one file and saves it when the editor exits.
func edit(card storage.Port, name string, in pagedit.Input, r pagedit.Renderer) error {
	h, err := commander.OpenForEdit(card, name)
	if err != nil {
		return err
	}
	defer card.Close(h)
	session := editor.NewSession(card)
	if err := session.Init(h); err != nil {
		return err
	}
	if err := commander.NewCommander(session, r).Edit(in, name); err != nil {
		return err
	}
	return session.Close()
}

func run(opts *options) error {
	card, err := openCard(opts)
	if err != nil {
		return err
	}
	if opts.script != "" {
		// Run a script and exit.
		return evalScript(card, opts.script, opts.file, os.Stdout)
	}

	// Open a log file.
	f, err := os.OpenFile(os.Getenv("HOME")+"/.pageditlog", os.O_APPEND|os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	log.SetOutput(f)
	defer f.Close()

	if opts.serial != "" {
		port, err := serial.Open(opts.serial, opts.baud)
		if err != nil {
			return err
		}
		defer port.Close()
		log.Printf("serial terminal on %s", opts.serial)
		if opts.shell {
			return commander.NewShell(card, port, port, screen.NewANSI(port)).Run()
		}
		return edit(card, opts.file, port, screen.NewANSI(port))
	}

	// The host terminal stands in for the serial terminal.
	s, err := screen.NewTermbox()
	if err != nil {
		return err
	}
	defer s.Close()
	return edit(card, opts.file, s, s)
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Output(1, err.Error())
		return
	}
	if err := run(opts); err != nil {
		log.Output(1, err.Error())
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
