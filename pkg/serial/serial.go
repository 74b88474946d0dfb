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

// Package serial connects the editor to a terminal on a serial line.
package serial

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"time"

	"github.com/pkg/term"

	pagedit "github.com/timburks/pagedit/pkg/types"
)

// ReadTimeout is how long ReadByte waits before reporting no data.
const ReadTimeout = 100 * time.Millisecond

// A Port is a serial line in raw mode.
type Port struct {
	t   *term.Term
	buf [1]byte
}

// Open opens a tty device in raw mode. A baud of zero leaves the line
// speed alone.
func Open(dev string, baud int) (*Port, error) {
	options := []func(*term.Term) error{term.RawMode}
	if baud > 0 {
		options = append(options, term.Speed(baud))
	}
	t, err := term.Open(dev, options...)
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}
	if err := t.SetReadTimeout(ReadTimeout); err != nil {
		t.Restore()
		t.Close()
		return nil, fmt.Errorf("serial: %w", err)
	}
	return &Port{t: t}, nil
}

// ReadByte returns the next byte from the line, or ErrNoData when none
// arrives within ReadTimeout.
func (p *Port) ReadByte() (byte, error) {
	n, err := p.t.Read(p.buf[:])
	if n == 1 {
		return p.buf[0], nil
	}
	// a line has no end; an empty read is a timeout
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR) {
		return 0, pagedit.ErrNoData
	}
	return 0, err
}

func (p *Port) Write(b []byte) (int, error) {
	return p.t.Write(b)
}

// Close restores the line settings and closes the device.
func (p *Port) Close() error {
	p.t.Restore()
	return p.t.Close()
}
