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

// Package storage defines the port through which pagedit reaches the card
// that holds its files, and provides cards that implement it.
//
// A card hands out small integer handles, keeps one seek position per
// handle and moves bytes only by whole reads and writes at that position,
// the way a FAT driver on a microcontroller does.
package storage

import (
	"errors"
	"fmt"
)

// A Handle identifies an open file on a card.
type Handle uint8

// InvalidHandle is never returned by a successful Open.
const InvalidHandle Handle = 0xff

// FileEnd may be passed to Seek to move to the end of the file.
const FileEnd uint32 = 0xffffffff

// MaxOpen is the number of files a card keeps open at once.
const MaxOpen = 4

// OpenMode selects how Open treats the file.
type OpenMode int

const (
	ModeRead   OpenMode = iota // existing file, read only
	ModeCreate                 // create or truncate, read and write
	ModeAppend                 // existing file, read and write, positioned at its end
)

func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeCreate:
		return "create"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// The Port is everything the editor needs from a card.
type Port interface {
	// Seek moves the handle's position to offset, or to the end of the
	// file when offset is FileEnd. Seeking past the end fails.
	Seek(h Handle, offset uint32) error
	// SeekPos reports the handle's position.
	SeekPos(h Handle) (uint32, error)
	// Read fills buf from the handle's position and advances it.
	Read(h Handle, buf []byte) error
	// Write stores buf at the handle's position, extending the file as
	// needed, and advances the position.
	Write(h Handle, buf []byte) error
	// Truncate cuts the file to size bytes.
	Truncate(h Handle, size uint32) error
	Open(path string, mode OpenMode) (Handle, error)
	Close(h Handle) error
	// Commit flushes file sizes and allocation tables to the card.
	Commit() error
}

// An Entry describes a file in a card's directory listing.
type Entry struct {
	Name  string
	Size  uint32
	IsDir bool
}

// A Lister can list the files on a card.
type Lister interface {
	List() ([]Entry, error)
}

// A Sizer reports the size of a file without opening it.
type Sizer interface {
	Size(path string) (uint32, error)
}

// ErrorCode classifies card failures.
type ErrorCode int

const (
	CodeNone ErrorCode = iota
	CodeNotFound
	CodeBadHandle
	CodeTooManyOpen
	CodeReadOnly
	CodeRange
	CodeIO
)

func (c ErrorCode) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeNotFound:
		return "not found"
	case CodeBadHandle:
		return "bad handle"
	case CodeTooManyOpen:
		return "too many open files"
	case CodeReadOnly:
		return "read only"
	case CodeRange:
		return "out of range"
	case CodeIO:
		return "i/o error"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error records a failed card operation.
type Error struct {
	Op   string
	Path string
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	s := e.Op
	if e.Path != "" {
		s += " " + e.Path
	}
	s += ": " + e.Code.String()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the ErrorCode carried by err, CodeNone for nil and CodeIO
// for errors that did not come from a card.
func Code(err error) ErrorCode {
	if err == nil {
		return CodeNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeIO
}
