// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Error taxonomy shared by the image and UART subsystems.
package gonor

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindIOFailure
	KindEmptyImage
	KindNoImageLoaded
	KindOutOfBounds
	KindEncodingError
	KindValueTooLong
	KindInvalidLength
	KindNotConnected
	KindInvalidPort
	KindConnectFailure
	KindInvalidCommand
	KindInvalidCode
	KindLookupFailure
	KindCorruptDatabase
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindIOFailure:
		return "I/O failure"
	case KindEmptyImage:
		return "empty image"
	case KindNoImageLoaded:
		return "no image loaded"
	case KindOutOfBounds:
		return "out of bounds"
	case KindEncodingError:
		return "encoding error"
	case KindValueTooLong:
		return "value too long"
	case KindInvalidLength:
		return "invalid length"
	case KindNotConnected:
		return "not connected"
	case KindInvalidPort:
		return "invalid port"
	case KindConnectFailure:
		return "connect failure"
	case KindInvalidCommand:
		return "invalid command"
	case KindInvalidCode:
		return "invalid error code"
	case KindLookupFailure:
		return "lookup failure"
	case KindCorruptDatabase:
		return "corrupt database"
	default:
		return fmt.Sprintf("unknown kind %d", int(k))
	}
}

// Error carries one kind from the taxonomy, a short message, and the
// underlying cause when one exists.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// wrapError preserves the causal chain; composite operations use it to add
// context instead of leaking the raw low-level error.
func wrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err (or anything it wraps) is an Error of the given
// kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind == kind {
			return true
		}
		err = e.Err
		e = nil
	}
	return false
}
