// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"

	"gopkg.microglot.org/fnc.go/internal/idl"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
}

// Location is an idl.Location qualified by the URI of the file it refers to.
// An empty URI means the source did not come from a file.
type Location struct {
	idl.Location
	URI string
}

func (l Location) String() string {
	uri := l.URI
	if uri == "" {
		uri = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", uri, l.Line, l.Column)
}

type exc struct {
	code     string
	message  string
	location Location
}

func (e *exc) Error() string {
	return fmt.Sprintf("%s -- %s: %s", e.location, e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

// Newf is New with a formatted message.
func Newf(location Location, code string, format string, args ...interface{}) Exception {
	return New(location, code, fmt.Sprintf(format, args...))
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

// Wrapf wraps err like Wrap but replaces the message with a formatted one.
// The cause remains reachable through errors.Is and errors.As.
func Wrapf(location Location, code string, err error, format string, args ...interface{}) Exception {
	if err == nil {
		return nil
	}
	return &excUnwrap{
		cause:     err,
		Exception: Newf(location, code, format, args...),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}

// HasCode reports whether err is, or wraps, an Exception with the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		if e, ok := err.(Exception); ok && e.Code() == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
