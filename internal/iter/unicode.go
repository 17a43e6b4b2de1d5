// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
	"gopkg.microglot.org/fnc.go/internal/optional"
)

// NewUnicodeString iterates over the code points of source. Invalid UTF-8
// bytes come out as utf8.RuneError one byte at a time.
func NewUnicodeString(source string) idl.Iterator[idl.CodePoint] {
	return &stringRunes{rest: source}
}

type stringRunes struct {
	rest string
}

func (self *stringRunes) Next(ctx context.Context) optional.Optional[idl.CodePoint] {
	if len(self.rest) < 1 {
		return optional.None[idl.CodePoint]()
	}
	r, size := utf8.DecodeRuneInString(self.rest)
	self.rest = self.rest[size:]
	return optional.Some(idl.CodePoint(r))
}

func (self *stringRunes) Close(ctx context.Context) error {
	return nil
}

// NewUnicodeFileBody iterates over the code points of a file body.
func NewUnicodeFileBody(b idl.FileBody) idl.Iterator[idl.CodePoint] {
	return NewUnicodeFileBodyCtx(context.Background(), b)
}

// NewUnicodeFileBodyCtx is NewUnicodeFileBody with every read bound to ctx.
// Iteration ends at the first read error. Close returns that error, if any,
// and closes the body.
func NewUnicodeFileBodyCtx(ctx context.Context, b idl.FileBody) idl.Iterator[idl.CodePoint] {
	src := &bodyReader{ctx: ctx, body: b}
	return &bodyRunes{
		src: src,
		buf: bufio.NewReader(src),
	}
}

type bodyRunes struct {
	src *bodyReader
	buf *bufio.Reader
	err error
}

func (self *bodyRunes) Next(ctx context.Context) optional.Optional[idl.CodePoint] {
	if self.err != nil {
		return optional.None[idl.CodePoint]()
	}
	r, _, err := self.buf.ReadRune()
	if err != nil {
		self.err = err
		return optional.None[idl.CodePoint]()
	}
	return optional.Some(idl.CodePoint(r))
}

func (self *bodyRunes) Close(ctx context.Context) error {
	closeErr := self.src.body.Close(ctx)
	if self.err != nil && !errors.Is(self.err, io.EOF) {
		return self.err
	}
	return closeErr
}

// bodyReader exposes an idl.FileBody as an io.Reader. Bodies signal the end
// of content with io.EOF or with an exception coded CodeEOF.
type bodyReader struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *bodyReader) Read(p []byte) (int, error) {
	if err := self.ctx.Err(); err != nil {
		return 0, err
	}
	b, err := self.body.Read(self.ctx, int32(len(p)))
	n := copy(p, b)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF), exc.HasCode(err, exc.CodeEOF):
		return n, io.EOF
	default:
		return n, err
	}
}
