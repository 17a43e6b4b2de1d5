// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"context"
	"io"
	"strings"

	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
)

// NewFileString wraps static string content in idl.File. The kind is derived
// from the path extension.
func NewFileString(path string, content string) idl.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}, KindOf(path))
}

type fileIOFunc struct {
	path string
	kind idl.FileKind
	body func() (io.ReadCloser, error)
}

// NewFileFN is intended to wrap actual file based content in the idl.File
// interface. The given body function is used each time there is a call to the
// idl.File.Body method so it must return a new io.ReadCloser handle.
func NewFileFN(path string, body func() (io.ReadCloser, error), kind idl.FileKind) idl.File {
	return &fileIOFunc{
		path: path,
		kind: kind,
		body: body,
	}
}

func (f *fileIOFunc) Path(ctx context.Context) string {
	return f.path
}

func (f *fileIOFunc) Kind(ctx context.Context) idl.FileKind {
	return f.kind
}

func (f *fileIOFunc) Body(ctx context.Context) (idl.FileBody, error) {
	rc, err := f.body()
	if err != nil {
		return nil, pathErr(f.path, err)
	}
	return &ioFileBody{
		r:   bufio.NewReader(rc),
		c:   rc,
		uri: f.path,
	}, nil
}

// ioFileBody adapts an io.ReadCloser to idl.FileBody. The end of the content
// is reported as an exception with CodeEOF that wraps io.EOF.
type ioFileBody struct {
	r   io.Reader
	c   io.Closer
	uri string
	b   []byte
}

func (self *ioFileBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(self.b) < int(size) {
		self.b = make([]byte, size)
	}
	count, err := self.r.Read(self.b[:size])
	if err != nil && err != io.EOF {
		return nil, exc.WrapUnknown(exc.Location{URI: self.uri}, err)
	}
	if err == io.EOF {
		return self.b[:count], exc.Wrap(exc.Location{URI: self.uri}, exc.CodeEOF, err)
	}
	return self.b[:count], nil
}

func (self *ioFileBody) Close(ctx context.Context) error {
	return self.c.Close()
}
