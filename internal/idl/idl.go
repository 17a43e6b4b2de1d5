// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"context"
	"fmt"

	"gopkg.microglot.org/fnc.go/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindFn
)

func (k FileKind) String() string {
	switch k {
	case FileKindNone:
		return "none"
	case FileKindFn:
		return "fn"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

type CompileRequest struct {
	Files []string
}

type CompileResponse struct {
	Image *Image
}

// Image is the result of lexing a set of targets. Files are ordered by URI.
type Image struct {
	Files []*LexedFile
}

type LexedFile struct {
	URI    string
	Tokens []SpannedToken
}

// Location identifies a single character in a source file. Line and Column
// are zero-indexed and counted in code points. Offset is the zero-indexed
// code point offset from the start of the file.
type Location struct {
	Line   int32
	Column int32
	Offset int64
}

type Lexer interface {
	Lex(ctx context.Context, f File) (*LexedFile, error)
}
