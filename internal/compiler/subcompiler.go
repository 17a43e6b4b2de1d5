// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"

	"gopkg.microglot.org/fnc.go/internal/compiler/fn"
	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
)

// SubCompiler handles every file of a single FileKind.
type SubCompiler interface {
	CompileFile(ctx context.Context, r exc.Reporter, file idl.File) (*idl.LexedFile, error)
}

func DefaultSubCompilers() map[idl.FileKind]SubCompiler {
	return map[idl.FileKind]SubCompiler{
		idl.FileKindFn: &SubCompilerFn{},
	}
}

// SubCompilerFn tokenizes fn source files. There is no parser yet so the
// token sequence is the final output.
type SubCompilerFn struct{}

func (self *SubCompilerFn) CompileFile(ctx context.Context, r exc.Reporter, file idl.File) (*idl.LexedFile, error) {
	return fn.NewLexerFn(r).Lex(ctx, file)
}
