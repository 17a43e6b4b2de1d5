// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fn

import (
	"context"
	"errors"

	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
	"gopkg.microglot.org/fnc.go/internal/iter"
)

var _ idl.Lexer = (*LexerFn)(nil)

// LexerFn tokenizes whole fn source files. Every failure is also sent to the
// reporter so that callers lexing many files can present them together.
type LexerFn struct {
	scanner  *Scanner
	reporter exc.Reporter
}

func NewLexerFn(reporter exc.Reporter) *LexerFn {
	return &LexerFn{
		scanner:  NewScanner(),
		reporter: reporter,
	}
}

// Lex returns nil and no error when the failure was reported as non-fatal.
func (self *LexerFn) Lex(ctx context.Context, f idl.File) (*idl.LexedFile, error) {
	uri := f.Path(ctx)
	b, err := f.Body(ctx)
	if err != nil {
		return nil, self.report(ctx, uri, err)
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerFnLookahead)
	tokens, err := self.scanner.TokenizeCtx(ctx, uri, points)
	closeErr := points.Close(ctx)
	if err != nil {
		return nil, self.report(ctx, uri, err)
	}
	if closeErr != nil {
		return nil, self.report(ctx, uri, closeErr)
	}
	return &idl.LexedFile{
		URI:    uri,
		Tokens: tokens,
	}, nil
}

// Cancellation is returned as-is and never reported.
func (self *LexerFn) report(ctx context.Context, uri string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var e exc.Exception
	if !errors.As(err, &e) {
		e = exc.WrapUnknown(exc.Location{URI: uri}, err)
	}
	if reported := self.reporter.Report(e); reported != nil {
		return reported
	}
	return nil
}
