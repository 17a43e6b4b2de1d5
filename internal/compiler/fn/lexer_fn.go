// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fn

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
	"gopkg.microglot.org/fnc.go/internal/iter"
	"gopkg.microglot.org/fnc.go/internal/optional"
)

const (
	lexerFnLookahead = 1
)

// Scanner converts fn source text into spanned tokens. A Scanner only holds
// the keyword table, which is never modified after construction, so a single
// Scanner may be used from multiple goroutines.
type Scanner struct {
	keywords map[string]idl.TokenKind
}

func NewScanner() *Scanner {
	return &Scanner{
		keywords: map[string]idl.TokenKind{
			"fn":     idl.TokenKindFn,
			"i32":    idl.TokenKindI32,
			"return": idl.TokenKindReturn,
			"void":   idl.TokenKindVoid,
		},
	}
}

// Tokenize scans the complete source text. The result is either every token
// in source order or the first lexical error, never both.
func (self *Scanner) Tokenize(source string) ([]idl.SpannedToken, error) {
	points := iter.NewLookahead(iter.NewUnicodeString(source), lexerFnLookahead)
	return self.TokenizeCtx(context.Background(), "", points)
}

// TokenizeCtx is the same as Tokenize but reads code points from the given
// stream. The uri is only used to locate errors. The stream is not closed.
func (self *Scanner) TokenizeCtx(ctx context.Context, uri string, points idl.Lookahead[idl.CodePoint]) ([]idl.SpannedToken, error) {
	state := &scanState{
		uri:      uri,
		body:     points,
		keywords: self.keywords,
		tokens:   []idl.SpannedToken{},
	}
	return state.run(ctx)
}

// IsUnrecognizedLexeme reports whether err was caused by a character that
// does not start any token.
func IsUnrecognizedLexeme(err error) bool {
	return exc.HasCode(err, exc.CodeUnrecognizedLexeme)
}

// IsFailedToParseInteger reports whether err was caused by a number literal
// that is not a valid 64-bit signed integer.
func IsFailedToParseInteger(err error) bool {
	return exc.HasCode(err, exc.CodeFailedToParseInteger)
}

// scanState holds the counters for a single Tokenize call.
type scanState struct {
	uri      string
	body     idl.Lookahead[idl.CodePoint]
	keywords map[string]idl.TokenKind
	tokens   []idl.SpannedToken
	char     int64 // characters consumed from the whole input
	col      int   // characters consumed from the current line
	line     int
}

func (self *scanState) run(ctx context.Context) ([]idl.SpannedToken, error) {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		if err := self.scanToken(ctx, rune(point.Value())); err != nil {
			return nil, err
		}
	}
	// A canceled file read looks like the end of input to the iterator.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return self.tokens, nil
}

func (self *scanState) scanToken(ctx context.Context, r rune) error {
	switch r {
	case '(':
		self.single(idl.TokenKindLeftParen)
	case ')':
		self.single(idl.TokenKindRightParen)
	case '{':
		self.single(idl.TokenKindLeftCurlyBrace)
	case '}':
		self.single(idl.TokenKindRightCurlyBrace)
	case ':':
		self.single(idl.TokenKindColon)
	case '\n':
		self.line = self.line + 1
		self.col = 0
	default:
		switch {
		case isAlphabetic(r):
			self.scanIdentifier(ctx, r)
		case unicode.IsNumber(r) || r == '_':
			// An underscore may start a number but never continues one, and
			// it is not a digit, so such a literal always fails to parse.
			return self.scanNumber(ctx, r)
		default:
			return exc.Newf(self.location(self.col-1), exc.CodeUnrecognizedLexeme, "unrecognized lexeme %q", r)
		}
	}
	return nil
}

func (self *scanState) single(kind idl.TokenKind) {
	self.tokens = append(self.tokens, idl.NewSpannedTokenSingle(idl.NewToken(kind), self.line, self.col-1))
}

func (self *scanState) scanIdentifier(ctx context.Context, r rune) {
	start := self.col - 1
	var builder strings.Builder
	_, _ = builder.WriteRune(r)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			break
		}
		c := rune(n.Value())
		if !isAlphabetic(c) && !unicode.IsNumber(c) && c != '_' {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(c)
	}
	text := builder.String()
	tok := idl.NewIdentifier(text)
	if kind, ok := self.keywords[text]; ok {
		tok = idl.NewToken(kind)
	}
	self.tokens = append(self.tokens, idl.NewSpannedToken(tok, self.line, start, self.col-1))
}

func (self *scanState) scanNumber(ctx context.Context, r rune) error {
	start := self.col - 1
	var builder strings.Builder
	_, _ = builder.WriteRune(r)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() || !unicode.IsNumber(rune(n.Value())) {
			break
		}
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
	text := builder.String()
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		reason := "not a decimal integer"
		if errors.Is(err, strconv.ErrRange) {
			reason = "out of range for a 64-bit signed integer"
		}
		return exc.Wrapf(self.location(start), exc.CodeFailedToParseInteger, err, "failed to parse integer %q: %s", text, reason)
	}
	self.tokens = append(self.tokens, idl.NewSpannedToken(idl.NewInteger(v), self.line, start, self.col-1))
	return nil
}

// isAlphabetic reports the Unicode Alphabetic property, which adds letter
// numbers such as Ⅻ and combining marks such as U+0345 to the letters.
func isAlphabetic(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) || unicode.Is(unicode.Other_Alphabetic, r)
}

func (self *scanState) next(ctx context.Context) optional.Optional[idl.CodePoint] {
	point := self.body.Next(ctx)
	if point.IsPresent() {
		self.char = self.char + 1
		self.col = self.col + 1
	}
	return point
}

// location returns the position of the character at the given column of the
// current line.
func (self *scanState) location(col int) exc.Location {
	return exc.Location{
		URI: self.uri,
		Location: idl.Location{
			Line:   int32(self.line),
			Column: int32(col),
			Offset: self.char - int64(self.col-col),
		},
	}
}
