// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"fmt"
	"strconv"
)

type TokenKind uint16

const (
	TokenKindUnknown         TokenKind = 0
	TokenKindFn              TokenKind = 1
	TokenKindReturn          TokenKind = 2
	TokenKindVoid            TokenKind = 3
	TokenKindI32             TokenKind = 4
	TokenKindLeftParen       TokenKind = 5
	TokenKindRightParen      TokenKind = 6
	TokenKindLeftCurlyBrace  TokenKind = 7
	TokenKindRightCurlyBrace TokenKind = 8
	TokenKindColon           TokenKind = 9
	TokenKindIdentifier      TokenKind = 10
	TokenKindInteger         TokenKind = 11
)

var tokenKindNames = map[TokenKind]string{
	TokenKindUnknown:         "Unknown",
	TokenKindFn:              "Fn",
	TokenKindReturn:          "Return",
	TokenKindVoid:            "Void",
	TokenKindI32:             "I32",
	TokenKindLeftParen:       "LeftParen",
	TokenKindRightParen:      "RightParen",
	TokenKindLeftCurlyBrace:  "LeftCurlyBrace",
	TokenKindRightCurlyBrace: "RightCurlyBrace",
	TokenKindColon:           "Colon",
	TokenKindIdentifier:      "Identifier",
	TokenKindInteger:         "Integer",
}

// Spellings of every kind with a fixed lexeme.
var tokenKindSpellings = map[TokenKind]string{
	TokenKindFn:              "fn",
	TokenKindReturn:          "return",
	TokenKindVoid:            "void",
	TokenKindI32:             "i32",
	TokenKindLeftParen:       "(",
	TokenKindRightParen:      ")",
	TokenKindLeftCurlyBrace:  "{",
	TokenKindRightCurlyBrace: "}",
	TokenKindColon:           ":",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// IsKeyword reports whether the kind is a reserved word.
func (k TokenKind) IsKeyword() bool {
	switch k {
	case TokenKindFn, TokenKindReturn, TokenKindVoid, TokenKindI32:
		return true
	default:
		return false
	}
}

// Token is a single lexeme category. Text is only set for identifiers and
// Integer is only set for integer literals so that two tokens are equal
// exactly when their kind and payload are equal.
type Token struct {
	Kind    TokenKind
	Text    string
	Integer int64
}

// NewToken returns a token of a kind that carries no payload.
func NewToken(kind TokenKind) Token {
	return Token{Kind: kind}
}

func NewIdentifier(text string) Token {
	return Token{Kind: TokenKindIdentifier, Text: text}
}

func NewInteger(v int64) Token {
	return Token{Kind: TokenKindInteger, Integer: v}
}

func (t Token) Equal(other Token) bool {
	return t == other
}

// Lexeme returns the source spelling of the token.
func (t Token) Lexeme() string {
	switch t.Kind {
	case TokenKindIdentifier:
		return t.Text
	case TokenKindInteger:
		return strconv.FormatInt(t.Integer, 10)
	default:
		return tokenKindSpellings[t.Kind]
	}
}

func (t Token) String() string {
	switch t.Kind {
	case TokenKindIdentifier:
		return fmt.Sprintf("Identifier(%q)", t.Text)
	case TokenKindInteger:
		return fmt.Sprintf("Integer(%d)", t.Integer)
	default:
		return t.Kind.String()
	}
}

// Span locates a lexeme within a single line. All values are zero-indexed
// and Start and End are inclusive code point offsets from the beginning of
// the line.
type Span struct {
	Line  int
	Start int
	End   int
}

// Len returns the number of code points covered by the span.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.Line, s.Start, s.End)
}

type SpannedToken struct {
	Token Token
	Span  Span
}

func NewSpannedToken(tok Token, line int, start int, end int) SpannedToken {
	return SpannedToken{
		Token: tok,
		Span: Span{
			Line:  line,
			Start: start,
			End:   end,
		},
	}
}

// NewSpannedTokenSingle returns a token that covers exactly one character.
func NewSpannedTokenSingle(tok Token, line int, pos int) SpannedToken {
	return NewSpannedToken(tok, line, pos, pos)
}

func (t SpannedToken) Equal(other SpannedToken) bool {
	return t == other
}
