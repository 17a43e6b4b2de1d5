// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
	"gopkg.microglot.org/fnc.go/internal/iter"
)

func tok(kind idl.TokenKind, line int, start int, end int) idl.SpannedToken {
	return idl.NewSpannedToken(idl.NewToken(kind), line, start, end)
}

func ident(text string, line int, start int, end int) idl.SpannedToken {
	return idl.NewSpannedToken(idl.NewIdentifier(text), line, start, end)
}

func integer(v int64, line int, start int, end int) idl.SpannedToken {
	return idl.NewSpannedToken(idl.NewInteger(v), line, start, end)
}

func TestScanner(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []idl.SpannedToken
	}{
		{
			name:     "empty input",
			input:    "",
			expected: []idl.SpannedToken{},
		},
		{
			input:    "(",
			expected: []idl.SpannedToken{tok(idl.TokenKindLeftParen, 0, 0, 0)},
		},
		{
			input:    ")",
			expected: []idl.SpannedToken{tok(idl.TokenKindRightParen, 0, 0, 0)},
		},
		{
			input:    "{",
			expected: []idl.SpannedToken{tok(idl.TokenKindLeftCurlyBrace, 0, 0, 0)},
		},
		{
			input:    "}",
			expected: []idl.SpannedToken{tok(idl.TokenKindRightCurlyBrace, 0, 0, 0)},
		},
		{
			input:    ":",
			expected: []idl.SpannedToken{tok(idl.TokenKindColon, 0, 0, 0)},
		},
		{
			input:    "fn",
			expected: []idl.SpannedToken{tok(idl.TokenKindFn, 0, 0, 1)},
		},
		{
			input:    "return",
			expected: []idl.SpannedToken{tok(idl.TokenKindReturn, 0, 0, 5)},
		},
		{
			input:    "void",
			expected: []idl.SpannedToken{tok(idl.TokenKindVoid, 0, 0, 3)},
		},
		{
			input:    "i32",
			expected: []idl.SpannedToken{tok(idl.TokenKindI32, 0, 0, 2)},
		},
		{
			input:    "random_ident123",
			expected: []idl.SpannedToken{ident("random_ident123", 0, 0, 14)},
		},
		{
			name:     "combining mark continues an identifier",
			input:    "a\u0345b",
			expected: []idl.SpannedToken{ident("a\u0345b", 0, 0, 2)},
		},
		{
			name:     "letter number starts an identifier",
			input:    "Ⅻ",
			expected: []idl.SpannedToken{ident("Ⅻ", 0, 0, 0)},
		},
		{
			name:     "letter number inside an identifier",
			input:    "chapterⅫ",
			expected: []idl.SpannedToken{ident("chapterⅫ", 0, 0, 7)},
		},
		{
			name:     "keyword prefix is an identifier",
			input:    "fnord",
			expected: []idl.SpannedToken{ident("fnord", 0, 0, 4)},
		},
		{
			name:     "keywords are case sensitive",
			input:    "Fn",
			expected: []idl.SpannedToken{ident("Fn", 0, 0, 1)},
		},
		{
			name:     "keyword with trailing underscore",
			input:    "void_",
			expected: []idl.SpannedToken{ident("void_", 0, 0, 4)},
		},
		{
			input:    "123",
			expected: []idl.SpannedToken{integer(123, 0, 0, 2)},
		},
		{
			input:    "0",
			expected: []idl.SpannedToken{integer(0, 0, 0, 0)},
		},
		{
			name:     "leading zeros",
			input:    "007",
			expected: []idl.SpannedToken{integer(7, 0, 0, 2)},
		},
		{
			name:     "max int64",
			input:    "9223372036854775807",
			expected: []idl.SpannedToken{integer(math.MaxInt64, 0, 0, 18)},
		},
		{
			name:  "number followed by identifier",
			input: "12ab",
			expected: []idl.SpannedToken{
				integer(12, 0, 0, 1),
				ident("ab", 0, 2, 3),
			},
		},
		{
			name:  "identifiers on separate lines",
			input: "a\nb",
			expected: []idl.SpannedToken{
				ident("a", 0, 0, 0),
				ident("b", 1, 0, 0),
			},
		},
		{
			name:  "keyword then paren",
			input: "fn(",
			expected: []idl.SpannedToken{
				tok(idl.TokenKindFn, 0, 0, 1),
				tok(idl.TokenKindLeftParen, 0, 2, 2),
			},
		},
		{
			name:     "only newlines",
			input:    "\n\n\n",
			expected: []idl.SpannedToken{},
		},
		{
			name:  "unicode letters",
			input: "héllo:ñ",
			expected: []idl.SpannedToken{
				ident("héllo", 0, 0, 4),
				tok(idl.TokenKindColon, 0, 5, 5),
				ident("ñ", 0, 6, 6),
			},
		},
		{
			name: "function declaration without spaces",
			input: strings.Join([]string{
				"fn",
				"main():i32{",
				"return",
				"42",
				"}",
			}, "\n"),
			expected: []idl.SpannedToken{
				tok(idl.TokenKindFn, 0, 0, 1),
				ident("main", 1, 0, 3),
				tok(idl.TokenKindLeftParen, 1, 4, 4),
				tok(idl.TokenKindRightParen, 1, 5, 5),
				tok(idl.TokenKindColon, 1, 6, 6),
				tok(idl.TokenKindI32, 1, 7, 9),
				tok(idl.TokenKindLeftCurlyBrace, 1, 10, 10),
				tok(idl.TokenKindReturn, 2, 0, 5),
				integer(42, 3, 0, 1),
				tok(idl.TokenKindRightCurlyBrace, 4, 0, 0),
			},
		},
		{
			name:  "void parameter list",
			input: "fn\nf(x:i32):void{}",
			expected: []idl.SpannedToken{
				tok(idl.TokenKindFn, 0, 0, 1),
				ident("f", 1, 0, 0),
				tok(idl.TokenKindLeftParen, 1, 1, 1),
				ident("x", 1, 2, 2),
				tok(idl.TokenKindColon, 1, 3, 3),
				tok(idl.TokenKindI32, 1, 4, 6),
				tok(idl.TokenKindRightParen, 1, 7, 7),
				tok(idl.TokenKindColon, 1, 8, 8),
				tok(idl.TokenKindVoid, 1, 9, 12),
				tok(idl.TokenKindLeftCurlyBrace, 1, 13, 13),
				tok(idl.TokenKindRightCurlyBrace, 1, 14, 14),
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		name := testCase.name
		if name == "" {
			name = testCase.input
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			scanner := NewScanner()
			tokens, err := scanner.Tokenize(testCase.input)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, tokens)
		})
	}
}

func TestScannerErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		code     string
		location idl.Location
	}{
		{
			name:     "unknown symbol",
			input:    "@",
			code:     exc.CodeUnrecognizedLexeme,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "space",
			input:    " ",
			code:     exc.CodeUnrecognizedLexeme,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "tab",
			input:    "\t",
			code:     exc.CodeUnrecognizedLexeme,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "carriage return",
			input:    "a\r\nb",
			code:     exc.CodeUnrecognizedLexeme,
			location: idl.Location{Line: 0, Column: 1, Offset: 1},
		},
		{
			name:     "space between keyword and paren",
			input:    "fn (",
			code:     exc.CodeUnrecognizedLexeme,
			location: idl.Location{Line: 0, Column: 2, Offset: 2},
		},
		{
			name:     "symbol on second line",
			input:    "fn\nmain;",
			code:     exc.CodeUnrecognizedLexeme,
			location: idl.Location{Line: 1, Column: 4, Offset: 7},
		},
		{
			name:     "error after valid tokens",
			input:    "(){}:-",
			code:     exc.CodeUnrecognizedLexeme,
			location: idl.Location{Line: 0, Column: 5, Offset: 5},
		},
		{
			name:     "overflow",
			input:    "99999999999999999999",
			code:     exc.CodeFailedToParseInteger,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "max int64 plus one",
			input:    "9223372036854775808",
			code:     exc.CodeFailedToParseInteger,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "overflow after tokens",
			input:    "x\n:99999999999999999999",
			code:     exc.CodeFailedToParseInteger,
			location: idl.Location{Line: 1, Column: 1, Offset: 3},
		},
		// An underscore starts a number literal but is not a digit, so any
		// literal that begins with one is rejected.
		{
			name:     "lone underscore",
			input:    "_",
			code:     exc.CodeFailedToParseInteger,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "underscore then digits",
			input:    "_123",
			code:     exc.CodeFailedToParseInteger,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "underscore then letters",
			input:    "_abc",
			code:     exc.CodeFailedToParseInteger,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
		{
			name:     "non-ascii digits",
			input:    "١٢٣",
			code:     exc.CodeFailedToParseInteger,
			location: idl.Location{Line: 0, Column: 0, Offset: 0},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			scanner := NewScanner()
			tokens, err := scanner.Tokenize(testCase.input)
			require.Error(t, err)
			require.Nil(t, tokens)

			var e exc.Exception
			require.True(t, errors.As(err, &e))
			require.Equal(t, testCase.code, e.Code())
			require.Equal(t, testCase.location, e.Location().Location)
			require.Equal(t, "", e.Location().URI)

			require.Equal(t, testCase.code == exc.CodeUnrecognizedLexeme, IsUnrecognizedLexeme(err))
			require.Equal(t, testCase.code == exc.CodeFailedToParseInteger, IsFailedToParseInteger(err))
		})
	}
}

func TestScannerIntegerCause(t *testing.T) {
	t.Parallel()

	scanner := NewScanner()
	_, err := scanner.Tokenize("99999999999999999999")
	require.True(t, errors.Is(err, strconv.ErrRange))
	require.Contains(t, err.Error(), "out of range")

	_, err = scanner.Tokenize("_1")
	require.True(t, errors.Is(err, strconv.ErrSyntax))
	require.Contains(t, err.Error(), `"_1"`)
}

func TestScannerDecimalStrings(t *testing.T) {
	t.Parallel()

	values := []int64{0, 1, 9, 10, 99, 100, 12345, 1 << 31, 1<<31 - 1, 1 << 62, math.MaxInt64 - 1, math.MaxInt64}
	for x := int64(1); x < math.MaxInt64/7; x = x*7 + 3 {
		values = append(values, x)
	}
	scanner := NewScanner()
	for _, v := range values {
		for _, pad := range []string{"", "0", "000"} {
			s := pad + strconv.FormatInt(v, 10)
			t.Run(s, func(t *testing.T) {
				tokens, err := scanner.Tokenize(s)
				require.NoError(t, err)
				require.Len(t, tokens, 1)
				require.Equal(t, idl.NewInteger(v), tokens[0].Token)
				require.Equal(t, len(s)-1, tokens[0].Span.End-tokens[0].Span.Start)
				require.Equal(t, 0, tokens[0].Span.Start)
			})
		}
	}
}

// Every accepted input must be reconstructable from the token spans.
func TestScannerSpansRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"fn\nmain():i32{\nreturn\n0\n}",
		"a\nb\n\n\ncd:ef(gh){ij}",
		"héllo:wörld\n日本語(123)",
		"fn(x:i32):void{}\nfn(y:i32):i32{return\n9223372036854775807}",
		"\n\n",
		"007:x0_1",
	}
	scanner := NewScanner()
	for _, input := range inputs {
		input := input
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			t.Parallel()

			tokens, err := scanner.Tokenize(input)
			require.NoError(t, err)
			lines := strings.Split(input, "\n")
			prev := idl.Span{Line: -1}
			for _, token := range tokens {
				span := token.Span
				require.True(t, span.Start <= span.End)
				if span.Line == prev.Line {
					require.Greater(t, span.Start, prev.End)
				} else {
					require.Greater(t, span.Line, prev.Line)
				}
				prev = span

				line := []rune(lines[span.Line])
				text := string(line[span.Start : span.End+1])
				if token.Token.Kind == idl.TokenKindInteger {
					v, err := strconv.ParseInt(text, 10, 64)
					require.NoError(t, err)
					require.Equal(t, token.Token.Integer, v)
					continue
				}
				require.Equal(t, token.Token.Lexeme(), text)
			}
		})
	}
}

func TestScannerReuse(t *testing.T) {
	t.Parallel()

	scanner := NewScanner()
	first, err := scanner.Tokenize("a\nb")
	require.NoError(t, err)
	second, err := scanner.Tokenize("a\nb")
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = scanner.Tokenize("@")
	require.Error(t, err)
	third, err := scanner.Tokenize("a\nb")
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestScannerConcurrent(t *testing.T) {
	t.Parallel()

	scanner := NewScanner()
	input := strings.Repeat("fn\nmain():i32{\nreturn\n42\n}\n", 50)
	expected, err := scanner.Tokenize(input)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]idl.SpannedToken, 8)
	errs := make([]error, 8)
	for x := 0; x < len(results); x = x + 1 {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			results[x], errs[x] = scanner.Tokenize(input)
		}(x)
	}
	wg.Wait()
	for x := 0; x < len(results); x = x + 1 {
		require.NoError(t, errs[x])
		require.Equal(t, expected, results[x])
	}
}

func TestScannerCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scanner := NewScanner()
	points := iter.NewLookahead(iter.NewUnicodeString("fn"), lexerFnLookahead)
	tokens, err := scanner.TokenizeCtx(ctx, "/main.fn", points)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, tokens)
}

var spannedTokenEscape []idl.SpannedToken

// BenchmarkScanner is included mostly for future analysis of the scanner
// performance such as minimizing allocations.
func BenchmarkScanner(b *testing.B) {
	scanner := NewScanner()
	input := strings.Repeat(benchSource, 100)
	var tokens []idl.SpannedToken
	var err error
	b.ResetTimer()
	for x := 0; x < b.N; x = x + 1 {
		tokens, err = scanner.Tokenize(input)
		if err != nil {
			b.Fatal(err)
		}
	}
	spannedTokenEscape = tokens
}

var benchSource = `fn
add(a:i32
b:i32):i32{
return
a
}
fn
main():void{
add(1
2)
}
`
