// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/fnc.go/internal/idl"
)

func TestExceptionError(t *testing.T) {
	t.Parallel()

	e := New(Location{URI: "/main.fn", Location: idl.Location{Line: 2, Column: 5}}, CodeUnrecognizedLexeme, "unrecognized lexeme '@'")
	require.Equal(t, "/main.fn:2:5 -- M0008: unrecognized lexeme '@'", e.Error())
	require.Equal(t, CodeUnrecognizedLexeme, e.Code())
	require.Equal(t, "unrecognized lexeme '@'", e.Message())
	require.Equal(t, int32(2), e.Location().Line)

	anon := New(Location{}, CodeUnknownFatal, "boom")
	require.Equal(t, "<input>:0:0 -- M0000: boom", anon.Error())
}

func TestExceptionWrap(t *testing.T) {
	t.Parallel()

	require.Nil(t, Wrap(Location{}, CodeUnknownFatal, nil))
	require.Nil(t, Wrapf(Location{}, CodeUnknownFatal, nil, "ignored"))

	_, parseErr := strconv.ParseInt("99999999999999999999", 10, 64)
	require.Error(t, parseErr)

	wrapped := Wrapf(Location{}, CodeFailedToParseInteger, parseErr, "failed to parse integer %q", "99999999999999999999")
	require.True(t, errors.Is(wrapped, strconv.ErrRange))
	require.Equal(t, `failed to parse integer "99999999999999999999"`, wrapped.Message())

	inner := New(Location{URI: "/a.fn"}, CodeFileNotFound, "missing")
	outer := Wrap(Location{URI: "/b.fn"}, CodeUnknownFatal, inner)
	require.Equal(t, "missing", outer.Message())
	require.True(t, errors.Is(outer, inner))

	plain := WrapUnknown(Location{}, errors.New("plain"))
	require.Equal(t, CodeUnknownFatal, plain.Code())
	require.Equal(t, "plain", plain.Message())
}

func TestHasCode(t *testing.T) {
	t.Parallel()

	inner := New(Location{}, CodeFailedToParseInteger, "bad")
	outer := Wrap(Location{}, CodeUnknownFatal, inner)
	require.True(t, HasCode(inner, CodeFailedToParseInteger))
	require.True(t, HasCode(outer, CodeUnknownFatal))
	require.True(t, HasCode(outer, CodeFailedToParseInteger))
	require.True(t, HasCode(fmt.Errorf("context: %w", inner), CodeFailedToParseInteger))
	require.False(t, HasCode(inner, CodeUnrecognizedLexeme))
	require.False(t, HasCode(errors.New("plain"), CodeUnknownFatal))
	require.False(t, HasCode(nil, CodeUnknownFatal))
}

func TestReporter(t *testing.T) {
	t.Parallel()

	r := NewReporter([]string{CodeUnexpectedEOF})
	require.Nil(t, r.Report(nil))
	require.Nil(t, r.Report(New(Location{URI: "/c.fn"}, CodeUnexpectedEOF, "eof")))

	fatal := New(Location{URI: "/b.fn", Location: idl.Location{Line: 1}}, CodeUnrecognizedLexeme, "space")
	require.Equal(t, fatal, r.Report(fatal))

	var wg sync.WaitGroup
	for x := 0; x < 10; x = x + 1 {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			_ = r.Report(New(Location{URI: "/a.fn", Location: idl.Location{Line: int32(x)}}, CodeUnrecognizedLexeme, "tab"))
		}(x)
	}
	wg.Wait()

	reported := r.Reported()
	require.Len(t, reported, 12)
	for x := 0; x < 10; x = x + 1 {
		require.Equal(t, "/a.fn", reported[x].Location().URI)
		require.Equal(t, int32(x), reported[x].Location().Line)
	}
	require.Equal(t, "/b.fn", reported[10].Location().URI)
	require.Equal(t, "/c.fn", reported[11].Location().URI)
}
