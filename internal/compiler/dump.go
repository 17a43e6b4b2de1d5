// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.microglot.org/fnc.go/internal/config"
	"gopkg.microglot.org/fnc.go/internal/exc"
	"gopkg.microglot.org/fnc.go/internal/idl"
)

// DumpFileName returns the name of the dump written next to the given source
// file when dumps go to an output directory.
func DumpFileName(uri string, format string) string {
	if format == config.FormatJSON {
		return uri + ".tokens.json"
	}
	return uri + ".tokens"
}

// DumpTokens renders the tokens of a lexed file in the given format.
func DumpTokens(w io.Writer, format string, file *idl.LexedFile) error {
	switch format {
	case config.FormatText:
		return dumpText(w, file)
	case config.FormatJSON:
		return dumpJSON(w, file)
	default:
		return exc.Newf(exc.Location{URI: file.URI}, exc.CodeInvalidConfig, "unknown dump format %q", format)
	}
}

// DumpTokensString is DumpTokens into a string.
func DumpTokensString(format string, file *idl.LexedFile) (string, error) {
	var b strings.Builder
	if err := DumpTokens(&b, format, file); err != nil {
		return "", err
	}
	return b.String(), nil
}

func dumpText(w io.Writer, file *idl.LexedFile) error {
	for _, token := range file.Tokens {
		if _, err := fmt.Fprintf(w, "%-24s'%s' %s\n", token.Token.Kind, token.Token.Lexeme(), token.Span); err != nil {
			return exc.WrapUnknown(exc.Location{URI: file.URI}, err)
		}
	}
	return nil
}

// Integer values are only rendered through their lexeme because JSON numbers
// cannot hold every int64 exactly.
func dumpJSON(w io.Writer, file *idl.LexedFile) error {
	tokens := make([]interface{}, 0, len(file.Tokens))
	for _, token := range file.Tokens {
		tokens = append(tokens, map[string]interface{}{
			"kind":   token.Token.Kind.String(),
			"lexeme": token.Token.Lexeme(),
			"line":   token.Span.Line,
			"start":  token.Span.Start,
			"end":    token.Span.End,
		})
	}
	doc, err := structpb.NewStruct(map[string]interface{}{
		"uri":    file.URI,
		"tokens": tokens,
	})
	if err != nil {
		return exc.WrapUnknown(exc.Location{URI: file.URI}, err)
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return exc.WrapUnknown(exc.Location{URI: file.URI}, err)
	}
	if _, err = w.Write(append(b, '\n')); err != nil {
		return exc.WrapUnknown(exc.Location{URI: file.URI}, err)
	}
	return nil
}
