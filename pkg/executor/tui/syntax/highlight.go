// Package syntax renders source text with terminal colours.
package syntax

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style, or an unknown one, is requested.
const DefaultStyle = "monokai"

// Highlight colours code written in language with the named chroma style.
// Unknown languages are tokenised as plain text.
func Highlight(code, language, style string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	s := styles.Get(style)
	if style == "" || s == nil {
		s = styles.Get(DefaultStyle)
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise %s: %w", language, err)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, s, iterator); err != nil {
		return "", fmt.Errorf("failed to format %s: %w", language, err)
	}
	return buf.String(), nil
}

// HighlightJSON colours a JSON document.
func HighlightJSON(doc, style string) (string, error) {
	return Highlight(doc, "json", style)
}
