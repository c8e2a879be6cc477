package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlightJSON(t *testing.T) {
	doc := `{"url": "https://a.example", "pinned": true}`

	for _, style := range []string{"", DefaultStyle, "github", "no-such-style"} {
		t.Run("style "+style, func(t *testing.T) {
			out, err := HighlightJSON(doc, style)
			require.NoError(t, err)
			assert.Contains(t, out, "\x1b[", "output carries ANSI colours")
			assert.Contains(t, out, "https://a.example")
		})
	}
}

func TestHighlight_UnknownLanguage(t *testing.T) {
	out, err := Highlight("plain words", "no-such-language", "")
	require.NoError(t, err)
	assert.Contains(t, out, "plain words")
}
