package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable_DeduplicatesFirstWins(t *testing.T) {
	entries := []TableEntry{
		{TabID: 1, Title: "X", URL: "https://x"},
		{TabID: 2, Title: "Y", URL: "https://y"},
		{TabID: 3, Title: "X again", URL: "https://x"},
	}

	table := BuildTable(entries, DefaultCanonicalizer())

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "https://x", table.Rows[0].URL)
	assert.Equal(t, "X", table.Rows[0].Title)
	assert.Equal(t, "https://y", table.Rows[1].URL)
	assert.Equal(t, []TableEntry{entries[2]}, table.Duplicates)
}

func TestBuildTable_SkipsEmptyURLs(t *testing.T) {
	entries := []TableEntry{
		{TabID: 1, URL: ""},
		{TabID: 2, URL: "https://a"},
		{TabID: 3, URL: ""},
	}

	table := BuildTable(entries, DefaultCanonicalizer())

	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1, table.Rows[0].Seq)
	assert.Empty(t, table.Duplicates, "empty URLs are never flagged")
}

func TestBuildTable_CanonicalizesBeforeComparing(t *testing.T) {
	entries := []TableEntry{
		{TabID: 1, Title: "Kettle", URL: "https://www.amazon.com/Steel-Kettle/dp/B00ABC123/ref=sr_1_1?keywords=kettle"},
		{TabID: 2, Title: "Kettle", URL: "https://www.amazon.com/Steel-Kettle/dp/B00ABC123/?th=1&psc=1"},
	}

	table := BuildTable(entries, DefaultCanonicalizer())

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "https://www.amazon.com/Steel-Kettle/dp/B00ABC123/", table.Rows[0].URL)
	require.Len(t, table.Duplicates, 1)
	assert.Equal(t, 2, table.Duplicates[0].TabID)
}

func TestTable_Markdown(t *testing.T) {
	entries := []TableEntry{
		{TabID: 1, Title: "Go | Docs", URL: "https://go.dev/doc", GroupTitle: "Work"},
		{TabID: 2, Title: "News", URL: "https://news.example"},
	}

	got := BuildTable(entries, nil).Markdown()

	want := "||Name|URL|Tab Group|\n" +
		"|---|---|---|---|\n" +
		"|1|Go : Docs|https://go.dev/doc|Work|\n" +
		"|2|News|https://news.example||"
	assert.Equal(t, want, got)
}

func TestTable_MarkdownEmpty(t *testing.T) {
	assert.Equal(t, "||Name|URL|Tab Group|\n|---|---|---|---|", BuildTable(nil, nil).Markdown())
}

func TestDocumentEntries(t *testing.T) {
	entries := DocumentEntries(sampleDocument(t))

	require.Len(t, entries, 6)
	assert.Equal(t, "https://a", entries[0].URL)
	assert.Equal(t, -1, entries[0].TabID)
	assert.Equal(t, "", entries[0].GroupTitle)
	assert.Equal(t, "Work", entries[2].GroupTitle)
	assert.Equal(t, "Play", entries[5].GroupTitle)
}

func TestCanonicalizer(t *testing.T) {
	c := DefaultCanonicalizer()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain url untouched", "https://example.com/a?b=c", "https://example.com/a?b=c"},
		{"amazon product", "https://www.amazon.com/Some-Thing/dp/B0123/ref=abc", "https://www.amazon.com/Some-Thing/dp/B0123/"},
		{"amazon already canonical", "https://www.amazon.com/x/dp/B0123/", "https://www.amazon.com/x/dp/B0123/"},
		{"amazon without trailing slash", "https://www.amazon.com/x/dp/B0123", "https://www.amazon.com/x/dp/B0123"},
		{"other amazon host", "https://smile.amazon.com/x/dp/B0123/ref", "https://smile.amazon.com/x/dp/B0123/ref"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Canonical(tt.url))
		})
	}
}

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRules(t, `
rewrite:
  - name: youtube
    pattern: '(?P<canonical>https://www\.youtube\.com/watch\?v=[^&]+).*'
skip:
  - 'chrome://*'
`)

	c, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, "https://www.youtube.com/watch?v=abc", c.Canonical("https://www.youtube.com/watch?v=abc&t=42s"))
	assert.Equal(t, "https://www.amazon.com/x/dp/B1/", c.Canonical("https://www.amazon.com/x/dp/B1/ref"), "default rule is kept")
	assert.True(t, c.Skipped("chrome://newtab/"))
	assert.False(t, c.Skipped("https://chrome.com"))

	table := BuildTable([]TableEntry{
		{TabID: 1, URL: "chrome://newtab/"},
		{TabID: 2, URL: "chrome://newtab/"},
	}, c)
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Duplicates)
	assert.Len(t, table.Skipped, 2)
}

func TestLoadRules_OverridesDefaultByName(t *testing.T) {
	path := writeRules(t, `
rewrite:
  - name: amazon-product
    pattern: '(?P<canonical>https://www\.amazon\.com/dp/[^/?]+).*'
`)

	c, err := LoadRules(path)
	require.NoError(t, err)

	long := "https://www.amazon.com/x/dp/B1/ref"
	assert.Equal(t, long, c.Canonical(long))
	assert.Equal(t, "https://www.amazon.com/dp/B1", c.Canonical("https://www.amazon.com/dp/B1?tag=x"))
}

func TestLoadRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", "rewrite:\n  - pattern: '(?P<canonical>x)'\n"},
		{"missing pattern", "rewrite:\n  - name: r\n"},
		{"bad regex", "rewrite:\n  - name: r\n    pattern: '(?P<canonical>x'\n"},
		{"no canonical group", "rewrite:\n  - name: r\n    pattern: 'x(y)'\n"},
		{"empty skip", "skip:\n  - ''\n"},
		{"bad yaml", "rewrite: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRules(writeRules(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
