package codec

import (
	"strconv"
	"strings"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// MarkdownMimeType is the media type of the exported table.
const MarkdownMimeType = "text/markdown"

const (
	tableHeader  = "||Name|URL|Tab Group|"
	tableDivider = "|---|---|---|---|"
)

// TableEntry is one tab fed to BuildTable, in traversal order.
type TableEntry struct {
	// TabID is the browser tab id, or -1 for tabs that only exist in a document.
	TabID      int
	Title      string
	URL        string
	GroupTitle string
}

// TableRow is a surviving, numbered entry.
type TableRow struct {
	Seq        int
	Title      string
	URL        string
	GroupTitle string
}

// Table is the de-duplicated tab list.
type Table struct {
	Rows []TableRow
	// Duplicates are entries whose canonical URL was already emitted.
	Duplicates []TableEntry
	// Skipped are entries dropped by a skip pattern. They are never flagged as
	// duplicates.
	Skipped []TableEntry
}

// BuildTable canonicalizes every entry, keeps the first occurrence of each
// canonical URL and flags later occurrences for removal. Entries with an
// empty URL are dropped silently.
func BuildTable(entries []TableEntry, canon *Canonicalizer) *Table {
	t := &Table{}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		url := canon.Canonical(e.URL)
		if url == "" {
			continue
		}
		if canon.Skipped(url) {
			t.Skipped = append(t.Skipped, e)
			continue
		}
		if _, dup := seen[url]; dup {
			t.Duplicates = append(t.Duplicates, e)
			continue
		}
		seen[url] = struct{}{}
		t.Rows = append(t.Rows, TableRow{
			Seq:        len(t.Rows) + 1,
			Title:      strings.ReplaceAll(e.Title, "|", ":"),
			URL:        url,
			GroupTitle: e.GroupTitle,
		})
	}
	return t
}

// Markdown renders the table. Rows are joined by a single newline with no
// trailing newline.
func (t *Table) Markdown() string {
	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, tableHeader, tableDivider)
	for _, r := range t.Rows {
		lines = append(lines, "|"+strconv.Itoa(r.Seq)+"|"+r.Title+"|"+r.URL+"|"+r.GroupTitle+"|")
	}
	return strings.Join(lines, "\n")
}

// DocumentEntries lists the tabs of an offline document in export order.
func DocumentEntries(doc *snapshot.Document) []TableEntry {
	var out []TableEntry
	for _, windowID := range doc.WindowIDs() {
		for _, tab := range doc.TabsOfWindow(windowID) {
			e := TableEntry{TabID: -1, Title: tab.Title, URL: tab.URL}
			if tab.IsGrouped() {
				if g, ok := doc.Group(string(tab.GroupID)); ok {
					e.GroupTitle = g.Title
				}
			}
			out = append(out, e)
		}
	}
	return out
}
