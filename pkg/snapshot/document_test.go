package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDocument builds a document with two windows:
//
//	window 1: ungrouped u0 u1 u2 u3, group g1 (a0 a1), group g2 (b0)
//	window 2: ungrouped w0, group g5 (c0 c1)
func newTestDocument(t *testing.T) *Document {
	t.Helper()
	s := &Snapshot{
		Groups: []*Group{
			{ID: "g1", Title: "Alpha", Color: ColorBlue, WindowID: 1},
			{ID: "g2", Title: "Beta", Color: ColorRed, WindowID: 1},
			{ID: "g5", Title: "Gamma", Color: ColorCyan, WindowID: 2},
		},
		Tabs: []*Tab{
			{URL: "https://u0", WindowID: 1, Index: 0},
			{URL: "https://u1", WindowID: 1, Index: 1},
			{URL: "https://u2", WindowID: 1, Index: 2},
			{URL: "https://u3", WindowID: 1, Index: 3},
			{URL: "https://a0", WindowID: 1, Index: 0, GroupID: "g1"},
			{URL: "https://a1", WindowID: 1, Index: 1, GroupID: "g1"},
			{URL: "https://b0", WindowID: 1, Index: 0, GroupID: "g2"},
			{URL: "https://w0", WindowID: 2, Index: 0},
			{URL: "https://c0", WindowID: 2, Index: 0, GroupID: "g5"},
			{URL: "https://c1", WindowID: 2, Index: 1, GroupID: "g5"},
		},
	}
	Repair(s)
	return Load(s, nil)
}

func tabByURL(t *testing.T, d *Document, url string) *Tab {
	t.Helper()
	for _, tab := range d.Tabs() {
		if tab.URL == url {
			return tab
		}
	}
	t.Fatalf("no tab with url %s", url)
	return nil
}

func urls(tabs []*Tab) []string {
	out := make([]string, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, t.URL)
	}
	return out
}

func TestLoad_DerivesWindows(t *testing.T) {
	d := newTestDocument(t)
	assert.Equal(t, []int{1, 2}, d.WindowIDs())
}

func TestLoad_KeepsGivenWindowsAndAddsReferenced(t *testing.T) {
	s := &Snapshot{Tabs: []*Tab{{URL: "https://x", WindowID: 4}}}
	Repair(s)

	d := Load(s, []int{9, 3})

	assert.Equal(t, []int{9, 3, 4}, d.WindowIDs())
	assert.Equal(t, 10, d.CreateWindow())
}

func TestRefs(t *testing.T) {
	d := newTestDocument(t)
	tab := tabByURL(t, d, "https://u1")

	ref := d.Ref(tab)
	assert.NotEmpty(t, ref)
	assert.Equal(t, ref, d.Ref(tab), "refs are stable")

	got, ok := d.TabByRef(ref)
	require.True(t, ok)
	assert.Same(t, tab, got)

	require.NoError(t, d.DeleteTab(tab))
	_, ok = d.TabByRef(ref)
	assert.False(t, ok, "deleted tabs release their ref")
}

func TestQueries(t *testing.T) {
	d := newTestDocument(t)

	groups := d.GroupsOfWindow(1)
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Equal(t, "g2", groups[1].ID)

	assert.Equal(t, []string{"https://a0", "https://a1"}, urls(d.TabsOfGroup(1, "g1")))
	assert.Empty(t, d.TabsOfGroup(2, "g1"))
	assert.Equal(t, []string{"https://u0", "https://u1", "https://u2", "https://u3"}, urls(d.UngroupedTabsOfWindow(1)))
	assert.Equal(t, []string{"https://w0", "https://c0", "https://c1"}, urls(d.TabsOfWindow(2)))
}

func TestDuplicateURLSet(t *testing.T) {
	s := &Snapshot{}
	for _, u := range []string{"a", "b", "a", "c", "b", "b"} {
		s.Tabs = append(s.Tabs, &Tab{URL: u, WindowID: 1})
	}
	Repair(s)
	d := Load(s, nil)

	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, d.DuplicateURLSet())
}
