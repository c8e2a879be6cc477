package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabshelf/pkg/snapshot"
)

func tabURLs(tabs []Tab) []string {
	out := make([]string, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, t.URL)
	}
	return out
}

func TestMemory_CreateWindowAndTabs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	w, err := m.CreateWindow(ctx, "https://a")
	require.NoError(t, err)
	require.Len(t, w.Tabs, 1)
	assert.True(t, w.Tabs[0].Active)
	assert.Equal(t, NoGroup, w.Tabs[0].GroupID)

	_, err = m.CreateTab(ctx, CreateTabOptions{WindowID: w.ID, URL: "https://c", Index: -1})
	require.NoError(t, err)
	b, err := m.CreateTab(ctx, CreateTabOptions{WindowID: w.ID, URL: "https://b", Index: 1, Pinned: true})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Index)
	assert.True(t, b.Pinned)

	tabs, err := m.ListTabs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a", "https://b", "https://c"}, tabURLs(tabs))
	for i, tab := range tabs {
		assert.Equal(t, i, tab.Index)
	}

	_, err = m.CreateTab(ctx, CreateTabOptions{WindowID: 99, URL: "https://x"})
	assert.ErrorIs(t, err, ErrWindowNotFound)
}

func TestMemory_GroupsAndStyles(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	w, _ := m.CreateWindow(ctx, "https://a")
	b, _ := m.CreateTab(ctx, CreateTabOptions{WindowID: w.ID, URL: "https://b", Index: -1})
	other, _ := m.CreateWindow(ctx, "https://z")

	gid, err := m.GroupTabs(ctx, []int{w.Tabs[0].ID, b.ID})
	require.NoError(t, err)
	require.NoError(t, m.UpdateGroup(ctx, gid, GroupStyle{Title: "Work", Color: snapshot.ColorBlue, Collapsed: true}))

	groups, err := m.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, Group{ID: gid, WindowID: w.ID, Title: "Work", Color: snapshot.ColorBlue, Collapsed: true}, groups[0])

	tabs, _ := m.ListTabs(ctx)
	assert.Equal(t, gid, tabs[0].GroupID)
	assert.Equal(t, gid, tabs[1].GroupID)
	assert.Equal(t, NoGroup, tabs[2].GroupID)

	_, err = m.GroupTabs(ctx, []int{b.ID, other.Tabs[0].ID})
	assert.ErrorIs(t, err, ErrMixedWindows)
	_, err = m.GroupTabs(ctx, nil)
	assert.ErrorIs(t, err, ErrNoTabs)
	assert.ErrorIs(t, m.UpdateGroup(ctx, 404, GroupStyle{}), ErrGroupNotFound)
}

func TestMemory_CloseTab(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	w, _ := m.CreateWindow(ctx, "https://a")
	b, _ := m.CreateTab(ctx, CreateTabOptions{WindowID: w.ID, URL: "https://b", Index: -1})
	gid, _ := m.GroupTabs(ctx, []int{b.ID})

	require.NoError(t, m.CloseTab(ctx, b.ID))
	groups, _ := m.ListGroups(ctx)
	assert.Empty(t, groups, "a group disappears with its last tab")
	assert.ErrorIs(t, m.UpdateGroup(ctx, gid, GroupStyle{}), ErrGroupNotFound)

	require.NoError(t, m.CloseTab(ctx, w.Tabs[0].ID))
	assert.Empty(t, m.WindowIDs(), "a window closes with its last tab")
	assert.ErrorIs(t, m.CloseTab(ctx, w.Tabs[0].ID), ErrTabNotFound)
}

func TestMemory_UpdateTab(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	w, _ := m.CreateWindow(ctx, "https://a")
	b, _ := m.CreateTab(ctx, CreateTabOptions{WindowID: w.ID, URL: "https://b", Index: -1})

	require.NoError(t, m.UpdateTab(ctx, b.ID, TabUpdate{Active: Bool(true), Muted: Bool(true), URL: String("https://bb")}))

	tabs, _ := m.ListTabs(ctx)
	assert.False(t, tabs[0].Active)
	assert.True(t, tabs[1].Active)
	assert.True(t, tabs[1].Muted)
	assert.Equal(t, "https://bb", tabs[1].URL)
	assert.ErrorIs(t, m.UpdateTab(ctx, 404, TabUpdate{}), ErrTabNotFound)
}

func TestMemory_HookAndCallLog(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	m := NewMemory()
	m.Hook = FailOn("CreateWindow", 2, boom)

	_, err := m.CreateWindow(ctx, "https://a")
	require.NoError(t, err)
	_, err = m.CreateWindow(ctx, "https://b")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, m.WindowIDs())

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "CreateWindow https://a", calls[0].String())
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().CreateWindow(ctx, "https://a")
	assert.ErrorIs(t, err, context.Canceled)
}
