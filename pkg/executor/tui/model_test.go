package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tabshelf/pkg/autosave"
	"github.com/entrhq/tabshelf/pkg/codec"
	"github.com/entrhq/tabshelf/pkg/editor"
)

const fixture = `{
	"groups": [{"id": "g1", "title": "Work", "color": "blue", "windowId": 1}],
	"tabs": [
		{"url": "https://a.example", "title": "A", "windowId": 1, "index": 0},
		{"url": "https://b.example", "title": "B", "windowId": 1, "index": 1},
		{"url": "https://c.example", "title": "C", "windowId": 1, "index": 0, "groupId": "g1"},
		{"url": "https://d.example", "title": "D", "windowId": 1, "index": 1, "groupId": "g1"},
		{"url": "https://a.example", "title": "A again", "windowId": 2, "index": 0}
	]
}`

func newTestModel(t *testing.T, opts Options) *model {
	t.Helper()
	store, err := autosave.OpenSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctrl := editor.New(editor.Options{
		Store: store,
		Clock: autosave.NewManualClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	})
	_, err = ctrl.ImportJSON([]byte(fixture))
	require.NoError(t, err)

	m := initialModel(ctrl, opts)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func (m *model) current(t *testing.T) row {
	t.Helper()
	r, ok := m.selected()
	require.True(t, ok)
	return r
}

func TestFlatten(t *testing.T) {
	m := newTestModel(t, Options{})

	var keys []rowKind
	for _, r := range m.rows {
		keys = append(keys, r.kind)
	}
	assert.Equal(t, []rowKind{
		rowWindow, rowSet, rowTab, rowTab, rowSet, rowTab, rowTab,
		rowWindow, rowSet, rowTab,
	}, keys)
	assert.Equal(t, "Work", m.rows[4].set.Title)
}

func TestNavigationAndMoves(t *testing.T) {
	m := newTestModel(t, Options{})

	press(m, "k")
	assert.Equal(t, 0, m.cursor, "the cursor stops at the top")

	press(m, "j", "j")
	require.Equal(t, "A", m.current(t).tab.Title)

	press(m, "J")
	assert.Equal(t, "A", m.current(t).tab.Title, "the cursor follows the moved tab")
	assert.Equal(t, 1, m.current(t).tab.Index)
	assert.True(t, m.current(t).tab.RecentlyMoved)

	press(m, "]")
	r := m.current(t)
	assert.Equal(t, "A", r.tab.Title)
	assert.Equal(t, "g1", r.set.GroupID)
	assert.Equal(t, 0, r.tab.Index)

	press(m, "[")
	r = m.current(t)
	assert.Equal(t, "", r.set.GroupID)
	assert.Equal(t, 1, r.tab.Index, "moving back lands last")
}

func TestCollapseGroup(t *testing.T) {
	m := newTestModel(t, Options{})
	m.selectKey(setKey(1, "g1"))

	press(m, "enter")
	assert.True(t, m.current(t).set.Collapsed)
	assert.Len(t, m.rows, 8, "tabs of a collapsed group are hidden")

	press(m, "enter")
	assert.Len(t, m.rows, 10)
}

func TestDeleteGroup_Confirmation(t *testing.T) {
	m := newTestModel(t, Options{ConfirmDeletes: true})
	m.selectKey(setKey(1, "g1"))

	press(m, "d")
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete group and close 2 tab(s)?")

	press(m, "n")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 5, m.view.Total)

	press(m, "d", "y")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 3, m.view.Total)
	assert.Empty(t, m.view.Windows[0].Groups)
}

func TestDeleteTab_NoConfirmation(t *testing.T) {
	m := newTestModel(t, Options{ConfirmDeletes: true})
	m.selectKey(setKey(2, ""))
	press(m, "j", "d")

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 4, m.view.Total)
}

func TestRenameAndColour(t *testing.T) {
	m := newTestModel(t, Options{})
	m.selectKey(setKey(1, "g1"))

	press(m, "r")
	require.Equal(t, modeRename, m.mode)
	assert.Equal(t, "Work", m.input.Value())
	m.input.SetValue("Reading")
	press(m, "enter")

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "Reading", m.current(t).set.Title)

	press(m, "c")
	assert.Equal(t, "red", string(m.current(t).set.Color))
}

func TestSearch(t *testing.T) {
	m := newTestModel(t, Options{})

	press(m, "/", "a", "g", "n")
	assert.Equal(t, modeSearchTitle, m.mode)
	assert.Equal(t, 1, m.view.Total, "searching filters while typing")

	press(m, "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 1, m.view.Total, "leaving the prompt keeps the search")

	press(m, "esc")
	assert.Equal(t, 5, m.view.Total)

	press(m, "D")
	assert.Equal(t, 2, m.view.Total)
	assert.Contains(t, m.View(), "Showing Duplicates (1)")
}

func TestExportAndImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), codec.DefaultJSONFilename)
	m := newTestModel(t, Options{ExportPath: path})

	cmd := press(m, "e", "enter")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Empty(t, m.err)
	assert.Equal(t, "Exported 5 tabs.", m.ctrl.Status())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	snap, err := codec.ParseImport(data)
	require.NoError(t, err)
	assert.Len(t, snap.Tabs, 5)

	require.NoError(t, m.ctrl.DeleteWindow(2))
	cmd = press(m, "i", "enter")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, "Imported 5 tabs.", m.ctrl.Status())
	assert.Len(t, m.view.Windows, 2)

	press(m, "i")
	m.input.SetValue(filepath.Join(t.TempDir(), "missing.json"))
	cmd = press(m, "enter")
	m.Update(cmd())
	assert.Contains(t, m.err, "missing.json")
}

func TestPreviewAndHelp(t *testing.T) {
	m := newTestModel(t, Options{PreviewStyle: "github"})

	press(m, "p")
	require.Equal(t, modePreview, m.mode)
	assert.Contains(t, m.View(), "JSON preview")
	press(m, "esc")
	assert.Equal(t, modeBrowse, m.mode)

	press(m, "?")
	assert.Equal(t, modeHelp, m.mode)
	assert.Contains(t, m.View(), "clear autosave")
	press(m, "x")
	assert.Equal(t, modeBrowse, m.mode)
}

func TestThemeToggle(t *testing.T) {
	m := newTestModel(t, Options{})
	assert.Equal(t, editor.ThemeLight, m.theme)

	press(m, "t")
	assert.Equal(t, editor.ThemeDark, m.theme)
	assert.Equal(t, editor.ThemeDark, m.ctrl.Theme())
}

func TestView(t *testing.T) {
	m := newTestModel(t, Options{})
	out := m.View()
	assert.Contains(t, out, "Window 1")
	assert.Contains(t, out, "Window 2")
	assert.Contains(t, out, "Total tabs: 5")
	assert.Contains(t, out, "Imported 5 tabs.")

	empty := initialModel(editor.New(editor.Options{}), Options{})
	assert.Equal(t, "Initializing...", empty.View())
	empty.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Contains(t, empty.View(), editor.EmptyText)
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
