package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/entrhq/tabshelf/pkg/editor"
	"github.com/entrhq/tabshelf/pkg/logging"
)

// refreshInterval re-reads the controller so autosave status and the
// recently-moved highlight update without a key press.
const refreshInterval = 250 * time.Millisecond

// mode is what the keyboard is currently driving.
type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeSearchTitle
	modeSearchURL
	modeImport
	modeExport
	modeConfirm
	modePreview
	modeHelp
)

// prompting reports whether the mode reads a line of text.
func (md mode) prompting() bool {
	switch md {
	case modeRename, modeSearchTitle, modeSearchURL, modeImport, modeExport:
		return true
	}
	return false
}

type rowKind int

const (
	rowWindow rowKind = iota
	rowSet
	rowTab
)

// row is one line of the flattened window/group/tab tree.
type row struct {
	kind   rowKind
	key    string
	window editor.WindowView
	set    editor.SetView
	tab    editor.TabView
}

// model represents the state of the TUI application.
type model struct {
	ctrl *editor.Controller
	log  *logging.Logger
	opts Options

	// Bubble Tea components
	input   textinput.Model
	preview viewport.Model
	help    help.Model
	keys    keyMap

	// Document state, rebuilt by refresh
	view   editor.View
	rows   []row
	cursor int

	// UI state
	mode    mode
	confirm *confirmation
	theme   string
	styles  styles
	err     string

	// Window dimensions
	width  int
	height int
	ready  bool

	shouldQuit bool
}

// confirmation is a pending destructive action.
type confirmation struct {
	prompt string
	action func() error
}

// tickMsg drives the periodic refresh.
type tickMsg time.Time

// operationCompleteMsg reports the outcome of a file operation.
type operationCompleteMsg struct {
	err error
}

func initialModel(ctrl *editor.Controller, opts Options) *model {
	input := textinput.New()
	input.CharLimit = 512

	m := &model{
		ctrl:    ctrl,
		log:     opts.Logger,
		opts:    opts,
		input:   input,
		preview: viewport.New(80, 20),
		help:    help.New(),
		keys:    defaultKeyMap(),
		theme:   ctrl.Theme(),
	}
	if m.log == nil {
		m.log = logging.Discard("tui")
	}
	m.styles = newStyles(m.theme)
	m.refresh()
	return m
}

// refresh rebuilds the rows from the controller and keeps the cursor on the
// same item when it still exists.
func (m *model) refresh() {
	var current string
	if m.cursor < len(m.rows) {
		current = m.rows[m.cursor].key
	}

	m.view = m.ctrl.View()
	m.rows = flatten(m.view)

	for i, r := range m.rows {
		if r.key == current {
			m.cursor = i
			return
		}
	}
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
}

func flatten(v editor.View) []row {
	var rows []row
	for _, w := range v.Windows {
		rows = append(rows, row{kind: rowWindow, key: windowKey(w.ID), window: w})
		for _, s := range w.Sets() {
			rows = append(rows, row{
				kind:   rowSet,
				key:    setKey(w.ID, s.GroupID),
				window: w,
				set:    s,
			})
			if s.Collapsed {
				continue
			}
			for _, t := range s.Tabs {
				rows = append(rows, row{kind: rowTab, key: "t" + t.Ref, window: w, set: s, tab: t})
			}
		}
	}
	return rows
}

// selected returns the row under the cursor.
func (m *model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// selectKey moves the cursor to the row with key, if present.
func (m *model) selectKey(key string) {
	for i, r := range m.rows {
		if r.key == key {
			m.cursor = i
			return
		}
	}
}
