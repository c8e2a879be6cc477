package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/tabshelf/pkg/executor/tui/syntax"
)

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the refresh loop.
func (m *model) Init() tea.Cmd {
	return tick()
}

// Update routes a message to the handler for the current mode.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.shouldQuit {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tickMsg:
		m.refresh()
		return m, tick()
	case operationCompleteMsg:
		m.refresh()
		if msg.err != nil {
			m.err = msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.help.Width = msg.Width
	m.input.Width = max(20, msg.Width-10)
	m.preview.Width = max(20, msg.Width-6)
	m.preview.Height = max(5, msg.Height-8)
	return m, nil
}

func (m *model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.shouldQuit = true
		return m, tea.Quit
	}

	switch {
	case m.mode.prompting():
		return m.handlePromptKey(msg)
	case m.mode == modeConfirm:
		return m.handleConfirmKey(msg)
	case m.mode == modePreview:
		return m.handlePreviewKey(msg)
	case m.mode == modeHelp:
		m.mode = modeBrowse
		return m, nil
	}
	return m.handleBrowseKey(msg)
}

func (m *model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = ""
	r, ok := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shouldQuit = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = max(0, min(m.cursor+1, len(m.rows)-1))
	case key.Matches(msg, m.keys.MoveUp):
		m.moveTab(r, ok, -1, false)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveTab(r, ok, 1, false)
	case key.Matches(msg, m.keys.PrevSet):
		m.moveTab(r, ok, -1, true)
	case key.Matches(msg, m.keys.NextSet):
		m.moveTab(r, ok, 1, true)
	case key.Matches(msg, m.keys.Delete):
		if ok {
			m.delete(r)
		}
	case key.Matches(msg, m.keys.NewWindow):
		id := m.ctrl.CreateWindow()
		m.refresh()
		m.selectKey(windowKey(id))
	case key.Matches(msg, m.keys.NewGroup):
		if ok {
			id, err := m.ctrl.CreateGroup(r.window.ID)
			m.fail(err)
			m.refresh()
			m.selectKey(setKey(r.window.ID, id))
		}
	case key.Matches(msg, m.keys.Rename):
		if ok && r.set.Grouped() {
			m.startPrompt(modeRename, "Group title: ", r.set.Title)
		}
	case key.Matches(msg, m.keys.CycleColor):
		if ok && r.set.Grouped() {
			_, err := m.ctrl.CycleGroupColor(r.set.GroupID)
			m.fail(err)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Collapse):
		if ok && r.kind == rowSet && r.set.Grouped() {
			_, err := m.ctrl.ToggleGroupCollapsed(r.set.GroupID)
			m.fail(err)
			m.refresh()
		}
	case key.Matches(msg, m.keys.SearchTitle):
		m.startPrompt(modeSearchTitle, "Search titles: ", m.ctrl.Filter().Title)
	case key.Matches(msg, m.keys.SearchURL):
		m.startPrompt(modeSearchURL, "Search URLs: ", m.ctrl.Filter().URL)
	case key.Matches(msg, m.keys.ClearSearch):
		m.ctrl.SetSearch("", "")
		m.refresh()
	case key.Matches(msg, m.keys.Duplicates):
		m.ctrl.ToggleDuplicates()
		m.refresh()
	case key.Matches(msg, m.keys.Import):
		m.startPrompt(modeImport, "Import from: ", m.opts.ExportPath)
	case key.Matches(msg, m.keys.Export):
		m.startPrompt(modeExport, "Export to: ", m.opts.ExportPath)
	case key.Matches(msg, m.keys.Copy):
		m.fail(m.ctrl.CopyMarkdown())
	case key.Matches(msg, m.keys.Preview):
		m.openPreview()
	case key.Matches(msg, m.keys.Theme):
		theme, err := m.ctrl.ToggleTheme()
		m.fail(err)
		m.theme = theme
		m.styles = newStyles(theme)
	case key.Matches(msg, m.keys.ClearSaved):
		m.fail(m.ctrl.ClearAutosave())
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}
	return m, nil
}

func (m *model) moveTab(r row, ok bool, delta int, across bool) {
	if !ok || r.kind != rowTab {
		return
	}
	var err error
	if across {
		err = m.ctrl.MoveTabAcross(r.tab.Ref, delta)
	} else {
		err = m.ctrl.MoveTabBy(r.tab.Ref, delta)
	}
	m.fail(err)
	m.refresh()
}

func (m *model) delete(r row) {
	var (
		prompt string
		action func() error
	)
	switch r.kind {
	case rowTab:
		action = func() error { return m.ctrl.DeleteTab(r.tab.Ref) }
	case rowWindow:
		prompt = r.window.DeletePrompt()
		id := r.window.ID
		action = func() error { return m.ctrl.DeleteWindow(id) }
	case rowSet:
		if !r.set.Grouped() {
			return
		}
		prompt = r.set.DeletePrompt()
		id := r.set.GroupID
		action = func() error { return m.ctrl.DeleteGroup(id) }
	}

	if prompt != "" && m.opts.ConfirmDeletes {
		m.confirm = &confirmation{prompt: prompt, action: action}
		m.mode = modeConfirm
		return
	}
	m.fail(action())
	m.refresh()
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.fail(m.confirm.action())
		m.refresh()
	case "n", "esc", "q":
	default:
		return m, nil
	}
	m.confirm = nil
	m.mode = modeBrowse
	return m, nil
}

func (m *model) openPreview() {
	doc, err := m.ctrl.PreviewJSON()
	if err != nil {
		m.fail(err)
		return
	}
	highlighted, err := syntax.HighlightJSON(doc, m.opts.PreviewStyle)
	if err != nil {
		m.log.Warnf("preview highlighting failed: %v", err)
		highlighted = doc
	}
	m.preview.SetContent(highlighted)
	m.preview.GotoTop()
	m.mode = modePreview
}

func (m *model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "p", "enter":
		m.mode = modeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m *model) startPrompt(md mode, prompt, value string) {
	m.mode = md
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endPrompt()
		return m, nil
	case tea.KeyEnter:
		return m.submitPrompt(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Searches apply while typing.
	switch m.mode {
	case modeSearchTitle:
		m.ctrl.SetSearch(m.input.Value(), m.ctrl.Filter().URL)
		m.refresh()
	case modeSearchURL:
		m.ctrl.SetSearch(m.ctrl.Filter().Title, m.input.Value())
		m.refresh()
	}
	return m, cmd
}

func (m *model) submitPrompt(value string) (tea.Model, tea.Cmd) {
	md := m.mode
	m.endPrompt()

	switch md {
	case modeRename:
		if r, ok := m.selected(); ok && r.set.Grouped() {
			m.fail(m.ctrl.RenameGroup(r.set.GroupID, value))
		}
	case modeImport:
		return m, importCmd(m.ctrl, strings.TrimSpace(value))
	case modeExport:
		path := strings.TrimSpace(value)
		if path != "" {
			m.opts.ExportPath = path
		}
		return m, exportCmd(m.ctrl, m.opts.ExportPath)
	}
	m.refresh()
	return m, nil
}

func (m *model) endPrompt() {
	m.input.Blur()
	m.mode = modeBrowse
}

// fail shows err in the bottom bar.
func (m *model) fail(err error) {
	if err == nil {
		return
	}
	m.log.Warnf("editor action failed: %v", err)
	m.err = err.Error()
}
