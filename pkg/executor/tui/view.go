package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/tabshelf/pkg/editor"
)

// chromeLines is the height taken by everything but the tree.
const chromeLines = 6

// View renders the editor.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case modePreview:
		return m.renderPreview()
	case modeHelp:
		return m.renderHelp()
	}

	sections := []string{m.buildHeader(), m.buildTree()}
	switch {
	case m.mode.prompting():
		sections = append(sections, m.styles.inputBox.Width(max(20, m.width-4)).Render(m.input.View()))
	case m.mode == modeConfirm && m.confirm != nil:
		sections = append(sections, m.styles.overlay.Render(m.confirm.prompt+"  [y/n]"))
	}
	sections = append(sections, m.buildBottomBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) buildHeader() string {
	parts := []string{
		m.styles.header.Render("tabshelf"),
		m.styles.count.Render(m.view.TotalLabel()),
		m.styles.count.Render(m.view.DuplicatesLabel()),
	}
	if f := m.ctrl.Filter(); f.Title != "" || f.URL != "" {
		parts = append(parts, m.styles.tips.Render(fmt.Sprintf("title:%q url:%q", f.Title, f.URL)))
	}
	return strings.Join(parts, "  ")
}

func (m *model) buildTree() string {
	if len(m.rows) == 0 {
		return m.styles.tips.Render(editor.EmptyText + "  (w: new window, i: import)")
	}

	height := max(3, m.height-chromeLines)
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := min(len(m.rows), start+height)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor {
			line = m.styles.cursor.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *model) renderRow(r row) string {
	switch r.kind {
	case rowWindow:
		return m.styles.window.Render(r.window.Label) + " " + m.styles.count.Render(fmt.Sprintf("(%d)", r.window.Count))
	case rowSet:
		marker := "▾"
		if r.set.Collapsed {
			marker = "▸"
		}
		title := m.styles.set.Render(r.set.Title)
		if r.set.Grouped() {
			title = groupStyle(r.set.Color).Render(r.set.Title) + " " + m.styles.count.Render(string(r.set.Color))
		}
		return fmt.Sprintf("  %s %s %s", marker, title, m.styles.count.Render(fmt.Sprintf("(%d)", len(r.set.Tabs))))
	default:
		return "      " + m.renderTab(r.tab)
	}
}

func (m *model) renderTab(t editor.TabView) string {
	var flags strings.Builder
	if t.Pinned {
		flags.WriteString("📌")
	}
	if t.Muted {
		flags.WriteString("🔇")
	}
	if t.Active {
		flags.WriteString("●")
	}

	label := m.styles.tab.Render(truncate(t.Label(), maxLabelWidth))
	switch {
	case t.RecentlyMoved:
		label = m.styles.moved.Render(truncate(t.Label(), maxLabelWidth))
	case t.Duplicate:
		label = m.styles.duplicate.Render(truncate(t.Label(), maxLabelWidth))
	}

	line := label + " " + m.styles.url.Render(truncate(t.URL, maxLabelWidth))
	if flags.Len() > 0 {
		line = flags.String() + " " + line
	}
	return line
}

func (m *model) buildBottomBar() string {
	status := m.styles.statusBar.Render(m.ctrl.Status())
	if m.err != "" {
		status = m.styles.statusBar.Render(m.styles.errorText.Render(m.err))
	}
	return status + "\n" + m.help.View(m.keys)
}

func (m *model) renderPreview() string {
	header := m.styles.title.Render("JSON preview")
	footer := m.styles.help.Render("↑/↓ to scroll • esc to close")
	return m.styles.overlay.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.preview.View(), footer))
}

func (m *model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	header := m.styles.title.Render("Keys")
	footer := m.styles.help.Render("Press any key to close")
	return m.styles.overlay.Render(lipgloss.JoinVertical(lipgloss.Left, header, h.View(m.keys), footer))
}
