package tui

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/tabshelf/pkg/editor"
)

// maxLabelWidth matches how much of a title or URL a tab line shows.
const maxLabelWidth = 50

func windowKey(id int) string {
	return "w" + strconv.Itoa(id)
}

func setKey(windowID int, groupID string) string {
	return "s" + strconv.Itoa(windowID) + "/" + groupID
}

// truncate shortens s to n runes plus an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func importCmd(ctrl *editor.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return operationCompleteMsg{err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		_, err = ctrl.ImportJSON(data)
		return operationCompleteMsg{err: err}
	}
}

func exportCmd(ctrl *editor.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return operationCompleteMsg{err: fmt.Errorf("failed to create %s: %w", path, err)}
		}
		_, err = ctrl.ExportJSON(f)
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
		return operationCompleteMsg{err: err}
	}
}
