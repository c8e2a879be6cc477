// Package tui provides the terminal editor for tab snapshots.
//
// The TUI codebase is split into multiple files:
// - executor.go: program lifecycle
// - model.go: model state and the flattened window/group/tab tree
// - update.go: Bubble Tea Update function and key handling
// - view.go: Bubble Tea View function and rendering
// - keys.go: key bindings and help
// - helpers.go: file operations and text utilities
// - styles.go: light and dark colour themes
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/tabshelf/pkg/codec"
	"github.com/entrhq/tabshelf/pkg/editor"
	"github.com/entrhq/tabshelf/pkg/logging"
)

// Options tunes the editor.
type Options struct {
	// ExportPath is the file written by the export key.
	ExportPath string
	// ConfirmDeletes asks before deleting a window or group holding tabs.
	ConfirmDeletes bool
	// PreviewStyle is the chroma style of the JSON preview.
	PreviewStyle string
	Logger       *logging.Logger
}

// Executor runs the editor over one controller.
type Executor struct {
	ctrl    *editor.Controller
	opts    Options
	program *tea.Program
}

// NewExecutor creates a TUI executor for ctrl.
func NewExecutor(ctrl *editor.Controller, opts Options) *Executor {
	if opts.ExportPath == "" {
		opts.ExportPath = codec.DefaultJSONFilename
	}
	return &Executor{ctrl: ctrl, opts: opts}
}

// Run starts the TUI and blocks until the user exits or ctx is done. A
// pending autosave is flushed on the way out.
func (e *Executor) Run(ctx context.Context) error {
	m := initialModel(e.ctrl, e.opts)
	m.log.Infof("editor starting with %d windows", len(m.view.Windows))

	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, runErr := e.program.Run()
	if err := e.ctrl.Close(); err != nil {
		m.log.Errorf("failed to flush autosave: %v", err)
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI program: %w", runErr)
	}
	return nil
}
