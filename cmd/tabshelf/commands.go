package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/entrhq/tabshelf/pkg/autosave"
	"github.com/entrhq/tabshelf/pkg/bridge"
	"github.com/entrhq/tabshelf/pkg/browser"
	"github.com/entrhq/tabshelf/pkg/browser/cdp"
	"github.com/entrhq/tabshelf/pkg/browser/playwright"
	"github.com/entrhq/tabshelf/pkg/codec"
	appconfig "github.com/entrhq/tabshelf/pkg/config"
	"github.com/entrhq/tabshelf/pkg/editor"
	"github.com/entrhq/tabshelf/pkg/executor/tui"
	"github.com/entrhq/tabshelf/pkg/logging"
	"github.com/entrhq/tabshelf/pkg/snapshot"
)

// Export formats.
const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// openBrowser starts the configured backend. Command line and environment
// values win over the settings file.
func openBrowser(ctx context.Context, config *Config) (browser.Browser, error) {
	backend, headless, remoteURL := appconfig.GetBrowser().Settings()
	if config.Backend != "" {
		backend = config.Backend
	}
	if config.RemoteURL != "" {
		remoteURL = config.RemoteURL
	}
	headless = headless || config.Headless

	switch backend {
	case appconfig.BackendMemory:
		return browser.NewMemory(), nil
	case appconfig.BackendPlaywright:
		b, err := playwright.Start(playwright.Options{Headless: headless, RemoteURL: remoteURL})
		if err != nil {
			return nil, err
		}
		return b, nil
	case appconfig.BackendCDP:
		b, err := cdp.Connect(ctx, cdp.Config{Headless: headless, RemoteURL: remoteURL})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown browser backend %q", errUsage, backend)
	}
}

// openOutput returns stdout for an empty path.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// readInput reads the named file, or stdin when no file is given.
func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		if stdin == nil {
			return nil, fmt.Errorf("%w: a file name is required", errUsage)
		}
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}

func runExport(ctx context.Context, config *Config, args []string, stdout io.Writer) error {
	_, closeDefault := appconfig.GetExport().Settings()

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", formatMarkdown, "Output format: markdown or json")
	output := fs.String("o", "", "Write to this file instead of stdout")
	closeDuplicates := fs.Bool("close-duplicates", closeDefault, "Close duplicate tabs after a Markdown export")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *format != formatMarkdown && *format != formatJSON {
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}

	b, err := openBrowser(ctx, config)
	if err != nil {
		return err
	}
	defer b.Close()

	return export(ctx, b, *format, *output, *closeDuplicates, stdout)
}

func export(ctx context.Context, b browser.Browser, format, output string, closeDuplicates bool, stdout io.Writer) error {
	log, _ := logging.NewLogger("export")

	var data []byte
	switch format {
	case formatJSON:
		snap, err := bridge.Capture(ctx, b)
		if err != nil {
			return err
		}
		if data, err = codec.EncodeJSON(snap); err != nil {
			return err
		}
	default:
		canon, err := appconfig.GetExport().Canonicalizer()
		if err != nil {
			return err
		}
		table, tableErr := bridge.ExportTable(ctx, b, canon, closeDuplicates, log)
		if table == nil {
			return tableErr
		}
		if tableErr != nil {
			// The table is complete even when some duplicates stayed open.
			log.Warnf("closing duplicates: %v", tableErr)
		}
		data = []byte(table.Markdown() + "\n")
	}

	w, closeOut, err := openOutput(output, stdout)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.Join(err, closeOut())
}

func runImport(ctx context.Context, config *Config, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import takes one snapshot file", errUsage)
	}
	data, err := readInput(args, nil)
	if err != nil {
		return err
	}
	snap, err := codec.ParseImport(data)
	if err != nil {
		return err
	}

	b, err := openBrowser(ctx, config)
	if err != nil {
		return err
	}
	defer b.Close()

	return restore(ctx, b, snap, stdout)
}

func restore(ctx context.Context, b browser.Browser, snap *snapshot.Snapshot, stdout io.Writer) error {
	log, _ := logging.NewLogger("import")
	report, err := bridge.Restore(ctx, b, snap, log)
	fmt.Fprintf(stdout, "Restored %d windows, %d tabs, %d groups.\n", report.Windows, report.Tabs, report.Groups)
	return err
}

func runNormalize(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: normalize takes at most one file", errUsage)
	}
	data, err := readInput(args, stdin)
	if err != nil {
		return err
	}
	snap := snapshot.NormalizeJSON(data)
	out, err := codec.EncodeJSON(codec.Export(snapshot.Load(snap, nil), time.Now()))
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(out, '\n'))
	return err
}

func runEdit(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: edit takes at most one file", errUsage)
	}

	log, _ := logging.NewLogger("edit")
	ctrl, store, err := newController(log)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		data, err := readInput(args, nil)
		if err != nil {
			return err
		}
		if _, err := ctrl.ImportJSON(data); err != nil {
			return err
		}
	} else if _, err := ctrl.Restore(); err != nil {
		log.Warnf("starting empty: %v", err)
	}

	filename, _ := appconfig.GetExport().Settings()
	confirm, style := appconfig.GetUI().Settings()
	return tui.NewExecutor(ctrl, tui.Options{
		ExportPath:     filename,
		ConfirmDeletes: confirm,
		PreviewStyle:   style,
		Logger:         log.With("tui"),
	}).Run(ctx)
}

// newController builds an editor over the configured autosave store.
func newController(log *logging.Logger) (*editor.Controller, autosave.Store, error) {
	delay, backend, path := appconfig.GetAutosave().Settings()
	store, err := autosave.Open(backend, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open autosave store: %w", err)
	}
	canon, err := appconfig.GetExport().Canonicalizer()
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	opts := editor.Options{
		Store:         store,
		Delay:         delay,
		Canonicalizer: canon,
		Logger:        log.With("editor"),
	}
	if clip := (editor.SystemClipboard{}); clip.Available() {
		opts.Clipboard = clip
	}
	return editor.New(opts), store, nil
}
