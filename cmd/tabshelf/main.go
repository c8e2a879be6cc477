// Package main provides the tabshelf command: export the open browser tabs,
// recreate them from a JSON snapshot, and edit snapshots offline in the
// terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appconfig "github.com/entrhq/tabshelf/pkg/config"
	"github.com/entrhq/tabshelf/pkg/logging"
)

const version = "0.1.0"

// Environment variables read after .env files are loaded.
const (
	envBackend   = "TABSHELF_BACKEND"
	envRemoteURL = "TABSHELF_REMOTE_URL"
)

// errUsage marks a command line the user should fix.
var errUsage = errors.New("usage")

// Config holds the global command line options. Empty values fall back to
// the environment and then to the config file.
type Config struct {
	ConfigPath  string
	Backend     string
	RemoteURL   string
	Headless    bool
	ShowVersion bool
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	fs, config := newFlagSet()
	_ = fs.Parse(os.Args[1:])
	if config.ShowVersion {
		fmt.Printf("tabshelf v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := run(ctx, config, fs.Args(), os.Stdin, os.Stdout)
	cancel()
	_ = logging.Close()
	if errors.Is(err, errUsage) {
		fmt.Fprintf(os.Stderr, "tabshelf: %v\n\n", err)
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Printf("tabshelf: %v", err)
		os.Exit(1)
	}
}

// newFlagSet declares the global flags over a fresh Config.
func newFlagSet() (*flag.FlagSet, *Config) {
	config := &Config{}

	fs := flag.NewFlagSet("tabshelf", flag.ExitOnError)
	fs.StringVar(&config.ConfigPath, "config", "", "Path to the settings file (default ~/.tabshelf/config.json)")
	fs.StringVar(&config.Backend, "backend", "", "Browser backend: memory, playwright or cdp (or set TABSHELF_BACKEND)")
	fs.StringVar(&config.RemoteURL, "remote-url", "", "Connect to a running Chrome at this URL (or set TABSHELF_REMOTE_URL)")
	fs.BoolVar(&config.Headless, "headless", false, "Run a launched browser without a window")
	fs.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "tabshelf - save, restore and edit browser tabs\n\n")
		fmt.Fprintf(out, "Usage: tabshelf [options] <command> [arguments]\n\n")
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  export [-format markdown|json] [-o file]   Export the open tabs\n")
		fmt.Fprintf(out, "  import <file>                              Recreate windows and tabs from a JSON snapshot\n")
		fmt.Fprintf(out, "  edit [file]                                Edit a snapshot (or the autosaved one) in the terminal\n")
		fmt.Fprintf(out, "  normalize [file]                           Repair a snapshot and print canonical JSON\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nEnvironment Variables:\n")
		fmt.Fprintf(out, "  %-20s Browser backend\n", envBackend)
		fmt.Fprintf(out, "  %-20s Remote Chrome URL\n", envRemoteURL)
	}

	return fs, config
}

// applyEnv fills options not given on the command line from the environment.
func (c *Config) applyEnv() {
	if c.Backend == "" {
		c.Backend = os.Getenv(envBackend)
	}
	if c.RemoteURL == "" {
		c.RemoteURL = os.Getenv(envRemoteURL)
	}
}

// run dispatches a subcommand.
func run(ctx context.Context, config *Config, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	// normalize needs no settings.
	if args[0] == "normalize" {
		return runNormalize(args[1:], stdin, stdout)
	}

	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	config.applyEnv()

	switch args[0] {
	case "export":
		return runExport(ctx, config, args[1:], stdout)
	case "import":
		return runImport(ctx, config, args[1:], stdout)
	case "edit":
		return runEdit(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}
