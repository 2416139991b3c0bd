// Package main is the entry point for undocalc, an undoable calculator.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dshills/undocalc/internal/app"
	"github.com/dshills/undocalc/internal/config"
	"github.com/dshills/undocalc/internal/server"
	"github.com/dshills/undocalc/internal/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// configEnv names the config file when --config is not given.
const configEnv = "UNDOCALC_CONFIG"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath   string
	logLevel     string
	logFormat    string
	redoBoundary string
	maxEntries   int
	script       string
	listen       string
	redis        string
	replay       bool
	resetJournal bool
	noWait       bool
	showVersion  bool
	showHelp     bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("undocalc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to configuration file (or $"+configEnv+")")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format (console, json)")
	fs.StringVar(&f.redoBoundary, "redo-boundary", "", "Redo limit policy (reference, exact)")
	fs.IntVar(&f.maxEntries, "max-entries", 0, "Maximum undo entries kept")
	fs.StringVarP(&f.script, "script", "s", "", "Run a Lua script instead of the demo")
	fs.StringVarP(&f.listen, "listen", "l", "", "Serve the HTTP API on this address")
	fs.StringVar(&f.redis, "redis", "", "Redis address for the journal")
	fs.BoolVar(&f.replay, "replay", false, "Replay the journal before running")
	fs.BoolVar(&f.resetJournal, "reset-journal", false, "Delete the journal before running")
	fs.BoolVar(&f.noWait, "no-wait", false, "Exit without waiting for a keypress")
	fs.BoolVarP(&f.showVersion, "version", "v", false, "Show version information")
	fs.BoolVarP(&f.showHelp, "help", "h", false, "Show help message")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "undocalc - calculator with multi-level undo and redo\n\n")
		fmt.Fprintf(stderr, "Usage: undocalc [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  undocalc                          Run the demo session\n")
		fmt.Fprintf(stderr, "  undocalc -s session.lua           Run a script\n")
		fmt.Fprintf(stderr, "  undocalc -l :8080 --redis :6379   Serve the API with a Redis journal\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.showHelp {
		fs.Usage()
		return 0
	}
	if f.showVersion {
		fmt.Fprintf(stdout, "undocalc %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := loadConfig(fs, &f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := app.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	application, err := app.New(app.Options{Config: cfg, Logger: logger, Output: stdout})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	if f.resetJournal {
		if err := application.ResetJournal(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if err := session(ctx, application, f.replay); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if cfg.UI.WaitForKey {
		err := terminal.NewPrompter().WaitForKey(ctx)
		if err != nil && !errors.Is(err, terminal.ErrNotInteractive) && !errors.Is(err, context.Canceled) {
			logger.Warn("wait for key", zap.Error(err))
		}
	}
	return 0
}

// loadConfig layers flags over the file and environment configuration.
func loadConfig(fs *flag.FlagSet, f *flags) (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}

	cfg, err := config.Load(config.WithFile(path))
	if err != nil {
		return nil, err
	}

	if fs.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if fs.Changed("redo-boundary") {
		cfg.History.RedoBoundary = f.redoBoundary
	}
	if fs.Changed("max-entries") {
		cfg.History.MaxEntries = f.maxEntries
	}
	if fs.Changed("script") {
		cfg.Script.Path = f.script
	}
	if fs.Changed("listen") {
		cfg.Server.Listen = f.listen
	}
	if fs.Changed("redis") {
		cfg.Journal.RedisAddr = f.redis
	}
	if f.noWait {
		cfg.UI.WaitForKey = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session runs the configured workload: optional replay, then a script or
// the demo, then the HTTP server until ctx is done.
func session(ctx context.Context, a *app.Application, replay bool) error {
	cfg := a.Config()

	if replay {
		if _, err := a.Replay(ctx); err != nil {
			return err
		}
	}

	switch {
	case cfg.Script.Path != "":
		if err := a.RunScript(ctx, cfg.Script.Path); err != nil {
			return err
		}
	case cfg.Server.Listen == "":
		if err := a.RunDemo(ctx, app.DemoScript); err != nil {
			return err
		}
	}

	if cfg.Server.Listen == "" {
		return nil
	}
	return serve(ctx, a, cfg.Server.Listen)
}

func serve(ctx context.Context, a *app.Application, addr string) error {
	srv := server.New(a, addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
