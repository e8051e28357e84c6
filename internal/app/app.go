// Package app wires configuration, the commit log, the store and the
// console together for one command invocation.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dori/dayplan/internal/config"
	"github.com/dori/dayplan/internal/db"
	"github.com/dori/dayplan/internal/natdate"
	"github.com/dori/dayplan/internal/notify"
	"github.com/dori/dayplan/internal/query"
	"github.com/dori/dayplan/internal/render"
	"github.com/dori/dayplan/internal/store"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	Log      *db.CommitLog
	Store    *store.Store
	Dates    *natdate.Parser
	Resolver *query.Resolver
	Console  *render.Console
	Notifier *notify.Notifier
	Logger   *slog.Logger

	// Out receives raw command output such as exported calendars
	Out io.Writer

	// ConfigPath is where Config was loaded from; empty when not file-backed
	ConfigPath string

	lockFile *flock.Flock
}

// Options override the parts of App that tests and the CLI swap out
type Options struct {
	Stdout     io.Writer
	Stderr     io.Writer
	ConfigPath string
}

// NewLogger returns a text logger writing to w at the named level
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// New creates a new application instance and loads the current state
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Normalize()
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger := NewLogger(opts.Stderr, cfg.LogLevel)
	theme, _ := render.ThemeByName(cfg.Theme)
	dates := natdate.New()

	app := &App{
		Config:   cfg,
		Dates:    dates,
		Resolver: query.NewResolver(dates),
		Console:  render.NewConsole(opts.Stdout, opts.Stderr, theme, nil),
		Notifier: notify.NewNotifier(),
		Logger:   logger,

		Out:        opts.Stdout,
		ConfigPath: opts.ConfigPath,
	}
	app.Notifier.SetEnabled(cfg.Reminders)

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	commitLog, err := db.OpenCommitLog(cfg.DBPath(), db.WithHistoryLimit(cfg.HistoryLimit))
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.Log = commitLog

	app.Store = store.New(commitLog, store.WithLogger(logger))
	if err := app.Store.Load(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	logger.Debug("state loaded", "path", commitLog.Path(), "tasks", len(app.Store.Tasks()), "events", len(app.Store.Events()))

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.DataDir, "dayplan.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of dayplan is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Log != nil {
		if err := a.Log.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
