// Package config loads and saves the dayplan YAML configuration file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDBFile is the commit log file name inside the data directory
const DefaultDBFile = "dayplan.db"

const (
	defaultHistoryLimit      = 200
	defaultLogLevel          = "warn"
	defaultTheme             = "nord"
	defaultImportHorizonDays = 90
	defaultReminderMinutes   = 60
)

// Config is the top-level application configuration.
type Config struct {
	// DataDir holds the commit log and the instance lock.
	DataDir string `yaml:"data_dir"`

	// DBFile is the commit log file name, relative to DataDir unless absolute.
	DBFile string `yaml:"db_file"`

	// HistoryLimit caps the number of commits kept for undo. 0 keeps all.
	HistoryLimit int `yaml:"history_limit"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Theme selects the console palette: nord, dracula, catppuccin or gruvbox.
	Theme string `yaml:"theme"`

	// Reminders enables desktop notifications from the remind command.
	Reminders bool `yaml:"reminders"`

	// ReminderMinutes is how far ahead remind looks for due tasks and
	// starting events.
	ReminderMinutes int `yaml:"reminder_minutes"`

	// ImportHorizonDays bounds recurrence expansion on ICS import.
	ImportHorizonDays int `yaml:"import_horizon_days"`
}

// DefaultPath returns $XDG_CONFIG_HOME/dayplan/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".dayplan", "config.yaml")
	}
	return filepath.Join(dir, "dayplan", "config.yaml")
}

// DefaultDataDir returns $XDG_DATA_HOME/dayplan, falling back to
// ~/.local/share/dayplan
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dayplan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dayplan"
	}
	return filepath.Join(home, ".local", "share", "dayplan")
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           DefaultDataDir(),
		DBFile:            DefaultDBFile,
		HistoryLimit:      defaultHistoryLimit,
		LogLevel:          defaultLogLevel,
		Theme:             defaultTheme,
		Reminders:         true,
		ReminderMinutes:   defaultReminderMinutes,
		ImportHorizonDays: defaultImportHorizonDays,
	}
}

// Normalize fills in missing or invalid values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.DBFile == "" {
		c.DBFile = DefaultDBFile
	}
	if c.HistoryLimit < 0 {
		c.HistoryLimit = 0
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	switch c.Theme {
	case "nord", "dracula", "catppuccin", "gruvbox":
	default:
		c.Theme = defaultTheme
	}
	if c.ReminderMinutes <= 0 {
		c.ReminderMinutes = defaultReminderMinutes
	}
	if c.ImportHorizonDays <= 0 {
		c.ImportHorizonDays = defaultImportHorizonDays
	}
}

// DBPath returns the full path of the commit log
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(c.DataDir, c.DBFile)
}

// Load loads configuration from the given YAML path.
//
// A missing file is created with the defaults (0600) and the defaults are
// returned. An existing file is read and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Still usable; the caller decides whether this is fatal.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename, with 0600
// permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dayplan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
