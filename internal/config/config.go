// Package config loads stockrank settings from the environment and optional
// env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/blackwell-systems/stockrank/internal/logging"
)

// Environment keys.
const (
	EnvDB            = "STOCKRANK_DB"
	EnvSnapshotDir   = "STOCKRANK_SNAPSHOT_DIR"
	EnvLogLevel      = "STOCKRANK_LOG_LEVEL"
	EnvLogFormat     = "STOCKRANK_LOG_FORMAT"
	EnvTopN          = "STOCKRANK_TOP_N"
	EnvWatchDebounce = "STOCKRANK_WATCH_DEBOUNCE"
)

// Defaults.
const (
	DefaultTopN          = 5
	DefaultWatchDebounce = 500 * time.Millisecond
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config holds runtime settings. Command-line flags override it.
type Config struct {
	DBPath        string
	SnapshotDir   string
	LogLevel      string
	LogFormat     string
	TopN          int
	WatchDebounce time.Duration

	// problems collects values that could not be parsed during Load.
	problems []string
}

// Dir returns the stockrank config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/stockrank if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "stockrank"), nil
}

// DataDir returns the directory holding the database and snapshots,
// ~/.stockrank.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".stockrank"), nil
}

// Load builds a Config from the process environment. Values missing from
// the environment are read from ./.env and then {dir}/env; a missing file is
// not an error. Unset keys get their defaults.
func Load(dir string) (*Config, error) {
	files := map[string]string{}
	for _, path := range []string{".env", filepath.Join(dir, "env")} {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range values {
			files[k] = v
		}
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return files[key]
	}

	cfg := &Config{
		DBPath:        lookup(EnvDB),
		SnapshotDir:   lookup(EnvSnapshotDir),
		LogLevel:      getString(lookup, EnvLogLevel, DefaultLogLevel),
		LogFormat:     getString(lookup, EnvLogFormat, DefaultLogFormat),
		TopN:          DefaultTopN,
		WatchDebounce: DefaultWatchDebounce,
	}

	if v := lookup(EnvTopN); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			cfg.problems = append(cfg.problems, fmt.Sprintf("invalid %s '%s': must be a number", EnvTopN, v))
		} else {
			cfg.TopN = n
		}
	}

	if v := lookup(EnvWatchDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			cfg.problems = append(cfg.problems, fmt.Sprintf("invalid %s '%s': must be a duration", EnvWatchDebounce, v))
		} else {
			cfg.WatchDebounce = d
		}
	}

	if cfg.DBPath == "" || cfg.SnapshotDir == "" {
		data, err := DataDir()
		if err != nil {
			return nil, err
		}
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(data, "stockrank.db")
		}
		if cfg.SnapshotDir == "" {
			cfg.SnapshotDir = filepath.Join(data, "snapshots")
		}
	}

	return cfg, nil
}

// Validate reports every invalid setting in a single error.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.problems...)

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}
	if c.TopN < 1 {
		problems = append(problems, fmt.Sprintf("invalid top count %d: must be at least 1", c.TopN))
	}
	if c.WatchDebounce <= 0 {
		problems = append(problems, fmt.Sprintf("invalid watch debounce %v: must be positive", c.WatchDebounce))
	} else if c.WatchDebounce > time.Minute {
		problems = append(problems, fmt.Sprintf("invalid watch debounce %v: must be at most 1 minute", c.WatchDebounce))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getString(lookup func(string) string, key, defaultValue string) string {
	if v := lookup(key); v != "" {
		return v
	}
	return defaultValue
}
