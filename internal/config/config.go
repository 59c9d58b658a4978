// Package config loads and persists Orchestra's own configuration —
// distinct from the registry, which describes the user's codebases.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"orchestra/internal/logging"
)

// Config holds Orchestra's process-level configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Logging configuration, consumed directly by package logging.
	Logging LoggingConfig `yaml:"logging"`

	// Daemon governs the watcher/debounce/socket runtime.
	Daemon DaemonConfig `yaml:"daemon"`

	// Agents lists which agent kinds are enabled for rendering. Empty
	// means all supported kinds are enabled.
	Agents []string `yaml:"agents,omitempty"`

	// Audit toggles the SQLite sync-event ledger.
	Audit AuditConfig `yaml:"audit"`
}

// AuditConfig toggles the append-only audit ledger the daemon writes
// after each sync run.
type AuditConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DaemonConfig governs the watcher, debounce, and socket runtime.
type DaemonConfig struct {
	// DebounceWindow is the minimum spacing between accepted filesystem
	// events for the same registry file.
	DebounceWindow time.Duration `yaml:"debounce_window"`

	// SocketPath overrides the default <home>/daemon.sock location.
	SocketPath string `yaml:"socket_path,omitempty"`

	// StartupRetryAttempts and StartupRetrySpacing govern the
	// client-side retry loop that covers the daemon startup race.
	StartupRetryAttempts int           `yaml:"startup_retry_attempts"`
	StartupRetrySpacing  time.Duration `yaml:"startup_retry_spacing"`
}

// DefaultConfig returns Orchestra's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "orchestra",
		Version: "0.1.0",

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},

		Daemon: DaemonConfig{
			DebounceWindow:       500 * time.Millisecond,
			StartupRetryAttempts: 5,
			StartupRetrySpacing:  100 * time.Millisecond,
		},
	}
}

// Load reads configuration from <home>/config.yaml, falling back to
// defaults when the file does not exist.
func Load(home string) (*Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(home, "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Get(logging.CategoryDaemon).Info("config file not found, using defaults: %s", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Save persists configuration to <home>/config.yaml atomically.
func (c *Config) Save(home string) error {
	if err := os.MkdirAll(home, 0700); err != nil {
		return fmt.Errorf("create config dir %s: %w", home, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(home, "config.yaml")
	tmp := path + ".orchestra.tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write temp config %s: %w", tmp, err)
	}
	f, err := os.OpenFile(tmp, os.O_WRONLY, 0600)
	if err == nil {
		_ = f.Sync()
		_ = f.Close()
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename config into place %s: %w", path, err)
	}

	return nil
}

// ApplyToLogging pushes the parsed logging config directly into package
// logging, avoiding a second on-disk read/parse.
func (c *Config) ApplyToLogging() {
	logging.Configure(c.Logging.DebugMode, c.Logging.Level, c.Logging.Categories, c.Logging.JSONFormat)
}
