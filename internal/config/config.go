package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DirName is the per-workspace state directory.
const DirName = ".fixture"

// Config holds all fixturekit configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Segment edit behaviour
	Edit EditConfig `yaml:"edit"`

	// Edit history
	Journal JournalConfig `yaml:"journal"`

	// File watcher
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fixturekit",
		Version: "0.3.0",

		Edit: EditConfig{
			Yolo:         false,
			MaxFileBytes: 8 << 20,
			Workers:      4,
			ContextLines: 3,
		},

		Journal: JournalConfig{
			Enabled: true,
			Path:    "journal.db",
			Driver:  "sqlite",
		},

		Watch: WatchConfig{
			Debounce: "200ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, DirName, "config.yaml")
}

// FindWorkspaceRoot walks up from dir looking for a .fixture directory or go.mod.
// If neither is found, dir itself is returned.
func FindWorkspaceRoot(dir string) string {
	original := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, DirName)); err == nil {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return original
		}
		dir = parent
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v, ok := envBool("FIXTURE_YOLO"); ok {
		c.Edit.Yolo = v
	}
	if v, ok := envBool("FIXTURE_DEBUG"); ok {
		c.Logging.DebugMode = v
	}
	if lvl := os.Getenv("FIXTURE_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if path := os.Getenv("FIXTURE_JOURNAL"); path != "" {
		c.Journal.Path = path
	}
}

func envBool(key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// JournalPath resolves the journal database path against the workspace.
func (c *Config) JournalPath(workspace string) string {
	if filepath.IsAbs(c.Journal.Path) {
		return c.Journal.Path
	}
	return filepath.Join(workspace, DirName, c.Journal.Path)
}

// GetWatchDebounce returns the watcher debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", c.Logging.Format)
	}

	if c.Edit.Workers <= 0 {
		return fmt.Errorf("edit.workers must be positive, got %d", c.Edit.Workers)
	}
	if c.Edit.MaxFileBytes <= 0 {
		return fmt.Errorf("edit.max_file_bytes must be positive, got %d", c.Edit.MaxFileBytes)
	}
	if c.Edit.ContextLines < 0 {
		return fmt.Errorf("edit.context_lines cannot be negative")
	}
	if c.Journal.Driver != "" && c.Journal.Driver != "sqlite" && c.Journal.Driver != "sqlite3" {
		return fmt.Errorf("invalid journal driver: %s (valid: sqlite, sqlite3)", c.Journal.Driver)
	}

	return nil
}
