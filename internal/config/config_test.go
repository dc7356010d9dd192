package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "fixturekit", cfg.Name)
	assert.Equal(t, 4, cfg.Edit.Workers)
	assert.Equal(t, 3, cfg.Edit.ContextLines)
	assert.True(t, cfg.Journal.Enabled)
	assert.False(t, cfg.Edit.Yolo)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("FIXTURE_YOLO", "")
	t.Setenv("FIXTURE_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), ".fixture", "config.yaml")

	cfg := DefaultConfig()
	cfg.Edit.Workers = 9
	cfg.Logging.DebugMode = true
	cfg.Logging.Categories = map[string]bool{"edit": true, "watch": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Edit.Workers)
	assert.True(t, loaded.Logging.DebugMode)
	assert.Equal(t, map[string]bool{"edit": true, "watch": false}, loaded.Logging.Categories)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Edit, cfg.Edit)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("edit:\n  yolo: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Edit.Yolo)
	assert.Equal(t, 4, cfg.Edit.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("edit: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"zero workers", func(c *Config) { c.Edit.Workers = 0 }, true},
		{"zero max bytes", func(c *Config) { c.Edit.MaxFileBytes = 0 }, true},
		{"negative context", func(c *Config) { c.Edit.ContextLines = -1 }, true},
		{"cgo driver", func(c *Config) { c.Journal.Driver = "sqlite3" }, false},
		{"bad driver", func(c *Config) { c.Journal.Driver = "postgres" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJournalPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/ws", ".fixture", "journal.db"), cfg.JournalPath("/ws"))

	abs := filepath.Join(t.TempDir(), "j.db")
	cfg.Journal.Path = abs
	assert.Equal(t, abs, cfg.JournalPath("/ws"))
}

func TestGetWatchDebounce(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 200*time.Millisecond, cfg.GetWatchDebounce())

	cfg.Watch.Debounce = "1s"
	assert.Equal(t, time.Second, cfg.GetWatchDebounce())

	cfg.Watch.Debounce = "garbage"
	assert.Equal(t, 200*time.Millisecond, cfg.GetWatchDebounce())
}

func TestFindWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DirName), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Equal(t, root, FindWorkspaceRoot(nested))
}

func TestLoggingConfig_Settings(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json", DebugMode: true, Categories: map[string]bool{"edit": false}}
	s := lc.Settings()
	assert.True(t, s.DebugMode)
	assert.Equal(t, "debug", s.Level)
	assert.Equal(t, "json", s.Format)
	assert.False(t, lc.IsCategoryEnabled("edit"))
	assert.True(t, lc.IsCategoryEnabled("watch"))

	lc.DebugMode = false
	assert.False(t, lc.IsCategoryEnabled("watch"))
}
