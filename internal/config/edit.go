package config

// EditConfig configures segment edits.
type EditConfig struct {
	// Yolo skips interactive approval of edits.
	Yolo bool `yaml:"yolo"`

	// MaxFileBytes refuses edits on files larger than this.
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// Workers bounds concurrent multi-file edits.
	Workers int `yaml:"workers"`

	// ContextLines is the diff preview context.
	ContextLines int `yaml:"context_lines"`
}

// JournalConfig configures the edit history store.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`   // relative to .fixture/ unless absolute
	Driver  string `yaml:"driver"` // "sqlite" (pure Go) or "sqlite3" (cgo)
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}
