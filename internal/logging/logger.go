// Package logging provides config-driven categorized file-based logging for fixturekit.
// Logs are written to .fixture/logs/ with separate files per category.
// Logging is controlled by debug_mode in .fixture/config.yaml - when false, no logs are written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Boot/initialization
	CategoryCLI     Category = "cli"     // Command dispatch
	CategoryTools   Category = "tools"   // Tool registry and execution
	CategoryEdit    Category = "edit"    // Segment edits
	CategoryJournal Category = "journal" // Edit history store
	CategoryWatch   Category = "watch"   // File watcher
	CategoryLocate  Category = "locate"  // Symbol location (tree-sitter)
	CategorySample  Category = "sample"  // Sample program runs
)

// Settings mirrors config.LoggingConfig to avoid an import cycle.
type Settings struct {
	DebugMode  bool
	Level      string          // debug, info, warn, error
	Format     string          // json, text
	Categories map[string]bool // nil = all enabled
}

// Logger writes one category to its own file. A Logger with a nil sugar is a no-op.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	settings  Settings
	level     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	configMu  sync.RWMutex
)

// Initialize sets up the logging directory for the workspace.
// Should be called once at startup. It is a silent no-op when debug mode is off.
func Initialize(workspace string, s Settings) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	configMu.Lock()
	settings = s
	logsDir = filepath.Join(workspace, ".fixture", "logs")
	level.SetLevel(ParseLevel(s.Level))
	configMu.Unlock()

	if !s.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== fixturekit logging initialized ===")
	boot.Info("Workspace: %s", workspace)
	boot.Info("Log level: %s", level.Level())
	if len(s.Categories) > 0 {
		enabled := 0
		for cat, on := range s.Categories {
			if on {
				enabled++
			}
			boot.Debug("Category '%s': %v", cat, on)
		}
		boot.Info("Enabled categories: %d/%d", enabled, len(s.Categories))
	}
	return nil
}

// ParseLevel maps a config level string to a zap level. Unknown values mean info.
func ParseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return settings.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	configMu.RLock()
	dir := logsDir
	jsonFormat := settings.Format == "json"
	configMu.RUnlock()

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(newCore(file, jsonFormat)).Sugar().With("cat", string(category)),
	}
	loggers[category] = l
	return l
}

func newCore(file *os.File, jsonFormat bool) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(enc, zapcore.AddSync(file), level)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// StructuredLog writes a log entry with key-value fields.
func (l *Logger) StructuredLog(lvl string, msg string, fields map[string]interface{}) {
	if l.sugar == nil {
		return
	}
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch ParseLevel(lvl) {
	case zapcore.DebugLevel:
		l.sugar.Debugw(msg, kv...)
	case zapcore.WarnLevel:
		l.sugar.Warnw(msg, kv...)
	case zapcore.ErrorLevel:
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

// CLI logs to the cli category
func CLI(format string, args ...interface{}) { Get(CategoryCLI).Info(format, args...) }

// CLIDebug logs debug to the cli category
func CLIDebug(format string, args ...interface{}) { Get(CategoryCLI).Debug(format, args...) }

// Tools logs to the tools category
func Tools(format string, args ...interface{}) { Get(CategoryTools).Info(format, args...) }

// ToolsDebug logs debug to the tools category
func ToolsDebug(format string, args ...interface{}) { Get(CategoryTools).Debug(format, args...) }

// ToolsWarn logs a warning to the tools category
func ToolsWarn(format string, args ...interface{}) { Get(CategoryTools).Warn(format, args...) }

// Edit logs to the edit category
func Edit(format string, args ...interface{}) { Get(CategoryEdit).Info(format, args...) }

// EditDebug logs debug to the edit category
func EditDebug(format string, args ...interface{}) { Get(CategoryEdit).Debug(format, args...) }

// EditWarn logs a warning to the edit category
func EditWarn(format string, args ...interface{}) { Get(CategoryEdit).Warn(format, args...) }

// Journal logs to the journal category
func Journal(format string, args ...interface{}) { Get(CategoryJournal).Info(format, args...) }

// JournalDebug logs debug to the journal category
func JournalDebug(format string, args ...interface{}) { Get(CategoryJournal).Debug(format, args...) }

// JournalError logs an error to the journal category
func JournalError(format string, args ...interface{}) { Get(CategoryJournal).Error(format, args...) }

// Watch logs to the watch category
func Watch(format string, args ...interface{}) { Get(CategoryWatch).Info(format, args...) }

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...interface{}) { Get(CategoryWatch).Debug(format, args...) }

// WatchError logs an error to the watch category
func WatchError(format string, args ...interface{}) { Get(CategoryWatch).Error(format, args...) }

// Locate logs to the locate category
func Locate(format string, args ...interface{}) { Get(CategoryLocate).Info(format, args...) }

// LocateDebug logs debug to the locate category
func LocateDebug(format string, args ...interface{}) { Get(CategoryLocate).Debug(format, args...) }

// Sample logs to the sample category
func Sample(format string, args ...interface{}) { Get(CategorySample).Info(format, args...) }

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
