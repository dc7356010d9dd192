// Package watch reports debounced edits to a single file as diffs.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fixturekit/internal/diff"
	"fixturekit/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Change is one debounced modification.
type Change struct {
	Path    string
	Diff    *diff.FileDiff
	Removed bool
	At      time.Time
}

// Stats counts watcher activity.
type Stats struct {
	Events  int
	Changes int
	Errors  int
}

// Watcher watches one file. The parent directory is watched so that
// atomic rename-based writes are seen.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	engine   *diff.Engine
	onChange func(Change)

	last    string    // content at the last report
	missing bool      // file was absent at the last report
	pending time.Time // time of the latest unreported event
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	stats   Stats
}

// New creates a watcher for path. onChange runs on the watcher goroutine.
func New(path string, debounce time.Duration, onChange func(Change)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("onChange callback is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		engine:   diff.NewEngine(diff.DefaultContext),
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start snapshots the file and begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read watched file: %w", err)
	}
	w.last = string(data)

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.running = true
	logging.Watch("watching %s (debounce %v)", w.path, w.debounce)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine. It is safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchError("error closing watcher: %v", err)
	}
	logging.Watch("stopped watching %s", w.path)
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(max(w.debounce/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	logging.WatchDebug("%s event for %s", event.Op, event.Name)
	w.mu.Lock()
	w.stats.Events++
	w.pending = time.Now()
	w.mu.Unlock()
}

// flush reports the pending change once the debounce period has passed.
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	previous, wasMissing := w.last, w.missing
	w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	removed := errors.Is(err, os.ErrNotExist)
	if err != nil && !removed {
		logging.WatchError("failed to read %s: %v", w.path, err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	current := string(data)
	if removed == wasMissing && current == previous {
		return
	}

	fd := w.engine.ComputeDiff(w.path, w.path, previous, current)
	w.mu.Lock()
	w.last = current
	w.missing = removed
	w.stats.Changes++
	w.mu.Unlock()

	added, deleted := fd.Stats()
	logging.Watch("change in %s: +%d -%d", w.path, added, deleted)
	w.onChange(Change{Path: w.path, Diff: fd, Removed: removed, At: now})
}
