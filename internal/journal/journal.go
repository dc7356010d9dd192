// Package journal records applied segment edits in SQLite so they can be
// listed and undone.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fixturekit/internal/logging"
	"fixturekit/internal/segment"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQL driver names. DriverPure needs no cgo.
const (
	DriverPure = "sqlite"
	DriverCgo  = "sqlite3"
)

var (
	// ErrEntryNotFound is returned when no entry matches an ID.
	ErrEntryNotFound = errors.New("journal entry not found")

	// ErrAmbiguousID is returned when an ID prefix matches several entries.
	ErrAmbiguousID = errors.New("ambiguous journal entry id")

	// ErrConflict is returned by Undo when the file changed after the edit.
	ErrConflict = errors.New("file changed since edit")

	// ErrAlreadyUndone is returned by Undo for an entry that was already reverted.
	ErrAlreadyUndone = errors.New("edit already undone")
)

// Entry is one applied edit.
type Entry struct {
	ID        string     `json:"id"`
	Path      string     `json:"path"`
	Mode      string     `json:"mode"`
	Matches   int        `json:"matches"`
	Before    string     `json:"-"`
	After     string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UndoneAt  *time.Time `json:"undone_at,omitempty"`
}

// ShortID returns the first eight characters of the ID.
func (e Entry) ShortID() string {
	if len(e.ID) < 8 {
		return e.ID
	}
	return e.ID[:8]
}

// Store is the journal database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex // serializes Undo
}

// Open creates or opens the journal at dbPath using driver (DriverPure when empty).
func Open(dbPath, driver string) (*Store, error) {
	if driver == "" {
		driver = DriverPure
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var dsn string
	switch driver {
	case DriverPure:
		dsn = dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	case DriverCgo:
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.JournalDebug("journal opened: %s (driver %s)", dbPath, driver)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS edits (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		mode TEXT NOT NULL,
		matches INTEGER NOT NULL,
		before TEXT NOT NULL,
		after TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		undone_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_edits_path ON edits(path);
	CREATE INDEX IF NOT EXISTS idx_edits_created ON edits(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores e. A missing ID or CreatedAt is filled in; Path is made absolute.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	abs, err := filepath.Abs(e.Path)
	if err != nil {
		return e, fmt.Errorf("failed to resolve path: %w", err)
	}
	e.Path = abs

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO edits (id, path, mode, matches, before, after, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.Mode, e.Matches, e.Before, e.After, e.CreatedAt.UnixNano())
	if err != nil {
		logging.JournalError("record failed: %s - %v", e.Path, err)
		return e, fmt.Errorf("failed to record edit: %w", err)
	}

	logging.Journal("recorded %s: %s (%s, %d matches)", e.ShortID(), e.Path, e.Mode, e.Matches)
	return e, nil
}

// RecordResult records a written segment.FileResult.
func (s *Store) RecordResult(ctx context.Context, fr segment.FileResult) (Entry, error) {
	return s.Record(ctx, Entry{
		Path:    fr.Path,
		Mode:    string(fr.Result.Mode),
		Matches: fr.Result.Matches,
		Before:  fr.Before,
		After:   fr.Result.Content,
	})
}

const selectColumns = `SELECT id, path, mode, matches, before, after, created_at, undone_at FROM edits`

// List returns entries newest first. An empty path lists every file; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, path string, limit int) ([]Entry, error) {
	query := selectColumns
	var args []any
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path: %w", err)
		}
		query += ` WHERE path = ?`
		args = append(args, abs)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edits: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry whose ID equals or starts with id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, fmt.Errorf("%w: empty id", ErrEntryNotFound)
	}

	// Prefixes are compared literally so % and _ in id match only themselves.
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE substr(id, 1, length(?)) = ? ORDER BY id = ? DESC LIMIT 2`, id, id, id)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query edit: %w", err)
	}
	defer rows.Close()

	var found []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Entry{}, err
		}
		if e.ID == id {
			return e, nil
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, err
	}

	switch len(found) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	case 1:
		return found[0], nil
	default:
		return Entry{}, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// Undo restores the entry's Before content when the file still holds its After
// content, then marks the entry undone.
func (s *Store) Undo(ctx context.Context, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return e, err
	}
	if e.UndoneAt != nil {
		return e, fmt.Errorf("%w: %s", ErrAlreadyUndone, e.ShortID())
	}

	info, err := os.Stat(e.Path)
	if err != nil {
		return e, fmt.Errorf("failed to stat file: %w", err)
	}
	current, err := os.ReadFile(e.Path)
	if err != nil {
		return e, fmt.Errorf("failed to read file: %w", err)
	}
	if string(current) != e.After {
		logging.JournalError("undo %s refused: %s changed since edit", e.ShortID(), e.Path)
		return e, fmt.Errorf("%w: %s", ErrConflict, e.Path)
	}

	if err := segment.WriteFileAtomic(e.Path, []byte(e.Before), info.Mode().Perm()); err != nil {
		return e, err
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `UPDATE edits SET undone_at = ? WHERE id = ?`, now.UnixNano(), e.ID); err != nil {
		return e, fmt.Errorf("failed to mark edit undone: %w", err)
	}
	e.UndoneAt = &now

	logging.Journal("undid %s: %s", e.ShortID(), e.Path)
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		created int64
		undone  sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.Path, &e.Mode, &e.Matches, &e.Before, &e.After, &created, &undone); err != nil {
		return e, fmt.Errorf("failed to scan edit: %w", err)
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	if undone.Valid {
		t := time.Unix(0, undone.Int64).UTC()
		e.UndoneAt = &t
	}
	return e, nil
}
