package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fixturekit/internal/segment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), ".fixture", "journal.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// editFile applies a find_replace edit and records it.
func editFile(t *testing.T, s *Store, path, find, replace string) Entry {
	t.Helper()
	req := segment.NewRequest(segment.ModeFindReplace, replace)
	req.Find = find
	fr, err := segment.ApplyFile(context.Background(), path, req, segment.Options{})
	require.NoError(t, err)
	e, err := s.RecordResult(context.Background(), fr)
	require.NoError(t, err)
	return e
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e, err := s.Record(ctx, Entry{Path: "rel/file.go", Mode: "block", Matches: 1, Before: "a", After: "b"})
	require.NoError(t, err)
	assert.Len(t, e.ID, 36)
	assert.True(t, filepath.IsAbs(e.Path))
	assert.False(t, e.CreatedAt.IsZero())

	got, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Path, got.Path)
	assert.Equal(t, "block", got.Mode)
	assert.Equal(t, 1, got.Matches)
	assert.Equal(t, "a", got.Before)
	assert.Equal(t, "b", got.After)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.UndoneAt)

	byPrefix, err := s.Get(ctx, e.ShortID())
	require.NoError(t, err)
	assert.Equal(t, e.ID, byPrefix.ID)
}

func TestGet_Errors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = s.Get(ctx, "  ")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	for _, id := range []string{"abc-1", "abc-2"} {
		_, err := s.Record(ctx, Entry{ID: id, Path: "f", Mode: "block"})
		require.NoError(t, err)
	}
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	e, err := s.Get(ctx, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", e.ID)
}

func TestGet_WildcardsAreLiteral(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e, err := s.Record(ctx, Entry{Path: "f", Mode: "find_replace", Matches: 1})
	require.NoError(t, err)

	for _, id := range []string{"%", "_", e.ID[:1] + "%", "_" + e.ID[1:4], `\`} {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, ErrEntryNotFound, "id %q", id)
	}

	got, err := s.Get(ctx, e.ID[:4])
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}

func TestGet_ExactIDWinsOverPrefixes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"abc-1", "abc-2", "abc"} {
		_, err := s.Record(ctx, Entry{ID: id, Path: "f", Mode: "block"})
		require.NoError(t, err)
	}

	e, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", e.ID)
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, p := range []string{"a.go", "b.go", "a.go"} {
		_, err := s.Record(ctx, Entry{
			ID:        string(rune('x' + i)),
			Path:      p,
			Mode:      "line_range",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"z", "y", "x"}, []string{all[0].ID, all[1].ID, all[2].ID})

	onlyA, err := s.List(ctx, "a.go", 0)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "z", onlyA[0].ID)

	limited, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "z", limited[0].ID)
}

func TestUndo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("x := 1\r\ny := 2\r\n"), 0o640))

	e := editFile(t, s, path, "x", "z")
	edited, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "z := 1\ny := 2\n", string(edited))

	undone, err := s.Undo(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, undone.UndoneAt)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x := 1\r\ny := 2\r\n", string(restored), "original bytes restored")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	_, err = s.Undo(ctx, e.ID)
	assert.ErrorIs(t, err, ErrAlreadyUndone)

	got, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.UndoneAt)
}

func TestUndo_Conflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("alpha\n"), 0o644))

	e := editFile(t, s, path, "alpha", "beta")
	require.NoError(t, os.WriteFile(path, []byte("gamma\n"), 0o644))

	_, err := s.Undo(ctx, e.ID)
	assert.ErrorIs(t, err, ErrConflict)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gamma\n", string(data))

	got, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UndoneAt)
}

func TestUndo_StackedEdits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	first := editFile(t, s, path, "one", "two")
	second := editFile(t, s, path, "two", "three")

	_, err := s.Undo(ctx, first.ID)
	assert.ErrorIs(t, err, ErrConflict, "older edit is shadowed by the newer one")

	_, err = s.Undo(ctx, second.ID)
	require.NoError(t, err)
	_, err = s.Undo(ctx, first.ID)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(dbPath, DriverPure)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Entry{ID: "keep", Path: "f", Mode: "block"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dbPath, DriverPure)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, dbPath, s.Path())

	_, err = s.Get(context.Background(), "keep")
	require.NoError(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "j.db"), "postgres")
	assert.Error(t, err)
}

func TestOpen_CgoDriver(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "j.db"), DriverCgo)
	if err != nil {
		t.Skipf("cgo sqlite driver unavailable: %v", err)
	}
	defer s.Close()

	e, err := s.Record(context.Background(), Entry{Path: "f", Mode: "find_replace", Matches: 2})
	require.NoError(t, err)
	got, err := s.Get(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Matches)
}
