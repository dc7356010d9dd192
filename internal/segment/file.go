package segment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fixturekit/internal/logging"

	"golang.org/x/sync/errgroup"
)

// Options controls file-level edits.
type Options struct {
	// DryRun computes the edit without writing.
	DryRun bool

	// MaxFileBytes refuses larger files. Zero means no limit.
	MaxFileBytes int64

	// Workers bounds ApplyFiles concurrency. Zero or less means 4.
	Workers int
}

// FileResult is the per-file outcome of ApplyFiles.
type FileResult struct {
	Path    string
	Before  string // raw content read from disk
	Result  Result
	Err     error
	Written bool
}

// ApplyFile reads path, applies req and writes the result back when the edit
// matched and DryRun is off. The file's permission bits are preserved.
func ApplyFile(ctx context.Context, path string, req Request, opts Options) (FileResult, error) {
	fr := FileResult{Path: path}
	if err := ctx.Err(); err != nil {
		return fr, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fr, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return fr, fmt.Errorf("%s is a directory", path)
	}
	if opts.MaxFileBytes > 0 && info.Size() > opts.MaxFileBytes {
		return fr, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, info.Size(), opts.MaxFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fr, fmt.Errorf("failed to read file: %w", err)
	}

	logging.EditDebug("edit_file_segment: path=%s mode=%s dry_run=%v", path, req.Mode, opts.DryRun)

	fr.Before = string(data)
	res, err := Apply(fr.Before, req)
	fr.Result = res
	if err != nil {
		fr.Err = err
		if errors.Is(err, ErrNoMatch) {
			logging.EditDebug("edit_file_segment: no match in %s", path)
		}
		return fr, err
	}

	if opts.DryRun {
		logging.Edit("edit_file_segment dry run: %s (%d matches)", path, res.Matches)
		return fr, nil
	}

	if err := ctx.Err(); err != nil {
		return fr, err
	}
	if err := WriteFileAtomic(path, []byte(res.Content), info.Mode().Perm()); err != nil {
		fr.Err = err
		return fr, err
	}
	fr.Written = true

	logging.Edit("edit_file_segment completed: %s (%s, %d matches)", path, res.Mode, res.Matches)
	return fr, nil
}

// ApplyFiles applies req to every path concurrently. Results keep input order.
// Paths naming the same file are rejected with ErrDuplicatePath.
// A file without matches is reported in its FileResult only; any other error
// cancels the remaining work and is returned.
func ApplyFiles(ctx context.Context, paths []string, req Request, opts Options) ([]FileResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := checkDuplicates(paths); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	timer := logging.StartTimer(logging.CategoryEdit, fmt.Sprintf("edit %d files", len(paths)))
	defer timer.Stop()

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			fr, err := ApplyFile(gctx, path, req, opts)
			fr.Path = path
			fr.Err = err
			results[i] = fr
			if err != nil && !errors.Is(err, ErrNoMatch) {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.EditWarn("multi-file edit aborted: %v", err)
		return results, err
	}
	return results, nil
}

func checkDuplicates(paths []string) error {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		key, err := filepath.Abs(p)
		if err != nil {
			key = filepath.Clean(p)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, p)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
