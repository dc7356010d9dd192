package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fixturekit/internal/diff"
	"fixturekit/internal/journal"
	"fixturekit/internal/logging"
	"fixturekit/internal/segment"
	"fixturekit/internal/tools/core"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	editMode           string
	editFind           string
	editAll            bool
	editStart          string
	editEnd            string
	editIncludeMarkers bool
	editStartLine      int
	editEndLine        int
	editInclusive      bool
	editSymbol         string
	editReplace        string
	editReplaceFile    string
	editDryRun         bool
)

// errNotApproved is returned when the user declines an edit.
var errNotApproved = errors.New("edit not approved")

// editCmd applies one segment edit to one or more files
var editCmd = &cobra.Command{
	Use:   "edit <file>...",
	Short: "Replace a segment of one or more files",
	Long: `Replaces a segment of each file and shows a diff before writing.

Modes:
  find_replace  --find is a regular expression; --all replaces every match
  block         text between --start and --end (markers kept unless --include-markers)
  line_range    --start-line..--end-line (1-indexed); --symbol takes the range
                from a Go, Rust or Python declaration

The replacement is literal. Applied edits are journaled and can be undone.

Example:
  fixture edit program.go --mode line_range --symbol CalculateNewValue --replace-file new.go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editMode, "mode", string(segment.ModeFindReplace), "Edit mode: find_replace, block or line_range")
	editCmd.Flags().StringVar(&editFind, "find", "", "find_replace: pattern to match")
	editCmd.Flags().BoolVar(&editAll, "all", true, "find_replace: replace every match")
	editCmd.Flags().StringVar(&editStart, "start", "", "block: start marker pattern")
	editCmd.Flags().StringVar(&editEnd, "end", "", "block: end marker pattern")
	editCmd.Flags().BoolVar(&editIncludeMarkers, "include-markers", false, "block: replace the markers too")
	editCmd.Flags().IntVar(&editStartLine, "start-line", 0, "line_range: first line (1-indexed; 0 is the first line)")
	editCmd.Flags().IntVar(&editEndLine, "end-line", 0, "line_range: last line")
	editCmd.Flags().BoolVar(&editInclusive, "inclusive", true, "line_range: replace the end line too")
	editCmd.Flags().StringVar(&editSymbol, "symbol", "", "line_range: replace the lines of this declaration")
	editCmd.Flags().StringVar(&editReplace, "replace", "", "Replacement text")
	editCmd.Flags().StringVar(&editReplaceFile, "replace-file", "", "Read the replacement from a file (- for stdin)")
	editCmd.Flags().BoolVar(&editDryRun, "dry-run", false, "Show the diff without writing")
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := editRequest()
	if err != nil {
		return err
	}

	paths := make([]string, len(args))
	for i, a := range args {
		paths[i] = resolvePath(a)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if editSymbol != "" {
		if len(paths) != 1 {
			return fmt.Errorf("--symbol takes exactly one file, got %d", len(paths))
		}
		if err := core.ApplySymbol(ctx, &req, paths[0], editSymbol); err != nil {
			return err
		}
		logDebug("symbol resolved", zap.String("symbol", editSymbol), zap.Int("start", req.StartLine), zap.Int("end", req.EndLine))
	}

	// Every file is previewed first; nothing is written before approval.
	results, err := segment.ApplyFiles(ctx, paths, req, segment.Options{
		DryRun:       true,
		MaxFileBytes: cfg.Edit.MaxFileBytes,
		Workers:      cfg.Edit.Workers,
	})
	if err != nil {
		return err
	}

	engine := diff.NewEngine(cfg.Edit.ContextLines)
	styles := diff.DefaultStyles()
	var preview strings.Builder
	var pending []segment.FileResult
	matched := 0

	for _, fr := range results {
		name := displayPath(fr.Path)
		if fr.Err != nil {
			fmt.Printf("%s: no matches found\n", name)
			continue
		}
		matched++
		if !fr.Result.Changed() {
			fmt.Printf("%s: %d match(es), content unchanged\n", name, fr.Result.Matches)
			continue
		}
		preview.WriteString(diff.Render(engine.ComputeDiff(name, name, fr.Result.Original, fr.Result.Content), styles))
		pending = append(pending, fr)
	}

	if matched == 0 {
		return fmt.Errorf("%w in %d file(s)", segment.ErrNoMatch, len(paths))
	}
	if len(pending) == 0 {
		return nil
	}

	if editDryRun {
		fmt.Print(preview.String())
		return nil
	}

	title := fmt.Sprintf("Apply %s edit to %d file(s)?", req.Mode, len(pending))
	ok, err := newPrompter(cfg).Confirm(ctx, title, preview.String())
	if err != nil {
		return err
	}
	if !ok {
		return errNotApproved
	}

	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	for _, fr := range pending {
		if err := commitEdit(ctx, store, fr); err != nil {
			return err
		}
	}
	return nil
}

// editRequest builds the segment request from the edit flags.
func editRequest() (segment.Request, error) {
	mode, err := segment.ParseMode(editMode)
	if err != nil {
		return segment.Request{}, err
	}

	replace := editReplace
	if editReplaceFile != "" {
		replace, err = readReplacement(editReplaceFile)
		if err != nil {
			return segment.Request{}, err
		}
	}

	req := segment.NewRequest(mode, replace)
	req.Find = editFind
	req.All = editAll
	req.Start = editStart
	req.End = editEnd
	req.IncludeMarkers = editIncludeMarkers
	req.StartLine = editStartLine
	req.EndLine = editEndLine
	req.Inclusive = editInclusive

	if editSymbol != "" {
		// The line range is filled in by ApplySymbol.
		if req.Mode != segment.ModeLineRange {
			return req, fmt.Errorf("--symbol requires --mode %s", segment.ModeLineRange)
		}
		return req, nil
	}
	return req, req.Validate()
}

func readReplacement(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read replacement: %w", err)
	}
	return string(data), nil
}

// commitEdit writes a previewed edit after checking the file did not change
// since it was read, then journals it.
func commitEdit(ctx context.Context, store *journal.Store, fr segment.FileResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(fr.Path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	current, err := os.ReadFile(fr.Path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if string(current) != fr.Before {
		return fmt.Errorf("%s changed on disk since the preview", displayPath(fr.Path))
	}

	if err := segment.WriteFileAtomic(fr.Path, []byte(fr.Result.Content), info.Mode().Perm()); err != nil {
		return err
	}
	fr.Written = true
	logging.Edit("edit committed: %s (%s, %d matches)", fr.Path, fr.Result.Mode, fr.Result.Matches)

	line := fmt.Sprintf("edited %s: %d match(es)", displayPath(fr.Path), fr.Result.Matches)
	if store != nil {
		entry, err := store.RecordResult(ctx, fr)
		if err != nil {
			logging.JournalError("edit applied but not journaled: %s: %v", fr.Path, err)
		} else {
			line += fmt.Sprintf(" [%s]", entry.ShortID())
		}
	}
	fmt.Println(line)
	return nil
}

// resolvePath makes p absolute. Relative paths are taken from the current directory.
func resolvePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// displayPath shows p relative to the workspace when it lies inside it.
func displayPath(p string) string {
	if workspace == "" {
		return p
	}
	ws, err := filepath.Abs(workspace)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(ws, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}
