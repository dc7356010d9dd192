package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"fixturekit/internal/locate"
	"fixturekit/internal/logging"
	"fixturekit/internal/segment"
	"fixturekit/internal/tools"
)

const editDescription = `Edit a segment of a file.

Modes:
- find_replace: replace matches of the regular expression "find" (every match unless all=false).
- block: replace the text between the first match of "start" and the next match of "end"; include_markers also replaces the markers.
- line_range: replace lines start_line..end_line (1-indexed; end_line excluded when inclusive=false). "symbol" fills the range from a Go, Rust or Python declaration.

The file is written only when something matched.`

// EditFileSegmentTool returns the segment edit tool.
func EditFileSegmentTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "edit_file_segment",
		Description: editDescription,
		Category:    tools.CategoryEdit,
		Priority:    95,
		Mutating:    true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeEditFileSegment(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"file", "mode", "replace"},
			Properties: map[string]tools.Property{
				"file":            {Type: "string", Description: "The file to edit"},
				"mode":            {Type: "string", Description: "Edit mode", Enum: []any{"find_replace", "block", "line_range"}},
				"replace":         {Type: "string", Description: "The content to replace with"},
				"find":            {Type: "string", Description: "find_replace: regular expression to match"},
				"all":             {Type: "boolean", Description: "find_replace: replace every match", Default: true},
				"start":           {Type: "string", Description: "block: regular expression marking the start"},
				"end":             {Type: "string", Description: "block: regular expression marking the end"},
				"include_markers": {Type: "boolean", Description: "block: also replace the markers", Default: false},
				"start_line":      {Type: "integer", Description: "line_range: first line (1-indexed)"},
				"end_line":        {Type: "integer", Description: "line_range: last line"},
				"inclusive":       {Type: "boolean", Description: "line_range: replace end_line too", Default: true},
				"symbol":          {Type: "string", Description: "line_range: declaration whose lines are replaced"},
				"dry_run":         {Type: "boolean", Description: "Return a diff without writing", Default: false},
			},
		},
	}
}

// RequestFromArgs builds a segment request from tool arguments.
func RequestFromArgs(args map[string]any) (segment.Request, error) {
	var req segment.Request

	modeName, err := tools.RequiredString(args, "mode")
	if err != nil {
		return req, err
	}
	mode, err := segment.ParseMode(modeName)
	if err != nil {
		return req, err
	}
	replace, err := tools.String(args, "replace", "")
	if err != nil {
		return req, err
	}
	req = segment.NewRequest(mode, replace)

	if req.Find, err = tools.String(args, "find", ""); err != nil {
		return req, err
	}
	if req.All, err = tools.Bool(args, "all", true); err != nil {
		return req, err
	}
	if req.Start, err = tools.String(args, "start", ""); err != nil {
		return req, err
	}
	if req.End, err = tools.String(args, "end", ""); err != nil {
		return req, err
	}
	if req.IncludeMarkers, err = tools.Bool(args, "include_markers", false); err != nil {
		return req, err
	}
	if req.StartLine, err = tools.Int(args, "start_line", 0); err != nil {
		return req, err
	}
	if req.EndLine, err = tools.Int(args, "end_line", 0); err != nil {
		return req, err
	}
	if req.Inclusive, err = tools.Bool(args, "inclusive", true); err != nil {
		return req, err
	}
	return req, nil
}

// ApplySymbol points a line_range request at the lines of a declaration in path.
func ApplySymbol(ctx context.Context, req *segment.Request, path, symbol string) error {
	if req.Mode != segment.ModeLineRange {
		return fmt.Errorf("symbol requires mode %s", segment.ModeLineRange)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	sym, err := locate.Locate(ctx, path, content, symbol)
	if err != nil {
		return err
	}
	req.StartLine, req.EndLine, req.Inclusive = sym.StartLine, sym.EndLine, true
	return nil
}

// EditResult is the JSON result of edit_file_segment.
type EditResult struct {
	File    string `json:"file"`
	Mode    string `json:"mode"`
	Matches int    `json:"matches"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
	Diff    string `json:"diff,omitempty"`
	EntryID string `json:"entry_id,omitempty"`
}

func executeEditFileSegment(ctx context.Context, env *Env, args map[string]any) (string, error) {
	file, err := tools.RequiredString(args, "file")
	if err != nil {
		return "", err
	}
	modeName, _ := tools.String(args, "mode", "")
	res := EditResult{File: file, Mode: modeName}

	fail := func(err error) (string, error) {
		res.Success = false
		res.Error = errorMessage(err)
		logging.EditWarn("edit_file_segment failed: %s: %v", file, err)
		return toJSON(res)
	}

	req, err := RequestFromArgs(args)
	if err != nil {
		return fail(err)
	}
	dryRun, err := tools.Bool(args, "dry_run", false)
	if err != nil {
		return fail(err)
	}
	symbol, err := tools.String(args, "symbol", "")
	if err != nil {
		return fail(err)
	}

	path := env.Resolve(file)
	if symbol != "" {
		if err := ApplySymbol(ctx, &req, path, symbol); err != nil {
			return fail(err)
		}
	} else if req.Mode == segment.ModeLineRange {
		// Both bounds must be given; an explicit 0 start is the first line.
		for _, key := range []string{"start_line", "end_line"} {
			if _, ok := args[key]; !ok {
				return fail(fmt.Errorf("%s: %w: %s", req.Mode, segment.ErrMissingParam, key))
			}
		}
	}

	fr, err := segment.ApplyFile(ctx, path, req, segment.Options{DryRun: dryRun, MaxFileBytes: env.MaxFileBytes})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	res.Matches = fr.Result.Matches
	if err != nil {
		return fail(err)
	}

	res.Success = true
	res.DryRun = dryRun
	if dryRun {
		res.Diff = env.Diff.ComputeDiff(file, file, fr.Result.Original, fr.Result.Content).Unified()
	}

	if fr.Written && env.Journal != nil {
		entry, err := env.Journal.RecordResult(ctx, fr)
		if err != nil {
			logging.JournalError("edit applied but not journaled: %s: %v", path, err)
		} else {
			res.EntryID = entry.ID
		}
	}
	return toJSON(res)
}

// errorMessage maps no-match to the message callers check for.
func errorMessage(err error) string {
	if errors.Is(err, segment.ErrNoMatch) {
		return "No matches found"
	}
	return err.Error()
}

// LocateSymbolTool returns a tool reporting declaration line ranges.
func LocateSymbolTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "locate_symbol",
		Description: "Report the 1-indexed line range of a declaration in a Go, Rust or Python file. Without a name, list every declaration.",
		Category:    tools.CategoryNavigate,
		Priority:    75,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeLocateSymbol(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"file"},
			Properties: map[string]tools.Property{
				"file": {Type: "string", Description: "The source file"},
				"name": {Type: "string", Description: "Declaration name, or Type.method"},
			},
		},
	}
}

func executeLocateSymbol(ctx context.Context, env *Env, args map[string]any) (string, error) {
	file, err := tools.RequiredString(args, "file")
	if err != nil {
		return "", err
	}
	name, err := tools.String(args, "name", "")
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(env.Resolve(file))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		syms, err := locate.Symbols(ctx, file, content)
		if err != nil {
			return "", err
		}
		if syms == nil {
			syms = []locate.Symbol{}
		}
		return toJSON(map[string]any{"file": file, "symbols": syms})
	}

	sym, err := locate.Locate(ctx, file, content, name)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]any{"file": file, "symbol": sym})
}
