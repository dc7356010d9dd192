package core

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"fixturekit/internal/logging"
	"fixturekit/internal/tools"
)

// GrepTool returns a tool for finding matching lines. Its line numbers feed
// line_range edits.
func GrepTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "grep",
		Description: "Search for a regular expression in file contents and report 1-indexed line numbers",
		Category:    tools.CategoryRead,
		Priority:    85,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeGrep(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"pattern"},
			Properties: map[string]tools.Property{
				"pattern": {
					Type:        "string",
					Description: "Regular expression to search for",
				},
				"path": {
					Type:        "string",
					Description: "File or directory to search (default: working directory)",
				},
				"file_pattern": {
					Type:        "string",
					Description: "Glob for file names to search (e.g., '*.go')",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum number of matches",
					Default:     50,
				},
				"ignore_case": {
					Type:        "boolean",
					Description: "Case insensitive search",
					Default:     false,
				},
			},
		},
	}
}

// GrepMatch is a single matching line.
type GrepMatch struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// maxLineBytes bounds a single scanned line.
const maxLineBytes = 4 * 1024 * 1024

type grepResult struct {
	Pattern   string      `json:"pattern"`
	Matches   []GrepMatch `json:"matches"`
	Truncated bool        `json:"truncated,omitempty"`
}

func executeGrep(ctx context.Context, env *Env, args map[string]any) (string, error) {
	pattern, err := tools.RequiredString(args, "pattern")
	if err != nil {
		return "", err
	}
	path, err := tools.String(args, "path", ".")
	if err != nil {
		return "", err
	}
	filePattern, err := tools.String(args, "file_pattern", "")
	if err != nil {
		return "", err
	}
	maxResults, err := tools.Int(args, "max_results", 50)
	if err != nil {
		return "", err
	}
	if maxResults <= 0 {
		maxResults = 50
	}
	ignoreCase, err := tools.Bool(args, "ignore_case", false)
	if err != nil {
		return "", err
	}

	expr := pattern
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", tools.ErrInvalidArgType, err)
	}

	root := env.Resolve(path)
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("path not found: %w", err)
	}

	logging.ToolsDebug("grep: pattern=%s, path=%s", pattern, root)

	var files []string
	if info.IsDir() {
		filter := newIgnoreFilter(root, false)
		err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !filter.include(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if filePattern != "" {
				if ok, _ := filepath.Match(filePattern, d.Name()); !ok {
					return nil
				}
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to walk directory: %w", err)
		}
	} else {
		files = []string{root}
	}

	res := grepResult{Pattern: pattern, Matches: []GrepMatch{}}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		// At the limit, later files are only checked for one more match.
		remaining := max(maxResults-len(res.Matches), 0)
		matches, more, err := searchFile(f, re, remaining)
		if err != nil {
			logging.ToolsWarn("grep: %s: %v (kept %d matches)", f, err, len(matches))
		}
		rel := f
		if info.IsDir() {
			if r, err := filepath.Rel(root, f); err == nil {
				rel = filepath.ToSlash(r)
			}
		} else {
			rel = path
		}
		for i := range matches {
			matches[i].File = rel
		}
		res.Matches = append(res.Matches, matches...)
		if more {
			res.Truncated = true
			break
		}
	}

	logging.Tools("grep completed: %s (%d matches)", pattern, len(res.Matches))
	return toJSON(res)
}

// searchFile returns up to maxMatches matches. more reports that the file
// holds further matches past the limit.
func searchFile(path string, re *regexp.Regexp, maxMatches int) (matches []GrepMatch, more bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if !re.MatchString(scanner.Text()) {
			continue
		}
		if len(matches) >= maxMatches {
			return matches, true, nil
		}
		matches = append(matches, GrepMatch{Line: lineNum, Text: scanner.Text()})
	}
	return matches, false, scanner.Err()
}
