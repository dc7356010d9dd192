package core

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fixturekit/internal/logging"
	"fixturekit/internal/tools"
)

// DefaultIgnorePatterns are skipped by list_directory and grep unless
// include_vc_and_pkg_dirs is set.
var DefaultIgnorePatterns = []string{
	"node_modules",
	".git",
	".svn",
	".hg",
	".bzr",
	".yarn",
	".fixture",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",
}

// ignoreFilter decides which paths below root are listed.
type ignoreFilter struct {
	root     string
	patterns []string // from root/.gitignore
	disabled bool
}

func newIgnoreFilter(root string, includeAll bool) *ignoreFilter {
	f := &ignoreFilter{root: root, disabled: includeAll}
	if includeAll {
		return f
	}

	file, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return f
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		f.patterns = append(f.patterns, strings.Trim(line, "/"))
	}
	return f
}

// include reports whether path should be listed.
func (f *ignoreFilter) include(path string) bool {
	if f.disabled {
		return true
	}
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == "." {
		return true
	}
	rel = filepath.ToSlash(rel)

	parts := strings.Split(rel, "/")
	for _, part := range parts {
		if slices.Contains(DefaultIgnorePatterns, part) {
			return false
		}
	}
	for _, pattern := range f.patterns {
		if strings.Contains(pattern, "/") {
			if ok, _ := filepath.Match(pattern, rel); ok || strings.HasPrefix(rel, pattern+"/") {
				return false
			}
			continue
		}
		for _, part := range parts {
			if ok, _ := filepath.Match(pattern, part); ok {
				return false
			}
		}
	}
	return true
}

// ListDirectoryTool returns a tool for listing files.
func ListDirectoryTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name: "list_directory",
		Description: "List files in a directory. By default, respects .gitignore and excludes " +
			"version control and package management directories (node_modules, .git, etc).",
		Category: tools.CategoryRead,
		Priority: 70,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeListDirectory(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"dir"},
			Properties: map[string]tools.Property{
				"dir": {
					Type:        "string",
					Description: "The directory to list",
				},
				"recursive_depth": {
					Type:        "integer",
					Description: "How deep to recurse into subdirectories. 0 means no recursion",
					Default:     0,
				},
				"include_vc_and_pkg_dirs": {
					Type:        "boolean",
					Description: "Include version control and package management directories",
					Default:     false,
				},
			},
		},
	}
}

type listResult struct {
	Dir     string   `json:"dir"`
	Files   []string `json:"files"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

func executeListDirectory(ctx context.Context, env *Env, args map[string]any) (string, error) {
	dir, err := tools.RequiredString(args, "dir")
	if err != nil {
		return "", err
	}
	depth, err := tools.Int(args, "recursive_depth", 0)
	if err != nil {
		return "", err
	}
	includeAll, err := tools.Bool(args, "include_vc_and_pkg_dirs", false)
	if err != nil {
		return "", err
	}

	resolved := env.Resolve(dir)
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}

	if !env.Within(resolved) {
		ok, err := env.approve(ctx, fmt.Sprintf("Allow listing files in %q?", resolved))
		if err != nil {
			return "", err
		}
		if !ok {
			logging.ToolsWarn("list_directory outside workspace denied: %s", resolved)
			return toJSON(listResult{
				Dir:   resolved,
				Files: []string{},
				Error: fmt.Sprintf("Listing files in %q was interactively disallowed by the user.", resolved),
			})
		}
	}

	logging.ToolsDebug("list_directory: dir=%s depth=%d include_all=%v", resolved, depth, includeAll)

	filter := newIgnoreFilter(resolved, includeAll)
	files, err := listFiles(ctx, resolved, depth, filter)
	if err != nil {
		return "", err
	}

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(resolved, f)
		if err != nil {
			r = f
		}
		rel = append(rel, filepath.ToSlash(r))
	}

	logging.Tools("list_directory completed: %s (%d files)", resolved, len(rel))
	return toJSON(listResult{Dir: resolved, Files: rel, Success: true})
}

// listFiles returns the files of dir, then those of its subdirectories down to depth.
func listFiles(ctx context.Context, dir string, depth int, filter *ignoreFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filter.include(dir) {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files, dirs []string
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if !filter.include(full) {
			continue
		}
		switch {
		case e.Type().IsRegular():
			files = append(files, full)
		case e.IsDir():
			dirs = append(dirs, full)
		}
	}

	if depth <= 0 {
		return files, nil
	}
	for _, d := range dirs {
		sub, err := listFiles(ctx, d, depth-1, filter)
		if err != nil {
			return nil, err
		}
		files = append(files, sub...)
	}
	return files, nil
}

// ChangeDirectoryTool returns a tool that moves the session's working directory.
func ChangeDirectoryTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "change_directory",
		Description: "Change the working directory used to resolve relative paths. Requires confirmation.",
		Category:    tools.CategoryNavigate,
		Priority:    30,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeChangeDirectory(ctx, env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"dir"},
			Properties: map[string]tools.Property{
				"dir": {
					Type:        "string",
					Description: "The directory to change to",
				},
			},
		},
	}
}

type cdResult struct {
	Dir     string `json:"dir"`
	Success bool   `json:"success"`
	Cwd     string `json:"cwd,omitempty"`
	Error   string `json:"error,omitempty"`
}

func executeChangeDirectory(ctx context.Context, env *Env, args map[string]any) (string, error) {
	dir, err := tools.RequiredString(args, "dir")
	if err != nil {
		return "", err
	}
	resolved := env.Resolve(dir)

	info, err := os.Stat(resolved)
	if err != nil {
		return toJSON(cdResult{Dir: resolved, Error: "Target directory does not exist: " + resolved})
	}
	if !info.IsDir() {
		return toJSON(cdResult{Dir: resolved, Error: "Target path is not a directory: " + resolved})
	}

	ok, err := env.approve(ctx, fmt.Sprintf("Allow changing directory to %q?", resolved))
	if err != nil {
		return "", err
	}
	if !ok {
		return toJSON(cdResult{Dir: resolved, Error: fmt.Sprintf("Changing directory to %q was disallowed by the user.", resolved)})
	}

	env.setCwd(resolved)
	logging.Tools("change_directory: %s", resolved)
	return toJSON(cdResult{Dir: resolved, Success: true, Cwd: env.Cwd()})
}
