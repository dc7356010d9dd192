package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fixturekit/internal/logging"
	"fixturekit/internal/tools"
)

// ReadFileTool returns a tool for reading file contents.
func ReadFileTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "read_file",
		Description: "Read the contents of a file",
		Category:    tools.CategoryRead,
		Priority:    90,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeReadFile(env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"file"},
			Properties: map[string]tools.Property{
				"file": {
					Type:        "string",
					Description: "The file to read",
				},
				"start_line": {
					Type:        "integer",
					Description: "First line to return (1-indexed, optional)",
				},
				"end_line": {
					Type:        "integer",
					Description: "Last line to return (inclusive, optional)",
				},
			},
		},
	}
}

type readFileResult struct {
	File      string `json:"file"`
	Content   string `json:"content"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

func executeReadFile(env *Env, args map[string]any) (string, error) {
	file, err := tools.RequiredString(args, "file")
	if err != nil {
		return "", err
	}
	startLine, err := tools.Int(args, "start_line", 0)
	if err != nil {
		return "", err
	}
	endLine, err := tools.Int(args, "end_line", 0)
	if err != nil {
		return "", err
	}

	path := env.Resolve(file)
	logging.ToolsDebug("read_file: path=%s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	res := readFileResult{File: file, Content: string(data)}
	if startLine > 0 || endLine > 0 {
		res.Content, res.StartLine, res.EndLine = SliceLines(res.Content, startLine, endLine)
	}

	logging.Tools("read_file completed: %s (%d bytes)", path, len(res.Content))
	return toJSON(res)
}

// SliceLines returns lines start..end (1-based, inclusive) clamped to the content.
func SliceLines(content string, start, end int) (string, int, int) {
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end < 1 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return "", start, end
	}
	return strings.Join(lines[start-1:end], "\n"), start, end
}

// WriteFileTool returns a tool for writing content to a file.
func WriteFileTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "write_file",
		Description: "Write content to a file (overwrites if exists)",
		Category:    tools.CategoryWrite,
		Priority:    80,
		Mutating:    true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeWriteFile(env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"file", "content"},
			Properties: map[string]tools.Property{
				"file": {
					Type:        "string",
					Description: "The file to write to",
				},
				"content": {
					Type:        "string",
					Description: "The content to write",
				},
				"create_dirs": {
					Type:        "boolean",
					Description: "Create parent directories if they don't exist",
					Default:     true,
				},
			},
		},
	}
}

func executeWriteFile(env *Env, args map[string]any) (string, error) {
	file, err := tools.RequiredString(args, "file")
	if err != nil {
		return "", err
	}
	content, err := tools.String(args, "content", "")
	if err != nil {
		return "", err
	}
	createDirs, err := tools.Bool(args, "create_dirs", true)
	if err != nil {
		return "", err
	}

	path := env.Resolve(file)
	logging.ToolsDebug("write_file: path=%s, size=%d", path, len(content))

	if createDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create directories: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logging.Tools("write_file completed: %s (%d bytes)", path, len(content))
	return toJSON(map[string]any{"file": file, "content_length": len(content)})
}

// DeleteFileTool returns a tool for deleting a file.
func DeleteFileTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "delete_file",
		Description: "Delete a file",
		Category:    tools.CategoryWrite,
		Priority:    40,
		Mutating:    true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeDeleteFile(env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"file"},
			Properties: map[string]tools.Property{
				"file": {
					Type:        "string",
					Description: "The file to delete",
				},
			},
		},
	}
}

func executeDeleteFile(env *Env, args map[string]any) (string, error) {
	file, err := tools.RequiredString(args, "file")
	if err != nil {
		return "", err
	}
	path := env.Resolve(file)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", file)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to delete file: %w", err)
	}

	logging.Tools("delete_file completed: %s", path)
	return toJSON(map[string]any{"file": file})
}

// MkdirTool returns a tool for creating directories.
func MkdirTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "mkdir",
		Description: "Create a directory (recursively)",
		Category:    tools.CategoryWrite,
		Priority:    60,
		Mutating:    true,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeMkdir(env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"dir"},
			Properties: map[string]tools.Property{
				"dir": {
					Type:        "string",
					Description: "The directory to create",
				},
				"recursive": {
					Type:        "boolean",
					Description: "Create missing parents",
					Default:     true,
				},
			},
		},
	}
}

func executeMkdir(env *Env, args map[string]any) (string, error) {
	dir, err := tools.RequiredString(args, "dir")
	if err != nil {
		return "", err
	}
	recursive, err := tools.Bool(args, "recursive", true)
	if err != nil {
		return "", err
	}

	path := env.Resolve(dir)
	if recursive {
		err = os.MkdirAll(path, 0755)
	} else {
		err = os.Mkdir(path, 0755)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	logging.Tools("mkdir completed: %s", path)
	return toJSON(map[string]any{"dir": dir})
}

// StatFileTool returns a tool for file metadata.
func StatFileTool(env *Env) *tools.Tool {
	return &tools.Tool{
		Name:        "stat_file",
		Description: "Get file or directory stats",
		Category:    tools.CategoryRead,
		Priority:    60,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return executeStatFile(env, args)
		},
		Schema: tools.ToolSchema{
			Required: []string{"path"},
			Properties: map[string]tools.Property{
				"path": {
					Type:        "string",
					Description: "The file or directory to stat",
				},
			},
		},
	}
}

type statResult struct {
	Path        string    `json:"path"`
	IsFile      bool      `json:"is_file"`
	IsDirectory bool      `json:"is_directory"`
	Size        int64     `json:"size"`
	Mode        string    `json:"mode"`
	Mtime       time.Time `json:"mtime"`
}

func executeStatFile(env *Env, args map[string]any) (string, error) {
	p, err := tools.RequiredString(args, "path")
	if err != nil {
		return "", err
	}
	info, err := os.Stat(env.Resolve(p))
	if err != nil {
		return "", fmt.Errorf("failed to stat: %w", err)
	}
	return toJSON(statResult{
		Path:        p,
		IsFile:      info.Mode().IsRegular(),
		IsDirectory: info.IsDir(),
		Size:        info.Size(),
		Mode:        info.Mode().Perm().String(),
		Mtime:       info.ModTime().UTC(),
	})
}
