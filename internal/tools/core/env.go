package core

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"fixturekit/internal/diff"
	"fixturekit/internal/journal"
	"fixturekit/internal/tools"
)

// ApproveFunc asks the user to allow an operation.
type ApproveFunc func(ctx context.Context, prompt string) (bool, error)

// Env is the state shared by the tools of one session.
type Env struct {
	mu  sync.RWMutex
	cwd string

	// Journal records successful edits when set.
	Journal *journal.Store

	// Approve is consulted for listings outside the working directory and
	// for directory changes. Nil approves everything.
	Approve ApproveFunc

	// MaxFileBytes bounds edited file size. Zero means no limit.
	MaxFileBytes int64

	// Diff renders dry-run previews.
	Diff *diff.Engine
}

// NewEnv returns an Env rooted at dir.
func NewEnv(dir string) (*Env, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return &Env{cwd: abs, Diff: diff.DefaultEngine}, nil
}

// Cwd returns the current working directory.
func (e *Env) Cwd() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cwd
}

func (e *Env) setCwd(dir string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cwd = dir
}

// Resolve makes p absolute relative to the working directory.
func (e *Env) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(e.Cwd(), p)
}

// Within reports whether p lies inside the working directory. Symlinks are resolved.
func (e *Env) Within(p string) bool {
	root := e.Cwd()
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}
	if real, err := filepath.EvalSymlinks(p); err == nil {
		p = real
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (e *Env) approve(ctx context.Context, prompt string) (bool, error) {
	if e.Approve == nil {
		return true, nil
	}
	return e.Approve(ctx, prompt)
}

// toJSON marshals v for a tool result.
func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

// Tools returns every core tool bound to env.
func (e *Env) Tools() []*tools.Tool {
	return []*tools.Tool{
		ReadFileTool(e),
		WriteFileTool(e),
		DeleteFileTool(e),
		MkdirTool(e),
		StatFileTool(e),
		ListDirectoryTool(e),
		ChangeDirectoryTool(e),
		GrepTool(e),
		EditFileSegmentTool(e),
		LocateSymbolTool(e),
	}
}
