// Package tools defines the file tool registry. Tools take JSON-style
// argument maps and return a string result, so the same definitions serve
// the CLI's `tools exec` command and programmatic callers.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ToolCategory groups tools by what they do to the workspace.
type ToolCategory string

const (
	// CategoryRead covers tools that only inspect files.
	CategoryRead ToolCategory = "/read"

	// CategoryWrite covers tools that create or delete files and directories.
	CategoryWrite ToolCategory = "/write"

	// CategoryEdit covers in-place segment edits.
	CategoryEdit ToolCategory = "/edit"

	// CategoryNavigate covers working directory changes and symbol lookup.
	CategoryNavigate ToolCategory = "/navigate"
)

// Property describes a single argument.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// ToolSchema describes the accepted arguments.
type ToolSchema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc runs a tool. The string result is usually JSON.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is a named operation with a schema.
type Tool struct {
	Name        string
	Description string
	Category    ToolCategory
	Execute     ExecuteFunc
	Schema      ToolSchema

	// Priority orders tools within a category, highest first (default 50).
	Priority int

	// Mutating tools change files on disk.
	Mutating bool
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	for _, req := range t.Schema.Required {
		if _, ok := t.Schema.Properties[req]; !ok {
			return fmt.Errorf("%w: required argument %q has no property", ErrInvalidSchema, req)
		}
	}
	return nil
}

// Markdown documents the tool: description, then one row per argument.
func (t *Tool) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", t.Name, t.Description)
	fmt.Fprintf(&sb, "Category: `%s`", t.Category)
	if t.Mutating {
		sb.WriteString(" (modifies files)")
	}
	sb.WriteString("\n\n")

	if len(t.Schema.Properties) == 0 {
		sb.WriteString("No arguments.\n")
		return sb.String()
	}

	required := make(map[string]bool, len(t.Schema.Required))
	for _, r := range t.Schema.Required {
		required[r] = true
	}
	names := make([]string, 0, len(t.Schema.Properties))
	for name := range t.Schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Argument | Type | Required | Default | Description |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, name := range names {
		p := t.Schema.Properties[name]
		def := ""
		if p.Default != nil {
			def = fmt.Sprintf("`%v`", p.Default)
		}
		req := ""
		if required[name] {
			req = "yes"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n", name, p.Type, req, def, p.Description)
	}
	return sb.String()
}

// ToolResult wraps a tool's output with timing.
type ToolResult struct {
	ToolName   string `json:"tool"`
	Result     string `json:"result"`
	Error      error  `json:"-"`
	DurationMs int64  `json:"duration_ms"`
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
