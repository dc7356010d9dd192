// Package diff computes line-level previews of segment edits using sergi/go-diff.
package diff

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// LineKind classifies a line of a hunk.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

func (k LineKind) prefix() string {
	switch k {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// Line is one line of a hunk. OldNum and NewNum are 1-based; zero means the
// line does not exist on that side.
type Line struct {
	Kind    LineKind
	Content string
	OldNum  int
	NewNum  int
}

// Hunk is a run of changes plus surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff holds every hunk between two versions of one file.
type FileDiff struct {
	OldPath  string
	NewPath  string
	Hunks    []Hunk
	IsNew    bool
	IsDelete bool
}

// Empty reports whether the two versions were identical.
func (fd *FileDiff) Empty() bool {
	return len(fd.Hunks) == 0
}

// Stats counts added and removed lines.
func (fd *FileDiff) Stats() (added, removed int) {
	for _, h := range fd.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAdded:
				added++
			case LineRemoved:
				removed++
			}
		}
	}
	return added, removed
}

// Unified renders the diff in unified format. It returns "" when there are no changes.
func (fd *FileDiff) Unified() string {
	if fd.Empty() {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", labelOr(fd.OldPath, fd.IsNew), labelOr(fd.NewPath, fd.IsDelete))
	for _, h := range fd.Hunks {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
		for _, l := range h.Lines {
			sb.WriteString(l.Kind.prefix())
			sb.WriteString(l.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Header returns the "@@ -a,b +c,d @@" line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

func labelOr(path string, absent bool) string {
	if absent || path == "" {
		return "/dev/null"
	}
	return path
}

// Engine computes diffs and caches results per content pair.
type Engine struct {
	dmp     *diffmatchpatch.DiffMatchPatch
	context int
	cache   sync.Map // cacheKey -> []Hunk
}

type cacheKey struct {
	oldSum, newSum uint64
}

// NewEngine returns an engine keeping contextLines of context. Negative means DefaultContext.
func NewEngine(contextLines int) *Engine {
	if contextLines < 0 {
		contextLines = DefaultContext
	}
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp, context: contextLines}
}

// DefaultEngine uses DefaultContext.
var DefaultEngine = NewEngine(DefaultContext)

// ComputeDiff is DefaultEngine.ComputeDiff.
func ComputeDiff(oldPath, newPath, oldContent, newContent string) *FileDiff {
	return DefaultEngine.ComputeDiff(oldPath, newPath, oldContent, newContent)
}

// ComputeDiff diffs oldContent against newContent line by line.
func (e *Engine) ComputeDiff(oldPath, newPath, oldContent, newContent string) *FileDiff {
	fd := &FileDiff{
		OldPath:  oldPath,
		NewPath:  newPath,
		IsNew:    oldContent == "" && newContent != "",
		IsDelete: newContent == "" && oldContent != "",
	}
	if oldContent == newContent {
		return fd
	}

	key := cacheKey{hash(oldContent), hash(newContent)}
	if cached, ok := e.cache.Load(key); ok {
		fd.Hunks = cached.([]Hunk)
		return fd
	}

	a, b, lines := e.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	diffs = e.dmp.DiffCharsToLines(diffs, lines)

	fd.Hunks = group(toLines(diffs), e.context)
	e.cache.Store(key, fd.Hunks)
	return fd
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cache.Range(func(k, _ any) bool {
		e.cache.Delete(k)
		return true
	})
}

// toLines flattens line-mode diffs into numbered lines.
func toLines(diffs []diffmatchpatch.Diff) []Line {
	var out []Line
	oldNum, newNum := 0, 0
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldNum++
				newNum++
				out = append(out, Line{Kind: LineContext, Content: text, OldNum: oldNum, NewNum: newNum})
			case diffmatchpatch.DiffDelete:
				oldNum++
				out = append(out, Line{Kind: LineRemoved, Content: text, OldNum: oldNum})
			case diffmatchpatch.DiffInsert:
				newNum++
				out = append(out, Line{Kind: LineAdded, Content: text, NewNum: newNum})
			}
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\n")
	}
	return parts
}

// group cuts lines into hunks, merging changes closer than 2*context lines.
func group(lines []Line, context int) []Hunk {
	type span struct{ from, to int }
	var spans []span
	for i, l := range lines {
		if l.Kind == LineContext {
			continue
		}
		from, to := max(0, i-context), min(len(lines)-1, i+context)
		if n := len(spans); n > 0 && from <= spans[n-1].to+1 {
			spans[n-1].to = to
			continue
		}
		spans = append(spans, span{from, to})
	}

	hunks := make([]Hunk, 0, len(spans))
	for _, s := range spans {
		h := Hunk{Lines: lines[s.from : s.to+1]}

		// lines consumed on each side before the hunk
		oldBefore, newBefore := 0, 0
		for _, l := range lines[:s.from] {
			if l.Kind != LineAdded {
				oldBefore++
			}
			if l.Kind != LineRemoved {
				newBefore++
			}
		}
		for _, l := range h.Lines {
			if l.Kind != LineAdded {
				h.OldCount++
			}
			if l.Kind != LineRemoved {
				h.NewCount++
			}
		}
		h.OldStart, h.NewStart = oldBefore, newBefore
		if h.OldCount > 0 {
			h.OldStart++
		}
		if h.NewCount > 0 {
			h.NewStart++
		}
		hunks = append(hunks, h)
	}
	return hunks
}

func hash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
