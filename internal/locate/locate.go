// Package locate finds the line ranges of named declarations using tree-sitter.
// The ranges feed line_range segment edits.
package locate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fixturekit/internal/logging"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

var (
	// ErrSymbolNotFound is returned when no declaration has the requested name.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrUnsupportedLanguage is returned for file extensions without a grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Kind is the declaration kind of a Symbol.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindType      Kind = "type"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindTrait     Kind = "trait"
	KindImpl      Kind = "impl"
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindVar       Kind = "var"
	KindConst     Kind = "const"
)

// Symbol is a declaration and its 1-based inclusive line range.
type Symbol struct {
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Receiver  string `json:"receiver,omitempty"` // owning type for methods
	Trait     string `json:"trait,omitempty"`    // implemented trait for Rust impl blocks
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// QualifiedName returns Receiver.Name for methods and Name otherwise.
func (s Symbol) QualifiedName() string {
	if s.Receiver == "" {
		return s.Name
	}
	return s.Receiver + "." + s.Name
}

// Lines returns the number of lines the symbol spans.
func (s Symbol) Lines() int {
	return s.EndLine - s.StartLine + 1
}

type grammar struct {
	lang    *sitter.Language
	extract func(root *sitter.Node, src []byte) []Symbol
}

var grammars = map[string]grammar{
	".go": {golang.GetLanguage(), goSymbols},
	".rs": {rust.GetLanguage(), rustSymbols},
	".py": {python.GetLanguage(), pythonSymbols},
}

// Supported reports whether path has a known grammar.
func Supported(path string) bool {
	_, ok := grammars[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Symbols parses content and lists its declarations in source order.
// Methods inside Rust impl blocks and Python classes are included.
func Symbols(ctx context.Context, path string, content []byte) ([]Symbol, error) {
	g, ok := grammars[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filepath.Ext(path))
	}

	timer := logging.StartTimer(logging.CategoryLocate, "parse "+filepath.Base(path))
	defer timer.Stop()

	parser := sitter.NewParser()
	parser.SetLanguage(g.lang)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		logging.Get(logging.CategoryLocate).Error("parse failed: %s - %v", path, err)
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	syms := g.extract(tree.RootNode(), content)
	logging.LocateDebug("parsed %s: %d symbols", filepath.Base(path), len(syms))
	return syms, nil
}

// Locate returns the first declaration whose name or qualified name equals name.
func Locate(ctx context.Context, path string, content []byte, name string) (Symbol, error) {
	syms, err := Symbols(ctx, path, content)
	if err != nil {
		return Symbol{}, err
	}
	for _, s := range syms {
		if s.Name == name || s.QualifiedName() == name {
			logging.Locate("located %s in %s: lines %d-%d", name, path, s.StartLine, s.EndLine)
			return s, nil
		}
	}
	return Symbol{}, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, name, path)
}

func newSymbol(n *sitter.Node, name string, kind Kind) Symbol {
	return Symbol{
		Name:      name,
		Kind:      kind,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	if c := n.ChildByFieldName(field); c != nil {
		return c.Content(src)
	}
	return ""
}

// baseTypeName strips pointers, references and generic arguments.
func baseTypeName(s string) string {
	s = strings.TrimLeft(s, "*&")
	s = strings.TrimPrefix(s, "mut ")
	if i := strings.IndexAny(s, "<["); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}
