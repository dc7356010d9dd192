package segment

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how a Request locates the segment to replace.
type Mode string

const (
	ModeFindReplace Mode = "find_replace"
	ModeBlock       Mode = "block"
	ModeLineRange   Mode = "line_range"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeFindReplace, ModeBlock, ModeLineRange}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Request describes one segment edit.
type Request struct {
	Mode    Mode
	Replace string

	// find_replace
	Find string
	All  bool

	// block
	Start          string
	End            string
	IncludeMarkers bool

	// line_range: 1-based. StartLine below 1 clamps to the first line;
	// EndLine zero means unset.
	StartLine int
	EndLine   int
	Inclusive bool
}

// NewRequest returns a request with the mode defaults: All and Inclusive set.
func NewRequest(mode Mode, replace string) Request {
	return Request{
		Mode:      mode,
		Replace:   replace,
		All:       true,
		Inclusive: true,
	}
}

// Result is the outcome of Apply.
type Result struct {
	Mode     Mode
	Matches  int
	Original string // normalized input
	Content  string // edited content
}

// Changed reports whether the edit produced different content.
func (r Result) Changed() bool {
	return r.Content != r.Original
}

// Validate checks the mode's required parameters and compiles its patterns.
func (r Request) Validate() error {
	switch r.Mode {
	case ModeFindReplace:
		if r.Find == "" {
			return fmt.Errorf("%s: %w: find", r.Mode, ErrMissingParam)
		}
		_, err := compile(r.Mode, r.Find, false)
		return err
	case ModeBlock:
		if r.Start == "" || r.End == "" {
			return fmt.Errorf("%s: %w: start or end", r.Mode, ErrMissingParam)
		}
		if _, err := compile(r.Mode, r.Start, true); err != nil {
			return err
		}
		_, err := compile(r.Mode, r.End, true)
		return err
	case ModeLineRange:
		if r.EndLine == 0 {
			return fmt.Errorf("%s: %w: end_line", r.Mode, ErrMissingParam)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
	}
}

// Normalize converts CRLF and lone CR line endings to LF.
func Normalize(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Apply performs the edit on content. It returns ErrNoMatch, wrapped, when
// nothing matched; the Result then carries the unchanged content.
func Apply(content string, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{Mode: req.Mode}, err
	}

	normalized := Normalize(content)
	res := Result{Mode: req.Mode, Original: normalized, Content: normalized}

	switch req.Mode {
	case ModeFindReplace:
		res.Content, res.Matches = findReplace(normalized, req)
	case ModeBlock:
		res.Content, res.Matches = replaceBlock(normalized, req)
	case ModeLineRange:
		res.Content, res.Matches = replaceLines(normalized, req)
	}

	if res.Matches == 0 {
		res.Content = normalized
		return res, fmt.Errorf("%s: %w", req.Mode, ErrNoMatch)
	}
	return res, nil
}

func compile(mode Mode, pattern string, multiline bool) (*regexp.Regexp, error) {
	if multiline {
		pattern = "(?m)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", mode, ErrInvalidPattern, err)
	}
	return re, nil
}

// findReplace replaces the first or every match. The replacement is literal.
func findReplace(content string, req Request) (string, int) {
	re, _ := compile(req.Mode, req.Find, false)

	if req.All {
		n := len(re.FindAllStringIndex(content, -1))
		if n == 0 {
			return content, 0
		}
		return re.ReplaceAllLiteralString(content, req.Replace), n
	}

	loc := re.FindStringIndex(content)
	if loc == nil {
		return content, 0
	}
	return content[:loc[0]] + req.Replace + content[loc[1]:], 1
}

// replaceBlock replaces the first start..end block. End is searched after the start match.
func replaceBlock(content string, req Request) (string, int) {
	startRe, _ := compile(req.Mode, req.Start, true)
	endRe, _ := compile(req.Mode, req.End, true)

	startLoc := startRe.FindStringIndex(content)
	if startLoc == nil {
		return content, 0
	}
	afterStart := startLoc[1]

	endLoc := endRe.FindStringIndex(content[afterStart:])
	if endLoc == nil {
		return content, 0
	}

	var blockStart, blockEnd int
	if req.IncludeMarkers {
		blockStart = startLoc[0]
		blockEnd = afterStart + endLoc[1]
	} else {
		blockStart = afterStart
		blockEnd = afterStart + endLoc[0]
	}

	return content[:blockStart] + req.Replace + content[blockEnd:], 1
}

// replaceLines swaps lines StartLine..EndLine for the lines of Replace.
// With Inclusive false the end line itself is kept.
func replaceLines(content string, req Request) (string, int) {
	lines := strings.Split(content, "\n")

	startIdx := max(0, req.StartLine-1)
	endIdx := req.EndLine - 1
	if !req.Inclusive {
		endIdx = req.EndLine - 2
	}
	if endIdx >= len(lines) || startIdx > endIdx {
		return content, 0
	}

	removed := endIdx - startIdx + 1
	out := make([]string, 0, len(lines)-removed+1)
	out = append(out, lines[:startIdx]...)
	out = append(out, strings.Split(req.Replace, "\n")...)
	out = append(out, lines[endIdx+1:]...)

	return strings.Join(out, "\n"), removed
}
