package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	addedColor   = lipgloss.Color("#22c55e")
	removedColor = lipgloss.Color("#ef4444")
	hunkColor    = lipgloss.Color("#2196F3")
	mutedColor   = lipgloss.Color("#8a94a6")
)

// Styles colors the parts of a rendered diff.
type Styles struct {
	Header  lipgloss.Style
	Hunk    lipgloss.Style
	Added   lipgloss.Style
	Removed lipgloss.Style
	Context lipgloss.Style
	Gutter  lipgloss.Style
}

// DefaultStyles returns the terminal palette.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true),
		Hunk:    lipgloss.NewStyle().Foreground(hunkColor),
		Added:   lipgloss.NewStyle().Foreground(addedColor),
		Removed: lipgloss.NewStyle().Foreground(removedColor),
		Context: lipgloss.NewStyle(),
		Gutter:  lipgloss.NewStyle().Foreground(mutedColor),
	}
}

// Render draws fd with line numbers and colors. An empty diff renders as "no changes".
func Render(fd *FileDiff, s Styles) string {
	if fd.Empty() {
		return s.Gutter.Render("no changes")
	}

	var sb strings.Builder
	added, removed := fd.Stats()
	sb.WriteString(s.Header.Render(fmt.Sprintf("%s (+%d -%d)", labelOr(fd.NewPath, fd.IsDelete), added, removed)))
	sb.WriteByte('\n')

	for _, h := range fd.Hunks {
		sb.WriteString(s.Hunk.Render(h.Header()))
		sb.WriteByte('\n')
		for _, l := range h.Lines {
			sb.WriteString(s.Gutter.Render(gutter(l)))
			text := l.Kind.prefix() + l.Content
			switch l.Kind {
			case LineAdded:
				sb.WriteString(s.Added.Render(text))
			case LineRemoved:
				sb.WriteString(s.Removed.Render(text))
			default:
				sb.WriteString(s.Context.Render(text))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func gutter(l Line) string {
	num := func(n int) string {
		if n == 0 {
			return "    "
		}
		return fmt.Sprintf("%4d", n)
	}
	return num(l.OldNum) + " " + num(l.NewNum) + " "
}
