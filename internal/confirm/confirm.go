// Package confirm asks the user to approve an edit before it is written.
package confirm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fixturekit/internal/logging"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Decision is the outcome of a prompt.
type Decision int

const (
	Pending Decision = iota
	Approved
	Rejected
)

func (d Decision) String() string {
	switch d {
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC107"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a94a6"))
	frameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2a3850"))
)

const (
	defaultWidth  = 100
	defaultHeight = 24
	chromeHeight  = 6 // title, help and border lines
)

// Model shows a scrollable body under a yes/no question.
type Model struct {
	title    string
	body     string
	viewport viewport.Model
	decision Decision
}

// New returns a model asking title about body.
func New(title, body string) Model {
	vp := viewport.New(defaultWidth-4, min(defaultHeight-chromeHeight, max(1, lineCount(body))))
	vp.SetContent(body)
	return Model{title: title, body: body, viewport: vp}
}

func lineCount(s string) int {
	return strings.Count(strings.TrimRight(s, "\n"), "\n") + 1
}

// Decision returns the user's answer so far.
func (m Model) Decision() Decision {
	return m.decision
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. y approves; n, q, esc and ctrl+c reject.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = max(10, msg.Width-4)
		m.viewport.Height = max(1, min(msg.Height-chromeHeight, lineCount(m.body)))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.decision = Approved
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.decision = Rejected
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteByte('\n')
	if m.body != "" {
		sb.WriteString(frameStyle.Render(m.viewport.View()))
		sb.WriteByte('\n')
	}
	help := "y approve • n reject"
	if m.viewport.TotalLineCount() > m.viewport.Height {
		help += " • ↑/↓ scroll"
	}
	sb.WriteString(helpStyle.Render(help))
	sb.WriteByte('\n')
	return sb.String()
}

// Prompter runs confirmation prompts on a terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// Yolo approves every prompt without asking.
	Yolo bool

	// Interactive reports whether In is a terminal. Nil checks os.Stdin.
	Interactive func() bool
}

// NewPrompter returns a prompter on stdin and stdout.
func NewPrompter(yolo bool) *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout, Yolo: yolo}
}

func (p *Prompter) interactive() bool {
	if p.Interactive != nil {
		return p.Interactive()
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Confirm shows body and waits for an answer. Without a terminal it rejects.
func (p *Prompter) Confirm(ctx context.Context, title, body string) (bool, error) {
	if p.Yolo {
		logging.EditDebug("confirm skipped (yolo): %s", title)
		return true, nil
	}
	if !p.interactive() {
		logging.EditWarn("confirm rejected, no terminal: %s", title)
		return false, nil
	}

	program := tea.NewProgram(New(title, body),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
		tea.WithContext(ctx),
	)
	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("confirmation prompt returned %T", final)
	}
	logging.Edit("confirm %s: %s", m.Decision(), title)
	return m.Decision() == Approved, nil
}

// Approve asks a one-line question. It matches the tool approval hook.
func (p *Prompter) Approve(ctx context.Context, prompt string) (bool, error) {
	return p.Confirm(ctx, prompt, "")
}
