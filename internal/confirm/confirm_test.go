package confirm

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Keys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want Decision
	}{
		{"y approves", runes("y"), Approved},
		{"Y approves", runes("Y"), Approved},
		{"n rejects", runes("n"), Rejected},
		{"q rejects", runes("q"), Rejected},
		{"esc rejects", tea.KeyMsg{Type: tea.KeyEsc}, Rejected},
		{"ctrl+c rejects", tea.KeyMsg{Type: tea.KeyCtrlC}, Rejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(t, New("Apply edit?", "-a\n+b\n"), tt.key)
			assert.Equal(t, tt.want, m.Decision())
			require.NotNil(t, cmd)
			_, isQuit := cmd().(tea.QuitMsg)
			assert.True(t, isQuit)
		})
	}
}

func TestModel_OtherKeysKeepWaiting(t *testing.T) {
	m, _ := press(t, New("Apply edit?", "body"), runes("x"))
	assert.Equal(t, Pending, m.Decision())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, Pending, m.Decision())
}

func TestModel_View(t *testing.T) {
	body := strings.Repeat("line\n", 50)
	m := New("Apply edit to program.go?", body)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "Apply edit to program.go?")
	assert.Contains(t, view, "y approve")
	assert.Contains(t, view, "scroll", "long bodies can scroll")
	assert.Equal(t, 14, m.viewport.Height)

	short := New("Allow?", "").View()
	assert.NotContains(t, short, "scroll")
}

func TestPrompter_Yolo(t *testing.T) {
	p := &Prompter{Yolo: true, Interactive: func() bool { t.Fatal("yolo must not probe the terminal"); return false }}
	ok, err := p.Confirm(context.Background(), "Apply?", "diff")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrompter_NonInteractiveRejects(t *testing.T) {
	p := &Prompter{Interactive: func() bool { return false }}

	ok, err := p.Confirm(context.Background(), "Apply?", "diff")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Approve(context.Background(), "Allow?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "approved", Approved.String())
	assert.Equal(t, "rejected", Rejected.String())
}
