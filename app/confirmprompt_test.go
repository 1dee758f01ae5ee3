package app

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/pmaederyork/apprised/agent"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestConfirmPrompt_ApproveKeys(t *testing.T) {
	cp := NewConfirmPrompt(agent.Confirmation{ID: "c1"})

	assert.Equal(t, ConfirmApprove, cp.HandleKey(keyRune('y')))
	assert.Equal(t, ConfirmApprove, cp.HandleKey(keyRune('Y')))
}

func TestConfirmPrompt_DenyKeys(t *testing.T) {
	cp := NewConfirmPrompt(agent.Confirmation{ID: "c1"})

	assert.Equal(t, ConfirmDeny, cp.HandleKey(keyRune('n')))
	assert.Equal(t, ConfirmDeny, cp.HandleKey(keyRune('N')))
}

func TestConfirmPrompt_EscDismisses(t *testing.T) {
	cp := NewConfirmPrompt(agent.Confirmation{ID: "c1"})

	assert.Equal(t, ConfirmDismiss, cp.HandleKey(tea.KeyMsg{Type: tea.KeyEscape}))
}

func TestConfirmPrompt_CtrlCQuits(t *testing.T) {
	cp := NewConfirmPrompt(agent.Confirmation{ID: "c1"})

	assert.Equal(t, ConfirmQuit, cp.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlC}))
}

func TestConfirmPrompt_UnrecognizedKeyIgnored(t *testing.T) {
	cp := NewConfirmPrompt(agent.Confirmation{ID: "c1"})

	assert.Equal(t, ConfirmNone, cp.HandleKey(keyRune('x')))
	assert.Equal(t, ConfirmNone, cp.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestConfirmPrompt_ViewShowsDetails(t *testing.T) {
	s := NewStyles(DefaultDark)
	cp := NewConfirmPrompt(agent.Confirmation{
		ID:         "c1",
		ActionType: "file_write",
		Summary:    "Write deploy.sh",
		Preview:    "#!/bin/sh\necho hi",
	})

	out := stripAnsi(cp.View(s, time.Now()))
	assert.Contains(t, out, "Confirmation required: file_write")
	assert.Contains(t, out, "Write deploy.sh")
	assert.Contains(t, out, "echo hi")
	assert.Contains(t, out, "[y] approve")
	assert.Contains(t, out, "[n] deny")
	assert.Contains(t, out, "[esc] decide later")
	assert.NotContains(t, out, "⏳", "no countdown without a deadline")
}

func TestConfirmPrompt_ViewCountdown(t *testing.T) {
	s := NewStyles(DefaultDark)
	now := time.Now()
	cp := NewConfirmPrompt(agent.Confirmation{
		ID:       "c1",
		Summary:  "Run migration",
		Deadline: now.Add(24 * time.Second),
	})

	out := stripAnsi(cp.View(s, now))
	assert.Contains(t, out, "⏳ 24s")

	// Past the deadline the countdown floors at zero.
	late := stripAnsi(cp.View(s, now.Add(30*time.Second)))
	assert.Contains(t, late, "⏳ 0s")
}

func TestFormatKeyHint(t *testing.T) {
	s := NewStyles(DefaultDark)
	hint := stripAnsi(formatKeyHint(s, "y", "approve"))
	assert.True(t, strings.HasPrefix(hint, "[y] "))
	assert.Contains(t, hint, "approve")
}
