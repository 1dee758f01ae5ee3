package app

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmaederyork/apprised/agent"
)

// ConfirmChoice is the outcome of a key press in the confirmation prompt.
type ConfirmChoice int

const (
	// ConfirmNone means the key was not for the prompt.
	ConfirmNone ConfirmChoice = iota
	// ConfirmApprove accepts the action.
	ConfirmApprove
	// ConfirmDeny rejects the action.
	ConfirmDeny
	// ConfirmDismiss hides the prompt without deciding; the
	// confirmation stays pending and its expiry timer keeps running.
	ConfirmDismiss
	// ConfirmQuit exits the program.
	ConfirmQuit
)

// ConfirmPrompt is a single-keypress overlay for one pending
// confirmation. It renders the action summary and preview with a live
// countdown when the request carries a deadline.
type ConfirmPrompt struct {
	conf agent.Confirmation
}

// NewConfirmPrompt creates a prompt for the given confirmation snapshot.
func NewConfirmPrompt(conf agent.Confirmation) *ConfirmPrompt {
	return &ConfirmPrompt{conf: conf}
}

// ID returns the confirmation this prompt is asking about.
func (c *ConfirmPrompt) ID() string {
	return c.conf.ID
}

// HandleKey maps a key press to a choice. Unrecognized keys are ignored
// rather than dismissing, so a stray keystroke cannot silently leave an
// action undecided.
func (c *ConfirmPrompt) HandleKey(msg tea.KeyMsg) ConfirmChoice {
	switch msg.String() {
	case "y", "Y":
		return ConfirmApprove
	case "n", "N":
		return ConfirmDeny
	case "esc":
		return ConfirmDismiss
	case "ctrl+c":
		return ConfirmQuit
	default:
		return ConfirmNone
	}
}

// View renders the prompt box. now drives the countdown so rendering is
// deterministic under test.
func (c *ConfirmPrompt) View(s *Styles, now time.Time) string {
	var b strings.Builder

	header := "Confirmation required"
	if c.conf.ActionType != "" {
		header += ": " + c.conf.ActionType
	}
	b.WriteString(s.Pending.Render("⚠ " + header))
	b.WriteString("\n")

	if c.conf.Summary != "" {
		b.WriteString(c.conf.Summary)
		b.WriteString("\n")
	}
	if c.conf.Preview != "" {
		for _, line := range strings.Split(c.conf.Preview, "\n") {
			b.WriteString(s.Dim.Render("  " + line))
			b.WriteString("\n")
		}
	}

	hints := []string{
		formatKeyHint(s, "y", "approve"),
		formatKeyHint(s, "n", "deny"),
		formatKeyHint(s, "esc", "decide later"),
	}
	b.WriteString(strings.Join(hints, "  "))

	if c.conf.Expires() {
		remaining := c.conf.Deadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		b.WriteString("  ")
		b.WriteString(s.Pending.Render(fmt.Sprintf("⏳ %ds", int(remaining.Seconds()))))
	}

	return s.ConfirmBox.Render(b.String())
}

// formatKeyHint renders a "[key] label" fragment for hint lines.
func formatKeyHint(s *Styles, key, label string) string {
	return s.HintKey.Render("["+key+"]") + " " + s.Dim.Render(label)
}
