package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	composerMinHeight = 1
	composerMaxHeight = 6
)

// Composer is the message input at the bottom of the screen. Enter is
// left to the root model (it sends the message); ctrl+j inserts a
// newline for multi-line prompts.
type Composer struct {
	input textarea.Model
}

// NewComposer creates a focused, empty composer.
func NewComposer(placeholderColor lipgloss.Color) *Composer {
	ta := textarea.New()
	ta.Placeholder = "Message the agent (@path attaches a file)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = ""
	ta.SetHeight(composerMinHeight)
	ta.MaxHeight = composerMaxHeight
	ta.FocusedStyle = textarea.Style{
		Base:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(placeholderColor),
		Text:        lipgloss.NewStyle(),
		CursorLine:  lipgloss.NewStyle(),
	}
	ta.BlurredStyle = ta.FocusedStyle

	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("ctrl+j"),
		key.WithHelp("ctrl+j", "newline"),
	)
	ta.Focus()

	return &Composer{input: ta}
}

// Update forwards a message to the textarea and grows or shrinks it to
// fit the current content.
func (c *Composer) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)

	lines := c.input.LineCount()
	if lines < composerMinHeight {
		lines = composerMinHeight
	}
	if lines > composerMaxHeight {
		lines = composerMaxHeight
	}
	if lines != c.input.Height() {
		c.input.SetHeight(lines)
	}

	return cmd
}

// Value returns the composer text with surrounding whitespace removed.
func (c *Composer) Value() string {
	return strings.TrimSpace(c.input.Value())
}

// Reset clears the composer after a message is sent.
func (c *Composer) Reset() {
	c.input.Reset()
	c.input.SetHeight(composerMinHeight)
}

// SetWidth resizes the input to the available columns.
func (c *Composer) SetWidth(w int) {
	if w > 0 {
		c.input.SetWidth(w)
	}
}

// Height reports the rendered height in rows.
func (c *Composer) Height() int {
	return c.input.Height()
}

// View renders the input.
func (c *Composer) View() string {
	return c.input.View()
}
