package app

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer wraps glamour for terminal markdown rendering. When
// rendering fails the raw text comes back unchanged, so a renderer
// problem never loses assistant output.
type MarkdownRenderer struct {
	renderer     *glamour.TermRenderer
	width        int
	glamourStyle string
}

// NewMarkdownRenderer creates a renderer wrapping at width. Style is a
// glamour standard style name; empty means auto-detect.
func NewMarkdownRenderer(width int, glamourStyle string) (*MarkdownRenderer, error) {
	if glamourStyle == "" {
		glamourStyle = "auto"
	}
	r, err := glamour.NewTermRenderer(
		glamourOption(glamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{
		renderer:     r,
		width:        width,
		glamourStyle: glamourStyle,
	}, nil
}

// Render formats markdown for the terminal, trimming the trailing
// newline glamour adds. On failure the input is returned as-is.
func (m *MarkdownRenderer) Render(text string) string {
	if m == nil || m.renderer == nil || text == "" {
		return text
	}
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// SetWidth updates the word wrap width, recreating the underlying
// renderer since glamour has no resize call.
func (m *MarkdownRenderer) SetWidth(width int) error {
	if width == m.width {
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamourOption(m.glamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	m.renderer = r
	m.width = width
	return nil
}

func glamourOption(style string) glamour.TermRendererOption {
	switch style {
	case "dark":
		return glamour.WithStandardStyle("dark")
	case "light":
		return glamour.WithStandardStyle("light")
	default:
		return glamour.WithAutoStyle()
	}
}
