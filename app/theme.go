package app

import (
	"github.com/charmbracelet/lipgloss"
)

// ColorPalette holds the semantic color values for a theme. Each field
// is a string accepted by lipgloss (ANSI 256 number or hex).
type ColorPalette struct {
	Name string

	Accent  string // titles, the user's prompt marker
	Dim     string // muted/secondary text
	Border  string // boxes and dividers
	BarBg   string // top/status bar background
	BarFg   string // top/status bar foreground
	Error   string // errors, denied confirmations
	Working string // in-progress markers
	Pending string // confirmations awaiting an answer
	Done    string // finished actions
	Agent   string // agent routing badges

	// Glamour markdown style: "dark", "light", or "auto"
	GlamourStyle string
}

// Styles holds pre-computed lipgloss styles derived from a ColorPalette.
type Styles struct {
	Title      lipgloss.Style
	Dim        lipgloss.Style
	Error      lipgloss.Style
	TopBar     lipgloss.Style
	StatusBar  lipgloss.Style
	Working    lipgloss.Style
	Pending    lipgloss.Style
	Done       lipgloss.Style
	UserMarker lipgloss.Style
	AgentBadge lipgloss.Style
	InputBox   lipgloss.Style
	ConfirmBox lipgloss.Style
	HintKey    lipgloss.Style

	// The palette that produced these styles, for reference.
	Palette ColorPalette
}

// NewStyles builds all styles from a ColorPalette.
func NewStyles(p ColorPalette) *Styles {
	accent := lipgloss.Color(p.Accent)
	dim := lipgloss.Color(p.Dim)
	border := lipgloss.Color(p.Border)
	barBg := lipgloss.Color(p.BarBg)
	barFg := lipgloss.Color(p.BarFg)
	errorC := lipgloss.Color(p.Error)
	working := lipgloss.Color(p.Working)
	pending := lipgloss.Color(p.Pending)
	done := lipgloss.Color(p.Done)
	agentC := lipgloss.Color(p.Agent)

	return &Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Dim: lipgloss.NewStyle().
			Foreground(dim),

		Error: lipgloss.NewStyle().
			Foreground(errorC),

		TopBar: lipgloss.NewStyle().
			Background(barBg).
			Foreground(barFg).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Background(barBg).
			Foreground(dim).
			Padding(0, 1),

		Working: lipgloss.NewStyle().
			Foreground(working),

		Pending: lipgloss.NewStyle().
			Foreground(pending),

		Done: lipgloss.NewStyle().
			Foreground(done),

		UserMarker: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		AgentBadge: lipgloss.NewStyle().
			Foreground(agentC),

		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		ConfirmBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pending).
			Padding(0, 1),

		HintKey: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
	}
}

// Built-in palettes.
var (
	// DefaultDark is the default dark-terminal palette.
	DefaultDark = ColorPalette{
		Name:         "dark",
		Accent:       "12",  // bright blue
		Dim:          "245", // readable gray
		Border:       "240",
		BarBg:        "236",
		BarFg:        "252",
		Error:        "9",  // bright red
		Working:      "10", // bright green
		Pending:      "11", // bright yellow
		Done:         "245",
		Agent:        "14", // bright cyan
		GlamourStyle: "dark",
	}

	// DefaultLight is the default light-terminal palette.
	DefaultLight = ColorPalette{
		Name:         "light",
		Accent:       "4", // navy
		Dim:          "243",
		Border:       "248",
		BarBg:        "254",
		BarFg:        "236",
		Error:        "1", // dark red
		Working:      "2", // dark green
		Pending:      "3", // dark yellow
		Done:         "244",
		Agent:        "6", // dark cyan
		GlamourStyle: "light",
	}
)

// BuiltinThemes lists all built-in palettes in display order.
var BuiltinThemes = []ColorPalette{DefaultDark, DefaultLight}

// ThemeByName returns the built-in palette with the given name, falling
// back to DefaultDark for unknown names.
func ThemeByName(name string) ColorPalette {
	for _, p := range BuiltinThemes {
		if p.Name == name {
			return p
		}
	}
	return DefaultDark
}
