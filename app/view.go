package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/pmaederyork/apprised/agent"
	"github.com/pmaederyork/apprised/chatmodel"
)

// RenderConversation renders display lines into terminal rows. It is
// shared by the interactive view and the offline log viewer; now drives
// elapsed-time markers so output is deterministic under test.
func RenderConversation(lines []chatmodel.Line, s *Styles, md *MarkdownRenderer, width int, now time.Time) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderLine(line, s, md, width, now))
	}
	return b.String()
}

// renderLine formats a single display line.
func renderLine(line chatmodel.Line, s *Styles, md *MarkdownRenderer, width int, now time.Time) string {
	switch line.Type {
	case chatmodel.LineTypeUser:
		return s.UserMarker.Render("❯ ") + strings.ReplaceAll(line.Content, "\n", "\n  ")

	case chatmodel.LineTypeAssistant:
		if md != nil {
			return md.Render(line.Content)
		}
		return "  " + line.Content

	case chatmodel.LineTypeTool:
		label := chatmodel.FormatToolLabel(line.ToolName, line.ToolInput, line.Content)
		if line.Working {
			return "  " + label + " " + workingMarker(s, line.Timestamp, now)
		}
		return "  " + s.Done.Render("✓ "+fitWidth(label, width-6))

	case chatmodel.LineTypeToolStatus:
		text := fitWidth(line.Content, width-8)
		if line.Working {
			return "  " + s.Dim.Render("⚙ "+text) + " " + workingMarker(s, line.Timestamp, now)
		}
		return "  " + s.Dim.Render("⚙ "+text)

	case chatmodel.LineTypeAgent:
		badge := s.AgentBadge.Render(line.Agent)
		conf := ""
		if line.Confidence > 0 {
			conf = " " + s.Dim.Render(fmt.Sprintf("(%.0f%%)", line.Confidence*100))
		}
		out := "  → routed to " + badge + conf
		if line.Working {
			out += " " + workingMarker(s, line.Timestamp, now)
		}
		return out

	case chatmodel.LineTypeConfirmation:
		return "  " + renderConfirmationLine(line, s, width)

	case chatmodel.LineTypeTurnEnd:
		info := fmt.Sprintf("─── done in %.2fs ───", float64(line.DurationMs)/1000)
		if !line.Success {
			return "  " + s.Error.Render("─── turn failed ───")
		}
		return "  " + s.Dim.Render(info)

	case chatmodel.LineTypeStatus:
		return "  " + s.Dim.Render("→ "+fitWidth(line.Content, width-6))

	case chatmodel.LineTypeError:
		return "  " + s.Error.Render("✗ "+fitWidth(line.Content, width-6))

	default:
		return "  " + fitWidth(line.Content, width-2)
	}
}

func renderConfirmationLine(line chatmodel.Line, s *Styles, width int) string {
	summary := fitWidth(line.Content, width-24)
	switch line.Resolution {
	case agent.ConfirmationApproved:
		return s.Done.Render("✓ " + summary + " [approved]")
	case agent.ConfirmationDenied:
		return s.Error.Render("✗ " + summary + " [denied]")
	case agent.ConfirmationTimedOut:
		return s.Dim.Render("⏱ " + summary + " [expired]")
	default:
		return s.Pending.Render("⚠ " + summary + " [awaiting approval]")
	}
}

// workingMarker renders the in-progress indicator with elapsed time.
func workingMarker(s *Styles, started, now time.Time) string {
	elapsed := now.Sub(started)
	if elapsed < 0 {
		elapsed = 0
	}
	return s.Working.Render(fmt.Sprintf("⏳ %.1fs", elapsed.Seconds()))
}

// fitWidth truncates s to the given number of terminal columns,
// accounting for wide runes. Columns, not code points: this keeps CJK
// and emoji from overflowing the row.
func fitWidth(s string, max int) string {
	if max <= 0 {
		return s
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "...")
}

// stripAnsi removes SGR escape sequences for width calculations on
// styled strings.
func stripAnsi(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// --- Full-screen view ---------------------------------------------------------

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}

	top := m.renderTopBar()
	status := m.renderStatusBar()
	composerBox := m.styles.InputBox.Width(m.width - 2).Render(m.composer.View())

	promptBox := ""
	if m.prompt != nil {
		promptBox = m.prompt.View(m.styles, time.Now())
	}

	chrome := lipgloss.Height(top) + lipgloss.Height(status) + lipgloss.Height(composerBox)
	if promptBox != "" {
		chrome += lipgloss.Height(promptBox)
	}
	bodyHeight := m.height - chrome
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	sections := []string{top, m.renderConversationWindow(bodyHeight)}
	if promptBox != "" {
		sections = append(sections, promptBox)
	}
	sections = append(sections, composerBox, status)
	return strings.Join(sections, "\n")
}

// renderConversationWindow renders the visible slice of the
// conversation, pinned to the newest rows unless the user scrolled back.
func (m Model) renderConversationWindow(height int) string {
	content := RenderConversation(m.chat.Lines(), m.styles, m.md, m.width, time.Now())
	rows := strings.Split(content, "\n")

	if len(rows) <= height {
		padded := make([]string, height)
		copy(padded, rows)
		return strings.Join(padded, "\n")
	}

	end := len(rows) - m.scrollOffset
	if end < height {
		end = height
	}
	if end > len(rows) {
		end = len(rows)
	}
	window := make([]string, height)
	copy(window, rows[end-height:end])

	if hidden := len(rows) - end; hidden > 0 {
		window[height-1] = m.styles.Dim.Render(fmt.Sprintf("  ↓ %d more rows (end to follow)", hidden))
	}
	return strings.Join(window, "\n")
}

func (m Model) renderTopBar() string {
	left := "apprised"
	if title := m.chat.Title(); m.chat.Len() > 0 {
		left += " · " + title
	}

	right := ""
	if agents := m.chat.Agents(); len(agents) > 0 {
		right = strings.Join(agents, " · ")
	}

	gap := m.width - 2 - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		left = fitWidth(left, m.width-2-runewidth.StringWidth(right)-1)
		gap = 1
	}
	return m.styles.TopBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderStatusBar() string {
	var text string
	switch {
	case m.lastError != "":
		text = m.styles.Error.Render("✗ " + fitWidth(m.lastError, m.width-6))
	case m.notice != "":
		text = fitWidth(m.notice, m.width-4)
	case m.session.Streaming():
		text = "streaming · " + hintText(m.styles, "esc", "interrupt") + " · " + hintText(m.styles, "ctrl+c", "quit")
	default:
		text = hintText(m.styles, "enter", "send") + " · " +
			hintText(m.styles, "ctrl+j", "newline") + " · " +
			hintText(m.styles, "ctrl+s", "save") + " · " +
			hintText(m.styles, "ctrl+c", "quit")
	}
	return m.styles.StatusBar.Width(m.width).Render(text)
}

func hintText(s *Styles, key, label string) string {
	return s.HintKey.Render(key) + " " + label
}
