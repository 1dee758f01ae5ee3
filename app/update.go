package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmaederyork/apprised/agent"
	"github.com/pmaederyork/apprised/transcript"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.composer.SetWidth(msg.Width - 4)
		if m.md != nil {
			if err := m.md.SetWidth(msg.Width - 4); err != nil {
				m.md = nil
			}
		}
		return m, nil

	case sessionEventMsg:
		return m.handleSessionEvent(msg.event)

	case sessionClosedMsg:
		return m, tea.Quit

	case sendResultMsg:
		if msg.err != nil {
			m.lastError = sendErrorText(msg.err)
		}
		return m, nil

	case resolveResultMsg:
		if msg.err != nil {
			m.lastError = "confirmation failed: " + msg.err.Error()
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.lastError = "save failed: " + msg.err.Error()
		} else {
			m.transcriptID = msg.id
			m.notice = "transcript saved (" + shortID(msg.id) + ")"
		}
		return m, nil

	case tickMsg:
		return m, tickCmd()

	default:
		// Cursor blink and other component messages.
		return m, m.composer.Update(msg)
	}
}

// handleKey dispatches a key press, overlay first: while a confirmation
// prompt is showing it owns the keyboard.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != nil {
		id := m.prompt.ID()
		switch m.prompt.HandleKey(msg) {
		case ConfirmApprove:
			m.advancePrompt()
			return m, m.resolveCmd(id, true)
		case ConfirmDeny:
			m.advancePrompt()
			return m, m.resolveCmd(id, false)
		case ConfirmDismiss:
			m.advancePrompt()
			return m, nil
		case ConfirmQuit:
			return m.quit()
		default:
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "esc":
		if m.session.Streaming() {
			m.session.Interrupt()
		}
		return m, nil

	case "enter":
		return m.send()

	case "ctrl+s":
		return m, m.saveCmd()

	case "pgup":
		m.scrollOffset += 5
		return m, nil

	case "pgdown":
		m.scrollOffset -= 5
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
		return m, nil

	case "end":
		m.scrollOffset = 0
		return m, nil

	default:
		return m, m.composer.Update(msg)
	}
}

// send starts a turn from the composer content.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := m.composer.Value()
	if text == "" {
		return m, nil
	}
	if m.session.Streaming() {
		m.lastError = "a turn is already in flight"
		return m, nil
	}

	message, paths := extractAttachments(text)
	if message == "" {
		m.lastError = "message is empty"
		return m, nil
	}

	m.composer.Reset()
	m.lastError = ""
	m.notice = ""
	m.scrollOffset = 0

	m.chat.AddUserMessage(message, paths...)

	return m, m.sendCmd(message, paths)
}

func (m Model) sendCmd(message string, paths []string) tea.Cmd {
	return func() tea.Msg {
		var files []agent.File
		if len(paths) > 0 {
			// Unreadable attachments are skipped, not fatal; the
			// preparation step logs each skip.
			files, _ = agent.PrepareFiles(paths...)
		}
		return sendResultMsg{err: m.session.Send(m.ctx, message, files...)}
	}
}

// extractAttachments pulls @path tokens out of the message when the
// path actually exists, leaving the rest of the text intact.
func extractAttachments(text string) (string, []string) {
	var kept []string
	var paths []string
	for _, tok := range strings.Fields(text) {
		if strings.HasPrefix(tok, "@") && len(tok) > 1 {
			path := tok[1:]
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				paths = append(paths, path)
				continue
			}
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " "), paths
}

// handleSessionEvent folds a streaming event into the display and
// reacts to the ones that need UI state changes.
func (m Model) handleSessionEvent(ev agent.Event) (tea.Model, tea.Cmd) {
	m.chat.Apply(ev)
	m.scrollOffset = 0

	cmds := []tea.Cmd{m.listenForSessionEvents()}

	switch e := ev.(type) {
	case agent.ConfirmationRequestEvent:
		if conf, ok := m.session.Confirmations().Get(e.ConfirmationID); ok {
			if m.prompt == nil {
				m.prompt = NewConfirmPrompt(conf)
			} else {
				m.promptQueue = append(m.promptQueue, conf)
			}
		}

	case agent.ConfirmationResolvedEvent:
		m.dropFromQueue(e.ConfirmationID)
		if m.prompt != nil && m.prompt.ID() == e.ConfirmationID {
			m.advancePrompt()
		}

	case agent.CompletionEvent:
		if m.store != nil {
			cmds = append(cmds, m.saveCmd())
		}

	case agent.ErrorEvent:
		m.lastError = e.Message
	}

	return m, tea.Batch(cmds...)
}

// advancePrompt shows the next still-pending confirmation, or hides the
// prompt when none remain.
func (m *Model) advancePrompt() {
	for len(m.promptQueue) > 0 {
		next := m.promptQueue[0]
		m.promptQueue = m.promptQueue[1:]
		if conf, ok := m.session.Confirmations().Get(next.ID); ok && conf.Status == agent.ConfirmationPending {
			m.prompt = NewConfirmPrompt(conf)
			return
		}
	}
	m.prompt = nil
}

func (m *Model) dropFromQueue(id string) {
	for i, c := range m.promptQueue {
		if c.ID == id {
			m.promptQueue = append(m.promptQueue[:i], m.promptQueue[i+1:]...)
			return
		}
	}
}

func (m Model) resolveCmd(id string, approved bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if approved {
			err = m.session.Confirmations().Approve(m.ctx, id)
		} else {
			err = m.session.Confirmations().Deny(m.ctx, id)
		}
		return resolveResultMsg{err}
	}
}

// saveCmd persists the conversation so far. The stored document keeps
// both the backend-facing turns and the display lines, so it can be
// replayed or continued.
func (m Model) saveCmd() tea.Cmd {
	if m.store == nil || m.chat.Len() == 0 {
		return nil
	}
	doc := &transcript.Stored{
		ID:     m.transcriptID,
		Title:  m.chat.Title(),
		Agents: m.chat.Agents(),
		Turns:  m.session.History(),
		Lines:  m.chat.Lines(),
	}
	return func() tea.Msg {
		if err := m.store.Save(doc); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{id: doc.ID}
	}
}

// quit saves what there is and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if cmd := m.saveCmd(); cmd != nil {
		return m, tea.Sequence(cmd, tea.Quit)
	}
	return m, tea.Quit
}

// sendErrorText maps transport errors to something a user can act on.
func sendErrorText(err error) string {
	var authErr *agent.AuthError
	if errors.As(err, &authErr) {
		return "authentication failed: check your API key"
	}
	var reqErr *agent.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("server rejected the request (HTTP %d)", reqErr.StatusCode)
	}
	if errors.Is(err, agent.ErrAlreadyStreaming) {
		return "a turn is already in flight"
	}
	return err.Error()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
