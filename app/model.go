// Package app implements the interactive terminal client: a bubbletea
// program that streams one conversation, prompts for action
// confirmations, and saves transcripts.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmaederyork/apprised/agent"
	"github.com/pmaederyork/apprised/chatmodel"
	"github.com/pmaederyork/apprised/transcript"
)

// Options carries display settings into the model.
type Options struct {
	Theme    string
	Markdown bool
}

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	session *agent.Session
	chat    *chatmodel.Model
	store   *transcript.Store

	styles   *Styles
	md       *MarkdownRenderer
	composer *Composer

	// prompt shows the front of promptQueue; dismissing or resolving it
	// advances the queue.
	prompt      *ConfirmPrompt
	promptQueue []agent.Confirmation

	transcriptID string
	width        int
	height       int
	scrollOffset int
	lastError    string
	notice       string
}

// NewModel builds the root model around an active session. store may be
// nil, in which case saving is disabled.
func NewModel(ctx context.Context, sess *agent.Session, store *transcript.Store, opts Options) Model {
	palette := ThemeByName(opts.Theme)
	styles := NewStyles(palette)

	var md *MarkdownRenderer
	if opts.Markdown {
		// Renderer construction only fails on invalid style assets;
		// run without markdown in that case.
		md, _ = NewMarkdownRenderer(80, palette.GlamourStyle)
	}

	return Model{
		ctx:      ctx,
		session:  sess,
		chat:     chatmodel.New(),
		store:    store,
		styles:   styles,
		md:       md,
		composer: NewComposer(lipgloss.Color(palette.Dim)),
	}
}

// Chat exposes the display model, primarily for tests.
func (m Model) Chat() *chatmodel.Model {
	return m.chat
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenForSessionEvents(),
		tickCmd(),
	)
}

// tickCmd drives elapsed markers and confirmation countdowns.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg{time: t}
	})
}

// listenForSessionEvents waits for the next streaming event. The
// handler re-arms it after every delivery so the channel is always
// being drained.
func (m Model) listenForSessionEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case event, ok := <-m.session.Events():
			if !ok {
				return sessionClosedMsg{}
			}
			return sessionEventMsg{event}
		}
	}
}

// Messages used by the update loop.
type (
	// sessionEventMsg carries one streaming event.
	sessionEventMsg struct {
		event agent.Event
	}
	// sessionClosedMsg reports that the session's event channel closed.
	sessionClosedMsg struct{}
	// sendResultMsg reports the outcome of starting a turn.
	sendResultMsg struct {
		err error
	}
	// resolveResultMsg reports the outcome of a confirmation decision.
	resolveResultMsg struct {
		err error
	}
	// savedMsg reports the outcome of saving the transcript.
	savedMsg struct {
		id  string
		err error
	}
	// tickMsg is sent periodically to refresh timers and countdowns.
	tickMsg struct {
		time time.Time
	}
)
