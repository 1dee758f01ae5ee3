package chatmodel

import (
	"fmt"
	"sync"
	"time"

	"github.com/pmaederyork/apprised/agent"
)

// Model is the single source of truth for what the conversation display
// shows. The write API is fed by the streaming session (Apply) and by
// the composer (AddUserMessage); the read API hands deep-copied
// snapshots to renderers.
//
// A replay model (NewReplay) applies the same events but creates every
// line already finalized, so historical transcripts never show an
// in-progress marker.
type Model struct {
	mu     sync.RWMutex
	lines  []Line
	agents []string
	replay bool
}

// New creates an empty live model.
func New() *Model {
	return &Model{}
}

// NewReplay creates a model for historical playback. Lines it produces
// are never marked working.
func NewReplay() *Model {
	return &Model{replay: true}
}

// --- Write API ---------------------------------------------------------------

// AddUserMessage appends the user's outgoing message, with the names of
// any attached files listed after the text.
func (m *Model) AddUserMessage(text string, fileNames ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, Line{
		Timestamp: time.Now(),
		Type:      LineTypeUser,
		Content:   text,
	})
	for _, name := range fileNames {
		m.lines = append(m.lines, Line{
			Timestamp: time.Now(),
			Type:      LineTypeStatus,
			Content:   "attached " + name,
		})
	}
}

// AddStatus appends an informational line (connection notices, save
// confirmations, and the like).
func (m *Model) AddStatus(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, Line{
		Timestamp: time.Now(),
		Type:      LineTypeStatus,
		Content:   text,
	})
}

// Apply folds one streaming event into the display state. Unrecognized
// events are ignored, matching the forward-compatibility stance of the
// wire decoder.
func (m *Model) Apply(ev agent.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e := ev.(type) {
	case agent.TextChunkEvent:
		m.appendText(e.Text)

	case agent.ToolUseEvent:
		m.lines = append(m.lines, Line{
			Timestamp: time.Now(),
			Type:      LineTypeTool,
			ToolName:  e.Name,
			ToolInput: copyInput(e.Input),
			Content:   e.RawInput,
			Working:   !m.replay,
		})

	case agent.ToolStatusEvent:
		m.lines = append(m.lines, Line{
			Timestamp: time.Now(),
			Type:      LineTypeToolStatus,
			Content:   e.Content,
			Working:   !m.replay,
		})

	case agent.AgentRoutingEvent:
		m.lines = append(m.lines, Line{
			Timestamp:  time.Now(),
			Type:       LineTypeAgent,
			Agent:      e.Agent,
			Confidence: e.Confidence,
			Working:    !m.replay,
		})
		m.recordAgent(e.Agent)

	case agent.ConfirmationRequestEvent:
		m.lines = append(m.lines, Line{
			Timestamp:      time.Now(),
			Type:           LineTypeConfirmation,
			ConfirmationID: e.ConfirmationID,
			ToolName:       e.ActionType,
			Content:        e.Summary,
		})

	case agent.ConfirmationResolvedEvent:
		m.resolveConfirmation(e.ConfirmationID, e.Status)

	case agent.CompletionEvent:
		m.finalizeLocked()
		m.lines = append(m.lines, Line{
			Timestamp:  time.Now(),
			Type:       LineTypeTurnEnd,
			DurationMs: e.DurationMs,
			Success:    e.Success,
		})

	case agent.InterruptedEvent:
		m.finalizeLocked()
		m.lines = append(m.lines, Line{
			Timestamp: time.Now(),
			Type:      LineTypeStatus,
			Content:   "interrupted",
		})

	case agent.ErrorEvent:
		m.finalizeLocked()
		m.lines = append(m.lines, Line{
			Timestamp: time.Now(),
			Type:      LineTypeError,
			Content:   e.Message,
		})
	}
}

// FinalizeWorking clears every in-progress marker in one pass. The
// session layer calls this when a turn ends for any reason; individual
// markers are never cleared one by one.
func (m *Model) FinalizeWorking() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizeLocked()
}

// appendText merges a streaming delta into the trailing assistant line,
// or starts a new one when the tail is some other line type.
func (m *Model) appendText(delta string) {
	if delta == "" {
		return
	}
	if n := len(m.lines); n > 0 && m.lines[n-1].Type == LineTypeAssistant {
		m.lines[n-1].Content += delta
		return
	}
	m.lines = append(m.lines, Line{
		Timestamp: time.Now(),
		Type:      LineTypeAssistant,
		Content:   delta,
	})
}

func (m *Model) finalizeLocked() {
	for i := range m.lines {
		m.lines[i].Working = false
	}
}

// resolveConfirmation stamps the resolution onto the newest line carrying
// the confirmation ID. Scanning from the tail keeps it cheap for the
// common case of resolving the most recent request.
func (m *Model) resolveConfirmation(id string, status agent.ConfirmationStatus) {
	for i := len(m.lines) - 1; i >= 0; i-- {
		if m.lines[i].Type == LineTypeConfirmation && m.lines[i].ConfirmationID == id {
			m.lines[i].Resolution = status
			return
		}
	}
}

func (m *Model) recordAgent(name string) {
	if name == "" {
		return
	}
	for _, a := range m.agents {
		if a == name {
			return
		}
	}
	m.agents = append(m.agents, name)
}

// --- Read API ----------------------------------------------------------------

// Lines returns a deep-copied snapshot of all display lines.
func (m *Model) Lines() []Line {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Line, len(m.lines))
	for i, l := range m.lines {
		out[i] = DeepCopyLine(l)
	}
	return out
}

// Len reports the number of display lines.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines)
}

// Agents lists the agents that have handled this conversation, in
// first-seen order.
func (m *Model) Agents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.agents))
	copy(out, m.agents)
	return out
}

// WorkingCount reports how many lines still carry an in-progress marker.
func (m *Model) WorkingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.lines {
		if l.Working {
			n++
		}
	}
	return n
}

// Title derives a short conversation title from the first user message,
// or a timestamp placeholder when there is none yet.
func (m *Model) Title() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lines {
		if l.Type == LineTypeUser {
			return TruncateForDisplay(firstLine(l.Content), 60)
		}
	}
	return fmt.Sprintf("Conversation %s", time.Now().Format("2006-01-02 15:04"))
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func copyInput(input map[string]interface{}) map[string]interface{} {
	if input == nil {
		return nil
	}
	out := make(map[string]interface{}, len(input))
	for k, v := range input {
		out[k] = v
	}
	return out
}
