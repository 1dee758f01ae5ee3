// Package agent implements the client side of the streamed agent-chat
// protocol: decoding the line-delimited event stream, classifying payloads
// into typed events, managing confirmation lifecycles, and driving the HTTP
// transport that carries conversation turns.
package agent

// EventType discriminates between event kinds.
type EventType int

const (
	// EventTypeTextChunk fires for streaming fragments of assistant text.
	EventTypeTextChunk EventType = iota
	// EventTypeToolUse fires when the backend starts a tool invocation.
	EventTypeToolUse
	// EventTypeToolStatus fires for free-form tool progress notices.
	EventTypeToolStatus
	// EventTypeAgentRouting fires when the backend routes the turn to a named agent.
	EventTypeAgentRouting
	// EventTypeCompletion fires when the backend finishes a turn.
	EventTypeCompletion
	// EventTypeConfirmationRequest fires when the backend asks for human approval.
	EventTypeConfirmationRequest
	// EventTypeInterrupted fires when the backend aborts the turn.
	EventTypeInterrupted
	// EventTypeError fires for backend-reported errors.
	EventTypeError
	// EventTypeConfirmationResolved fires locally when a tracked confirmation
	// leaves Pending. It is never produced by the wire decoder.
	EventTypeConfirmationResolved
)

// Event is the interface for all events.
type Event interface {
	Type() EventType
}

// TextChunkEvent carries a streaming fragment of assistant text.
type TextChunkEvent struct {
	Text string
}

// Type returns the event type.
func (e TextChunkEvent) Type() EventType { return EventTypeTextChunk }

// ToolUseEvent fires when the backend starts a tool invocation. Input holds
// the parsed input object when the payload carried one; RawInput holds the
// original text when the input could not be parsed as an object.
type ToolUseEvent struct {
	Input    map[string]interface{}
	Name     string
	RawInput string
}

// Type returns the event type.
func (e ToolUseEvent) Type() EventType { return EventTypeToolUse }

// ToolStatusEvent carries a free-form progress notice for a running tool.
type ToolStatusEvent struct {
	Content string
}

// Type returns the event type.
func (e ToolStatusEvent) Type() EventType { return EventTypeToolStatus }

// AgentRoutingEvent fires when the backend routes the turn to a named agent.
// Confidence is in [0, 1].
type AgentRoutingEvent struct {
	Agent      string
	Confidence float64
}

// Type returns the event type.
func (e AgentRoutingEvent) Type() EventType { return EventTypeAgentRouting }

// CompletionEvent fires when a turn finishes.
type CompletionEvent struct {
	DurationMs int64
	Success    bool
}

// Type returns the event type.
func (e CompletionEvent) Type() EventType { return EventTypeCompletion }

// ConfirmationRequestEvent fires when the backend asks for human approval
// before proceeding with an action. TimeoutSeconds <= 0 means the request
// never expires locally.
type ConfirmationRequestEvent struct {
	ConfirmationID string
	ActionType     string
	Summary        string
	Preview        string
	TimeoutSeconds float64
}

// Type returns the event type.
func (e ConfirmationRequestEvent) Type() EventType { return EventTypeConfirmationRequest }

// InterruptedEvent fires when the backend aborts the turn.
type InterruptedEvent struct{}

// Type returns the event type.
func (e InterruptedEvent) Type() EventType { return EventTypeInterrupted }

// ErrorEvent carries a backend-reported error message.
type ErrorEvent struct {
	Message string
}

// Type returns the event type.
func (e ErrorEvent) Type() EventType { return EventTypeError }

// ConfirmationResolvedEvent fires locally when a confirmation reaches a
// terminal status, whether by user action or timer expiry.
type ConfirmationResolvedEvent struct {
	ConfirmationID string
	Status         ConfirmationStatus
}

// Type returns the event type.
func (e ConfirmationResolvedEvent) Type() EventType { return EventTypeConfirmationResolved }
