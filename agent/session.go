package agent

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// Session owns one conversation with the backend: its history window, its
// confirmation registry, and at most one live stream at a time. All state is
// per session; two sessions never share anything.
type Session struct {
	client        *Client
	confirmations *Confirmations
	config        SessionConfig

	events chan Event
	done   chan struct{}

	mu         sync.Mutex
	history    []HistoryTurn
	streaming  bool
	closed     bool
	cancelTurn context.CancelFunc
}

// NewSession creates a session backed by client. Confirmation decisions are
// delivered through the same client.
func NewSession(client *Client, opts ...SessionOption) *Session {
	config := defaultSessionConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &Session{
		client: client,
		config: config,
		events: make(chan Event, config.EventBufferSize),
		done:   make(chan struct{}),
	}

	var resolver Resolver
	if client != nil {
		resolver = client
	}
	s.confirmations = NewConfirmations(resolver)
	s.confirmations.SetOnResolved(func(c Confirmation) {
		s.emit(ConfirmationResolvedEvent{ConfirmationID: c.ID, Status: c.Status})
	})
	return s
}

// Events returns the session's event channel. Stream events and local
// confirmation transitions both arrive here, one at a time, in order. The
// channel closes when the session closes.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Confirmations exposes the session's confirmation registry.
func (s *Session) Confirmations() *Confirmations {
	return s.confirmations
}

// History returns a copy of the turns recorded so far.
func (s *Session) History() []HistoryTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryTurn(nil), s.history...)
}

// Send starts one conversation turn. At most one turn streams at a time;
// starting a second returns ErrAlreadyStreaming. The user turn is recorded
// in history once the backend accepts the request.
func (s *Session) Send(ctx context.Context, message string, files ...File) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.streaming {
		s.mu.Unlock()
		return ErrAlreadyStreaming
	}
	req := TurnRequest{
		Message:      message,
		SystemPrompt: s.config.SystemPrompt,
		Tools:        s.config.Tools,
		Files:        files,
		History:      append([]HistoryTurn(nil), s.history...),
		HistoryLimit: s.config.HistoryLimit,
	}
	s.streaming = true
	s.mu.Unlock()

	turnCtx, cancel := context.WithCancel(ctx)
	stream, err := s.client.Stream(turnCtx, req)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.streaming = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.cancelTurn = cancel
	s.history = append(s.history, HistoryTurn{IsUser: true, Content: message, Files: files})
	s.mu.Unlock()

	go s.readLoop(stream)
	return nil
}

// readLoop consumes the stream one event at a time. Each event is dispatched
// fully before the next is read, so consumers observe arrival order.
func (s *Session) readLoop(stream *Stream) {
	defer stream.Close()

	var text strings.Builder
	for {
		select {
		case <-s.done:
			return
		default:
		}

		ev, err := stream.Next()
		if err != nil {
			switch {
			case err == io.EOF:
			case errors.Is(err, context.Canceled):
				s.emit(InterruptedEvent{})
			default:
				s.emit(ErrorEvent{Message: err.Error()})
			}
			break
		}

		switch e := ev.(type) {
		case ConfirmationRequestEvent:
			s.confirmations.Add(e)
		case TextChunkEvent:
			text.WriteString(e.Text)
		}
		s.emit(ev)
	}

	s.finishTurn(text.String())
}

// finishTurn records the assistant reply and releases the stream slot.
func (s *Session) finishTurn(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text != "" {
		s.history = append(s.history, HistoryTurn{Content: text})
	}
	s.streaming = false
	if s.cancelTurn != nil {
		s.cancelTurn()
		s.cancelTurn = nil
	}
}

// Interrupt aborts the in-flight turn, if any. Pending confirmations keep
// their timers; each confirmation owns its own deadline independently of the
// stream that delivered it.
func (s *Session) Interrupt() {
	s.mu.Lock()
	cancel := s.cancelTurn
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Streaming reports whether a turn is currently in flight.
func (s *Session) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// Close shuts the session down, aborting the live turn and closing the
// event channel. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancelTurn
	s.cancelTurn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	close(s.done)
	close(s.events)
	return nil
}

// emit forwards an event, dropping it if the session is stopping or the
// consumer is not keeping up.
func (s *Session) emit(event Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- event:
	case <-s.done:
	default:
		// Buffer full. Dropping is preferable to stalling the read loop.
	}
}
