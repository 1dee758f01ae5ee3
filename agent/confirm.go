package agent

import (
	"context"
	"sync"
	"time"
)

// ConfirmationStatus is the lifecycle state of a confirmation.
type ConfirmationStatus string

const (
	ConfirmationPending  ConfirmationStatus = "pending"
	ConfirmationApproved ConfirmationStatus = "approved"
	ConfirmationDenied   ConfirmationStatus = "denied"
	ConfirmationTimedOut ConfirmationStatus = "timed_out"
)

// Terminal returns true once the confirmation can no longer change state.
func (s ConfirmationStatus) Terminal() bool {
	return s == ConfirmationApproved || s == ConfirmationDenied || s == ConfirmationTimedOut
}

// Resolver delivers approve/deny decisions to the backend. Implemented by
// Client; tests substitute their own.
type Resolver interface {
	Resolve(ctx context.Context, confirmationID string, approved bool) error
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, confirmationID string, approved bool) error

// Resolve calls the function.
func (f ResolverFunc) Resolve(ctx context.Context, confirmationID string, approved bool) error {
	return f(ctx, confirmationID, approved)
}

// Confirmation is a snapshot of one tracked confirmation.
type Confirmation struct {
	Deadline   time.Time
	ID         string
	ActionType string
	Summary    string
	Preview    string
	Status     ConfirmationStatus
}

// Expires reports whether the confirmation has a local expiry deadline.
func (c Confirmation) Expires() bool {
	return !c.Deadline.IsZero()
}

type trackedConfirmation struct {
	Confirmation
	timer *time.Timer
}

// Confirmations tracks every confirmation of one conversation. Each
// confirmation leaves Pending exactly once, to Approved, Denied, or
// TimedOut; terminal states admit no further transition. User actions and
// timer expiry race for that single transition: both check the status under
// the same mutex, so whichever runs first wins and the loser is a no-op.
//
// Only Approve and Deny notify the backend, at most once per id. Timer
// expiry does not: timeout is a local state and the backend applies its own
// timeout policy independently.
type Confirmations struct {
	byID       map[string]*trackedConfirmation
	resolver   Resolver
	onResolved func(Confirmation)
	mu         sync.Mutex
}

// NewConfirmations creates an empty registry. resolver may be nil, in which
// case decisions are recorded locally but delivered nowhere.
func NewConfirmations(resolver Resolver) *Confirmations {
	return &Confirmations{
		byID:     make(map[string]*trackedConfirmation),
		resolver: resolver,
	}
}

// SetOnResolved registers a hook invoked after every terminal transition,
// including timeout. It must be set before the first Add.
func (m *Confirmations) SetOnResolved(fn func(Confirmation)) {
	m.onResolved = fn
}

// Add begins tracking the confirmation described by ev in the Pending state
// and arms its expiry timer when the request carries a positive timeout.
// A request without a timeout (or with a non-positive one) never expires.
// Adding an id that is already tracked returns the existing confirmation
// unchanged.
func (m *Confirmations) Add(ev ConfirmationRequestEvent) Confirmation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.byID[ev.ConfirmationID]; ok {
		return c.Confirmation
	}

	c := &trackedConfirmation{
		Confirmation: Confirmation{
			ID:         ev.ConfirmationID,
			ActionType: ev.ActionType,
			Summary:    ev.Summary,
			Preview:    ev.Preview,
			Status:     ConfirmationPending,
		},
	}
	if ev.TimeoutSeconds > 0 {
		d := time.Duration(ev.TimeoutSeconds * float64(time.Second))
		c.Deadline = time.Now().Add(d)
		c.timer = time.AfterFunc(d, func() { m.expire(ev.ConfirmationID) })
	}
	m.byID[ev.ConfirmationID] = c
	return c.Confirmation
}

// Approve resolves the confirmation as accepted and sends the decision to
// the backend. Unknown or already-terminal ids are a no-op: at most one
// resolution notification is ever sent per confirmation.
func (m *Confirmations) Approve(ctx context.Context, id string) error {
	return m.resolve(ctx, id, true)
}

// Deny resolves the confirmation as rejected and sends the decision to the
// backend. Unknown or already-terminal ids are a no-op.
func (m *Confirmations) Deny(ctx context.Context, id string) error {
	return m.resolve(ctx, id, false)
}

func (m *Confirmations) resolve(ctx context.Context, id string, approved bool) error {
	m.mu.Lock()
	c, ok := m.byID[id]
	if !ok || c.Status != ConfirmationPending {
		m.mu.Unlock()
		return nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if approved {
		c.Status = ConfirmationApproved
	} else {
		c.Status = ConfirmationDenied
	}
	snapshot := c.Confirmation
	m.mu.Unlock()

	if m.onResolved != nil {
		m.onResolved(snapshot)
	}

	// Local state is terminal regardless of delivery; a failure here is
	// reported but never retried.
	if m.resolver == nil {
		return nil
	}
	return m.resolver.Resolve(ctx, id, approved)
}

// expire is the timer callback. It loses the race against any user action
// that already resolved the confirmation.
func (m *Confirmations) expire(id string) {
	m.mu.Lock()
	c, ok := m.byID[id]
	if !ok || c.Status != ConfirmationPending {
		m.mu.Unlock()
		return
	}
	c.Status = ConfirmationTimedOut
	c.timer = nil
	snapshot := c.Confirmation
	m.mu.Unlock()

	if m.onResolved != nil {
		m.onResolved(snapshot)
	}
}

// Get returns a snapshot of the confirmation with the given id.
func (m *Confirmations) Get(id string) (Confirmation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return Confirmation{}, false
	}
	return c.Confirmation, true
}

// Pending returns snapshots of all confirmations still awaiting resolution.
func (m *Confirmations) Pending() []Confirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Confirmation
	for _, c := range m.byID {
		if c.Status == ConfirmationPending {
			out = append(out, c.Confirmation)
		}
	}
	return out
}

// Remove detaches the confirmation from tracking, stopping its timer if one
// is still live. No transition happens and nothing is notified; callers
// remove confirmations when their display representation goes away.
func (m *Confirmations) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		if c.timer != nil {
			c.timer.Stop()
			c.timer = nil
		}
		delete(m.byID, id)
	}
}
