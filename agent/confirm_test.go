package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type resolveCall struct {
	id       string
	approved bool
}

// fakeResolver records decisions instead of sending them anywhere.
type fakeResolver struct {
	mu    sync.Mutex
	calls []resolveCall
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, id string, approved bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, resolveCall{id: id, approved: approved})
	return f.err
}

func (f *fakeResolver) Calls() []resolveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]resolveCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// notifications collects onResolved snapshots.
type notifications struct {
	mu   sync.Mutex
	seen []Confirmation
}

func (n *notifications) record(c Confirmation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, c)
}

func (n *notifications) Seen() []Confirmation {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Confirmation, len(n.seen))
	copy(out, n.seen)
	return out
}

func newTestConfirmations() (*Confirmations, *fakeResolver, *notifications) {
	resolver := &fakeResolver{}
	notes := &notifications{}
	m := NewConfirmations(resolver)
	m.SetOnResolved(notes.record)
	return m, resolver, notes
}

func confirmationRequest(id string, timeoutSeconds float64) ConfirmationRequestEvent {
	return ConfirmationRequestEvent{
		ConfirmationID: id,
		ActionType:     "send_email",
		Summary:        "Send email to bob",
		TimeoutSeconds: timeoutSeconds,
	}
}

func TestConfirmations_ApproveNotifiesBackendOnce(t *testing.T) {
	m, resolver, notes := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0))

	if err := m.Approve(context.Background(), "c-1"); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	// Second attempt is a no-op, not an error.
	if err := m.Approve(context.Background(), "c-1"); err != nil {
		t.Fatalf("repeat Approve error: %v", err)
	}

	calls := resolver.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 backend call, got %d", len(calls))
	}
	if calls[0].id != "c-1" || !calls[0].approved {
		t.Errorf("unexpected call %+v", calls[0])
	}

	c, ok := m.Get("c-1")
	if !ok || c.Status != ConfirmationApproved {
		t.Errorf("expected approved status, got %v", c.Status)
	}
	if len(notes.Seen()) != 1 {
		t.Errorf("expected exactly 1 notification, got %d", len(notes.Seen()))
	}
}

func TestConfirmations_DenyAfterApproveIsNoop(t *testing.T) {
	m, resolver, _ := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0))

	if err := m.Approve(context.Background(), "c-1"); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	if err := m.Deny(context.Background(), "c-1"); err != nil {
		t.Fatalf("Deny error: %v", err)
	}

	if len(resolver.Calls()) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(resolver.Calls()))
	}
	c, _ := m.Get("c-1")
	if c.Status != ConfirmationApproved {
		t.Errorf("terminal state must not change, got %v", c.Status)
	}
}

func TestConfirmations_Deny(t *testing.T) {
	m, resolver, _ := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0))

	if err := m.Deny(context.Background(), "c-1"); err != nil {
		t.Fatalf("Deny error: %v", err)
	}

	calls := resolver.Calls()
	if len(calls) != 1 || calls[0].approved {
		t.Fatalf("expected one deny call, got %+v", calls)
	}
	c, _ := m.Get("c-1")
	if c.Status != ConfirmationDenied {
		t.Errorf("expected denied, got %v", c.Status)
	}
}

func TestConfirmations_TimeoutIsLocalOnly(t *testing.T) {
	m, resolver, notes := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0.03))

	time.Sleep(100 * time.Millisecond)

	c, _ := m.Get("c-1")
	if c.Status != ConfirmationTimedOut {
		t.Fatalf("expected timed_out, got %v", c.Status)
	}
	// Expiry must never reach the backend.
	if len(resolver.Calls()) != 0 {
		t.Errorf("timeout must not call the backend, got %d calls", len(resolver.Calls()))
	}
	// But the UI hook still fires, exactly once.
	seen := notes.Seen()
	if len(seen) != 1 || seen[0].Status != ConfirmationTimedOut {
		t.Errorf("expected one timed_out notification, got %+v", seen)
	}
}

func TestConfirmations_ApproveBeforeTimeoutWins(t *testing.T) {
	m, resolver, notes := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0.05))

	if err := m.Approve(context.Background(), "c-1"); err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	// Wait well past the deadline: the stopped timer must not fire, and even
	// if it did, the terminal state must hold.
	time.Sleep(150 * time.Millisecond)

	c, _ := m.Get("c-1")
	if c.Status != ConfirmationApproved {
		t.Errorf("expected approved to stick, got %v", c.Status)
	}
	if len(resolver.Calls()) != 1 {
		t.Errorf("expected 1 backend call, got %d", len(resolver.Calls()))
	}
	if len(notes.Seen()) != 1 {
		t.Errorf("expected exactly 1 notification, got %d", len(notes.Seen()))
	}
}

func TestConfirmations_ApproveAfterTimeoutIsNoop(t *testing.T) {
	m, resolver, _ := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0.03))

	time.Sleep(100 * time.Millisecond)

	if err := m.Approve(context.Background(), "c-1"); err != nil {
		t.Fatalf("Approve error: %v", err)
	}
	c, _ := m.Get("c-1")
	if c.Status != ConfirmationTimedOut {
		t.Errorf("expected timed_out to stick, got %v", c.Status)
	}
	if len(resolver.Calls()) != 0 {
		t.Errorf("late approval must not reach the backend, got %d calls", len(resolver.Calls()))
	}
}

func TestConfirmations_NoTimeoutNeverExpires(t *testing.T) {
	m, _, notes := newTestConfirmations()
	c := m.Add(confirmationRequest("c-1", 0))

	if c.Expires() {
		t.Error("zero timeout must not set a deadline")
	}
	if neg := m.Add(confirmationRequest("c-2", -5)); neg.Expires() {
		t.Error("negative timeout must not set a deadline")
	}

	time.Sleep(60 * time.Millisecond)

	for _, id := range []string{"c-1", "c-2"} {
		got, _ := m.Get(id)
		if got.Status != ConfirmationPending {
			t.Errorf("%s: expected still pending, got %v", id, got.Status)
		}
	}
	if len(notes.Seen()) != 0 {
		t.Errorf("expected no notifications, got %d", len(notes.Seen()))
	}
}

func TestConfirmations_DuplicateAddIgnored(t *testing.T) {
	m, _, _ := newTestConfirmations()
	first := m.Add(confirmationRequest("c-1", 0))
	second := m.Add(ConfirmationRequestEvent{ConfirmationID: "c-1", Summary: "different"})

	if second.Summary != first.Summary {
		t.Errorf("duplicate add must not overwrite, got %q", second.Summary)
	}
	if len(m.Pending()) != 1 {
		t.Errorf("expected 1 pending confirmation, got %d", len(m.Pending()))
	}
}

func TestConfirmations_ResolverFailureStillTerminal(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("backend unreachable")}
	m := NewConfirmations(resolver)
	m.Add(confirmationRequest("c-1", 0))

	err := m.Approve(context.Background(), "c-1")
	if err == nil {
		t.Fatal("expected delivery error to surface")
	}

	// The decision stands and is never retried.
	c, _ := m.Get("c-1")
	if c.Status != ConfirmationApproved {
		t.Errorf("expected approved despite delivery failure, got %v", c.Status)
	}
	if err := m.Approve(context.Background(), "c-1"); err != nil {
		t.Errorf("repeat approve must be a no-op, got %v", err)
	}
	if len(resolver.Calls()) != 1 {
		t.Errorf("expected no retry, got %d calls", len(resolver.Calls()))
	}
}

func TestConfirmations_UnknownIDIsNoop(t *testing.T) {
	m, resolver, _ := newTestConfirmations()

	if err := m.Approve(context.Background(), "ghost"); err != nil {
		t.Fatalf("unknown id should be a no-op, got %v", err)
	}
	if len(resolver.Calls()) != 0 {
		t.Errorf("unknown id must not call the backend, got %d calls", len(resolver.Calls()))
	}
}

func TestConfirmations_PendingListsOnlyPending(t *testing.T) {
	m, _, _ := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0))
	m.Add(confirmationRequest("c-2", 0))
	m.Add(confirmationRequest("c-3", 0))

	if err := m.Approve(context.Background(), "c-2"); err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	pending := m.Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	for _, c := range pending {
		if c.ID == "c-2" {
			t.Error("approved confirmation still listed as pending")
		}
	}
}

func TestConfirmations_RemoveStopsTimerSilently(t *testing.T) {
	m, resolver, notes := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0.03))
	m.Remove("c-1")

	time.Sleep(100 * time.Millisecond)

	if _, ok := m.Get("c-1"); ok {
		t.Error("removed confirmation should be gone")
	}
	if len(notes.Seen()) != 0 {
		t.Errorf("removal must not notify, got %d notifications", len(notes.Seen()))
	}
	if len(resolver.Calls()) != 0 {
		t.Errorf("removal must not call the backend, got %d calls", len(resolver.Calls()))
	}
}

func TestConfirmations_ConcurrentResolveRace(t *testing.T) {
	// Many goroutines race to resolve the same confirmation; exactly one
	// must win.
	m, resolver, notes := newTestConfirmations()
	m.Add(confirmationRequest("c-1", 0))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		approved := i%2 == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			if approved {
				_ = m.Approve(context.Background(), "c-1")
			} else {
				_ = m.Deny(context.Background(), "c-1")
			}
		}()
	}
	wg.Wait()

	if len(resolver.Calls()) != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", len(resolver.Calls()))
	}
	if len(notes.Seen()) != 1 {
		t.Errorf("expected exactly 1 notification, got %d", len(notes.Seen()))
	}
	c, _ := m.Get("c-1")
	if !c.Status.Terminal() {
		t.Errorf("expected a terminal status, got %v", c.Status)
	}
}

func TestConfirmationStatus_Terminal(t *testing.T) {
	if ConfirmationPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []ConfirmationStatus{ConfirmationApproved, ConfirmationDenied, ConfirmationTimedOut} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
}
