package chatmodel

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pmaederyork/apprised/agent"
)

// FromLines builds a replay model from previously stored display lines.
// Every line comes back finalized, and confirmation lines that were
// saved without a resolution are shown as expired.
func FromLines(lines []Line) *Model {
	m := NewReplay()
	m.lines = make([]Line, len(lines))
	for i, l := range lines {
		clone := DeepCopyLine(l)
		clone.Working = false
		if clone.Type == LineTypeConfirmation && clone.Resolution == "" {
			clone.Resolution = agent.ConfirmationTimedOut
		}
		m.lines[i] = clone
		if clone.Type == LineTypeAgent {
			m.recordAgent(clone.Agent)
		}
	}
	return m
}

// LoadStreamLog replays a captured stream log from disk.
func LoadStreamLog(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stream log: %w", err)
	}
	defer f.Close()
	m, err := ReadStreamLog(f)
	if err != nil {
		return nil, fmt.Errorf("read stream log %s: %w", path, err)
	}
	return m, nil
}

// ReadStreamLog replays a raw "data:"-framed capture into a model. The
// same decoder that drives live sessions drives replay, so both paths
// tolerate the same junk: unframed lines, malformed JSON, and a
// truncated final line are skipped.
func ReadStreamLog(r io.Reader) (*Model, error) {
	m := NewReplay()
	dec := agent.NewDecoder(r)
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		m.Apply(ev)
	}
	m.expireUnresolved()
	return m, nil
}

// expireUnresolved marks confirmation lines that never saw a resolution.
// Resolutions travel on a separate request, never on the stream, so a
// raw capture cannot contain them; on replay every request reads as
// expired.
func (m *Model) expireUnresolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lines {
		if m.lines[i].Type == LineTypeConfirmation && m.lines[i].Resolution == "" {
			m.lines[i].Resolution = agent.ConfirmationTimedOut
		}
	}
}
