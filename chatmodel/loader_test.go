package chatmodel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmaederyork/apprised/agent"
)

func TestReadStreamLogReplaysCapture(t *testing.T) {
	capture := strings.Join([]string{
		`data: {"agent": "coder", "confidence": 0.91}`,
		``,
		`data: {"chunk": "Working on it. "}`,
		`data: {"chunk": "Done soon."}`,
		`# operator note, not part of the stream`,
		`data: {"tool_use": {"name": "Bash"}, "input": {"command": "make test"}}`,
		`data: not even json`,
		`data: {"confirmation_id": "c9", "summary": "Delete cache"}`,
		`data: {"done": true, "duration_ms": 840}`,
	}, "\n") + "\n"

	m, err := ReadStreamLog(strings.NewReader(capture))
	require.NoError(t, err)

	lines := m.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, LineTypeAgent, lines[0].Type)
	assert.Equal(t, "coder", lines[0].Agent)
	assert.Equal(t, LineTypeAssistant, lines[1].Type)
	assert.Equal(t, "Working on it. Done soon.", lines[1].Content)
	assert.Equal(t, LineTypeTool, lines[2].Type)
	assert.Equal(t, "Bash", lines[2].ToolName)
	assert.Equal(t, LineTypeConfirmation, lines[3].Type)
	assert.Equal(t, LineTypeTurnEnd, lines[4].Type)
	assert.Equal(t, int64(840), lines[4].DurationMs)

	assert.Equal(t, 0, m.WorkingCount(), "replay lines must come back finalized")
	assert.Equal(t, agent.ConfirmationTimedOut, lines[3].Resolution,
		"resolutions never appear on the stream, so replayed requests read as expired")
	assert.Equal(t, []string{"coder"}, m.Agents())
}

func TestReadStreamLogDiscardsTruncatedFinalLine(t *testing.T) {
	capture := "data: {\"chunk\": \"complete\"}\ndata: {\"chunk\": \"cut off"

	m, err := ReadStreamLog(strings.NewReader(capture))
	require.NoError(t, err)

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "complete", lines[0].Content)
}

func TestLoadStreamLogFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	content := "data: {\"chunk\": \"hi\"}\ndata: {\"done\": true}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadStreamLog(path)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	_, err = LoadStreamLog(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

func TestFromLinesFinalizesAndExpires(t *testing.T) {
	stored := []Line{
		{Type: LineTypeUser, Content: "hello"},
		{Type: LineTypeTool, ToolName: "Bash", ToolInput: map[string]interface{}{"command": "ls"}, Working: true},
		{Type: LineTypeConfirmation, ConfirmationID: "c1"},
		{Type: LineTypeConfirmation, ConfirmationID: "c2", Resolution: agent.ConfirmationApproved},
		{Type: LineTypeAgent, Agent: "planner"},
	}

	m := FromLines(stored)

	lines := m.Lines()
	require.Len(t, lines, 5)
	assert.Equal(t, 0, m.WorkingCount())
	assert.Equal(t, agent.ConfirmationTimedOut, lines[2].Resolution)
	assert.Equal(t, agent.ConfirmationApproved, lines[3].Resolution)
	assert.Equal(t, []string{"planner"}, m.Agents())

	// The replay model owns its copies.
	stored[1].ToolInput["command"] = "tampered"
	assert.Equal(t, "ls", m.Lines()[1].ToolInput["command"])
}
