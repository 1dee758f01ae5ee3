// Package chatmodel holds the display-side state of a conversation: the
// ordered lines a renderer draws, the in-progress markers on unfinished
// actions, and the descriptors that turn tool invocations into short
// human-readable summaries.
//
// The package is renderer-agnostic. The interactive TUI and the offline
// log viewer both read the same Model; only the styling differs.
package chatmodel

import (
	"time"

	"github.com/pmaederyork/apprised/agent"
)

// LineType categorizes display lines.
type LineType string

const (
	LineTypeUser         LineType = "user"
	LineTypeAssistant    LineType = "assistant"
	LineTypeTool         LineType = "tool"
	LineTypeToolStatus   LineType = "tool_status"
	LineTypeAgent        LineType = "agent"
	LineTypeConfirmation LineType = "confirmation"
	LineTypeTurnEnd      LineType = "turn_end"
	LineTypeStatus       LineType = "status"
	LineTypeError        LineType = "error"
)

// Line is a single row of the conversation display. Lines are value
// types; the Model hands out deep copies so renderers can hold
// snapshots without racing writers.
type Line struct {
	Timestamp      time.Time                `json:"timestamp"`
	ToolInput      map[string]interface{}   `json:"tool_input,omitempty"`
	Type           LineType                 `json:"type"`
	Content        string                   `json:"content,omitempty"`
	ToolName       string                   `json:"tool_name,omitempty"`
	Agent          string                   `json:"agent,omitempty"`
	ConfirmationID string                   `json:"confirmation_id,omitempty"`
	Resolution     agent.ConfirmationStatus `json:"resolution,omitempty"`
	Confidence     float64                  `json:"confidence,omitempty"`
	DurationMs     int64                    `json:"duration_ms,omitempty"`
	Success        bool                     `json:"success,omitempty"`
	Working        bool                     `json:"-"`
}

// DeepCopyLine returns a copy of l whose ToolInput map does not alias
// the original.
func DeepCopyLine(l Line) Line {
	clone := l
	if l.ToolInput != nil {
		clone.ToolInput = make(map[string]interface{}, len(l.ToolInput))
		for k, v := range l.ToolInput {
			clone.ToolInput[k] = v
		}
	}
	return clone
}
