package agent

import (
	"encoding/json"
)

// wireEnvelope is the superset of fields a stream payload may carry. The
// backend does not tag payloads with an explicit type field; the event kind
// is inferred from which fields are present.
type wireEnvelope struct {
	ConfirmationID *string         `json:"confirmation_id"`
	ToolUse        *wireToolUse    `json:"tool_use"`
	ToolStatus     *string         `json:"tool_status"`
	Agent          *string         `json:"agent"`
	Done           *bool           `json:"done"`
	Interrupted    *bool           `json:"interrupted"`
	Error          *string         `json:"error"`
	Chunk          *string         `json:"chunk"`
	Input          json.RawMessage `json:"input"`
	ActionType     string          `json:"action_type"`
	Summary        string          `json:"summary"`
	Preview        string          `json:"preview"`
	TimeoutSeconds *float64        `json:"timeout_seconds"`
	Confidence     float64         `json:"confidence"`
	DurationMs     int64           `json:"duration_ms"`
	Success        *bool           `json:"success"`
}

type wireToolUse struct {
	Name string `json:"name"`
}

// ParseEvent classifies one decoded payload into a typed Event. It is the
// only place payloads are classified, so the precedence between overlapping
// shapes is fixed in exactly one ordering:
//
//	confirmation > tool_use > tool_status > agent > done > interrupted > error > chunk
//
// A payload carrying several discriminant fields resolves to the first match;
// such payloads violate the protocol but must still resolve deterministically.
// Payloads matching no known shape return (nil, nil) so callers can skip them,
// tolerating protocol evolution. A payload that is not a JSON object returns
// a *ProtocolError.
func ParseEvent(payload []byte) (Event, error) {
	var env wireEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &ProtocolError{
			Message: "failed to parse payload",
			Line:    string(payload),
			Cause:   err,
		}
	}

	switch {
	case env.ConfirmationID != nil:
		ev := ConfirmationRequestEvent{
			ConfirmationID: *env.ConfirmationID,
			ActionType:     env.ActionType,
			Summary:        env.Summary,
			Preview:        env.Preview,
		}
		if env.TimeoutSeconds != nil {
			ev.TimeoutSeconds = *env.TimeoutSeconds
		}
		return ev, nil

	case env.ToolUse != nil:
		input, raw := decodeToolInput(env.Input)
		return ToolUseEvent{
			Name:     env.ToolUse.Name,
			Input:    input,
			RawInput: raw,
		}, nil

	case env.ToolStatus != nil:
		return ToolStatusEvent{Content: *env.ToolStatus}, nil

	case env.Agent != nil:
		return AgentRoutingEvent{
			Agent:      *env.Agent,
			Confidence: env.Confidence,
		}, nil

	case env.Done != nil:
		ev := CompletionEvent{
			DurationMs: env.DurationMs,
			Success:    true,
		}
		if env.Success != nil {
			ev.Success = *env.Success
		}
		return ev, nil

	case env.Interrupted != nil:
		return InterruptedEvent{}, nil

	case env.Error != nil:
		return ErrorEvent{Message: *env.Error}, nil

	case env.Chunk != nil:
		return TextChunkEvent{Text: *env.Chunk}, nil
	}

	// Unknown shape. Not an error: newer backends may emit payloads this
	// client does not understand yet.
	return nil, nil
}

// decodeToolInput handles the three input encodings backends have been seen
// to emit: a JSON object, a JSON string containing an encoded object, or an
// arbitrary string. The second return value carries the raw text when no
// object could be recovered.
func decodeToolInput(raw json.RawMessage) (map[string]interface{}, string) {
	if len(raw) == 0 {
		return nil, ""
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj, ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var inner map[string]interface{}
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			return inner, ""
		}
		return nil, s
	}

	return nil, string(raw)
}
