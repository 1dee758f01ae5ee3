package agent

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultHistoryLimit is the most prior turns ever sent with a request. The
// window keeps request sizes bounded on long conversations.
const DefaultHistoryLimit = 10

// HistoryTurn is one prior message, in the key casing the backend expects.
type HistoryTurn struct {
	IsUser  bool   `json:"isUser"`
	Content string `json:"content"`
	Files   []File `json:"files,omitempty"`
}

// HistoryWindow returns at most limit of the most recent turns. A limit of
// zero or less means DefaultHistoryLimit.
func HistoryWindow(turns []HistoryTurn, limit int) []HistoryTurn {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}

// TurnRequest describes one conversation turn to send.
type TurnRequest struct {
	Message      string
	SystemPrompt string
	History      []HistoryTurn
	Tools        []ToolDef
	Files        []File

	// HistoryLimit overrides DefaultHistoryLimit when positive.
	HistoryLimit int
}

// ContentPart is one block of a multi-part message. Messages switch to the
// multi-part form only when an image or PDF attachment is present.
type ContentPart struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *BlockSource `json:"source,omitempty"`
}

// BlockSource carries the base64 payload of an image or document part.
type BlockSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// chatBody is the wire shape of a POST /chat request. Message is either a
// plain string or a []ContentPart.
type chatBody struct {
	Message      interface{}   `json:"message"`
	History      []HistoryTurn `json:"history"`
	SystemPrompt string        `json:"systemPrompt,omitempty"`
	Tools        []ToolDef     `json:"tools,omitempty"`
	Files        []File        `json:"files,omitempty"`
}

// buildChatBody assembles the wire request. Text-like attachments are
// decoded and inlined ahead of the message text; images and PDFs become
// base64 content parts placed before the text part. Attachments that fail
// to decode or have an unsupported type are skipped, not fatal.
func buildChatBody(req TurnRequest) chatBody {
	var parts []ContentPart
	var inlined strings.Builder

	for _, f := range req.Files {
		switch {
		case f.isImage():
			parts = append(parts, ContentPart{
				Type:   "image",
				Source: &BlockSource{Type: "base64", MediaType: f.Type, Data: f.base64Payload()},
			})
		case f.isPDF():
			parts = append(parts, ContentPart{
				Type:   "document",
				Source: &BlockSource{Type: "base64", MediaType: f.Type, Data: f.base64Payload()},
			})
		case f.isTextLike():
			content, err := f.decodeText()
			if err != nil {
				slog.Warn("skipping undecodable text attachment", "name", f.Name, "err", err)
				continue
			}
			fmt.Fprintf(&inlined, "--- File: %s (%s) ---\n%s\n--- End of File ---\n\n", f.Name, f.Type, content)
		default:
			slog.Warn("skipping attachment with unsupported type", "name", f.Name, "type", f.Type)
		}
	}

	text := req.Message
	if inlined.Len() > 0 {
		text = inlined.String() + text
	}

	history := HistoryWindow(req.History, req.HistoryLimit)
	if history == nil {
		history = []HistoryTurn{}
	}

	body := chatBody{
		History:      history,
		SystemPrompt: req.SystemPrompt,
		Tools:        req.Tools,
		Files:        req.Files,
	}
	if len(parts) > 0 {
		body.Message = append(parts, ContentPart{Type: "text", Text: text})
	} else {
		body.Message = text
	}
	return body
}
