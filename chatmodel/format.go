package chatmodel

import (
	"fmt"
	"sort"
)

// MaxInputDisplay is the rune budget for a tool-input summary, including
// the "..." suffix when truncation occurs.
const MaxInputDisplay = 50

// ToolInfo is the display identity of a tool: a glyph and a short label.
type ToolInfo struct {
	Icon  string
	Label string
}

var defaultTool = ToolInfo{Icon: "🔧", Label: "Tool"}

// toolTable maps tool names to their display identity. Lookup is exact;
// anything the table does not know falls back to defaultTool so new
// backend tools degrade gracefully instead of breaking the display.
var toolTable = map[string]ToolInfo{
	"Bash":         {Icon: "💻", Label: "Terminal"},
	"Read":         {Icon: "📖", Label: "Read file"},
	"Write":        {Icon: "📝", Label: "Write file"},
	"Edit":         {Icon: "✏️", Label: "Edit file"},
	"Glob":         {Icon: "📁", Label: "Find files"},
	"Grep":         {Icon: "🔍", Label: "Search"},
	"Task":         {Icon: "🤖", Label: "Subtask"},
	"WebSearch":    {Icon: "🌐", Label: "Web search"},
	"WebFetch":     {Icon: "🌐", Label: "Fetch page"},
	"TodoWrite":    {Icon: "📋", Label: "Update plan"},
	"NotebookEdit": {Icon: "📓", Label: "Edit notebook"},
}

// ResolveTool returns the icon and label for a tool name. Unknown names
// get the generic identity rather than an error.
func ResolveTool(name string) ToolInfo {
	if info, ok := toolTable[name]; ok {
		return info
	}
	return defaultTool
}

// DescribeInput produces a one-line summary of a tool invocation's input,
// at most MaxInputDisplay runes. Known tools surface their most telling
// field; unknown tools surface the first string-valued field in key
// order. When the input never parsed as an object, raw is summarized
// instead. The input map is never mutated and an empty string is a valid
// result.
func DescribeInput(name string, input map[string]interface{}, raw string) string {
	if input == nil {
		return TruncateForDisplay(raw, MaxInputDisplay)
	}

	switch name {
	case "Bash":
		if cmd, ok := input["command"].(string); ok {
			return TruncateForDisplay(cmd, MaxInputDisplay)
		}
	case "Read", "Write", "Edit", "NotebookEdit":
		if path, ok := input["file_path"].(string); ok {
			return TruncateForDisplay(path, MaxInputDisplay)
		}
	case "Glob", "Grep":
		if pattern, ok := input["pattern"].(string); ok {
			return TruncateForDisplay(pattern, MaxInputDisplay)
		}
	case "Task":
		if desc, ok := input["description"].(string); ok {
			return TruncateForDisplay(desc, MaxInputDisplay)
		}
	case "WebSearch", "WebFetch":
		if q, ok := input["query"].(string); ok {
			return TruncateForDisplay(q, MaxInputDisplay)
		}
		if u, ok := input["url"].(string); ok {
			return TruncateForDisplay(u, MaxInputDisplay)
		}
	}

	return TruncateForDisplay(firstStringField(input), MaxInputDisplay)
}

// firstStringField returns the first string value of input when keys are
// visited in sorted order. Map iteration order is randomized in Go, so
// sorting is what makes the summary stable across runs.
func firstStringField(input map[string]interface{}) string {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := input[k].(string); ok {
			return s
		}
	}
	return ""
}

// FormatToolLabel renders "icon label: summary" for a tool line, omitting
// the summary part when there is nothing to show.
func FormatToolLabel(name string, input map[string]interface{}, raw string) string {
	info := ResolveTool(name)
	summary := DescribeInput(name, input, raw)
	if summary == "" {
		return fmt.Sprintf("%s %s", info.Icon, info.Label)
	}
	return fmt.Sprintf("%s %s: %s", info.Icon, info.Label, summary)
}

// TruncateForDisplay truncates s to at most max Unicode code points,
// appending "..." if truncation occurred (the suffix counts toward max).
// Rune-based indexing avoids splitting multi-byte UTF-8 sequences that
// byte-based slicing would corrupt. If max is 3 or less, the string is
// cut to max runes with no suffix.
func TruncateForDisplay(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
