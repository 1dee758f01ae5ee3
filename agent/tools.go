package agent

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ToolDef describes one tool offered to the backend in a request's tools
// array. The backend forwards these to the model verbatim.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// NewTool builds a tool definition whose input schema is generated from the
// struct type T. Field names, types, and jsonschema tags drive the schema.
func NewTool[T any](name, description string) ToolDef {
	return ToolDef{
		Name:        name,
		Description: description,
		InputSchema: generateSchema[T](),
	}
}

// generateSchema generates a JSON schema for the given type using reflection.
func generateSchema[T any]() json.RawMessage {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	bytes, err := json.Marshal(schema)
	if err != nil {
		// This should never happen with valid struct types
		panic(fmt.Sprintf("failed to generate schema for type %T: %v", zero, err))
	}

	return bytes
}
