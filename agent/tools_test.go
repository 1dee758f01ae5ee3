package agent

import (
	"encoding/json"
	"strings"
	"testing"
)

type weatherParams struct {
	Location string `json:"location" jsonschema:"description=City name or coordinates"`
	Units    string `json:"units,omitempty" jsonschema:"description=Temperature units,enum=celsius,enum=fahrenheit"`
}

func TestNewTool_SchemaFromStruct(t *testing.T) {
	tool := NewTool[weatherParams]("get_weather", "Look up the current weather.")

	if tool.Name != "get_weather" {
		t.Errorf("Name = %q", tool.Name)
	}
	if tool.Description != "Look up the current weather." {
		t.Errorf("Description = %q", tool.Description)
	}

	var schema struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(tool.InputSchema, &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if schema.Type != "object" {
		t.Errorf("schema type = %q", schema.Type)
	}
	if _, ok := schema.Properties["location"]; !ok {
		t.Error("schema missing location property")
	}
	if _, ok := schema.Properties["units"]; !ok {
		t.Error("schema missing units property")
	}
	// Fields without omitempty are required; the rest are not.
	if len(schema.Required) != 1 || schema.Required[0] != "location" {
		t.Errorf("required = %v, want [location]", schema.Required)
	}

	units := string(schema.Properties["units"])
	if !strings.Contains(units, "celsius") || !strings.Contains(units, "fahrenheit") {
		t.Errorf("enum values missing from units schema: %s", units)
	}
}

func TestToolDef_MarshalsSchemaInline(t *testing.T) {
	tool := NewTool[weatherParams]("get_weather", "Look up the current weather.")

	raw, err := json.Marshal(tool)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// The schema must be embedded as an object, not double-encoded as a
	// string.
	if !strings.Contains(string(raw), `"input_schema":{`) {
		t.Errorf("schema not inlined: %s", raw)
	}
}
