package provider

import (
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

func sampleSchemas() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "get_weather",
			Description: "Get the current weather",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "City name",
					},
					"unit": map[string]any{
						"type": "string",
						"enum": []any{"celsius", "fahrenheit"},
					},
				},
				Required: []string{"location"},
			},
		},
	}
}

func TestConvertToolsToOllama(t *testing.T) {
	result := ConvertToolsToOllama(sampleSchemas())
	if len(result) != 1 {
		t.Fatalf("got %d tools, want 1", len(result))
	}

	tool := result[0]
	if tool.Type != "function" {
		t.Errorf("type = %q", tool.Type)
	}
	if tool.Function.Name != "get_weather" {
		t.Errorf("name = %q", tool.Function.Name)
	}
	if len(tool.Function.Parameters.Required) != 1 || tool.Function.Parameters.Required[0] != "location" {
		t.Errorf("required = %v", tool.Function.Parameters.Required)
	}

	loc, ok := tool.Function.Parameters.Properties["location"]
	if !ok {
		t.Fatal("location property missing")
	}
	if len(loc.Type) != 1 || loc.Type[0] != "string" {
		t.Errorf("location type = %v", loc.Type)
	}
	if loc.Description != "City name" {
		t.Errorf("location description = %q", loc.Description)
	}

	unit, ok := tool.Function.Parameters.Properties["unit"]
	if !ok {
		t.Fatal("unit property missing")
	}
	if len(unit.Enum) != 2 {
		t.Errorf("unit enum = %v", unit.Enum)
	}
}

func TestConvertToolsToOpenAI(t *testing.T) {
	if got := ConvertToolsToOpenAI(nil); got != nil {
		t.Errorf("nil input should yield nil, got %v", got)
	}

	result := ConvertToolsToOpenAI(sampleSchemas())
	if len(result) != 1 {
		t.Fatalf("got %d tools, want 1", len(result))
	}

	fn := result[0].OfFunction
	if fn == nil {
		t.Fatal("not a function tool")
	}
	if fn.Function.Name != "get_weather" {
		t.Errorf("name = %q", fn.Function.Name)
	}
	params := fn.Function.Parameters
	if params["type"] != "object" {
		t.Errorf("params type = %v", params["type"])
	}
	if _, ok := params["properties"].(map[string]any)["location"]; !ok {
		t.Error("location property missing")
	}
	if req, ok := params["required"].([]string); !ok || len(req) != 1 {
		t.Errorf("required = %v", params["required"])
	}
}

func TestConvertToolsToAnthropic(t *testing.T) {
	if got := ConvertToolsToAnthropic(nil); got != nil {
		t.Errorf("nil input should yield nil, got %v", got)
	}

	result := ConvertToolsToAnthropic(sampleSchemas())
	if len(result) != 1 {
		t.Fatalf("got %d tools, want 1", len(result))
	}

	tool := result[0].OfTool
	if tool == nil {
		t.Fatal("not a plain tool")
	}
	if tool.Name != "get_weather" {
		t.Errorf("name = %q", tool.Name)
	}
	if tool.Description.Value != "Get the current weather" {
		t.Errorf("description = %q", tool.Description.Value)
	}
	props, ok := tool.InputSchema.Properties.(map[string]any)
	if !ok {
		t.Fatalf("properties type %T", tool.InputSchema.Properties)
	}
	if _, ok := props["location"]; !ok {
		t.Error("location property missing")
	}
	if len(tool.InputSchema.Required) != 1 {
		t.Errorf("required = %v", tool.InputSchema.Required)
	}
}
