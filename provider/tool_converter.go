package provider

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// ConvertToolsToOllama converts MCP tool schemas to Ollama's tool format.
func ConvertToolsToOllama(schemas []mcptypes.Tool) []api.Tool {
	ollamaTools := make([]api.Tool, 0, len(schemas))

	for _, schema := range schemas {
		ollamaTools = append(ollamaTools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        schema.Name,
				Description: schema.Description,
				Parameters:  convertInputSchemaToParameters(schema.InputSchema),
			},
		})
	}

	return ollamaTools
}

func convertInputSchemaToParameters(inputSchema mcptypes.ToolInputSchema) api.ToolFunctionParameters {
	params := api.ToolFunctionParameters{
		Type:       inputSchema.Type,
		Required:   inputSchema.Required,
		Properties: make(map[string]api.ToolProperty),
	}

	if inputSchema.Defs != nil {
		params.Defs = inputSchema.Defs
	}

	for propName, propValue := range inputSchema.Properties {
		params.Properties[propName] = convertPropertyValue(propValue)
	}

	return params
}

func convertPropertyValue(propValue any) api.ToolProperty {
	toolProp := api.ToolProperty{}

	propMap, ok := propValue.(map[string]any)
	if !ok {
		bytes, err := json.Marshal(propValue)
		if err != nil {
			return toolProp
		}
		var m map[string]any
		if err := json.Unmarshal(bytes, &m); err != nil {
			return toolProp
		}
		propMap = m
	}

	// type can be a string or a list of strings
	if typeVal, ok := propMap["type"]; ok {
		switch t := typeVal.(type) {
		case string:
			toolProp.Type = api.PropertyType{t}
		case []string:
			toolProp.Type = api.PropertyType(t)
		case []any:
			types := make([]string, 0, len(t))
			for _, v := range t {
				if s, ok := v.(string); ok {
					types = append(types, s)
				}
			}
			toolProp.Type = api.PropertyType(types)
		}
	}

	if desc, ok := propMap["description"].(string); ok {
		toolProp.Description = desc
	}

	if enumVal, ok := propMap["enum"]; ok {
		if enumSlice, ok := enumVal.([]any); ok {
			toolProp.Enum = enumSlice
		}
	}

	if items, ok := propMap["items"]; ok {
		toolProp.Items = items
	}

	if anyOfVal, ok := propMap["anyOf"]; ok {
		if anyOfSlice, ok := anyOfVal.([]any); ok {
			anyOfProps := make([]api.ToolProperty, 0, len(anyOfSlice))
			for _, item := range anyOfSlice {
				anyOfProps = append(anyOfProps, convertPropertyValue(item))
			}
			toolProp.AnyOf = anyOfProps
		}
	}

	return toolProp
}

// ConvertToolsToOpenAI converts MCP tool schemas to OpenAI's function tool
// format. Both sides are JSON Schema, so this is mostly a re-shaping.
func ConvertToolsToOpenAI(schemas []mcptypes.Tool) []openai.ChatCompletionToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolUnionParam, len(schemas))

	for i, schema := range schemas {
		params := openai.FunctionParameters{
			"type":       schema.InputSchema.Type,
			"properties": schema.InputSchema.Properties,
		}

		if len(schema.InputSchema.Required) > 0 {
			params["required"] = schema.InputSchema.Required
		}

		if schema.InputSchema.Defs != nil {
			params["$defs"] = schema.InputSchema.Defs
		}

		result[i] = openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        schema.Name,
				Description: openai.String(schema.Description),
				Parameters:  params,
			},
		)
	}

	return result
}

// ConvertToolsToAnthropic converts MCP tool schemas to Anthropic's tool
// union format.
func ConvertToolsToAnthropic(schemas []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(schemas))

	for i, schema := range schemas {
		inputSchema := anthropic.ToolInputSchemaParam{
			// Type defaults to "object" when omitted
			Properties: schema.InputSchema.Properties,
		}

		if len(schema.InputSchema.Required) > 0 {
			inputSchema.Required = schema.InputSchema.Required
		}

		if schema.InputSchema.Defs != nil {
			inputSchema.ExtraFields = map[string]any{
				"$defs": schema.InputSchema.Defs,
			}
		}

		result[i] = anthropic.ToolUnionParamOfTool(inputSchema, schema.Name)

		if schema.Description != "" {
			result[i].OfTool.Description = anthropic.String(schema.Description)
		}
	}

	return result
}
