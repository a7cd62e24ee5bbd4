package provider

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"iask/model"
)

// OpenAIProvider implements model.Provider using the official OpenAI Go SDK.
type OpenAIProvider struct {
	client       openai.Client
	model        string
	baseURL      string
	apiKey       string
	systemPrompt string
}

// NewOpenAIProvider creates a new OpenAI provider instance. Returns an error
// if the API key is missing.
func NewOpenAIProvider(baseURL, apiKey, modelName, systemPrompt string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIProvider{
		client:       client,
		model:        modelName,
		baseURL:      baseURL,
		apiKey:       apiKey,
		systemPrompt: systemPrompt,
	}, nil
}

// Stream implements model.Provider.Stream.
//
// OpenAI fragments both the function name and the arguments across chunks;
// each fragment is forwarded as-is, in arrival order.
func (p *OpenAIProvider) Stream(ctx context.Context, history []model.Turn, tools []mcptypes.Tool, handler model.StreamHandler) error {
	params := openai.ChatCompletionNewParams{
		Messages: p.buildMessages(history),
		Model:    openai.ChatModel(p.model),
	}
	if len(tools) > 0 {
		params.Tools = ConvertToolsToOpenAI(tools)
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		if delta.Content != "" {
			if err := handler(model.StreamEvent{Kind: model.EventText, Text: delta.Content}); err != nil {
				return err
			}
		}

		for _, tc := range delta.ToolCalls {
			if tc.Function.Name != "" {
				if err := handler(model.StreamEvent{Kind: model.EventToolName, Text: tc.Function.Name}); err != nil {
					return err
				}
			}
			if tc.Function.Arguments != "" {
				if err := handler(model.StreamEvent{Kind: model.EventToolArgs, Text: tc.Function.Arguments}); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("OpenAI streaming error: %w", err)
	}
	return nil
}

// GetModel implements model.Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// SetModel implements model.Provider.SetModel.
func (p *OpenAIProvider) SetModel(modelName string) {
	p.model = modelName
}

// Ping implements model.Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := p.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}

func (p *OpenAIProvider) buildMessages(history []model.Turn) []openai.ChatCompletionMessageParamUnion {
	flat := flattenTurns(p.systemPrompt, history)

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(flat))
	for _, m := range flat {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return msgs
}
