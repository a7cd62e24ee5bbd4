package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"iask/model"
)

// AnthropicProvider implements model.Provider using the official Anthropic
// Go SDK.
type AnthropicProvider struct {
	client       *anthropic.Client
	model        anthropic.Model
	baseURL      string
	apiKey       string
	systemPrompt string
}

// NewAnthropicProvider creates a new Anthropic provider instance. Returns an
// error if the API key is missing.
func NewAnthropicProvider(baseURL, apiKey, modelName, systemPrompt string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	var anthropicModel anthropic.Model
	if modelName == "" {
		anthropicModel = anthropic.ModelClaudeSonnet4_5_20250929
	} else {
		anthropicModel = anthropic.Model(modelName)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:       &client,
		model:        anthropicModel,
		baseURL:      baseURL,
		apiKey:       apiKey,
		systemPrompt: systemPrompt,
	}, nil
}

// Stream implements model.Provider.Stream.
//
// Anthropic delivers a tool call's name whole in the content_block_start
// event and its arguments as partial-JSON deltas; both are forwarded as
// fragments, so the accumulator sees the same contract as with backends
// that fragment the name too.
func (p *AnthropicProvider) Stream(ctx context.Context, history []model.Turn, tools []mcptypes.Tool, handler model.StreamHandler) error {
	messages, systemBlocks := p.buildMessages(history)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: 4096,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if len(tools) > 0 {
		params.Tools = ConvertToolsToAnthropic(tools)
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()

		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			if block, ok := eventVariant.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
				if err := handler(model.StreamEvent{Kind: model.EventToolName, Text: block.Name}); err != nil {
					return err
				}
			}

		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if err := handler(model.StreamEvent{Kind: model.EventText, Text: deltaVariant.Text}); err != nil {
					return err
				}
			case anthropic.InputJSONDelta:
				if err := handler(model.StreamEvent{Kind: model.EventToolArgs, Text: deltaVariant.PartialJSON}); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("Anthropic streaming error: %w", err)
	}
	return nil
}

// GetModel implements model.Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// SetModel implements model.Provider.SetModel.
func (p *AnthropicProvider) SetModel(modelName string) {
	p.model = anthropic.Model(modelName)
}

// Ping implements model.Provider.Ping by making a minimal request, since
// Anthropic has no health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}

// buildMessages converts the turn history to Anthropic's format. System
// content goes into the separate system parameter, not the messages array.
func (p *AnthropicProvider) buildMessages(history []model.Turn) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	flat := flattenTurns(p.systemPrompt, history)

	var systemBlocks []anthropic.TextBlockParam
	msgs := make([]anthropic.MessageParam, 0, len(flat))

	for _, m := range flat {
		switch m.Role {
		case "system":
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	return msgs, systemBlocks
}
