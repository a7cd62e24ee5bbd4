package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"

	"iask/model"
)

// OllamaProvider implements model.Provider against a local Ollama server.
type OllamaProvider struct {
	client       *api.Client
	model        string
	baseURL      string
	systemPrompt string
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// baseURL defaults to "http://localhost:11434" and model to
// "llama3.1:latest" when empty.
func NewOllamaProvider(baseURL, modelName, systemPrompt string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client:       api.NewClient(parsedURL, http.DefaultClient),
		model:        modelName,
		baseURL:      baseURL,
		systemPrompt: systemPrompt,
	}, nil
}

// Stream implements model.Provider.Stream.
//
// Ollama delivers tool calls whole rather than fragmented, so each call is
// forwarded as one name event followed by one arguments event carrying the
// full JSON. The downstream accumulator handles whole and fragmented
// deliveries identically.
func (p *OllamaProvider) Stream(ctx context.Context, history []model.Turn, tools []mcptypes.Tool, handler model.StreamHandler) error {
	req := &api.ChatRequest{
		Model:    p.model,
		Messages: p.buildMessages(history),
		Stream:   func(b bool) *bool { return &b }(true),
	}
	if len(tools) > 0 {
		req.Tools = ConvertToolsToOllama(tools)
	}

	respFunc := func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			if err := handler(model.StreamEvent{Kind: model.EventText, Text: resp.Message.Content}); err != nil {
				return err
			}
		}

		for _, call := range resp.Message.ToolCalls {
			if err := handler(model.StreamEvent{Kind: model.EventToolName, Text: call.Function.Name}); err != nil {
				return err
			}
			args, err := json.Marshal(call.Function.Arguments)
			if err != nil {
				return fmt.Errorf("failed to encode tool arguments: %w", err)
			}
			if err := handler(model.StreamEvent{Kind: model.EventToolArgs, Text: string(args)}); err != nil {
				return err
			}
		}

		return nil
	}

	if err := p.client.Chat(ctx, req, respFunc); err != nil {
		return fmt.Errorf("Ollama streaming error: %w", err)
	}
	return nil
}

// GetModel implements model.Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.model
}

// SetModel implements model.Provider.SetModel.
func (p *OllamaProvider) SetModel(modelName string) {
	p.model = modelName
}

// Ping implements model.Provider.Ping by listing local models.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := p.client.List(ctx); err != nil {
		return fmt.Errorf("Ollama ping failed: %w", err)
	}
	return nil
}

func (p *OllamaProvider) buildMessages(history []model.Turn) []api.Message {
	flat := flattenTurns(p.systemPrompt, history)

	msgs := make([]api.Message, 0, len(flat))
	for _, m := range flat {
		msgs = append(msgs, api.Message{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return msgs
}
