// Package testutil provides mock providers and fixtures for testing code
// that consumes the model.Provider interface.
package testutil

import (
	"context"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"iask/model"
)

// MockProvider implements model.Provider for testing.
//
// By default each Stream call replays the next scripted event sequence (or
// the last one, once the script runs out). Set StreamFunc to override the
// behavior entirely.
type MockProvider struct {
	// StreamFunc, when set, replaces the scripted behavior.
	StreamFunc func(ctx context.Context, history []model.Turn, tools []mcptypes.Tool, handler model.StreamHandler) error
	PingFunc   func(ctx context.Context) error

	mu           sync.Mutex
	currentModel string
	scripts      [][]model.StreamEvent
	calls        int
	histories    [][]model.Turn
}

// NewMockProvider creates a mock provider with default implementations.
func NewMockProvider(modelName string) *MockProvider {
	return &MockProvider{
		currentModel: modelName,
	}
}

// Script appends an event sequence to replay on a subsequent Stream call.
// Call it once per expected request cycle, in order.
func (m *MockProvider) Script(events ...model.StreamEvent) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, events)
	return m
}

// Stream implements model.Provider.Stream.
func (m *MockProvider) Stream(ctx context.Context, history []model.Turn, tools []mcptypes.Tool, handler model.StreamHandler) error {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, history, tools, handler)
	}

	m.mu.Lock()
	idx := m.calls
	m.calls++
	m.histories = append(m.histories, append([]model.Turn(nil), history...))
	if idx >= len(m.scripts) {
		idx = len(m.scripts) - 1
	}
	var events []model.StreamEvent
	if idx >= 0 {
		events = m.scripts[idx]
	}
	m.mu.Unlock()

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := handler(ev); err != nil {
			return err
		}
	}
	return nil
}

// Calls returns how many times Stream was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// HistoryForCall returns the turn history passed to the nth Stream call.
func (m *MockProvider) HistoryForCall(n int) []model.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.histories) {
		return nil
	}
	return m.histories[n]
}

// GetModel implements model.Provider.GetModel.
func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentModel
}

// SetModel implements model.Provider.SetModel.
func (m *MockProvider) SetModel(modelName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentModel = modelName
}

// Ping implements model.Provider.Ping.
func (m *MockProvider) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Text returns a text delta event.
func Text(s string) model.StreamEvent {
	return model.StreamEvent{Kind: model.EventText, Text: s}
}

// ToolName returns a function-call name fragment event.
func ToolName(s string) model.StreamEvent {
	return model.StreamEvent{Kind: model.EventToolName, Text: s}
}

// ToolArgs returns a function-call argument fragment event.
func ToolArgs(s string) model.StreamEvent {
	return model.StreamEvent{Kind: model.EventToolArgs, Text: s}
}

// WeatherTool returns a sample tool schema for tests.
func WeatherTool() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "get_weather",
		Description: "Get the current weather for a location",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"location": map[string]any{
					"type":        "string",
					"description": "The city and state, e.g. San Francisco, CA",
				},
			},
			Required: []string{"location"},
		},
	}
}
