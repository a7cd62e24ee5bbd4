package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts LLM backends (Anthropic, OpenAI, Ollama) behind
// provider-agnostic types.
//
// This interface lives in the model package rather than the provider package
// to avoid import cycles: provider implementations import model, and the
// engine consumes the interface without importing any provider.
type Provider interface {
	// Stream opens a model request for the given turn history and drives the
	// handler with incremental events until the stream completes. A nil
	// return means the stream finished normally; a handler error aborts the
	// stream and is returned unchanged, so the caller can distinguish its
	// own cancellation from transport failures.
	Stream(ctx context.Context, history []Turn, tools []mcptypes.Tool, handler StreamHandler) error

	// GetModel returns the currently selected model name.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// EventKind discriminates incremental stream events.
type EventKind int

const (
	// EventText carries a plain-text content delta.
	EventText EventKind = iota
	// EventToolName carries a fragment of an in-progress function call name.
	// Fragments may arrive at any granularity, down to single characters,
	// and may interleave with argument fragments.
	EventToolName
	// EventToolArgs carries a fragment of the function call's raw JSON
	// arguments. The concatenation is only guaranteed to be valid JSON once
	// the stream has completed.
	EventToolArgs
)

// StreamEvent is one incremental event from a model stream.
type StreamEvent struct {
	Kind EventKind
	Text string
}

// StreamHandler receives stream events in arrival order. Returning an error
// aborts the stream; providers must stop delivering events after that.
type StreamHandler func(ev StreamEvent) error
