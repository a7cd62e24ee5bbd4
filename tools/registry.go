package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"iask/config"
)

// Registry maps tool identifiers to executors and their parameter schemas.
// Schemas use the MCP tool format; the provider layer converts them to each
// backend's native declaration.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	schema mcptypes.Tool
	exec   Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool. Identifiers must be unique and non-empty; the
// registry is validated at startup, so both are hard errors.
func (r *Registry) Register(schema mcptypes.Tool, exec Executor) error {
	if schema.Name == "" {
		return fmt.Errorf("tool schema has no name")
	}
	if exec == nil {
		return fmt.Errorf("tool %q has no executor", schema.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[schema.Name]; exists {
		return fmt.Errorf("tool %q already registered", schema.Name)
	}
	r.entries[schema.Name] = entry{schema: schema, exec: exec}
	return nil
}

// Known reports whether the identifier names a registered tool. This is the
// resolver behind the accumulator's name-resolution edge.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns all registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schemas returns the declared parameter schemas for every tool, sorted by
// name, for the model-facing request builder.
func (r *Registry) Schemas() []mcptypes.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	schemas := make([]mcptypes.Tool, 0, len(names))
	for _, name := range names {
		schemas = append(schemas, r.entries[name].schema)
	}
	return schemas
}

// Execute runs the named tool and always produces exactly one outcome.
// Unknown identifiers, executor errors and executor panics all surface as
// FailureOutcome values.
func (r *Registry) Execute(ctx context.Context, name, rawArgs string, tc Context) (outcome Outcome) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return FailureOutcome(fmt.Sprintf("unknown tool %q", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[tools] panic in %s: %v", name, rec)
			}
			outcome = FailureOutcome(fmt.Sprintf("tool %s panicked: %v", name, rec))
		}
	}()

	result, err := e.exec(ctx, rawArgs, tc)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[tools] %s failed: %v", name, err)
		}
		return FailureOutcome(err.Error())
	}
	return result
}
