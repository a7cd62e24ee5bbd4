package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// SearchProvider executes web searches. The engine ships without a bundled
// search backend; callers plug one in.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// StubSearchProvider reports that no real provider is configured.
type StubSearchProvider struct{}

func (s *StubSearchProvider) Search(_ context.Context, _ string) ([]SearchResult, error) {
	return nil, fmt.Errorf("web search not configured")
}

// WebSearchSchema declares the search_web tool.
func WebSearchSchema() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "search_web",
		Description: "Search the web and return result titles, URLs and snippets.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			Required: []string{"query"},
		},
	}
}

// WebSearchExecutor builds the executor for search_web. A nil provider falls
// back to the stub.
func WebSearchExecutor(provider SearchProvider) Executor {
	if provider == nil {
		provider = &StubSearchProvider{}
	}

	return func(ctx context.Context, rawArgs string, _ Context) (Outcome, error) {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Query == "" {
			return Outcome{}, fmt.Errorf("query is required")
		}

		results, err := provider.Search(ctx, args.Query)
		if err != nil {
			return Outcome{}, err
		}
		if len(results) == 0 {
			return TextOutcome("No results found."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Search results for %q:\n\n", args.Query)
		for i, r := range results {
			fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
		}
		return TextOutcome(b.String()), nil
	}
}
