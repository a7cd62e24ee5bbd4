package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Event is one calendar entry.
type Event struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitempty"`
	Location string    `json:"location,omitempty"`
}

// EventSource supplies calendar events.
type EventSource interface {
	Events() ([]Event, error)
}

// FileEventSource reads events from a JSON file. A missing file yields an
// empty calendar.
type FileEventSource struct {
	Path string
}

func (f *FileEventSource) Events() ([]Event, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}
	return events, nil
}

// ListEventsSchema declares the list_events tool.
func ListEventsSchema() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "list_events",
		Description: "List upcoming calendar events, optionally limited to a number of days ahead.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"days": map[string]any{
					"type":        "integer",
					"description": "How many days ahead to include (default 7)",
				},
			},
		},
	}
}

// ListEventsExecutor builds the executor for list_events.
func ListEventsExecutor(source EventSource) Executor {
	return func(_ context.Context, rawArgs string, _ Context) (Outcome, error) {
		var args struct {
			Days int `json:"days"`
		}
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
			}
		}
		if args.Days <= 0 {
			args.Days = 7
		}

		events, err := source.Events()
		if err != nil {
			return Outcome{}, err
		}

		now := time.Now()
		cutoff := now.AddDate(0, 0, args.Days)

		var upcoming []Event
		for _, e := range events {
			if e.Start.Before(now) || e.Start.After(cutoff) {
				continue
			}
			upcoming = append(upcoming, e)
		}
		sort.Slice(upcoming, func(i, j int) bool {
			return upcoming[i].Start.Before(upcoming[j].Start)
		})

		if len(upcoming) == 0 {
			return TextOutcome(fmt.Sprintf("No events in the next %d days.", args.Days)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Events in the next %d days:\n", args.Days)
		for _, e := range upcoming {
			fmt.Fprintf(&b, "- %s: %s", e.Start.Format("Mon Jan 2 15:04"), e.Title)
			if e.Location != "" {
				fmt.Fprintf(&b, " (%s)", e.Location)
			}
			b.WriteByte('\n')
		}
		return TextOutcome(b.String()), nil
	}
}
