// Package tools implements the dispatch table mapping tool identifiers to
// asynchronous executors and their declared parameter schemas.
package tools

import (
	"context"

	"iask/model"
)

// OutcomeKind classifies what a tool execution produced.
type OutcomeKind int

const (
	// OutcomeText is a plain text result the chain continues with.
	OutcomeText OutcomeKind = iota
	// OutcomeData is a result carrying attachments (e.g. converted files).
	OutcomeData
	// OutcomeChoice presents candidate options that need a user selection
	// before the chain can continue.
	OutcomeChoice
	// OutcomeFailure is a terminal failure for this chain link. It is a
	// value, never a panic or an error crossing the table boundary, so the
	// conversation can continue after a failed call.
	OutcomeFailure
)

// Outcome is the single result of one tool execution.
type Outcome struct {
	Kind        OutcomeKind
	Content     string
	Attachments []model.Attachment
	Options     []string
	Reason      string
}

// TextOutcome builds a text result.
func TextOutcome(content string) Outcome {
	return Outcome{Kind: OutcomeText, Content: content}
}

// DataOutcome builds a result carrying attachments.
func DataOutcome(content string, attachments ...model.Attachment) Outcome {
	return Outcome{Kind: OutcomeData, Content: content, Attachments: attachments}
}

// ChoiceOutcome builds a result presenting options for user selection.
func ChoiceOutcome(prompt string, options []string) Outcome {
	return Outcome{Kind: OutcomeChoice, Content: prompt, Options: options}
}

// FailureOutcome builds a terminal failure value.
func FailureOutcome(reason string) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: reason}
}

// Context carries the conversation snapshot a tool may need, built fresh per
// streaming cycle. Executors resolve file-path arguments against
// Attachments by path equality instead of reaching into shared state.
type Context struct {
	ChatID       string
	Attachments  []model.Attachment
	LastUserText string
}

// Attachment looks up an attachment by exact path.
func (c Context) Attachment(path string) (model.Attachment, bool) {
	for _, a := range c.Attachments {
		if a.Path == path {
			return a, true
		}
	}
	return model.Attachment{}, false
}

// Executor runs one tool call. rawArgs is the complete argument JSON
// accumulated from the stream. Returning an error is equivalent to returning
// a FailureOutcome; the registry converts it so failures never cross the
// table boundary as errors.
type Executor func(ctx context.Context, rawArgs string, tc Context) (Outcome, error)
