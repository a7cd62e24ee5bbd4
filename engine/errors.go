package engine

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned from stream handlers when the owning turn's
// answering flag was cleared. It is a cooperative exit, not a failure: the
// turn is closed without being marked failed.
var ErrCancelled = errors.New("turn cancelled")

// TransportError wraps a connection or stream failure. The cycle aborts, the
// turn closes unanswered, and retry is a user action (resend).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stream transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedToolCall marks a completed call whose name never resolved to a
// registered tool or whose arguments failed to decode. The chain stops
// without executing anything.
type MalformedToolCall struct {
	Tool string
	Err  error
}

func (e *MalformedToolCall) Error() string {
	return fmt.Sprintf("malformed tool call %q: %v", e.Tool, e.Err)
}

func (e *MalformedToolCall) Unwrap() error {
	return e.Err
}
