package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

func echoSchema(name string) mcptypes.Tool {
	return mcptypes.Tool{
		Name:        name,
		Description: "test tool",
		InputSchema: mcptypes.ToolInputSchema{Type: "object"},
	}
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()
	exec := func(_ context.Context, _ string, _ Context) (Outcome, error) {
		return TextOutcome("ok"), nil
	}

	if err := r.Register(echoSchema(""), exec); err == nil {
		t.Error("accepted empty identifier")
	}
	if err := r.Register(echoSchema("a"), nil); err == nil {
		t.Error("accepted nil executor")
	}
	if err := r.Register(echoSchema("a"), exec); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(echoSchema("a"), exec); err == nil {
		t.Error("accepted duplicate identifier")
	}
}

func TestKnownAndNames(t *testing.T) {
	r := NewRegistry()
	exec := func(_ context.Context, _ string, _ Context) (Outcome, error) {
		return TextOutcome("ok"), nil
	}
	for _, name := range []string{"zebra", "alpha"} {
		if err := r.Register(echoSchema(name), exec); err != nil {
			t.Fatal(err)
		}
	}

	if !r.Known("alpha") || r.Known("beta") {
		t.Error("Known misreported registration state")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zebra" {
		t.Errorf("Names() = %v, want sorted [alpha zebra]", names)
	}

	schemas := r.Schemas()
	if len(schemas) != 2 || schemas[0].Name != "alpha" {
		t.Errorf("Schemas() not sorted by name: %v", schemas)
	}
}

func TestExecuteAlwaysYieldsOneOutcome(t *testing.T) {
	r := NewRegistry()

	must := func(schema mcptypes.Tool, exec Executor) {
		t.Helper()
		if err := r.Register(schema, exec); err != nil {
			t.Fatal(err)
		}
	}

	must(echoSchema("ok"), func(_ context.Context, rawArgs string, _ Context) (Outcome, error) {
		return TextOutcome("got " + rawArgs), nil
	})
	must(echoSchema("errors"), func(_ context.Context, _ string, _ Context) (Outcome, error) {
		return Outcome{}, errors.New("boom")
	})
	must(echoSchema("panics"), func(_ context.Context, _ string, _ Context) (Outcome, error) {
		panic("unexpected")
	})

	tests := []struct {
		name       string
		tool       string
		wantKind   OutcomeKind
		wantReason string
	}{
		{name: "success", tool: "ok", wantKind: OutcomeText},
		{name: "error becomes failure", tool: "errors", wantKind: OutcomeFailure, wantReason: "boom"},
		{name: "panic becomes failure", tool: "panics", wantKind: OutcomeFailure, wantReason: "panicked"},
		{name: "unknown tool", tool: "missing", wantKind: OutcomeFailure, wantReason: "unknown tool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := r.Execute(context.Background(), tt.tool, "{}", Context{})
			if outcome.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", outcome.Kind, tt.wantKind)
			}
			if tt.wantReason != "" && !strings.Contains(outcome.Reason, tt.wantReason) {
				t.Errorf("reason = %q, want it to mention %q", outcome.Reason, tt.wantReason)
			}
		})
	}
}

func TestContextAttachmentLookup(t *testing.T) {
	tc := Context{}
	if _, ok := tc.Attachment("/tmp/x"); ok {
		t.Error("empty context resolved a path")
	}
}
