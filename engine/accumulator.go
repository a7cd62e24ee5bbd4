package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CallAccumulator reconstructs a complete function call from streamed
// fragments. Name and argument fragments may arrive at any granularity and
// interleaved; arguments collected before the name resolves are retained.
type CallAccumulator struct {
	name     strings.Builder
	args     strings.Builder
	resolved bool
	known    func(name string) bool
}

// NewCallAccumulator creates an accumulator. The known predicate decides
// when the accumulated name first spells a registered tool identifier.
func NewCallAccumulator(known func(name string) bool) *CallAccumulator {
	if known == nil {
		known = func(string) bool { return false }
	}
	return &CallAccumulator{known: known}
}

// AppendName adds a name fragment. It returns true exactly once: on the
// fragment whose arrival makes the accumulated name match a known tool
// identifier. Once resolved, the flag never reverts and later fragments are
// still appended (so a bogus continuation surfaces as an unknown tool).
func (a *CallAccumulator) AppendName(frag string) (resolvedNow bool) {
	a.name.WriteString(frag)
	if !a.resolved && a.known(a.name.String()) {
		a.resolved = true
		return true
	}
	return false
}

// AppendArgs adds a raw-JSON argument fragment.
func (a *CallAccumulator) AppendArgs(frag string) {
	a.args.WriteString(frag)
}

// NameResolved reports whether the name has matched a known tool identifier.
func (a *CallAccumulator) NameResolved() bool {
	return a.resolved
}

// Tool returns the accumulated tool identifier.
func (a *CallAccumulator) Tool() string {
	return a.name.String()
}

// RawArgs returns the accumulated raw argument JSON.
func (a *CallAccumulator) RawArgs() string {
	return a.args.String()
}

// HasCall reports whether any function-call fragment was seen this cycle.
func (a *CallAccumulator) HasCall() bool {
	return a.name.Len() > 0 || a.args.Len() > 0
}

// Decode parses the accumulated arguments into v. Only meaningful after the
// stream has ended; mid-stream the buffer is not guaranteed to be valid
// JSON. An empty argument buffer decodes as an empty object, which some
// backends emit for zero-parameter calls.
func (a *CallAccumulator) Decode(v any) error {
	raw := strings.TrimSpace(a.args.String())
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode tool arguments: %w", err)
	}
	return nil
}
