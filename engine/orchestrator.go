// Package engine contains the streaming conversation orchestrator: the
// state machine that drains incremental model streams, reconstructs
// function calls from fragments, dispatches tools and re-opens follow-up
// requests with the tool result appended.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"iask/config"
	"iask/model"
	"iask/speech"
	"iask/tools"
)

const (
	defaultPublishInterval = 100 * time.Millisecond
	defaultMaxChainDepth   = 8
)

// Persister stores turns at well-defined checkpoints (turn close, never per
// delta). A nil Persister disables persistence.
type Persister interface {
	Save(turn model.Turn) error
	LoadHistory(chatID string) ([]model.Turn, error)
}

// PostProcessor is a pure text transform applied once at finalization.
type PostProcessor func(string) string

// UpdateFunc receives turn snapshots whenever visible state changes.
// Content updates are throttled by Config.PublishInterval.
type UpdateFunc func(turn model.Turn)

// Config tunes the orchestrator.
type Config struct {
	// PublishInterval throttles how often partial content becomes visible.
	// Zero selects the default; negative publishes on every delta.
	PublishInterval time.Duration
	// MaxChainDepth bounds answer→tool→answer recursion per user request.
	MaxChainDepth int
}

// Engine drives one conversation. For a given chain only one
// requesting/streaming cycle is active at a time, but independent Submit
// calls may answer concurrently, each tracked by its own turn.
type Engine struct {
	provider model.Provider
	registry *tools.Registry
	conv     *model.Conversation
	cfg      Config

	store    Persister
	post     []PostProcessor
	onUpdate UpdateFunc

	speechSink func(sentence string)
	speechOn   atomic.Bool

	wg sync.WaitGroup
}

// New creates an engine for the conversation.
func New(provider model.Provider, registry *tools.Registry, conv *model.Conversation, cfg Config) *Engine {
	if cfg.PublishInterval == 0 {
		cfg.PublishInterval = defaultPublishInterval
	}
	if cfg.MaxChainDepth <= 0 {
		cfg.MaxChainDepth = defaultMaxChainDepth
	}
	return &Engine{
		provider: provider,
		registry: registry,
		conv:     conv,
		cfg:      cfg,
	}
}

// SetPersister wires the persistence collaborator.
func (e *Engine) SetPersister(p Persister) { e.store = p }

// SetUpdateFunc wires the subscription surface for turn changes.
func (e *Engine) SetUpdateFunc(fn UpdateFunc) { e.onUpdate = fn }

// SetSpeechSink wires the speech queue's enqueue callback.
func (e *Engine) SetSpeechSink(sink func(sentence string)) { e.speechSink = sink }

// SetSpeechEnabled toggles sentence emission. Mid-stream toggles take effect
// for subsequently-emitted sentences only; nothing is replayed.
func (e *Engine) SetSpeechEnabled(on bool) { e.speechOn.Store(on) }

// Conversation exposes the engine's conversation state.
func (e *Engine) Conversation() *model.Conversation { return e.conv }

// AddPostProcessor appends a finalization text transform.
func (e *Engine) AddPostProcessor(p PostProcessor) { e.post = append(e.post, p) }

// Submit appends a user turn and starts answering it. It returns the IDs of
// the user turn and the assistant turn that will receive the answer.
func (e *Engine) Submit(ctx context.Context, text string, attachments []model.Attachment) (userID, assistantID string) {
	user := model.NewUserTurn(e.conv.ID(), text, attachments)
	e.conv.Append(user)
	e.persistTurn(user.ID)
	e.notify(user.ID)

	asst := model.NewAssistantTurn(e.conv.ID())
	e.conv.Append(asst)
	e.notify(asst.ID)

	e.startChain(ctx, asst.ID, 0)
	return user.ID, asst.ID
}

// Resend re-answers an edited user turn. When newContent is non-empty the
// turn's content is replaced first. The existing assistant turn following
// the edited one is reused (cleared, not duplicated), keeping conversation
// order and turn count stable across edits.
func (e *Engine) Resend(ctx context.Context, turnID, newContent string) (assistantID string, err error) {
	turn, ok := e.conv.Turn(turnID)
	if !ok {
		return "", errors.New("unknown turn")
	}
	if turn.Role != model.RoleUser {
		return "", errors.New("only user turns can be resent")
	}
	if newContent != "" {
		e.conv.SetContent(turnID, newContent)
		e.persistTurn(turnID)
		e.notify(turnID)
	}

	var gen int
	if follow, ok := e.conv.TurnFollowing(turnID); ok && follow.Role == model.RoleAssistant {
		// Resetting the slot bumps its generation, which retires any chain
		// still streaming into it: stale cycles fail the generation check at
		// their next suspension point and stop mutating the turn.
		gen = e.conv.ResetTurn(follow.ID)
		assistantID = follow.ID
	} else {
		asst := model.NewAssistantTurn(e.conv.ID())
		e.conv.InsertAfter(turnID, asst)
		assistantID = asst.ID
	}
	e.notify(assistantID)

	e.startChain(ctx, assistantID, gen)
	return assistantID, nil
}

// Cancel clears a single turn's answering flag. The in-flight stream halts
// cooperatively at its next suspension point.
func (e *Engine) Cancel(turnID string) {
	e.conv.SetAnswering(turnID, false)
}

// CancelAll stops every active turn. In-flight streams are abandoned and
// stop mutating state once the flag is observed; no tool is dispatched and
// nothing further is persisted for those turns.
func (e *Engine) CancelAll() {
	e.conv.StopAll()
}

// Wait blocks until every in-flight chain goroutine has exited. Cancelled
// chains still drain their streams before returning.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// startChain spawns a chain goroutine for the assistant turn. gen is the
// turn's slot generation at start; every mutation in the chain is gated on
// it still being current, so a later slot reuse retires this chain.
func (e *Engine) startChain(ctx context.Context, assistantID string, gen int) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runChain(ctx, assistantID, gen)
	}()
}

// runChain executes answer→tool→answer cycles until a cycle finalizes,
// fails, is cancelled, or the depth bound trips.
func (e *Engine) runChain(ctx context.Context, assistantID string, gen int) {
	for depth := 0; depth < e.cfg.MaxChainDepth; depth++ {
		nextID, nextGen, cont := e.runCycle(ctx, assistantID, gen)
		if !cont {
			return
		}
		assistantID, gen = nextID, nextGen
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[engine] chain depth limit reached for turn %s", assistantID)
	}
	if e.conv.AnsweringAs(assistantID, gen) {
		e.conv.SetAnswering(assistantID, false)
		e.notify(assistantID)
		e.persistTurn(assistantID)
	}
}

// runCycle performs one Requesting→Streaming→{Finalizing,DispatchingTool}
// pass for the assistant turn. It returns the next cycle's assistant turn ID
// and slot generation when a tool outcome continues the chain.
func (e *Engine) runCycle(ctx context.Context, assistantID string, gen int) (nextID string, nextGen int, cont bool) {
	if !e.conv.AnsweringAs(assistantID, gen) {
		return "", 0, false
	}

	// Requesting: the request history is everything preceding the active turn.
	history := e.conv.HistoryBefore(assistantID)

	// Accumulator and scanner are per-cycle, never shared across concurrent
	// cycles.
	acc := NewCallAccumulator(e.registry.Known)
	var scan *speech.Scanner
	pub := newPublisher(e.conv, assistantID, e.cfg.PublishInterval, e.notify)

	handler := func(ev model.StreamEvent) error {
		// Primary cancellation point: checked before any mutation. The
		// generation comparison also retires this cycle once its slot has
		// been reused by an edit-and-resend.
		if !e.conv.AnsweringAs(assistantID, gen) {
			return ErrCancelled
		}
		switch ev.Kind {
		case model.EventText:
			pub.Append(ev.Text)
			if e.speechOn.Load() && e.speechSink != nil {
				if scan == nil {
					scan = speech.NewScanner(e.speechSink)
				}
				scan.Feed(ev.Text)
			}
		case model.EventToolName:
			if acc.AppendName(ev.Text) {
				// Name-resolution edge: mark the turn and open the log block
				// exactly once, replaying arguments that arrived before the
				// name completed.
				e.conv.SetToolCall(assistantID, acc.Tool())
				if pre := acc.RawArgs(); pre != "" {
					e.conv.AppendToolLog(assistantID, pre)
				}
				e.notify(assistantID)
			}
		case model.EventToolArgs:
			acc.AppendArgs(ev.Text)
			if acc.NameResolved() {
				e.conv.AppendToolLog(assistantID, ev.Text)
			}
		}
		return nil
	}

	err := e.provider.Stream(ctx, history, e.registry.Schemas(), handler)

	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || !e.conv.AnsweringAs(assistantID, gen) {
		// Cooperative exit: already-committed partial content stays, the
		// turn simply closes. Not persisted and not marked failed. A cycle
		// retired by slot reuse leaves the turn entirely alone; a fresher
		// chain owns it now.
		if e.conv.AnsweringAs(assistantID, gen) {
			e.conv.SetAnswering(assistantID, false)
			e.notify(assistantID)
		}
		return "", 0, false
	}

	if err != nil {
		terr := &TransportError{Err: err}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[engine] %v (turn %s)", terr, assistantID)
		}
		e.closeTurn(assistantID, pub)
		return "", 0, false
	}

	if !acc.HasCall() {
		// Finalizing: post-process once over the complete buffer.
		final := pub.Content()
		for _, pp := range e.post {
			final = pp(final)
		}
		e.conv.SetContent(assistantID, final)
		if scan != nil {
			scan.Flush()
		}
		e.conv.SetAnswering(assistantID, false)
		e.notify(assistantID)
		e.persistTurn(assistantID)
		return "", 0, false
	}

	// DispatchingTool.
	pub.Flush()
	name := acc.Tool()
	e.conv.SetToolArgsRaw(assistantID, acc.RawArgs())

	if !acc.NameResolved() {
		e.failMalformed(assistantID, &MalformedToolCall{Tool: name, Err: errors.New("identifier never resolved")})
		return "", 0, false
	}
	var probe map[string]any
	if err := acc.Decode(&probe); err != nil {
		e.failMalformed(assistantID, &MalformedToolCall{Tool: name, Err: err})
		return "", 0, false
	}

	outcome := e.registry.Execute(ctx, name, acc.RawArgs(), e.buildToolContext())

	// A result resumed into a cancelled or reused turn is discarded.
	if !e.conv.AnsweringAs(assistantID, gen) {
		return "", 0, false
	}

	toolTurn := e.outcomeTurn(name, outcome)
	toolTurnID, _ := e.placeAfter(assistantID, toolTurn)
	e.conv.SetAnswering(assistantID, false)
	e.notify(assistantID)
	e.notify(toolTurnID)
	e.persistTurn(assistantID)
	e.persistTurn(toolTurnID)

	if outcome.Kind == tools.OutcomeFailure || outcome.Kind == tools.OutcomeChoice {
		// Failures terminate the chain link; choices await a user selection.
		return "", 0, false
	}

	// Self-transition back to Requesting with the tool result in history.
	next := model.NewAssistantTurn(e.conv.ID())
	nextID, nextGen = e.placeAfter(toolTurnID, next)
	e.conv.SetAnswering(nextID, true)
	e.notify(nextID)
	return nextID, nextGen, true
}

// closeTurn commits buffered partial content and closes the turn. Used on
// transport errors so text accumulated before the failure is preserved.
func (e *Engine) closeTurn(assistantID string, pub *publisher) {
	pub.Flush()
	e.conv.SetAnswering(assistantID, false)
	e.notify(assistantID)
	e.persistTurn(assistantID)
}

// failMalformed closes the turn without invoking any executor and without
// recursing into a new request.
func (e *Engine) failMalformed(assistantID string, merr *MalformedToolCall) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[engine] %v (turn %s)", merr, assistantID)
	}
	e.conv.SetAnswering(assistantID, false)
	e.notify(assistantID)
	e.persistTurn(assistantID)
}

// buildToolContext snapshots conversation state for executors, built fresh
// per cycle rather than shared globally.
func (e *Engine) buildToolContext() tools.Context {
	tc := tools.Context{
		ChatID:      e.conv.ID(),
		Attachments: e.conv.AllAttachments(),
	}
	if last, ok := e.conv.LastUserTurn(); ok {
		tc.LastUserText = last.Content
	}
	return tc
}

// outcomeTurn converts a tool outcome into the turn appended to the chain.
func (e *Engine) outcomeTurn(toolName string, outcome tools.Outcome) model.Turn {
	switch outcome.Kind {
	case tools.OutcomeChoice:
		t := model.NewToolTurn(e.conv.ID(), toolName, outcome.Content, nil)
		t.Role = model.RoleChoice
		for _, opt := range outcome.Options {
			t.Content += "\n- " + opt
		}
		return t
	case tools.OutcomeFailure:
		return model.NewToolTurn(e.conv.ID(), toolName, "tool "+toolName+" failed: "+outcome.Reason, nil)
	default:
		return model.NewToolTurn(e.conv.ID(), toolName, outcome.Content, outcome.Attachments)
	}
}

// placeAfter inserts the turn after the anchor, reusing a leftover slot of
// the same shape when a prior chain occupied it (edit-and-resend keeps turn
// counts stable). Returns the ID the turn ended up with and the slot
// generation it holds.
func (e *Engine) placeAfter(anchorID string, t model.Turn) (string, int) {
	if follow, ok := e.conv.TurnFollowing(anchorID); ok && follow.Role == t.Role {
		t.ID = follow.ID
		t.CreatedAt = follow.CreatedAt
		gen := e.conv.ReplaceTurn(t)
		return t.ID, gen
	}
	e.conv.InsertAfter(anchorID, t)
	return t.ID, t.Generation
}

func (e *Engine) notify(turnID string) {
	if e.onUpdate == nil {
		return
	}
	if t, ok := e.conv.Turn(turnID); ok {
		e.onUpdate(t)
	}
}

func (e *Engine) persistTurn(turnID string) {
	if e.store == nil {
		return
	}
	t, ok := e.conv.Turn(turnID)
	if !ok {
		return
	}
	if err := e.store.Save(t); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[engine] persist turn %s: %v", turnID, err)
	}
}
