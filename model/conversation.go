package model

import (
	"sync"

	"github.com/google/uuid"
)

// Conversation is the authoritative in-memory model of a chat: an ordered
// sequence of turns with stable identity per turn ID.
//
// All mutation goes through methods that hold the lock, so the streaming
// orchestrator and the caller-facing API can touch the same conversation
// from different goroutines. Accessors return copies, never aliased slices.
type Conversation struct {
	mu    sync.RWMutex
	id    string
	turns []*Turn
}

// NewConversation creates an empty conversation with a fresh ID.
func NewConversation() *Conversation {
	return &Conversation{id: uuid.New().String()}
}

// NewConversationWithHistory restores a conversation from persisted turns.
func NewConversationWithHistory(id string, history []Turn) *Conversation {
	c := &Conversation{id: id}
	for i := range history {
		t := history[i].clone()
		t.Answering = false
		c.turns = append(c.turns, &t)
	}
	return c
}

// ID returns the conversation's stable identity.
func (c *Conversation) ID() string {
	return c.id
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Append adds a turn at the end of the conversation.
func (c *Conversation) Append(t Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := t.clone()
	c.turns = append(c.turns, &stored)
}

// InsertAfter places a turn immediately after the turn with the given ID.
// Falls back to appending when the anchor is unknown.
func (c *Conversation) InsertAfter(anchorID string, t Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := t.clone()
	for i, existing := range c.turns {
		if existing.ID == anchorID {
			c.turns = append(c.turns[:i+1], append([]*Turn{&stored}, c.turns[i+1:]...)...)
			return
		}
	}
	c.turns = append(c.turns, &stored)
}

// Turn returns a copy of the turn with the given ID.
func (c *Conversation) Turn(id string) (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t := c.find(id); t != nil {
		return t.clone(), true
	}
	return Turn{}, false
}

// TurnFollowing returns a copy of the turn immediately after the given one.
// Used by edit-and-resend to reuse the existing answer slot.
func (c *Conversation) TurnFollowing(id string) (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, t := range c.turns {
		if t.ID == id && i+1 < len(c.turns) {
			return c.turns[i+1].clone(), true
		}
	}
	return Turn{}, false
}

// LastUserTurn returns a copy of the most recent user turn.
func (c *Conversation) LastUserTurn() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].Role == RoleUser {
			return c.turns[i].clone(), true
		}
	}
	return Turn{}, false
}

// ActiveTurns returns copies of every turn with Answering set. This is the
// substrate of "stop generating": flipping these off is observed by in-flight
// streams at their next suspension point.
func (c *Conversation) ActiveTurns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var active []Turn
	for _, t := range c.turns {
		if t.Answering {
			active = append(active, t.clone())
		}
	}
	return active
}

// IsAnswering reports whether the turn is still the active answer. Unknown
// IDs report false, so a stream for a removed turn also halts.
func (c *Conversation) IsAnswering(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := c.find(id)
	return t != nil && t.Answering
}

// AnsweringAs reports whether the turn is still answering under the same
// slot generation. A cycle whose slot was reset or replaced observes false
// here even though the slot itself answers again for a newer cycle.
func (c *Conversation) AnsweringAs(id string, generation int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := c.find(id)
	return t != nil && t.Answering && t.Generation == generation
}

// SetAnswering flips a turn's answering flag.
func (c *Conversation) SetAnswering(id string, answering bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.find(id); t != nil {
		t.Answering = answering
	}
}

// StopAll clears the answering flag on every turn.
func (c *Conversation) StopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.turns {
		t.Answering = false
	}
}

// AppendContent appends streamed text to a turn's content.
func (c *Conversation) AppendContent(id, delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.find(id); t != nil {
		t.Content += delta
	}
}

// SetContent replaces a turn's content. Used for user edits and for the
// final commit at stream end, where the authoritative value is the full
// concatenated stream regardless of publish throttling.
func (c *Conversation) SetContent(id, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.find(id); t != nil {
		t.Content = content
	}
}

// SetToolCall records the resolved tool name on a turn.
func (c *Conversation) SetToolCall(id, toolName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.find(id); t != nil {
		t.ToolName = toolName
	}
}

// SetToolArgsRaw records the complete raw argument JSON on a turn.
func (c *Conversation) SetToolArgsRaw(id, raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.find(id); t != nil {
		t.ToolArgsRaw = raw
	}
}

// AppendToolLog appends to the human-readable echo of streaming arguments.
func (c *Conversation) AppendToolLog(id, delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.find(id); t != nil {
		t.ToolLog += delta
	}
}

// ResetTurn clears a turn's generated state and re-enters the answering
// state, preserving identity and position. Edit-and-resend reuses the
// existing answer slot through this instead of appending a duplicate. The
// slot generation is bumped and returned; a stream started against the old
// generation can no longer mutate the turn.
func (c *Conversation) ResetTurn(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.find(id); t != nil {
		t.Content = ""
		t.ToolName = ""
		t.ToolArgsRaw = ""
		t.ToolLog = ""
		t.Attachments = nil
		t.Generation++
		t.Answering = true
		return t.Generation
	}
	return 0
}

// ReplaceTurn overwrites the stored turn that shares the given turn's ID.
// The slot generation is bumped and returned, as with ResetTurn.
func (c *Conversation) ReplaceTurn(t Turn) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.turns {
		if existing.ID == t.ID {
			stored := t.clone()
			stored.Generation = existing.Generation + 1
			c.turns[i] = &stored
			return stored.Generation
		}
	}
	return 0
}

// History returns a copy of every turn in order.
func (c *Conversation) History() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, 0, len(c.turns))
	for _, t := range c.turns {
		out = append(out, t.clone())
	}
	return out
}

// HistoryBefore returns copies of all turns strictly preceding the given
// turn. This is the request history for the answer streaming into that turn.
func (c *Conversation) HistoryBefore(id string) []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Turn
	for _, t := range c.turns {
		if t.ID == id {
			break
		}
		out = append(out, t.clone())
	}
	return out
}

// AllAttachments returns every attachment in the conversation, deduplicated
// by path, in turn order. Tool executors resolve path arguments against this.
func (c *Conversation) AllAttachments() []Attachment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var out []Attachment
	for _, t := range c.turns {
		for _, a := range t.Attachments {
			if !seen[a.Path] {
				seen[a.Path] = true
				out = append(out, a)
			}
		}
	}
	return out
}

func (c *Conversation) find(id string) *Turn {
	for _, t := range c.turns {
		if t.ID == id {
			return t
		}
	}
	return nil
}
