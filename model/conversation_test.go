package model

import (
	"testing"
)

func TestAppendAndHistoryOrder(t *testing.T) {
	conv := NewConversation()

	user := NewUserTurn(conv.ID(), "hello", nil)
	conv.Append(user)
	asst := NewAssistantTurn(conv.ID())
	conv.Append(asst)

	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Errorf("roles = %s, %s", history[0].Role, history[1].Role)
	}
}

func TestHistoryBeforeExcludesTargetAndLater(t *testing.T) {
	conv := NewConversation()
	a := NewUserTurn(conv.ID(), "first", nil)
	b := NewAssistantTurn(conv.ID())
	c := NewUserTurn(conv.ID(), "second", nil)
	conv.Append(a)
	conv.Append(b)
	conv.Append(c)

	before := conv.HistoryBefore(b.ID)
	if len(before) != 1 {
		t.Fatalf("got %d turns, want 1", len(before))
	}
	if before[0].ID != a.ID {
		t.Errorf("got turn %s, want %s", before[0].ID, a.ID)
	}
}

func TestInsertAfter(t *testing.T) {
	conv := NewConversation()
	a := NewUserTurn(conv.ID(), "a", nil)
	b := NewUserTurn(conv.ID(), "b", nil)
	conv.Append(a)
	conv.Append(b)

	mid := NewToolTurn(conv.ID(), "get_weather", "sunny", nil)
	conv.InsertAfter(a.ID, mid)

	history := conv.History()
	if len(history) != 3 {
		t.Fatalf("length = %d, want 3", len(history))
	}
	if history[1].ID != mid.ID {
		t.Errorf("inserted turn at position %v, want 1", history)
	}

	// Unknown anchor appends.
	tail := NewUserTurn(conv.ID(), "tail", nil)
	conv.InsertAfter("unknown", tail)
	history = conv.History()
	if history[len(history)-1].ID != tail.ID {
		t.Error("unknown anchor did not append at end")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	conv := NewConversation()
	user := NewUserTurn(conv.ID(), "hello", []Attachment{{Path: "/tmp/a.txt", Kind: AttachmentDoc}})
	conv.Append(user)

	got, ok := conv.Turn(user.ID)
	if !ok {
		t.Fatal("turn missing")
	}
	got.Content = "mutated"
	got.Attachments[0].Path = "/elsewhere"

	again, _ := conv.Turn(user.ID)
	if again.Content != "hello" {
		t.Error("mutating a returned turn affected stored state")
	}
	if again.Attachments[0].Path != "/tmp/a.txt" {
		t.Error("mutating a returned attachment slice affected stored state")
	}
}

func TestAnsweringLifecycle(t *testing.T) {
	conv := NewConversation()
	asst := NewAssistantTurn(conv.ID())
	conv.Append(asst)

	if !conv.IsAnswering(asst.ID) {
		t.Error("new assistant turn not answering")
	}
	if conv.IsAnswering("unknown") {
		t.Error("unknown ID reports answering")
	}

	conv.SetAnswering(asst.ID, false)
	if conv.IsAnswering(asst.ID) {
		t.Error("still answering after SetAnswering(false)")
	}
}

func TestStopAll(t *testing.T) {
	conv := NewConversation()
	a := NewAssistantTurn(conv.ID())
	b := NewAssistantTurn(conv.ID())
	conv.Append(a)
	conv.Append(b)

	if len(conv.ActiveTurns()) != 2 {
		t.Fatalf("active = %d, want 2", len(conv.ActiveTurns()))
	}
	conv.StopAll()
	if len(conv.ActiveTurns()) != 0 {
		t.Error("turns still active after StopAll")
	}
}

func TestResetTurnPreservesIdentity(t *testing.T) {
	conv := NewConversation()
	asst := NewAssistantTurn(conv.ID())
	conv.Append(asst)
	conv.AppendContent(asst.ID, "old answer")
	conv.SetToolCall(asst.ID, "get_weather")
	conv.SetToolArgsRaw(asst.ID, "{}")
	conv.SetAnswering(asst.ID, false)

	conv.ResetTurn(asst.ID)

	got, _ := conv.Turn(asst.ID)
	if got.Content != "" || got.ToolName != "" || got.ToolArgsRaw != "" || got.ToolLog != "" {
		t.Errorf("generated state not cleared: %+v", got)
	}
	if !got.Answering {
		t.Error("reset turn not answering")
	}
	if got.ID != asst.ID || !got.CreatedAt.Equal(asst.CreatedAt) {
		t.Error("reset changed turn identity")
	}
}

func TestSlotGenerationRetiresOldCycles(t *testing.T) {
	conv := NewConversation()
	asst := NewAssistantTurn(conv.ID())
	conv.Append(asst)

	if !conv.AnsweringAs(asst.ID, 0) {
		t.Error("fresh turn not answering at generation 0")
	}

	gen := conv.ResetTurn(asst.ID)
	if gen != 1 {
		t.Errorf("ResetTurn generation = %d, want 1", gen)
	}
	if conv.AnsweringAs(asst.ID, 0) {
		t.Error("stale generation still reports answering after reset")
	}
	if !conv.AnsweringAs(asst.ID, gen) {
		t.Error("current generation not answering after reset")
	}

	replacement := NewToolTurn(conv.ID(), "get_weather", "Sunny", nil)
	replacement.ID = asst.ID
	gen2 := conv.ReplaceTurn(replacement)
	if gen2 != 2 {
		t.Errorf("ReplaceTurn generation = %d, want 2", gen2)
	}
	if conv.AnsweringAs(asst.ID, gen) {
		t.Error("replaced slot still answers for the previous generation")
	}
}

func TestAttachmentDedupe(t *testing.T) {
	conv := NewConversation()
	a := NewUserTurn(conv.ID(), "one", []Attachment{
		{Path: "/tmp/a.txt", Kind: AttachmentDoc},
		{Path: "/tmp/a.txt", Kind: AttachmentDoc}, // duplicate within one turn
	})
	b := NewUserTurn(conv.ID(), "two", []Attachment{
		{Path: "/tmp/a.txt", Kind: AttachmentDoc}, // duplicate across turns
		{Path: "/tmp/b.png", Kind: AttachmentPhoto},
	})
	conv.Append(a)
	conv.Append(b)

	if len(a.Attachments) != 1 {
		t.Errorf("turn-level dedupe failed: %v", a.Attachments)
	}
	all := conv.AllAttachments()
	if len(all) != 2 {
		t.Errorf("conversation-level dedupe: got %d attachments, want 2", len(all))
	}
}

func TestNewConversationWithHistoryClearsAnswering(t *testing.T) {
	orig := NewConversation()
	asst := NewAssistantTurn(orig.ID())
	orig.Append(asst)

	restored := NewConversationWithHistory(orig.ID(), orig.History())
	if restored.ID() != orig.ID() {
		t.Error("restored ID differs")
	}
	if len(restored.ActiveTurns()) != 0 {
		t.Error("restored history carried an answering flag")
	}
}

func TestLastUserTurn(t *testing.T) {
	conv := NewConversation()
	if _, ok := conv.LastUserTurn(); ok {
		t.Error("empty conversation reported a user turn")
	}

	first := NewUserTurn(conv.ID(), "first", nil)
	conv.Append(first)
	conv.Append(NewAssistantTurn(conv.ID()))
	second := NewUserTurn(conv.ID(), "second", nil)
	conv.Append(second)

	last, ok := conv.LastUserTurn()
	if !ok || last.ID != second.ID {
		t.Errorf("last user turn = %v", last.ID)
	}
}
