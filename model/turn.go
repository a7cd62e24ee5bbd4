package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	// RoleChoice marks a turn that presents candidate options to the user
	// (e.g. ambiguous contact matches) and pauses the chain until a selection
	// arrives as a fresh user turn.
	RoleChoice Role = "choice"
)

// AttachmentKind classifies what an attachment path points at.
type AttachmentKind string

const (
	AttachmentDoc    AttachmentKind = "doc"
	AttachmentPhoto  AttachmentKind = "photo"
	AttachmentVideo  AttachmentKind = "video"
	AttachmentAudio  AttachmentKind = "audio"
	AttachmentURL    AttachmentKind = "url"
	AttachmentFolder AttachmentKind = "folder"
)

// Attachment references externally-owned file or URL data. Attachments are
// compared by path; a turn never holds two attachments with the same path.
type Attachment struct {
	Path string
	Kind AttachmentKind
}

// Turn is one message in a conversation.
//
// Content is appended to while Answering is true and frozen once Answering
// flips to false, except for explicit user edits before a resend. The
// orchestrator is the only writer of Content, Answering, ToolName,
// ToolArgsRaw and ToolLog.
type Turn struct {
	ID        string
	ChatID    string
	Role      Role
	Content   string
	Answering bool
	CreatedAt time.Time

	// Generation counts how many times this turn's slot has been reused
	// (edit-and-resend). A streaming cycle captures it at start; once the
	// slot is reset or replaced the stale cycle's generation no longer
	// matches and it stops mutating the turn. In-memory only, not persisted.
	Generation int

	// Tool call bookkeeping, set while an assistant turn streams a call.
	ToolName    string
	ToolArgsRaw string
	ToolLog     string

	Attachments []Attachment
}

// NewUserTurn creates a user turn with deduplicated attachments.
func NewUserTurn(chatID, content string, attachments []Attachment) Turn {
	t := Turn{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	for _, a := range attachments {
		t.AddAttachment(a)
	}
	return t
}

// NewAssistantTurn creates an empty assistant turn in the answering state.
func NewAssistantTurn(chatID string) Turn {
	return Turn{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Role:      RoleAssistant,
		Answering: true,
		CreatedAt: time.Now(),
	}
}

// NewToolTurn creates a tool-result turn.
func NewToolTurn(chatID, toolName, content string, attachments []Attachment) Turn {
	t := Turn{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		Role:      RoleTool,
		Content:   content,
		ToolName:  toolName,
		CreatedAt: time.Now(),
	}
	for _, a := range attachments {
		t.AddAttachment(a)
	}
	return t
}

// AddAttachment appends an attachment unless one with the same path is
// already present.
func (t *Turn) AddAttachment(a Attachment) {
	for _, existing := range t.Attachments {
		if existing.Path == a.Path {
			return
		}
	}
	t.Attachments = append(t.Attachments, a)
}

// HasAttachment reports whether the turn owns an attachment with the path.
func (t *Turn) HasAttachment(path string) bool {
	for _, a := range t.Attachments {
		if a.Path == path {
			return true
		}
	}
	return false
}

// clone returns a deep copy safe to hand outside the conversation lock.
func (t *Turn) clone() Turn {
	c := *t
	if len(t.Attachments) > 0 {
		c.Attachments = make([]Attachment, len(t.Attachments))
		copy(c.Attachments, t.Attachments)
	}
	return c
}
