package provider

import (
	"fmt"
	"strings"

	"iask/model"
)

// chatMessage is the provider-neutral role/content pair each backend
// adapter converts into its SDK's message type.
type chatMessage struct {
	Role    string
	Content string
}

// flattenTurns renders the turn history into role/content pairs.
//
// Role mapping:
//   - user turns keep the user role, with attachment reference tokens
//     appended to the text.
//   - assistant turns keep the assistant role; a completed tool call is
//     rendered as a call marker so follow-up requests see what was invoked.
//   - tool and choice turns become user messages carrying the result, since
//     not every backend models tool results natively.
func flattenTurns(systemPrompt string, history []model.Turn) []chatMessage {
	var out []chatMessage
	if systemPrompt != "" {
		out = append(out, chatMessage{Role: "system", Content: systemPrompt})
	}

	for _, t := range history {
		switch t.Role {
		case model.RoleUser:
			out = append(out, chatMessage{Role: "user", Content: renderUserTurn(t)})

		case model.RoleAssistant:
			content := t.Content
			if t.ToolName != "" {
				if content != "" {
					content += "\n"
				}
				content += fmt.Sprintf("[tool call: %s %s]", t.ToolName, t.ToolArgsRaw)
			}
			out = append(out, chatMessage{Role: "assistant", Content: content})

		case model.RoleTool:
			content := fmt.Sprintf("Result of tool %s:\n%s", t.ToolName, t.Content)
			for _, a := range t.Attachments {
				content += "\n" + renderAttachmentToken(a)
			}
			out = append(out, chatMessage{Role: "user", Content: content})

		case model.RoleChoice:
			out = append(out, chatMessage{Role: "assistant", Content: t.Content})

		default:
			out = append(out, chatMessage{Role: "user", Content: t.Content})
		}
	}

	return out
}

func renderUserTurn(t model.Turn) string {
	var b strings.Builder
	b.WriteString(t.Content)
	for _, a := range t.Attachments {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderAttachmentToken(a))
	}
	return b.String()
}

// renderAttachmentToken renders an attachment as a file-reference token.
// Raw bytes are never inlined into the request; tools read the referenced
// path on demand.
func renderAttachmentToken(a model.Attachment) string {
	if a.Kind == model.AttachmentURL {
		return fmt.Sprintf("[url: %s]", a.Path)
	}
	return fmt.Sprintf("[attached %s: %s]", a.Kind, a.Path)
}
