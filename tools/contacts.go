package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sahilm/fuzzy"
)

// Contact is one entry in the user's address book.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// ContactSource supplies the address book to search.
type ContactSource interface {
	Contacts() ([]Contact, error)
}

// FileContactSource reads contacts from a JSON file. A missing file yields
// an empty address book.
type FileContactSource struct {
	Path string
}

func (f *FileContactSource) Contacts() ([]Contact, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}
	var contacts []Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("failed to parse contacts: %w", err)
	}
	return contacts, nil
}

// FindContactSchema declares the find_contact tool.
func FindContactSchema() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "find_contact",
		Description: "Look up a contact by name. Returns the contact's details, or a list of candidates when the name is ambiguous.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Full or partial name to look up",
				},
			},
			Required: []string{"name"},
		},
	}
}

// FindContactExecutor builds the executor for find_contact.
//
// An unambiguous match returns the contact's details; multiple plausible
// matches return a choice outcome so the user can pick before the chain
// continues.
func FindContactExecutor(source ContactSource) Executor {
	return func(_ context.Context, rawArgs string, _ Context) (Outcome, error) {
		var args struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Name == "" {
			return Outcome{}, fmt.Errorf("name is required")
		}

		contacts, err := source.Contacts()
		if err != nil {
			return Outcome{}, err
		}
		if len(contacts) == 0 {
			return Outcome{}, fmt.Errorf("no contacts available")
		}

		targets := make([]string, len(contacts))
		for i, c := range contacts {
			targets[i] = c.Name
		}

		matches := fuzzy.Find(args.Name, targets)
		switch len(matches) {
		case 0:
			return Outcome{}, fmt.Errorf("no contact matches %q", args.Name)
		case 1:
			return TextOutcome(renderContact(contacts[matches[0].Index])), nil
		default:
			options := make([]string, 0, len(matches))
			for _, m := range matches {
				options = append(options, contacts[m.Index].Name)
			}
			return ChoiceOutcome(fmt.Sprintf("Multiple contacts match %q:", args.Name), options), nil
		}
	}
}

func renderContact(c Contact) string {
	out := "Contact: " + c.Name
	if c.Phone != "" {
		out += "\nPhone: " + c.Phone
	}
	if c.Email != "" {
		out += "\nEmail: " + c.Email
	}
	return out
}
