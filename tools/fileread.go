package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"iask/model"
)

const filereadMaxContent = 100000 // chars

// ReadFileSchema declares the read_file tool.
func ReadFileSchema() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "read_file",
		Description: "Read the text content of an attached file. Supports plain text and PDF.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Path of the attachment to read",
				},
			},
			Required: []string{"path"},
		},
	}
}

// ReadFileExecutor builds the executor for read_file. Paths are resolved
// against the attachments of the current conversation; arbitrary filesystem
// paths are rejected.
func ReadFileExecutor() Executor {
	return func(_ context.Context, rawArgs string, tc Context) (Outcome, error) {
		var args struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Path == "" {
			return Outcome{}, fmt.Errorf("path is required")
		}

		attachment, ok := tc.Attachment(args.Path)
		if !ok {
			return Outcome{}, fmt.Errorf("no attachment with path %q in this conversation", args.Path)
		}
		if attachment.Kind == model.AttachmentURL {
			return Outcome{}, fmt.Errorf("%q is a URL; use read_webpage instead", args.Path)
		}
		if attachment.Kind == model.AttachmentFolder {
			return readFolder(attachment.Path)
		}

		var content string
		var err error
		if strings.EqualFold(filepath.Ext(attachment.Path), ".pdf") {
			content, err = readPDF(attachment.Path)
		} else {
			content, err = readTextFile(attachment.Path)
		}
		if err != nil {
			return Outcome{}, err
		}

		if len(content) > filereadMaxContent {
			content = content[:filereadMaxContent] + "\n... (truncated)"
		}
		return TextOutcome(fmt.Sprintf("Content of %s:\n\n%s", attachment.Path, content)), nil
	}
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return string(data), nil
}

func readFolder(path string) (Outcome, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read folder: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Contents of %s:\n", path)
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(&b, "  %s/\n", entry.Name())
		} else {
			fmt.Fprintf(&b, "  %s\n", entry.Name())
		}
	}
	return TextOutcome(b.String()), nil
}
