package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/net/html"
)

const (
	webpageTimeout    = 30 * time.Second
	webpageMaxBody    = 5 * 1024 * 1024 // 5MB
	webpageMaxContent = 50000           // chars after extraction
	webpageUserAgent  = "iask/1.0"
)

// ReadWebpageSchema declares the read_webpage tool.
func ReadWebpageSchema() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        "read_webpage",
		Description: "Fetch a URL and return its readable text content.",
		InputSchema: mcptypes.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "The URL to fetch",
				},
			},
			Required: []string{"url"},
		},
	}
}

// ReadWebpageExecutor builds the executor for read_webpage. A nil client
// uses a default with timeout and redirect limits.
func ReadWebpageExecutor(client *http.Client) Executor {
	if client == nil {
		client = &http.Client{
			Timeout: webpageTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	return func(ctx context.Context, rawArgs string, _ Context) (Outcome, error) {
		var args struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return Outcome{}, fmt.Errorf("invalid arguments: %w", err)
		}
		if args.URL == "" {
			return Outcome{}, fmt.Errorf("url is required")
		}
		if !strings.HasPrefix(args.URL, "http://") && !strings.HasPrefix(args.URL, "https://") {
			return Outcome{}, fmt.Errorf("url must start with http:// or https://")
		}

		ctx, cancel := context.WithTimeout(ctx, webpageTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("User-Agent", webpageUserAgent)

		resp, err := client.Do(req)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to fetch URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return Outcome{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, args.URL)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, webpageMaxBody))
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to read response: %w", err)
		}

		content := string(body)
		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
			content = extractTextFromHTML(content)
		}
		if len(content) > webpageMaxContent {
			content = content[:webpageMaxContent] + "\n... (truncated)"
		}

		return TextOutcome(fmt.Sprintf("Content of %s:\n\n%s", args.URL, content)), nil
	}
}

// extractTextFromHTML strips tags and returns the visible text.
func extractTextFromHTML(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var b strings.Builder
	var skip bool

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" || tag == "head" {
				skip = true
			}
			if isBlockTag(tag) {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" || tag == "head" {
				skip = false
			}
		case html.TextToken:
			if !skip {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					if b.Len() > 0 {
						b.WriteByte(' ')
					}
					b.WriteString(text)
				}
			}
		}
	}
}

func isBlockTag(tag string) bool {
	switch tag {
	case "div", "p", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "tr", "td", "th",
		"section", "article", "header", "footer", "nav",
		"blockquote", "pre", "hr":
		return true
	}
	return false
}
