package collab

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"
)

const defaultModel = anthropic.Model("claude-sonnet-4-5-20250929")

// RequestPlan sends the prompt to the Claude Messages API and returns
// the raw text of the response. The returned document is untrusted: it
// still goes through the normal parser and validator like any
// human-pasted plan. The client reads ANTHROPIC_API_KEY from the
// environment.
func RequestPlan(ctx context.Context, prompt string) (string, error) {
	client := anthropic.NewClient()

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     defaultModel,
		MaxTokens: 8192,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "request plan from Claude")
	}

	var parts []string
	for _, content := range resp.Content {
		if content.Type == "text" {
			parts = append(parts, content.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("empty response from Claude")
	}

	return stripFences(strings.Join(parts, "\n")), nil
}

// stripFences removes a markdown code fence if the model wrapped the
// plan in one.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	lines = lines[1:] // opening fence, possibly with a language tag
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
