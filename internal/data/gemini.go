package data

import (
	"context"

	"sendlater/gemini"
	"sendlater/internal/biz/repo"
)

// geminiCompletion implements the completion repository over the Gemini client
type geminiCompletion struct {
	client *gemini.Client
}

// NewGeminiCompletion creates a Gemini-backed completion repository.
// Returns nil when no client is configured; callers treat a nil
// repository as "no language model".
func NewGeminiCompletion(client *gemini.Client) repo.CompletionRepo {
	if client == nil {
		return nil
	}
	return &geminiCompletion{client: client}
}

// Complete sends a prompt and returns the raw reply text
func (c *geminiCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	return c.client.Complete(ctx, prompt)
}
