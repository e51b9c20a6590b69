package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// Gemini exposes an OpenAI-compatible endpoint
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	defaultModel = "gemini-2.0-flash"
)

// Client is the Gemini API client using the OpenAI-compatible interface
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new Gemini client
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = geminiBaseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete sends a prompt and returns the raw reply text.
// Callers must defensively parse the result; nothing about its shape
// is guaranteed by the far side.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
