package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// completeTimeout bounds a single generation call. The composer falls back
// to its template when the provider is slow, so a short budget is fine.
const completeTimeout = 10 * time.Second

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient builds a Gemini text client. Returns a nil client (and nil
// error) when no API key is configured; callers treat that as "no provider".
func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.SetTemperature(0.7)

	return &Client{client: client, model: model}, nil
}

// Complete sends prompt to the model and returns the first text part.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.model == nil {
		return "", errors.New("gemini client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, completeTimeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return strings.TrimSpace(string(txt)), nil
		}
	}
	return "", errors.New("no text part in response")
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
