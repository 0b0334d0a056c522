package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ContentGenerator abstracts the AI provider so tests can substitute fakes.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiClient wraps the Google GenAI client for prompt-in, text-out calls.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a client for the Gemini API backend.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		return nil, errors.New("gemini model is required")
	}

	return &GeminiClient{client: client, modelName: model}, nil
}

// Raw exposes the underlying genai client so the embedder can share it.
func (g *GeminiClient) Raw() *genai.Client {
	return g.client
}

// GenerateContent sends the prompt to Gemini and returns the joined textual
// response.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
