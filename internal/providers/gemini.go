package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiText generates alert text with a Gemini model.
type GeminiText struct {
	client *genai.Client
	model  string
}

// NewGeminiText creates a Gemini API client.
func NewGeminiText(ctx context.Context, apiKey, model string) (*GeminiText, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiText{client: client, model: model}, nil
}

// Generate returns the model's text for prompt.
func (g *GeminiText) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
