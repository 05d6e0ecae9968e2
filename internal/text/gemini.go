package text

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider generates text with Google Gemini
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiClient creates a genai client for the Gemini API
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiProvider creates a new Gemini text provider
func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	client, err := NewGeminiClient(ctx, config.GeminiKey)
	if err != nil {
		return nil, err
	}

	model := config.GeminiModel
	if model == "" {
		model = DefaultProviderConfig().GeminiModel
	}

	return &GeminiProvider{
		client:      client,
		model:       model,
		temperature: config.Temperature,
	}, nil
}

// Generate sends prompt as a single user turn
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return out, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}
