package image

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// GeminiGenerator generates images with Gemini image models
type GeminiGenerator struct {
	client *genai.Client
	model  string
	cache  *diskCache
}

// NewGeminiGenerator creates a new Gemini image generator
func NewGeminiGenerator(ctx context.Context, config *Config) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.GeminiModel
	if model == "" {
		model = DefaultProviderConfig().GeminiModel
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		cache:  newDiskCache(config.CacheDir),
	}, nil
}

// GenerateImage asks the model for an image part and writes its bytes
func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt, destPath string) error {
	cacheFile := g.cache.path("gemini", g.model, prompt)
	if g.cache.load(cacheFile, destPath) {
		return nil
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return fmt.Errorf("Gemini image API error: %w", err)
	}

	data := inlineImage(resp)
	if data == nil {
		return fmt.Errorf("no image data received from Gemini")
	}
	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	g.cache.store(destPath, cacheFile)
	return nil
}

// inlineImage returns the bytes of the first inline image part
func inlineImage(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}

// Name returns the provider name
func (g *GeminiGenerator) Name() string {
	return "gemini"
}
