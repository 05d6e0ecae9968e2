package image

import (
	"context"
	"fmt"

	"codeberg.org/snonux/wordtale/internal/breaker"
)

// Generator renders an image for a prompt into a PNG file
type Generator interface {
	// GenerateImage renders prompt and writes the image to destPath
	GenerateImage(ctx context.Context, prompt, destPath string) error

	// Name returns the provider name
	Name() string
}

// Config holds configuration for image providers
type Config struct {
	Provider string // "openai" or "gemini"
	CacheDir string // Empty disables the on-disk cache

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string // "dall-e-3", "dall-e-2" or "gpt-image-1"
	OpenAISize    string // "1024x1024", "1792x1024", "1024x1792", ...
	OpenAIQuality string // "standard" or "hd" (dall-e-3 only)
	OpenAIStyle   string // "vivid" or "natural" (dall-e-3 only)

	// Gemini-specific settings
	GeminiKey   string
	GeminiModel string

	Download *DownloadOptions
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:      "openai",
		OpenAIModel:   "dall-e-3",
		OpenAISize:    "1024x1024",
		OpenAIQuality: "standard",
		OpenAIStyle:   "vivid",
		GeminiModel:   "gemini-2.5-flash-image",
		Download:      DefaultDownloadOptions(),
	}
}

// NewGenerator creates the image provider selected by config.Provider
func NewGenerator(ctx context.Context, config *Config) (Generator, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai", "":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIGenerator(config), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiGenerator(ctx, config)

	default:
		return nil, fmt.Errorf("unknown image provider: %s", config.Provider)
	}
}

type breakerGenerator struct {
	Generator
	breaker *breaker.Breaker
}

// WithBreaker routes every call of g through b
func WithBreaker(g Generator, b *breaker.Breaker) Generator {
	return &breakerGenerator{Generator: g, breaker: b}
}

func (g *breakerGenerator) GenerateImage(ctx context.Context, prompt, destPath string) error {
	_, err := breaker.Do(g.breaker, func() (struct{}, error) {
		return struct{}{}, g.Generator.GenerateImage(ctx, prompt, destPath)
	})
	return err
}
