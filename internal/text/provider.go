package text

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordtale/internal/breaker"
)

// Provider defines the interface for language model providers
type Provider interface {
	// Generate returns the model's answer to prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name
	Name() string
}

// Config holds configuration for text providers
type Config struct {
	Provider    string  // "openai" or "gemini"
	Temperature float32 // Sampling temperature

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIBaseURL string // Empty for api.openai.com
	OpenAIModel   string

	// Gemini-specific settings
	GeminiKey   string
	GeminiModel string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "openai",
		Temperature: 0.9,
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.5-flash",
	}
}

// NewProvider creates the text provider selected by config.Provider
func NewProvider(ctx context.Context, config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai", "":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(ctx, config)

	default:
		return nil, fmt.Errorf("unknown text provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *zap.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Generate tries the primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := p.primary.Generate(ctx, prompt)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	p.logger.Warn("primary text provider failed, falling back",
		zap.String("primary", p.primary.Name()),
		zap.String("fallback", p.fallback.Name()),
		zap.Error(err))

	return p.fallback.Generate(ctx, prompt)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

type breakerProvider struct {
	Provider
	breaker *breaker.Breaker
}

// WithBreaker routes every call of p through b
func WithBreaker(p Provider, b *breaker.Breaker) Provider {
	return &breakerProvider{Provider: p, breaker: b}
}

func (p *breakerProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return breaker.Do(p.breaker, func() (string, error) {
		return p.Provider.Generate(ctx, prompt)
	})
}
