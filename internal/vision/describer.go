// Package vision asks multimodal models to describe generated images.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/wordtale/internal/breaker"
)

// Describer describes the content of an image file
type Describer interface {
	DescribeImage(ctx context.Context, imagePath, prompt string) (string, error)
	Name() string
}

// Config holds configuration for vision providers
type Config struct {
	Provider string // "openai" or "gemini"

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIDetail  string // "low", "high" or "auto"

	GeminiKey   string
	GeminiModel string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:     "openai",
		OpenAIModel:  "gpt-4o-mini",
		OpenAIDetail: "low",
		GeminiModel:  "gemini-2.5-flash",
	}
}

// NewDescriber creates the vision provider selected by config.Provider
func NewDescriber(ctx context.Context, config *Config) (Describer, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai", "":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIDescriber(config), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiDescriber(ctx, config)

	default:
		return nil, fmt.Errorf("unknown vision provider: %s", config.Provider)
	}
}

// readImage loads an image and detects its MIME type
func readImage(imagePath string) ([]byte, string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

// OpenAIDescriber uses a vision-capable chat model
type OpenAIDescriber struct {
	client *openai.Client
	model  string
	detail openai.ImageURLDetail
}

// NewOpenAIDescriber creates a new OpenAI vision describer
func NewOpenAIDescriber(config *Config) *OpenAIDescriber {
	defaults := DefaultProviderConfig()

	cfg := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(config.OpenAIBaseURL, "/")
	}

	model := config.OpenAIModel
	if model == "" {
		model = defaults.OpenAIModel
	}
	detail := config.OpenAIDetail
	if detail == "" {
		detail = defaults.OpenAIDetail
	}

	return &OpenAIDescriber{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		detail: openai.ImageURLDetail(detail),
	}
}

// DescribeImage sends the image inline as a data URL
func (d *OpenAIDescriber) DescribeImage(ctx context.Context, imagePath, prompt string) (string, error) {
	data, mimeType, err := readImage(imagePath)
	if err != nil {
		return "", err
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: d.detail},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name returns the provider name
func (d *OpenAIDescriber) Name() string {
	return "openai"
}

// GeminiDescriber uses a multimodal Gemini model
type GeminiDescriber struct {
	client *genai.Client
	model  string
}

// NewGeminiDescriber creates a new Gemini vision describer
func NewGeminiDescriber(ctx context.Context, config *Config) (*GeminiDescriber, error) {
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
	return &GeminiDescriber{client: client, model: model}, nil
}

// DescribeImage sends the prompt and the image bytes in one user turn
func (d *GeminiDescriber) DescribeImage(ctx context.Context, imagePath, prompt string) (string, error) {
	data, mimeType, err := readImage(imagePath)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini vision request failed: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return out, nil
}

// Name returns the provider name
func (d *GeminiDescriber) Name() string {
	return "gemini"
}

type breakerDescriber struct {
	Describer
	breaker *breaker.Breaker
}

// WithBreaker routes every call of d through b
func WithBreaker(d Describer, b *breaker.Breaker) Describer {
	return &breakerDescriber{Describer: d, breaker: b}
}

func (d *breakerDescriber) DescribeImage(ctx context.Context, imagePath, prompt string) (string, error) {
	return breaker.Do(d.breaker, func() (string, error) {
		return d.Describer.DescribeImage(ctx, imagePath, prompt)
	})
}
