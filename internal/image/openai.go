package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator generates images with the OpenAI images API
type OpenAIGenerator struct {
	client     *openai.Client
	model      string
	size       string
	quality    string
	style      string
	downloader *Downloader
	cache      *diskCache
}

// NewOpenAIGenerator creates a new OpenAI image generator
func NewOpenAIGenerator(config *Config) *OpenAIGenerator {
	defaults := DefaultProviderConfig()

	cfg := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(config.OpenAIBaseURL, "/")
	}

	g := &OpenAIGenerator{
		client:     openai.NewClientWithConfig(cfg),
		model:      config.OpenAIModel,
		size:       config.OpenAISize,
		quality:    config.OpenAIQuality,
		style:      config.OpenAIStyle,
		downloader: NewDownloader(config.Download),
		cache:      newDiskCache(config.CacheDir),
	}

	// Set defaults
	if g.model == "" {
		g.model = defaults.OpenAIModel
	}
	if g.size == "" {
		g.size = defaults.OpenAISize
	}
	if g.quality == "" {
		g.quality = defaults.OpenAIQuality
	}
	if g.style == "" {
		g.style = defaults.OpenAIStyle
	}

	return g
}

// GenerateImage renders prompt with the configured model
func (g *OpenAIGenerator) GenerateImage(ctx context.Context, prompt, destPath string) error {
	cacheFile := g.cache.path("openai", g.model, g.size, g.quality, g.style, prompt)
	if g.cache.load(cacheFile, destPath) {
		return nil
	}

	resp, err := g.client.CreateImage(ctx, g.request(prompt))
	if err != nil {
		return fmt.Errorf("OpenAI image API error: %w", err)
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("no image data received from OpenAI")
	}

	data := resp.Data[0]
	switch {
	case data.B64JSON != "":
		raw, err := base64.StdEncoding.DecodeString(data.B64JSON)
		if err != nil {
			return fmt.Errorf("failed to decode image data: %w", err)
		}
		if err := os.WriteFile(destPath, raw, 0644); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
	case data.URL != "":
		if err := g.downloader.Download(ctx, data.URL, destPath); err != nil {
			return err
		}
	default:
		return fmt.Errorf("no image data received from OpenAI")
	}

	g.cache.store(destPath, cacheFile)
	return nil
}

// request builds the images API request; quality and style only exist for dall-e-3
func (g *OpenAIGenerator) request(prompt string) openai.ImageRequest {
	req := openai.ImageRequest{
		Prompt: prompt,
		Model:  g.model,
		N:      1,
		Size:   g.size,
	}

	if strings.HasPrefix(g.model, "dall-e") {
		req.ResponseFormat = openai.CreateImageResponseFormatURL
	}
	if g.model == openai.CreateImageModelDallE3 {
		req.Quality = g.quality
		req.Style = g.style
	}
	return req
}

// Name returns the provider name
func (g *OpenAIGenerator) Name() string {
	return "openai"
}
