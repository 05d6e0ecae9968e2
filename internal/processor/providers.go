package processor

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordtale/internal/audio"
	"codeberg.org/snonux/wordtale/internal/breaker"
	"codeberg.org/snonux/wordtale/internal/cli"
	"codeberg.org/snonux/wordtale/internal/image"
	"codeberg.org/snonux/wordtale/internal/text"
	"codeberg.org/snonux/wordtale/internal/vision"
)

// BuildProviders creates the text, image, vision and optional audio
// providers selected by flags. Every provider is wrapped in its own
// circuit breaker.
func BuildProviders(ctx context.Context, flags *cli.Flags, logger *zap.Logger) (Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	openaiKey := cli.GetOpenAIKey()
	geminiKey := cli.GetGeminiKey()
	cb := breaker.DefaultConfig()

	newText := func(name string) (text.Provider, error) {
		cfg := text.DefaultProviderConfig()
		cfg.Provider = name
		cfg.OpenAIKey = openaiKey
		cfg.OpenAIBaseURL = flags.OpenAIBaseURL
		cfg.OpenAIModel = flags.OpenAIChatModel
		cfg.GeminiKey = geminiKey
		cfg.GeminiModel = flags.GeminiTextModel

		p, err := text.NewProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("text provider %s: %w", name, err)
		}
		return text.WithBreaker(p, breaker.New("text-"+name, cb, logger)), nil
	}

	textProvider, err := newText(flags.TextProvider)
	if err != nil {
		return Providers{}, err
	}
	if flags.TextFallback != "" && flags.TextFallback != flags.TextProvider {
		fallback, err := newText(flags.TextFallback)
		if err != nil {
			return Providers{}, err
		}
		textProvider = text.NewProviderWithFallback(textProvider, fallback, logger)
	}

	imgCfg := image.DefaultProviderConfig()
	imgCfg.Provider = flags.ImageProvider
	imgCfg.CacheDir = subdir(flags.CacheDir, "images")
	imgCfg.OpenAIKey = openaiKey
	imgCfg.OpenAIBaseURL = flags.OpenAIBaseURL
	imgCfg.OpenAIModel = flags.OpenAIImageModel
	imgCfg.OpenAISize = flags.OpenAIImageSize
	imgCfg.OpenAIQuality = flags.OpenAIImageQuality
	imgCfg.OpenAIStyle = flags.OpenAIImageStyle
	imgCfg.GeminiKey = geminiKey
	imgCfg.GeminiModel = flags.GeminiImageModel

	images, err := image.NewGenerator(ctx, imgCfg)
	if err != nil {
		return Providers{}, fmt.Errorf("image provider %s: %w", flags.ImageProvider, err)
	}

	visionCfg := vision.DefaultProviderConfig()
	visionCfg.Provider = flags.VisionProvider
	visionCfg.OpenAIKey = openaiKey
	visionCfg.OpenAIBaseURL = flags.OpenAIBaseURL
	visionCfg.OpenAIModel = flags.OpenAIVisionModel
	visionCfg.GeminiKey = geminiKey
	visionCfg.GeminiModel = flags.GeminiVisionModel

	describer, err := vision.NewDescriber(ctx, visionCfg)
	if err != nil {
		return Providers{}, fmt.Errorf("vision provider %s: %w", flags.VisionProvider, err)
	}

	providers := Providers{
		Text:   textProvider,
		Images: image.WithBreaker(images, breaker.New("image-"+images.Name(), cb, logger)),
		Vision: vision.WithBreaker(describer, breaker.New("vision-"+describer.Name(), cb, logger)),
	}

	if flags.AnkiAudio {
		audioCfg := audio.DefaultProviderConfig()
		audioCfg.OpenAIKey = openaiKey
		audioCfg.OpenAIBaseURL = flags.OpenAIBaseURL
		audioCfg.OpenAIModel = flags.OpenAITTSModel
		if flags.OpenAIVoice != "" {
			audioCfg.OpenAIVoice = flags.OpenAIVoice
		}
		audioCfg.CacheDir = subdir(flags.CacheDir, "audio")
		audioCfg.EnableCache = audioCfg.CacheDir != ""

		narrator, err := audio.NewProvider(audioCfg)
		if err != nil {
			return Providers{}, fmt.Errorf("audio provider: %w", err)
		}
		providers.Audio = narrator
	}

	return providers, nil
}

func subdir(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
