package cli

import (
	"time"

	"codeberg.org/snonux/wordtale/internal/story"
	"codeberg.org/snonux/wordtale/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile        string
	WordsFile      string
	Sample         int
	StoryPrompt    string
	ImagePrompt    string
	MaxLength      int
	TargetLanguage string
	OutputDir      string
	CacheDir       string
	HistoryDB      string
	Verbose        bool

	// Providers
	TextProvider   string
	TextFallback   string
	ImageProvider  string
	VisionProvider string

	// OpenAI flags
	OpenAIBaseURL      string
	OpenAIChatModel    string
	OpenAIImageModel   string
	OpenAIImageSize    string
	OpenAIImageQuality string
	OpenAIImageStyle   string
	OpenAIVisionModel  string
	OpenAITTSModel     string
	OpenAIVoice        string

	// Gemini flags
	GeminiTextModel   string
	GeminiImageModel  string
	GeminiVisionModel string

	// Pipeline tuning
	Concurrency   int
	Interval      time.Duration
	Timeout       time.Duration
	Retries       int
	MatchKeywords bool

	// Actions
	GenerateAnki bool
	AnkiCSV      bool
	AnkiAudio    bool
	DeckName     string
	Archive      bool
	ListModels   bool
	History      int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	opts := story.DefaultOptions()
	return &Flags{
		Sample:             30,
		MaxLength:          story.DefaultMaxLength,
		TargetLanguage:     translation.DefaultLanguage,
		TextProvider:       "openai",
		ImageProvider:      "openai",
		VisionProvider:     "openai",
		OpenAIChatModel:    "gpt-4o-mini",
		OpenAIImageModel:   "dall-e-3",
		OpenAIImageSize:    "1024x1024",
		OpenAIImageQuality: "standard",
		OpenAIImageStyle:   "vivid",
		OpenAIVisionModel:  "gpt-4o-mini",
		OpenAITTSModel:     "gpt-4o-mini-tts",
		GeminiTextModel:    "gemini-2.5-flash",
		GeminiImageModel:   "gemini-2.5-flash-image",
		GeminiVisionModel:  "gemini-2.5-flash",
		Concurrency:        opts.Concurrency,
		Interval:           opts.Interval,
		Timeout:            opts.CallTimeout,
		Retries:            opts.Retries,
		DeckName:           "Wordtale Stories",
	}
}

// PipelineOptions returns the story pipeline options selected by the flags
func (f *Flags) PipelineOptions() story.Options {
	return story.Options{
		Retries:       f.Retries,
		Concurrency:   f.Concurrency,
		Interval:      f.Interval,
		CallTimeout:   f.Timeout,
		OutputDir:     f.OutputDir,
		MatchKeywords: f.MatchKeywords,
	}
}
