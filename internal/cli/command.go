package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordtale/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordtale [word...]",
		Short: "Surreal vocabulary stories with pictures",
		Long: `wordtale turns a list of vocabulary words into a short surreal story.

Every sentence is translated, and every sentence that uses one of the words
gets an illustration that is checked by a vision model before it is shown.

Examples:
  wordtale                              # Launch interactive GUI (default)
  wordtale cat moon umbrella            # Write a story for three words
  wordtale --words-file words.txt       # Sample 30 words from a file
  wordtale --anki cat moon              # Also export an Anki deck`,
		Args:    cobra.ArbitraryArgs,
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wordtale.yaml)")

	f := cmd.Flags()
	f.StringVar(&flags.WordsFile, "words-file", "", "Sample the words from this word list file")
	f.IntVar(&flags.Sample, "sample", flags.Sample, "Number of words sampled from --words-file (1 to 50)")
	f.StringVar(&flags.StoryPrompt, "story-prompt", "", "Extra instruction for the story style")
	f.StringVar(&flags.ImagePrompt, "image-prompt", "", "Extra instruction for the image style")
	f.IntVar(&flags.MaxLength, "max-length", flags.MaxLength, "Maximum story length in characters (50 to 500)")
	f.StringVar(&flags.TargetLanguage, "target-language", flags.TargetLanguage, "Language the sentences are translated to")
	f.StringVarP(&flags.OutputDir, "output", "o", defaultStateDir("runs"), "Directory the run directories are created in")
	f.StringVar(&flags.CacheDir, "cache-dir", defaultStateDir("cache"), "Cache directory for generated images and audio (empty disables)")
	f.StringVar(&flags.HistoryDB, "history-db", defaultStateDir("history.db"), "SQLite run history database")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	f.StringVar(&flags.TextProvider, "text-provider", flags.TextProvider, "Story and translation provider: openai or gemini")
	f.StringVar(&flags.TextFallback, "text-fallback", "", "Provider to fall back to when the text provider fails")
	f.StringVar(&flags.ImageProvider, "image-provider", flags.ImageProvider, "Image provider: openai or gemini")
	f.StringVar(&flags.VisionProvider, "vision-provider", flags.VisionProvider, "Image verification provider: openai or gemini")

	f.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Base URL of an OpenAI-compatible API")
	f.StringVar(&flags.OpenAIChatModel, "openai-chat-model", flags.OpenAIChatModel, "OpenAI model for story and translation")
	f.StringVar(&flags.OpenAIImageModel, "openai-image-model", flags.OpenAIImageModel, "OpenAI image model: dall-e-2, dall-e-3 or gpt-image-1")
	f.StringVar(&flags.OpenAIImageSize, "openai-image-size", flags.OpenAIImageSize, "Image size: 256x256, 512x512, 1024x1024 (dall-e-3: also 1024x1792, 1792x1024)")
	f.StringVar(&flags.OpenAIImageQuality, "openai-image-quality", flags.OpenAIImageQuality, "Image quality: standard or hd (dall-e-3 only)")
	f.StringVar(&flags.OpenAIImageStyle, "openai-image-style", flags.OpenAIImageStyle, "Image style: natural or vivid (dall-e-3 only)")
	f.StringVar(&flags.OpenAIVisionModel, "openai-vision-model", flags.OpenAIVisionModel, "OpenAI model used to describe images")
	f.StringVar(&flags.OpenAITTSModel, "openai-tts-model", flags.OpenAITTSModel, "OpenAI TTS model for --anki-audio")
	f.StringVar(&flags.OpenAIVoice, "openai-voice", "", "OpenAI voice for --anki-audio (default: alloy)")

	f.StringVar(&flags.GeminiTextModel, "gemini-text-model", flags.GeminiTextModel, "Gemini model for story and translation")
	f.StringVar(&flags.GeminiImageModel, "gemini-image-model", flags.GeminiImageModel, "Gemini image model")
	f.StringVar(&flags.GeminiVisionModel, "gemini-vision-model", flags.GeminiVisionModel, "Gemini model used to describe images")

	f.IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Parallel provider calls per stage")
	f.DurationVar(&flags.Interval, "interval", flags.Interval, "Minimum delay between provider calls")
	f.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout of a single provider call")
	f.IntVar(&flags.Retries, "retries", flags.Retries, "Story attempts per word chunk")
	f.BoolVar(&flags.MatchKeywords, "match-keywords", false, "Verify images against the vocabulary words only instead of every sentence token")

	f.BoolVar(&flags.GenerateAnki, "anki", false, "Generate Anki import file (APKG format by default, use --anki-csv for CSV)")
	f.BoolVar(&flags.AnkiCSV, "anki-csv", false, "Generate CSV instead of APKG when using --anki")
	f.BoolVar(&flags.AnkiAudio, "anki-audio", false, "Narrate every sentence with OpenAI TTS for the Anki deck")
	f.StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name for APKG export")
	f.BoolVar(&flags.Archive, "archive", false, "Move all existing runs into the archive directory")
	f.BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")
	f.IntVar(&flags.History, "history", 0, "Show the last N runs")

	bindFlagsToViper(f)
}

func defaultStateDir(name string) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "wordtale", name)
}

// viperKeys maps flag names to configuration keys
var viperKeys = map[string]string{
	"words-file":           "story.words_file",
	"sample":               "story.sample",
	"story-prompt":         "story.prompt",
	"image-prompt":         "image.prompt",
	"max-length":           "story.max_length",
	"target-language":      "translation.language",
	"output":               "output.directory",
	"cache-dir":            "output.cache_dir",
	"history-db":           "output.history_db",
	"text-provider":        "text.provider",
	"text-fallback":        "text.fallback",
	"image-provider":       "image.provider",
	"vision-provider":      "vision.provider",
	"openai-base-url":      "openai.base_url",
	"openai-chat-model":    "text.openai_model",
	"openai-image-model":   "image.openai_model",
	"openai-image-size":    "image.openai_size",
	"openai-image-quality": "image.openai_quality",
	"openai-image-style":   "image.openai_style",
	"openai-vision-model":  "vision.openai_model",
	"openai-tts-model":     "audio.openai_model",
	"openai-voice":         "audio.openai_voice",
	"gemini-text-model":    "text.gemini_model",
	"gemini-image-model":   "image.gemini_model",
	"gemini-vision-model":  "vision.gemini_model",
	"concurrency":          "pipeline.concurrency",
	"interval":             "pipeline.interval",
	"timeout":              "pipeline.timeout",
	"retries":              "pipeline.retries",
	"match-keywords":       "pipeline.match_keywords",
	"deck-name":            "anki.deck_name",
}

func bindFlagsToViper(fs *pflag.FlagSet) {
	for name, key := range viperKeys {
		if flag := fs.Lookup(name); flag != nil {
			viper.BindPFlag(key, flag)
		}
	}
}

// ApplyConfig copies configuration file and environment values into flags
// that were not set on the command line
func ApplyConfig(cmd *cobra.Command) error {
	var errs []error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		key, ok := viperKeys[flag.Name]
		if !ok || flag.Changed || !viper.IsSet(key) {
			return
		}
		if err := flag.Value.Set(viper.GetString(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s: %w", key, err))
		}
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Validate checks the flag value ranges
func (f *Flags) Validate() error {
	if f.Sample < 1 || f.Sample > 50 {
		return fmt.Errorf("--sample must be between 1 and 50, got %d", f.Sample)
	}
	if f.MaxLength < 50 || f.MaxLength > 500 {
		return fmt.Errorf("--max-length must be between 50 and 500, got %d", f.MaxLength)
	}
	if f.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got %d", f.Concurrency)
	}
	if f.Retries < 1 {
		return fmt.Errorf("--retries must be at least 1, got %d", f.Retries)
	}
	for name, provider := range map[string]string{
		"text-provider":   f.TextProvider,
		"image-provider":  f.ImageProvider,
		"vision-provider": f.VisionProvider,
	} {
		if provider != "openai" && provider != "gemini" {
			return fmt.Errorf("--%s must be openai or gemini, got %q", name, provider)
		}
	}
	if f.TextFallback != "" && f.TextFallback != "openai" && f.TextFallback != "gemini" {
		return fmt.Errorf("--text-fallback must be openai or gemini, got %q", f.TextFallback)
	}
	return nil
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wordtale")
	}

	viper.SetEnvPrefix("WORDTALE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("openai.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("gemini.api_key")
}
