package translation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"codeberg.org/snonux/wordtale/internal/story"
)

// DefaultLanguage is the translation target when none is configured
const DefaultLanguage = "Chinese"

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Translator translates sentences into a target language
type Translator struct {
	generator Generator
	language  string
	cache     *cache.Cache
}

// NewTranslator creates a new translator instance
func NewTranslator(generator Generator, language string) *Translator {
	if language == "" {
		language = DefaultLanguage
	}
	return &Translator{
		generator: generator,
		language:  language,
		cache:     cache.New(30*time.Minute, time.Hour),
	}
}

// Language returns the target language
func (t *Translator) Language() string {
	return t.language
}

// Prompt builds the translation request for sentence
func (t *Translator) Prompt(sentence string) string {
	return fmt.Sprintf("Translate the following sentence to %s: %s\nRespond with only the translation, nothing else.",
		t.language, sentence)
}

// Translate translates one sentence
func (t *Translator) Translate(ctx context.Context, sentence string) (string, error) {
	key := t.language + "\x00" + sentence
	if cached, ok := t.cache.Get(key); ok {
		return cached.(string), nil
	}

	translation, err := t.generator.Generate(ctx, t.Prompt(sentence))
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	translation = strings.TrimSpace(translation)
	if translation == "" {
		return "", fmt.Errorf("no translation returned")
	}

	t.cache.Set(key, translation, cache.DefaultExpiration)
	return translation, nil
}

// CachedCount returns the number of cached translations
func (t *Translator) CachedCount() int {
	return t.cache.ItemCount()
}

// SaveTranslations writes "sentence = translation" lines to translations.txt in runDir
func SaveTranslations(runDir string, sentences []story.AnnotatedSentence) error {
	var sb strings.Builder
	for _, s := range sentences {
		fmt.Fprintf(&sb, "%s = %s\n", strings.TrimSpace(s.Text), s.Translation)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	outputFile := filepath.Join(runDir, "translations.txt")
	if err := os.WriteFile(outputFile, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write translation file: %w", err)
	}

	return nil
}
