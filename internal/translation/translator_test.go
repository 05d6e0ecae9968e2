package translation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/wordtale/internal/story"
	"codeberg.org/snonux/wordtale/internal/testutil"
	"codeberg.org/snonux/wordtale/internal/text"
)

func TestNewTranslator(t *testing.T) {
	translator := NewTranslator(&testutil.MockTextGenerator{}, "")

	if translator.Language() != "Chinese" {
		t.Errorf("Expected default language Chinese, got %q", translator.Language())
	}
	if NewTranslator(&testutil.MockTextGenerator{}, "Bulgarian").Language() != "Bulgarian" {
		t.Error("Expected explicit language to be kept")
	}
}

func TestPrompt(t *testing.T) {
	translator := NewTranslator(&testutil.MockTextGenerator{}, "German")
	prompt := translator.Prompt("The apple danced")

	if !strings.HasPrefix(prompt, "Translate the following sentence to German: The apple danced") {
		t.Errorf("Unexpected prompt %q", prompt)
	}
}

func TestTranslate(t *testing.T) {
	gen := &testutil.MockTextGenerator{Responses: []string{"  苹果跳舞了  "}}
	translator := NewTranslator(gen, "")

	got, err := translator.Translate(context.Background(), "The apple danced")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "苹果跳舞了" {
		t.Errorf("Translate() = %q", got)
	}

	// Second call is served from the cache
	again, err := translator.Translate(context.Background(), "The apple danced")
	if err != nil || again != got {
		t.Errorf("Expected cached translation, got %q, %v", again, err)
	}
	if calls := len(gen.Calls()); calls != 1 {
		t.Errorf("Expected 1 model call, got %d", calls)
	}
	if translator.CachedCount() != 1 {
		t.Errorf("Expected 1 cached item, got %d", translator.CachedCount())
	}
}

func TestTranslate_Errors(t *testing.T) {
	gen := &testutil.MockTextGenerator{Errors: map[int]error{1: context.DeadlineExceeded}}
	translator := NewTranslator(gen, "")

	_, err := translator.Translate(context.Background(), "The apple danced")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error to stay detectable, got %v", err)
	}

	// Failures are not cached; an empty answer is an error
	_, err = translator.Translate(context.Background(), "The apple danced")
	if err == nil || err.Error() != "no translation returned" {
		t.Errorf("Expected empty translation error, got %v", err)
	}
	if translator.CachedCount() != 0 {
		t.Error("Expected nothing cached")
	}
}

func TestSaveTranslations(t *testing.T) {
	runDir := filepath.Join(t.TempDir(), "run")
	sentences := []story.AnnotatedSentence{
		{Text: "The apple danced", Translation: "苹果跳舞了"},
		{Text: "The bridge sang.", Translation: "Error translating sentence: quota"},
	}

	if err := SaveTranslations(runDir, sentences); err != nil {
		t.Fatalf("SaveTranslations() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(runDir, "translations.txt"))
	if err != nil {
		t.Fatalf("Failed to read translations: %v", err)
	}
	want := "The apple danced = 苹果跳舞了\nThe bridge sang. = Error translating sentence: quota\n"
	if string(content) != want {
		t.Errorf("translations.txt = %q, want %q", content, want)
	}
}

func TestTranslate_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	translator := NewTranslator(text.NewOpenAIProvider(&text.Config{OpenAIKey: apiKey}), "German")
	translation, err := translator.Translate(context.Background(), "The apple is red.")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if translation == "" {
		t.Error("Got empty translation")
	}
	t.Logf("Translation: %s", translation)
}
