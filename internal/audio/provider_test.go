package audio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"codeberg.org/snonux/wordtale/internal/testutil"
)

func TestDefaultProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Provider != "openai" {
		t.Errorf("Expected provider 'openai', got '%s'", config.Provider)
	}
	if config.OpenAIModel != "gpt-4o-mini-tts" {
		t.Errorf("Expected OpenAI model 'gpt-4o-mini-tts', got '%s'", config.OpenAIModel)
	}
	if config.OpenAIVoice != "alloy" {
		t.Errorf("Expected OpenAI voice 'alloy', got '%s'", config.OpenAIVoice)
	}
	if config.OpenAISpeed != 1.0 {
		t.Errorf("Expected OpenAI speed 1.0, got %f", config.OpenAISpeed)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{"nil config uses defaults", nil, "OpenAI API key is required"},
		{"openai provider without key", &Config{Provider: "openai"}, "OpenAI API key is required"},
		{"unknown provider", &Config{Provider: "espeak"}, "unknown audio provider: espeak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("NewProvider() error = %v, want %q", err, tt.wantErr)
			}
		})
	}

	p, err := NewProvider(&Config{Provider: "openai", OpenAIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestOpenAIProvider_GenerateAudio(t *testing.T) {
	var calls int32
	var gotInput, gotInstructions string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&calls, 1)

		var req struct {
			Input        string `json:"input"`
			Instructions string `json:"instructions"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotInput = req.Input
		gotInstructions = req.Instructions

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(testutil.MP3Data())
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	config := DefaultProviderConfig()
	config.OpenAIKey = "test-key"
	config.OpenAIBaseURL = server.URL + "/v1"
	config.CacheDir = filepath.Join(tmpDir, "cache")
	config.EnableCache = true

	p, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	first := filepath.Join(tmpDir, "run", "sentence_1.mp3")
	if err := p.GenerateAudio(context.Background(), "  The apple danced  ", first); err != nil {
		t.Fatalf("GenerateAudio() error = %v", err)
	}
	testutil.AssertFileExists(t, first)
	if gotInput != "The apple danced" {
		t.Errorf("Expected trimmed input, got %q", gotInput)
	}
	if gotInstructions == "" {
		t.Error("Expected voice instructions for gpt-4o-mini-tts")
	}

	second := filepath.Join(tmpDir, "run", "sentence_2.mp3")
	if err := p.GenerateAudio(context.Background(), "The apple danced", second); err != nil {
		t.Fatalf("GenerateAudio() error = %v", err)
	}
	testutil.AssertFileExists(t, second)

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected cached second call, got %d API calls", n)
	}
}

func TestOpenAIProvider_EmptyText(t *testing.T) {
	p, err := NewOpenAIProvider(&Config{OpenAIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	err = p.GenerateAudio(context.Background(), "   ", filepath.Join(t.TempDir(), "a.mp3"))
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("Expected empty text error, got %v", err)
	}
}

func TestOpenAIProvider_CacheFilePath(t *testing.T) {
	p := &OpenAIProvider{config: &Config{CacheDir: "cache", OpenAIModel: "tts-1", OpenAIVoice: "alloy", OpenAISpeed: 1}}

	path1 := p.getCacheFilePath("apple")
	if path1 != p.getCacheFilePath("apple") {
		t.Error("Cache paths differ for same input")
	}
	if path1 == p.getCacheFilePath("bridge") {
		t.Error("Cache paths same for different inputs")
	}
	if !strings.HasSuffix(path1, ".mp3") || !strings.HasPrefix(path1, "cache") {
		t.Errorf("Unexpected cache path %s", path1)
	}
}

func TestOpenAIProvider_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	config := DefaultProviderConfig()
	config.OpenAIKey = apiKey
	p, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "apple.mp3")
	if err := p.GenerateAudio(context.Background(), "The apple danced.", out); err != nil {
		t.Fatalf("GenerateAudio() error = %v", err)
	}
	testutil.AssertFileExists(t, out)
}

type stubNarrator struct {
	fail map[string]bool
}

func (s *stubNarrator) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if s.fail[text] {
		return errors.New("voice unavailable")
	}
	return os.WriteFile(outputFile, testutil.MP3Data(), 0644)
}

func (s *stubNarrator) Name() string { return "stub" }

func TestNarrateSentences(t *testing.T) {
	runDir := t.TempDir()
	narrator := &stubNarrator{fail: map[string]bool{"The moon sang.": true}}

	paths, err := NarrateSentences(context.Background(), narrator, runDir, []string{
		"The apple danced.",
		"The moon sang.",
		"The bridge slept.",
	})

	want := []string{NarrationFile(runDir, 1), "", NarrationFile(runDir, 3)}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if err == nil || !strings.Contains(err.Error(), "sentence 2: voice unavailable") {
		t.Errorf("Expected joined error for sentence 2, got %v", err)
	}
	testutil.AssertFileExists(t, filepath.Join(runDir, "sentence_3.mp3"))
	testutil.AssertFileNotExists(t, filepath.Join(runDir, "sentence_2.mp3"))
}

func TestNarrateSentences_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := NarrateSentences(ctx, &stubNarrator{}, t.TempDir(), []string{"a", "b"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if paths[0] != "" || paths[1] != "" {
		t.Errorf("Expected no narrations, got %v", paths)
	}
}
