package audio

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider narrates sentences with the OpenAI speech API
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	cfg := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(config.OpenAIBaseURL, "/")
	}

	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		config: config,
	}
	if p.cacheEnabled() {
		if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	return p, nil
}

// GenerateAudio narrates text into an mp3 file
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	var cacheFile string
	if p.cacheEnabled() {
		cacheFile = p.getCacheFilePath(text)
		if _, err := os.Stat(cacheFile); err == nil {
			return copyFile(cacheFile, outputFile)
		}
	}

	speech, err := p.client.CreateSpeech(ctx, p.request(text))
	if err != nil {
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer speech.Close()

	if err := writeSpeech(outputFile, speech); err != nil {
		return err
	}

	if cacheFile != "" {
		_ = copyFile(outputFile, cacheFile)
	}
	return nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) request(text string) openai.CreateSpeechRequest {
	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          text,
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}
	if p.supportsInstructions() {
		req.Instructions = p.config.OpenAIInstruction
	}
	return req
}

func (p *OpenAIProvider) cacheEnabled() bool {
	return p.config.EnableCache && p.config.CacheDir != ""
}

// Only the gpt-4o-mini-tts family accepts voice instructions
func (p *OpenAIProvider) supportsInstructions() bool {
	return p.config.OpenAIInstruction != "" && strings.HasPrefix(p.config.OpenAIModel, "gpt-4o-mini")
}

// getCacheFilePath hashes everything that changes the narration
func (p *OpenAIProvider) getCacheFilePath(text string) string {
	h := md5.New()
	for _, part := range []string{text, p.config.OpenAIModel, p.config.OpenAIVoice, fmt.Sprintf("%.2f", p.config.OpenAISpeed)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if p.supportsInstructions() {
		h.Write([]byte(p.config.OpenAIInstruction))
	}

	hash := hex.EncodeToString(h.Sum(nil))
	return filepath.Join(p.config.CacheDir, hash[:2], hash[2:]+".mp3")
}

// writeSpeech stores the streamed mp3, refusing an empty body
func writeSpeech(outputFile string, speech io.Reader) error {
	if dir := filepath.Dir(outputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, speech)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(outputFile)
		return fmt.Errorf("no audio data received from OpenAI")
	}
	return nil
}

// copyFile writes src to dst through a renamed temporary file, so a
// concurrent reader of the cache never sees a partial mp3
func copyFile(src, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
