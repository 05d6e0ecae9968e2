package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/wordtale/internal/text"
)

// ErrNoAPIKey is returned when no OpenAI key is configured
var ErrNoAPIKey = errors.New("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .wordtale.yaml")

// Categories groups model IDs by use. A model may appear in more than one group.
type Categories struct {
	Chat   []string
	Image  []string
	Vision []string
	Speech []string
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. An empty baseURL uses the OpenAI API.
func NewLister(apiKey, baseURL string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: text.NewOpenAIClient(apiKey, baseURL),
	}
}

// Categorize sorts model IDs into groups
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		switch {
		case strings.Contains(id, "tts") || strings.Contains(id, "audio"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(id, "dall-e") || strings.Contains(id, "gpt-image"):
			c.Image = append(c.Image, id)
		case strings.Contains(id, "gpt") || strings.Contains(id, "chat"):
			c.Chat = append(c.Chat, id)
			if isVision(id) {
				c.Vision = append(c.Vision, id)
			}
		}
	}
	for _, group := range [][]string{c.Chat, c.Image, c.Vision, c.Speech} {
		sort.Strings(group)
	}
	return c
}

func isVision(id string) bool {
	for _, marker := range []string{"gpt-4o", "gpt-4.1", "gpt-5", "vision", "gpt-4-turbo"} {
		if strings.Contains(id, marker) {
			return true
		}
	}
	return false
}

// ListAvailableModels writes the categorized model list to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.apiKey == "" {
		return ErrNoAPIKey
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	c := Categorize(ids)

	fmt.Fprintln(w, "Available OpenAI Models:")
	printGroup(w, "Story and translation models", c.Chat)
	printGroup(w, "Image generation models", c.Image)
	printGroup(w, "Vision models (image verification)", c.Vision)
	printGroup(w, "Text-to-speech models", c.Speech)
	return nil
}

func printGroup(w io.Writer, title string, ids []string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  none found")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
