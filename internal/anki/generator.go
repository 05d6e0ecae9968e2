// Package anki exports finished story runs as Anki decks, either as a CSV
// file for manual import or as a self-contained .apkg package.
package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/wordtale/internal/story"
)

// Card is one story sentence on a flashcard
type Card struct {
	RunID       string
	Sentence    string   // Plain sentence text
	Translation string   // Translation or empty
	ImageFile   string   // Verified illustration, if any
	AudioFile   string   // Narration, if any
	Words       []string // Vocabulary words used in the sentence
}

// CardsFromResult creates one card per translated sentence. Only images that
// passed verification are attached.
func CardsFromResult(result *story.Result) []Card {
	images := make(map[int]story.Image, len(result.Images))
	for _, img := range result.Images {
		if img.OK() {
			images[img.SentenceIndex] = img
		}
	}

	var cards []Card
	for _, s := range result.Sentences {
		text := strings.TrimSpace(s.Text)
		if text == "" || s.Failure != nil {
			continue
		}

		card := Card{
			RunID:       result.RunID,
			Sentence:    text,
			Translation: s.Translation,
			Words:       story.WordsIn(text, result.Words),
		}
		if img, ok := images[s.Index]; ok {
			card.ImageFile = img.Path
		}
		cards = append(cards, card)
	}
	return cards
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output file path
	IncludeHeaders bool   // Include CSV headers
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		IncludeHeaders: true,
	}
}

// Generator creates Anki-compatible import files
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{options: options}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// AddCards adds several cards to the collection
func (g *Generator) AddCards(cards []Card) {
	g.cards = append(g.cards, cards...)
}

// Cards returns the collected cards
func (g *Generator) Cards() []Card {
	return g.cards
}

// GenerateCSV creates a CSV file for Anki import. Media files are referenced
// by base name and must be copied into Anki's collection.media folder.
func (g *Generator) GenerateCSV() error {
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if g.options.IncludeHeaders {
		if err := writer.Write([]string{"Sentence", "Translation", "Image", "Audio", "Words"}); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, card := range g.cards {
		record := []string{
			story.Highlight(card.Sentence, card.Words),
			card.Translation,
			imageField(mediaName(card.RunID, card.ImageFile)),
			audioField(mediaName(card.RunID, card.AudioFile)),
			strings.Join(card.Words, " "),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// GenerateAPKG creates an .apkg package at the configured output path
func (g *Generator) GenerateAPKG(deckName string) error {
	apkg := NewAPKGGenerator(deckName)
	for _, card := range g.cards {
		apkg.AddCard(card)
	}
	return apkg.GenerateAPKG(g.options.OutputPath)
}

// Stats returns statistics about the card collection
func (g *Generator) Stats() (totalCards, withAudio, withImages int) {
	totalCards = len(g.cards)
	for _, card := range g.cards {
		if card.AudioFile != "" {
			withAudio++
		}
		if card.ImageFile != "" {
			withImages++
		}
	}
	return
}

// mediaName prefixes a media file with its run, since every run numbers
// its images from group_1.png
func mediaName(runID, path string) string {
	if path == "" {
		return ""
	}
	if runID == "" {
		return filepath.Base(path)
	}
	return runID + "_" + filepath.Base(path)
}

func imageField(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s">`, name)
}

func audioField(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", name)
}
