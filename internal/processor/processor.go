package processor

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordtale/internal"
	"codeberg.org/snonux/wordtale/internal/anki"
	"codeberg.org/snonux/wordtale/internal/archive"
	"codeberg.org/snonux/wordtale/internal/audio"
	"codeberg.org/snonux/wordtale/internal/cli"
	"codeberg.org/snonux/wordtale/internal/gui"
	"codeberg.org/snonux/wordtale/internal/history"
	"codeberg.org/snonux/wordtale/internal/models"
	"codeberg.org/snonux/wordtale/internal/story"
	"codeberg.org/snonux/wordtale/internal/translation"
	"codeberg.org/snonux/wordtale/internal/wordlist"
)

var errNoPipeline = errors.New("no story providers configured")

// Providers are the external services a Processor talks to
type Providers struct {
	Text   story.TextGenerator
	Images story.ImageGenerator
	Vision story.ImageDescriber
	Audio  audio.Provider // Optional, narrates Anki cards
}

// Processor handles the main story processing logic
type Processor struct {
	flags      *cli.Flags
	logger     *zap.Logger
	pipeline   *story.Pipeline
	translator *translation.Translator
	narrator   audio.Provider
	history    *history.Store
	out        io.Writer

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProcessor builds all providers from flags and configuration and
// returns a ready Processor
func NewProcessor(ctx context.Context, flags *cli.Flags, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	providers, err := BuildProviders(ctx, flags, logger)
	if err != nil {
		return nil, err
	}
	return NewProcessorWithProviders(flags, providers, logger)
}

// NewProcessorWithProviders creates a Processor on top of already built
// providers. Without a text provider only the history, archive and model
// listing work. The history database is opened when flags.HistoryDB is set.
func NewProcessorWithProviders(flags *cli.Flags, providers Providers, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Processor{
		flags:    flags,
		logger:   logger,
		narrator: providers.Audio,
		out:      os.Stdout,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	// Archive, model listing and history need no pipeline
	if providers.Text != nil {
		p.translator = translation.NewTranslator(providers.Text, flags.TargetLanguage)
		pipeline, err := story.NewPipeline(story.Ports{
			Text:       providers.Text,
			Translator: p.translator,
			Images:     providers.Images,
			Vision:     providers.Vision,
		}, flags.PipelineOptions(), logger)
		if err != nil {
			return nil, err
		}
		p.pipeline = pipeline
	}

	if flags.HistoryDB != "" {
		store, err := history.Open(flags.HistoryDB)
		if err != nil {
			// History is a convenience; runs work without it
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			p.history = store
		}
	}

	return p, nil
}

// SetOutput redirects console output
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// Close releases the history database
func (p *Processor) Close() error {
	if p.history == nil {
		return nil
	}
	return p.history.Close()
}

// Run processes one request, stores story.html and translations.txt in the
// run directory and records the run in the history
func (p *Processor) Run(ctx context.Context, req story.Request) (*story.Result, error) {
	if p.pipeline == nil {
		return nil, errNoPipeline
	}
	if req.RunID == "" {
		req.RunID = internal.NewRunID()
	}

	result, err := p.pipeline.Process(ctx, req)
	if err != nil {
		if failure, ok := story.AsFailure(err); !ok || failure.Kind != story.KindInput {
			p.record(ctx, history.EntryFromFailure(req.RunID, wordlist.Tokenize(req.Words), err))
		}
		return nil, err
	}

	if err := p.saveRun(result); err != nil {
		return result, err
	}
	p.record(ctx, history.EntryFromResult(result))
	return result, nil
}

func (p *Processor) record(ctx context.Context, e history.Entry) {
	if p.history == nil {
		return
	}
	// Recorded even when the run itself was cancelled
	if err := p.history.Record(context.WithoutCancel(ctx), e); err != nil {
		p.logger.Warn("failed to record run", zap.String("run", e.RunID), zap.Error(err))
	}
}

func (p *Processor) saveRun(result *story.Result) error {
	if err := os.MkdirAll(result.RunDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(result.RunDir, "story.html"), []byte(StoryPage(result)), 0644); err != nil {
		return fmt.Errorf("failed to save story: %w", err)
	}
	if err := translation.SaveTranslations(result.RunDir, result.Sentences); err != nil {
		return err
	}
	return nil
}

// StoryPage renders a standalone HTML page with the annotated story and the
// image gallery
func StoryPage(result *story.Result) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>")
	sb.WriteString(html.EscapeString(strings.Join(result.Words, ", ")))
	sb.WriteString("</title></head>\n<body>\n<div class=\"story\">\n")
	sb.WriteString(result.HTML)
	sb.WriteString("\n</div>\n<div class=\"gallery\">\n")
	for _, img := range result.Images {
		if img.OK() {
			fmt.Fprintf(&sb, "<figure><img src=\"%s\"><figcaption>%s</figcaption></figure>\n",
				html.EscapeString(filepath.Base(img.Path)), html.EscapeString(img.Sentence))
		} else {
			fmt.Fprintf(&sb, "<figure><figcaption>%s</figcaption></figure>\n", html.EscapeString(img.Caption()))
		}
	}
	sb.WriteString("</div>\n</body>\n</html>\n")
	return sb.String()
}

// SampleFromFile loads a word list and returns n random words joined by spaces
func (p *Processor) SampleFromFile(path string, n int) (string, error) {
	words, err := wordlist.LoadWordList(path)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	sample, err := wordlist.SampleWords(words, n, p.rng)
	p.mu.Unlock()
	if err != nil {
		return "", err
	}
	return strings.Join(sample, " "), nil
}

// ProcessWords is the CLI path: it runs the pipeline for args and the
// optional word file and prints the outcome
func (p *Processor) ProcessWords(ctx context.Context, args []string) error {
	words := strings.Join(args, " ")
	if p.flags.WordsFile != "" {
		sampled, err := p.SampleFromFile(p.flags.WordsFile, p.flags.Sample)
		if err != nil {
			return err
		}
		words = strings.TrimSpace(words + " " + sampled)
	}

	fmt.Fprintf(p.out, "Words: %s\n", words)
	result, err := p.Run(ctx, story.Request{
		Words:          words,
		StoryDirective: p.flags.StoryPrompt,
		ImageDirective: p.flags.ImagePrompt,
		MaxLength:      p.flags.MaxLength,
		Progress:       newConsoleProgress(p.out),
	})
	if err != nil {
		return err
	}

	p.printResult(result)

	if p.flags.GenerateAnki {
		path, err := p.GenerateAnkiFile(ctx, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "Anki deck written to %s\n", path)
	}
	return nil
}

func (p *Processor) printResult(result *story.Result) {
	fmt.Fprintf(p.out, "\nStory (%s):\n", result.RunID)
	for _, s := range result.Sentences {
		fmt.Fprintf(p.out, "  %s\n    %s\n", s.Text, s.Translation)
	}

	fmt.Fprintln(p.out, "\nImages:")
	for _, img := range result.Images {
		fmt.Fprintf(p.out, "  [%d] %s\n", img.SentenceIndex+1, img.Caption())
	}
	fmt.Fprintf(p.out, "\nSaved to %s\n", result.RunDir)
}

// GenerateAnkiFile exports the sentences of result as an Anki deck in the
// run directory and returns its path
func (p *Processor) GenerateAnkiFile(ctx context.Context, result *story.Result) (string, error) {
	cards := anki.CardsFromResult(result)
	if len(cards) == 0 {
		return "", errors.New("no translated sentences to export")
	}

	if p.narrator != nil {
		sentences := make([]string, len(cards))
		for i, card := range cards {
			sentences[i] = card.Sentence
		}
		paths, err := audio.NarrateSentences(ctx, p.narrator, result.RunDir, sentences)
		if err != nil {
			p.logger.Warn("narration incomplete", zap.Error(err))
		}
		for i, path := range paths {
			cards[i].AudioFile = path
		}
	}

	var outputPath string
	if p.flags.AnkiCSV {
		outputPath = filepath.Join(result.RunDir, "anki_import.csv")
	} else {
		outputPath = filepath.Join(result.RunDir, internal.SanitizeFilename(p.flags.DeckName)+".apkg")
	}

	gen := anki.NewGenerator(&anki.GeneratorOptions{OutputPath: outputPath, IncludeHeaders: true})
	gen.AddCards(cards)

	if p.flags.AnkiCSV {
		if err := gen.GenerateCSV(); err != nil {
			return "", fmt.Errorf("failed to generate CSV: %w", err)
		}
	} else {
		if err := gen.GenerateAPKG(p.flags.DeckName); err != nil {
			return "", fmt.Errorf("failed to generate APKG: %w", err)
		}
	}

	total, withAudio, withImages := gen.Stats()
	fmt.Fprintf(p.out, "  Generated %d cards (%d with audio, %d with images)\n", total, withAudio, withImages)
	return outputPath, nil
}

// PrintHistory prints the last n runs
func (p *Processor) PrintHistory(ctx context.Context, n int) error {
	if p.history == nil {
		return errors.New("run history is not available")
	}

	entries, err := p.history.Recent(ctx, n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No runs recorded yet")
		return nil
	}

	for _, e := range entries {
		status := "ok"
		if e.Failure != "" {
			status = e.Failure
		}
		fmt.Fprintf(p.out, "%s  %s  %s\n  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.RunID, strings.Join(e.Words, " "), status)
		for _, caption := range e.Images {
			fmt.Fprintf(p.out, "    %s\n", caption)
		}
	}
	return nil
}

// ArchiveRuns moves all runs into the archive directory
func (p *Processor) ArchiveRuns() error {
	path, err := archive.ArchiveRuns(p.flags.OutputDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Runs directory archived to: %s\n", path)
	return nil
}

// ListModels prints the models available to the configured OpenAI key
func (p *Processor) ListModels(ctx context.Context) error {
	return models.NewLister(cli.GetOpenAIKey(), p.flags.OpenAIBaseURL).ListAvailableModels(ctx, p.out)
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	app := gui.New(&gui.Config{
		Runner:      p,
		Sample:      p.flags.Sample,
		MaxLength:   p.flags.MaxLength,
		StoryPrompt: p.flags.StoryPrompt,
		ImagePrompt: p.flags.ImagePrompt,
		WordsFile:   p.flags.WordsFile,
		Logger:      p.logger,
	})
	app.Run()
	return nil
}

// ExportAnki is GenerateAnkiFile for the GUI
func (p *Processor) ExportAnki(ctx context.Context, result *story.Result) (string, error) {
	return p.GenerateAnkiFile(ctx, result)
}
