// Package gui provides the fyne desktop interface: a form for the words and
// prompts, a progress bar, the annotated story and a gallery of the verified
// illustrations.
package gui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"go.uber.org/zap"

	"codeberg.org/snonux/wordtale/internal"
	"codeberg.org/snonux/wordtale/internal/story"
)

// Runner is what the GUI needs from the application
type Runner interface {
	Run(ctx context.Context, req story.Request) (*story.Result, error)
	SampleFromFile(path string, n int) (string, error)
	ExportAnki(ctx context.Context, result *story.Result) (string, error)
}

// Config holds GUI application configuration
type Config struct {
	Runner      Runner
	Sample      int
	MaxLength   int
	StoryPrompt string
	ImagePrompt string
	WordsFile   string
	Logger      *zap.Logger
}

// Application represents the main GUI application
type Application struct {
	app    fyne.App
	window fyne.Window
	config *Config
	logger *zap.Logger

	wordsFileLabel *widget.Label
	sampleSlider   *widget.Slider
	sampleLabel    *widget.Label
	randomButton   *ttwidget.Button
	wordsEntry     *widget.Entry
	storyPrompt    *PromptEntry
	imagePrompt    *PromptEntry
	lengthSlider   *widget.Slider
	lengthLabel    *widget.Label
	generateButton *ttwidget.Button
	cancelButton   *ttwidget.Button
	exportButton   *ttwidget.Button
	progressBar    *widget.ProgressBar
	statusLabel    *widget.Label
	storyText      *widget.RichText
	gallery        *Gallery

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	wordsFile string
	runCancel context.CancelFunc
	result    *story.Result
}

// New creates a new GUI application
func New(config *Config) *Application {
	if config.Sample < 1 || config.Sample > 50 {
		config.Sample = 30
	}
	if config.MaxLength < 50 || config.MaxLength > 500 {
		config.MaxLength = story.DefaultMaxLength
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Application{
		app:       app.NewWithID("org.codeberg.snonux.wordtale"),
		config:    config,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		wordsFile: config.WordsFile,
	}
	a.setupUI()
	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("wordtale v%s - Vocabulary Stories", internal.Version))
	a.window.Resize(fyne.NewSize(1100, 800))

	a.wordsFileLabel = widget.NewLabel(fileLabel(a.wordsFile))
	fileButton := ttwidget.NewButtonWithIcon("", theme.FolderOpenIcon(), a.onChooseFile)

	a.sampleSlider = widget.NewSlider(1, 50)
	a.sampleSlider.Step = 1
	a.sampleSlider.SetValue(float64(a.config.Sample))
	a.sampleLabel = widget.NewLabel("")
	a.sampleSlider.OnChanged = func(v float64) {
		a.sampleLabel.SetText(fmt.Sprintf("%d words", int(v)))
	}
	a.sampleSlider.OnChanged(a.sampleSlider.Value)
	a.randomButton = ttwidget.NewButtonWithIcon("Random words", theme.ViewRefreshIcon(), a.onRandomWords)

	a.wordsEntry = widget.NewEntry()
	a.wordsEntry.SetPlaceHolder("Words separated by spaces...")
	a.wordsEntry.OnSubmitted = func(string) { a.onGenerate() }

	a.storyPrompt = NewPromptEntry(a.window)
	a.storyPrompt.SetPlaceHolder("Story style (optional)...")
	a.storyPrompt.SetText(a.config.StoryPrompt)

	a.imagePrompt = NewPromptEntry(a.window)
	a.imagePrompt.SetPlaceHolder("Image style (optional)...")
	a.imagePrompt.SetText(a.config.ImagePrompt)

	a.lengthSlider = widget.NewSlider(50, 500)
	a.lengthSlider.Step = 10
	a.lengthSlider.SetValue(float64(a.config.MaxLength))
	a.lengthLabel = widget.NewLabel("")
	a.lengthSlider.OnChanged = func(v float64) {
		a.lengthLabel.SetText(fmt.Sprintf("%d characters", int(v)))
	}
	a.lengthSlider.OnChanged(a.lengthSlider.Value)

	a.generateButton = ttwidget.NewButtonWithIcon("Generate", theme.MediaPlayIcon(), a.onGenerate)
	a.generateButton.Importance = widget.HighImportance
	a.cancelButton = ttwidget.NewButtonWithIcon("", theme.CancelIcon(), a.onCancel)
	a.cancelButton.Disable()
	a.exportButton = ttwidget.NewButtonWithIcon("Export to Anki", theme.UploadIcon(), a.onExport)
	a.exportButton.Disable()

	form := widget.NewForm(
		widget.NewFormItem("Word list", container.NewBorder(nil, nil, nil, fileButton, a.wordsFileLabel)),
		widget.NewFormItem("Sample", container.NewBorder(nil, nil, nil,
			container.NewHBox(a.sampleLabel, a.randomButton), a.sampleSlider)),
		widget.NewFormItem("Words", a.wordsEntry),
		widget.NewFormItem("Story prompt", a.storyPrompt),
		widget.NewFormItem("Image prompt", a.imagePrompt),
		widget.NewFormItem("Max length", container.NewBorder(nil, nil, nil, a.lengthLabel, a.lengthSlider)),
	)

	a.progressBar = widget.NewProgressBar()
	a.statusLabel = widget.NewLabel("Ready")

	a.storyText = widget.NewRichTextFromMarkdown("")
	a.storyText.Wrapping = fyne.TextWrapWord
	a.gallery = NewGallery()

	toolbar := container.NewHBox(a.generateButton, a.cancelButton, widget.NewSeparator(), a.exportButton)
	top := container.NewVBox(form, toolbar, a.progressBar, a.statusLabel, widget.NewSeparator())

	output := container.NewHSplit(
		container.NewVScroll(a.storyText),
		container.NewVScroll(a.gallery),
	)
	output.SetOffset(0.45)

	content := container.NewBorder(top, nil, nil, nil, output)
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	fileButton.SetToolTip("Choose a word list file")
	a.randomButton.SetToolTip("Sample words from the word list")
	a.generateButton.SetToolTip("Write and illustrate the story (Enter)")
	a.cancelButton.SetToolTip("Cancel the running story")
	a.exportButton.SetToolTip("Export the sentences as an Anki deck")

	a.window.SetOnClosed(func() {
		a.cancel()
		a.wg.Wait()
	})
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

func (a *Application) onChooseFile() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		a.mu.Lock()
		a.wordsFile = reader.URI().Path()
		a.mu.Unlock()
		a.wordsFileLabel.SetText(fileLabel(reader.URI().Path()))
		a.onRandomWords()
	}, a.window)
	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".txt"}))
	fileDialog.Show()
}

func (a *Application) onRandomWords() {
	a.mu.Lock()
	path := a.wordsFile
	a.mu.Unlock()

	if path == "" {
		dialog.ShowInformation("No word list", "Choose a word list file first.", a.window)
		return
	}

	words, err := a.config.Runner.SampleFromFile(path, int(a.sampleSlider.Value))
	if err != nil {
		a.showError(err)
		return
	}
	a.wordsEntry.SetText(words)
}

func (a *Application) onGenerate() {
	a.mu.Lock()
	if a.runCancel != nil {
		a.mu.Unlock()
		return
	}
	runCtx, runCancel := context.WithCancel(a.ctx)
	a.runCancel = runCancel
	a.result = nil
	a.mu.Unlock()

	req := story.Request{
		Words:          a.wordsEntry.Text,
		StoryDirective: a.storyPrompt.Text,
		ImageDirective: a.imagePrompt.Text,
		MaxLength:      int(a.lengthSlider.Value),
		Progress:       newProgressSink(a.progressBar, a.statusLabel),
	}

	a.setRunning(true)
	a.storyText.ParseMarkdown("")
	a.gallery.Clear()
	a.progressBar.SetValue(0)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer runCancel()

		result, err := a.config.Runner.Run(runCtx, req)
		fyne.Do(func() {
			a.mu.Lock()
			a.runCancel = nil
			a.result = result
			a.mu.Unlock()
			a.setRunning(false)
			a.showResult(result, err)
		})
	}()
}

func (a *Application) showResult(result *story.Result, err error) {
	if err != nil {
		a.logger.Warn("run failed", zap.Error(err))
		// Failures render as the story text, like any other message
		a.storyText.ParseMarkdown(escapeMarkdown(err.Error()))
		if errors.Is(err, context.Canceled) {
			a.statusLabel.SetText("Cancelled")
		} else {
			a.statusLabel.SetText("Failed")
		}
		return
	}

	a.storyText.ParseMarkdown(StoryMarkdown(result.Sentences, result.Words))
	a.gallery.SetImages(result.Images)
	a.exportButton.Enable()
}

func (a *Application) onCancel() {
	a.mu.Lock()
	cancel := a.runCancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
		a.statusLabel.SetText("Cancelling...")
	}
}

func (a *Application) onExport() {
	a.mu.Lock()
	result := a.result
	a.mu.Unlock()
	if result == nil {
		return
	}

	a.exportButton.Disable()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		path, err := a.config.Runner.ExportAnki(a.ctx, result)
		fyne.Do(func() {
			a.exportButton.Enable()
			if err != nil {
				a.showError(err)
				return
			}
			dialog.ShowInformation("Anki export", "Deck written to\n"+path, a.window)
		})
	}()
}

func (a *Application) setRunning(running bool) {
	widgets := []fyne.Disableable{a.generateButton, a.randomButton, a.wordsEntry, a.sampleSlider, a.lengthSlider}
	for _, w := range widgets {
		if running {
			w.Disable()
		} else {
			w.Enable()
		}
	}
	if running {
		a.cancelButton.Enable()
		a.exportButton.Disable()
	} else {
		a.cancelButton.Disable()
	}
}

func (a *Application) showError(err error) {
	dialog.ShowError(err, a.window)
	a.statusLabel.SetText("Error: " + err.Error())
}

func fileLabel(path string) string {
	if path == "" {
		return "No file selected"
	}
	return filepath.Base(path)
}
