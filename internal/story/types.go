package story

import (
	"time"
)

// Default pipeline settings
const (
	DefaultRetries     = 5
	DefaultMaxLength   = 200
	DefaultConcurrency = 1
	DefaultInterval    = 100 * time.Millisecond
	DefaultCallTimeout = 60 * time.Second

	// Prompt sent with every image to the vision model
	DescribePrompt = "Describe the image content"
)

// Options tunes a Pipeline
type Options struct {
	// Attempts per word chunk before the story stage gives up
	Retries int
	// Items processed at the same time within one stage; 1 keeps the
	// original sentence order for every external call
	Concurrency int
	// Minimum pause between two dispatched items; zero disables pacing
	Interval time.Duration
	// Deadline of a single external call
	CallTimeout time.Duration
	// Directory below which every run gets its own subdirectory
	OutputDir string
	// Verify images against the vocabulary words of their sentence
	// instead of every token of the sentence
	MatchKeywords bool
}

// DefaultOptions returns the settings used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Retries:     DefaultRetries,
		Concurrency: DefaultConcurrency,
		Interval:    DefaultInterval,
		CallTimeout: DefaultCallTimeout,
		OutputDir:   ".",
	}
}

func (o Options) withDefaults() Options {
	if o.Retries < 1 {
		o.Retries = DefaultRetries
	}
	if o.Concurrency < 1 {
		o.Concurrency = DefaultConcurrency
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	return o
}

// Request is one invocation of the pipeline
type Request struct {
	// Whitespace separated vocabulary words
	Words          string
	StoryDirective string
	ImageDirective string
	// Story length budget; each chunk segment gets a third of it
	MaxLength int
	// Optional; generated when empty
	RunID    string
	Progress ProgressSink
}

// AnnotatedSentence is a story sentence with its translation
type AnnotatedSentence struct {
	Index int
	Text  string
	// Translation holds the failure message when Failure is set
	Translation string
	Failure     *Failure
	// HTML fragment: bold sentence, translation, line breaks
	HTML string
}

// Image is the outcome of illustrating one sentence
type Image struct {
	SentenceIndex int
	Sentence      string
	// Vocabulary words that occur in the sentence
	Words  []string
	Prompt string
	// Set only while Failure is nil
	Path        string
	Description string
	Failure     *Failure
}

// OK reports whether the image was generated and, after verification, matched
func (img Image) OK() bool {
	return img.Failure == nil && img.Path != ""
}

// Caption returns the image path or the failure message
func (img Image) Caption() string {
	if img.Failure != nil {
		return img.Failure.Error()
	}
	return img.Path
}

// Result is a finished run
type Result struct {
	RunID     string
	RunDir    string
	Words     []string
	Story     string
	HTML      string
	Sentences []AnnotatedSentence
	Images    []Image
}

// Captions returns one gallery caption per image, in order
func (r *Result) Captions() []string {
	captions := make([]string, len(r.Images))
	for i, img := range r.Images {
		captions[i] = img.Caption()
	}
	return captions
}
