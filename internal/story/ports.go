package story

import "context"

// TextGenerator produces text for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator renders an image for a prompt and stores it at destPath
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, destPath string) error
}

// ImageDescriber describes the content of an image file
type ImageDescriber interface {
	DescribeImage(ctx context.Context, imagePath, prompt string) (string, error)
}

// Translator translates a single sentence into the target language
type Translator interface {
	Translate(ctx context.Context, sentence string) (string, error)
}

// ProgressSink receives fractional completion updates in [0, 1]
type ProgressSink interface {
	Report(fraction float64, label string)
}

// ProgressFunc adapts a plain function to a ProgressSink
type ProgressFunc func(fraction float64, label string)

// Report calls f
func (f ProgressFunc) Report(fraction float64, label string) {
	f(fraction, label)
}

// NopProgress discards all progress updates
var NopProgress ProgressSink = ProgressFunc(func(float64, string) {})
