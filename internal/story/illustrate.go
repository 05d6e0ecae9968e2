package story

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ImagePrompt builds the text-to-image prompt for the words of one sentence
func ImagePrompt(directive string, words []string) string {
	prompt := fmt.Sprintf("%s Include elements such as: %s, with a whimsical and surreal touch.",
		directive, strings.Join(words, ", "))
	return strings.TrimSpace(prompt)
}

// ImageFileName is the file an image for the sentence at index is stored in
func ImageFileName(index int) string {
	return fmt.Sprintf("group_%d.png", index+1)
}

// WordsIn returns the words that occur in sentence, in the order of words
func WordsIn(sentence string, words []string) []string {
	var present []string
	for _, w := range words {
		if strings.Contains(sentence, w) {
			present = append(present, w)
		}
	}
	return present
}

// IllustrateStory generates one image for every sentence that uses at least
// one of words. Images are stored in runDir. The returned images keep a
// reference to their sentence; sentences without words get no image.
func (p *Pipeline) IllustrateStory(ctx context.Context, sentences []AnnotatedSentence, words []string, directive, runDir string, progress ProgressSink) ([]Image, error) {
	if progress == nil {
		progress = NopProgress
	}

	var images []Image
	for _, s := range sentences {
		present := WordsIn(s.Text, words)
		if len(present) == 0 {
			continue
		}
		images = append(images, Image{
			SentenceIndex: s.Index,
			Sentence:      s.Text,
			Words:         present,
			Prompt:        ImagePrompt(directive, present),
		})
	}

	tracker := newStageProgress(progress, 0.75, 0.25, len(images), "Generating images")
	if len(images) == 0 {
		return images, nil
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		failure := &Failure{Kind: KindImage, Detail: err.Error(), Err: err}
		for i := range images {
			images[i].Failure = failure
		}
		tracker.add(len(images))
		return images, nil
	}

	err := p.fanOut(ctx, len(images), func(ctx context.Context, i int) error {
		p.illustrate(ctx, &images[i], runDir)
		tracker.add(1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (p *Pipeline) illustrate(ctx context.Context, img *Image, runDir string) {
	dest := filepath.Join(runDir, ImageFileName(img.SentenceIndex))

	callCtx, cancel := p.withCallTimeout(ctx)
	err := p.ports.Images.GenerateImage(callCtx, img.Prompt, dest)
	cancel()

	if err != nil {
		p.logger.Debug("image generation failed", zap.Int("sentence", img.SentenceIndex), zap.Error(err))
		img.Failure = &Failure{Kind: KindImage, Detail: err.Error(), Err: err}
		return
	}
	if _, err := os.Stat(dest); err != nil {
		img.Failure = &Failure{Kind: KindImageMissing, Err: err}
		return
	}
	img.Path = dest
}
