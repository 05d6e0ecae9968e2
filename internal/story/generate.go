package story

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// StoryPrompt builds the language model prompt for one chunk of words
func StoryPrompt(words []string, directive string) string {
	prompt := fmt.Sprintf("Write a bizarre, counterintuitive, and logically coherent story to help me remember these words. Include the following words: %s. %s",
		strings.Join(words, ", "), directive)
	return strings.TrimSpace(prompt)
}

// GenerateStory asks the text model for one segment per word chunk and joins
// them. Every word appears in the returned story. maxLength is the story
// budget; a segment is cut after maxLength/3 characters unless that would
// drop one of its words.
func (p *Pipeline) GenerateStory(ctx context.Context, words []string, directive string, maxLength int, progress ProgressSink) (string, error) {
	if len(words) == 0 {
		return "", &Failure{Kind: KindInput}
	}
	if progress == nil {
		progress = NopProgress
	}

	chunks := ChunkWords(words)
	segments := make([]string, len(chunks))
	tracker := newStageProgress(progress, 0.3, 0.2, len(words), "Generating story")

	err := p.fanOut(ctx, len(chunks), func(ctx context.Context, i int) error {
		segment, err := p.generateSegment(ctx, chunks[i], directive, maxLength/3)
		if err != nil {
			return err
		}
		segments[i] = segment
		tracker.add(len(chunks[i]))
		return nil
	})
	if err != nil {
		if f, ok := AsFailure(err); ok {
			return "", f
		}
		return "", &Failure{Kind: KindStory, Detail: err.Error(), Err: err}
	}

	return strings.TrimSpace(strings.Join(segments, " ")), nil
}

func (p *Pipeline) generateSegment(ctx context.Context, chunk []string, directive string, limit int) (string, error) {
	prompt := StoryPrompt(chunk, directive)

	for attempt := 1; attempt <= p.opts.Retries; attempt++ {
		callCtx, cancel := p.withCallTimeout(ctx)
		text, err := p.ports.Text.Generate(callCtx, prompt)
		cancel()
		if err != nil {
			return "", callFailure(err, KindStoryTimeout, KindStory)
		}

		missing := missingWords(text, chunk)
		if len(missing) == 0 {
			return truncateSegment(text, chunk, limit), nil
		}
		p.logger.Debug("story segment is missing words",
			zap.Int("attempt", attempt),
			zap.Strings("missing", missing))
	}

	return "", &Failure{Kind: KindStoryWords, Words: chunk, Attempts: p.opts.Retries}
}

func missingWords(text string, words []string) []string {
	var missing []string
	for _, w := range words {
		if !strings.Contains(text, w) {
			missing = append(missing, w)
		}
	}
	return missing
}

// truncateSegment keeps the first limit runes of text, extended to the end
// of the first occurrence of every word
func truncateSegment(text string, words []string, limit int) string {
	cut := len(text)
	runes := 0
	for i := range text {
		if runes == limit {
			cut = i
			break
		}
		runes++
	}

	for _, w := range words {
		if idx := strings.Index(text, w); idx >= 0 && idx+len(w) > cut {
			cut = idx + len(w)
		}
	}
	return text[:cut]
}
