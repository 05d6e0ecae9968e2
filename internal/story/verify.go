package story

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// VerifyImages asks the vision model to describe every generated image and
// replaces images that do not match their sentence by a failure. Images
// that already failed pass through unchanged. The result has the same
// length and order as images.
func (p *Pipeline) VerifyImages(ctx context.Context, images []Image, progress ProgressSink) ([]Image, error) {
	if progress == nil {
		progress = NopProgress
	}

	verified := make([]Image, len(images))
	copy(verified, images)

	var pending []int
	for i, img := range verified {
		if img.Failure == nil {
			pending = append(pending, i)
		}
	}

	tracker := newStageProgress(progress, 1, 0, len(pending), "Verifying images")

	err := p.fanOut(ctx, len(pending), func(ctx context.Context, i int) error {
		p.verify(ctx, &verified[pending[i]])
		tracker.add(1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return verified, nil
}

func (p *Pipeline) verify(ctx context.Context, img *Image) {
	callCtx, cancel := p.withCallTimeout(ctx)
	description, err := p.ports.Vision.DescribeImage(callCtx, img.Path, DescribePrompt)
	cancel()

	if err != nil {
		img.Failure = callFailure(err, KindVisionTimeout, KindVision)
		img.Path = ""
		return
	}

	img.Description = description
	if missing := p.unmatched(description, img); len(missing) > 0 {
		p.logger.Debug("image does not match its sentence",
			zap.String("image", img.Path),
			zap.Strings("missing", missing))
		img.Failure = &Failure{Kind: KindMismatch, Detail: fmt.Sprintf("missing %s", strings.Join(missing, ", "))}
		img.Path = ""
	}
}

// unmatched returns the expected tokens that are absent from description
func (p *Pipeline) unmatched(description string, img *Image) []string {
	expected := strings.Fields(img.Sentence)
	if p.opts.MatchKeywords {
		expected = img.Words
	}
	return missingWords(description, expected)
}
