package audio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// NarrationFile returns the mp3 path for the n-th (1-based) sentence of a run
func NarrationFile(runDir string, n int) string {
	return filepath.Join(runDir, fmt.Sprintf("sentence_%d.mp3", n))
}

// NarrateSentences narrates every sentence into runDir. The returned slice is
// parallel to sentences and holds "" where narration failed; the error joins
// all per-sentence failures.
func NarrateSentences(ctx context.Context, p Provider, runDir string, sentences []string) ([]string, error) {
	paths := make([]string, len(sentences))
	var errs []error

	for i, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		path := NarrationFile(runDir, i+1)
		if err := p.GenerateAudio(ctx, sentence, path); err != nil {
			errs = append(errs, fmt.Errorf("sentence %d: %w", i+1, err))
			continue
		}
		paths[i] = path
	}

	return paths, errors.Join(errs...)
}
