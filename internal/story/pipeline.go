package story

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/wordtale/internal"
	"codeberg.org/snonux/wordtale/internal/wordlist"
)

// Ports bundles the external models a Pipeline talks to
type Ports struct {
	Text       TextGenerator
	Translator Translator
	Images     ImageGenerator
	Vision     ImageDescriber
}

// Pipeline runs the four story stages against its ports
type Pipeline struct {
	ports  Ports
	opts   Options
	logger *zap.Logger
}

// NewPipeline creates a pipeline. A nil logger disables logging.
func NewPipeline(ports Ports, opts Options, logger *zap.Logger) (*Pipeline, error) {
	switch {
	case ports.Text == nil:
		return nil, errors.New("text generator is required")
	case ports.Translator == nil:
		return nil, errors.New("translator is required")
	case ports.Images == nil:
		return nil, errors.New("image generator is required")
	case ports.Vision == nil:
		return nil, errors.New("image describer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		ports:  ports,
		opts:   opts.withDefaults(),
		logger: logger,
	}, nil
}

// Options returns the effective settings
func (p *Pipeline) Options() Options {
	return p.opts
}

// Process runs all stages for one request. A *Failure is returned when the
// input is empty or the story could not be generated; failures of later
// stages are reported on the individual sentences and images.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Result, error) {
	progress := req.Progress
	if progress == nil {
		progress = NopProgress
	}

	words := wordlist.Dedupe(wordlist.Tokenize(req.Words))
	if len(words) == 0 {
		return nil, &Failure{Kind: KindInput}
	}

	runID := req.RunID
	if runID == "" {
		runID = internal.NewRunID()
	}
	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	logger := p.logger.With(zap.String("run", runID))
	logger.Info("starting run", zap.Strings("words", words), zap.Int("max_length", maxLength))

	story, err := p.GenerateStory(ctx, words, req.StoryDirective, maxLength, progress)
	if err != nil {
		logger.Warn("story generation failed", zap.Error(err))
		return nil, err
	}

	sentences, html, err := p.AnnotateStory(ctx, story, words, progress)
	if err != nil {
		return nil, err
	}

	runDir := filepath.Join(p.opts.OutputDir, runID)
	images, err := p.IllustrateStory(ctx, sentences, words, req.ImageDirective, runDir, progress)
	if err != nil {
		return nil, err
	}

	images, err = p.VerifyImages(ctx, images, progress)
	if err != nil {
		return nil, err
	}

	progress.Report(1, "Done")
	logger.Info("run finished", zap.Int("sentences", len(sentences)), zap.Int("images", len(images)))

	return &Result{
		RunID:     runID,
		RunDir:    runDir,
		Words:     words,
		Story:     story,
		HTML:      html,
		Sentences: sentences,
		Images:    images,
	}, nil
}

// fanOut calls fn for every index 0..n-1 with at most Concurrency calls in
// flight, pacing dispatches by Interval. It returns once all calls are done.
func (p *Pipeline) fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if p.opts.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(p.opts.Interval), 1)
	}

	for i := 0; i < n; i++ {
		if err := limiter.Wait(gctx); err != nil {
			if groupErr := g.Wait(); groupErr != nil {
				return groupErr
			}
			return err
		}
		g.Go(func() error {
			return fn(gctx, i)
		})
	}

	return g.Wait()
}

// withCallTimeout bounds a single external call
func (p *Pipeline) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.opts.CallTimeout)
}

// stageProgress maps completed items of one stage onto a progress range
type stageProgress struct {
	mu    sync.Mutex
	sink  ProgressSink
	start float64
	span  float64
	total int
	done  int
	label string
}

func newStageProgress(sink ProgressSink, start, span float64, total int, label string) *stageProgress {
	sink.Report(start, label)
	return &stageProgress{sink: sink, start: start, span: span, total: total, label: label}
}

func (s *stageProgress) add(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.done += n
	fraction := s.start + s.span
	if s.total > 0 {
		fraction = s.start + s.span*float64(s.done)/float64(s.total)
	}
	s.sink.Report(min(fraction, s.start+s.span), s.label)
}
