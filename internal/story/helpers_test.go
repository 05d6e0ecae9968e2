package story

import (
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/wordtale/internal/testutil"
)

// fakes bundles the port fakes of a test pipeline
type fakes struct {
	text       *testutil.MockTextGenerator
	translator *testutil.MockTranslator
	images     *testutil.MockImageGenerator
	vision     *testutil.MockDescriber
}

func newFakes() *fakes {
	return &fakes{
		text:       &testutil.MockTextGenerator{Respond: echoWords},
		translator: &testutil.MockTranslator{},
		images:     &testutil.MockImageGenerator{},
		vision:     &testutil.MockDescriber{},
	}
}

func newTestPipeline(t *testing.T, f *fakes, opts Options) *Pipeline {
	t.Helper()

	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = 5 * time.Second
	}

	p, err := NewPipeline(Ports{
		Text:       f.text,
		Translator: f.translator,
		Images:     f.images,
		Vision:     f.vision,
	}, opts, nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

// echoWords answers a story prompt with one short sentence per requested word
func echoWords(prompt string) (string, error) {
	_, rest, _ := strings.Cut(prompt, "Include the following words: ")
	list, _, _ := strings.Cut(rest, ". ")
	list = strings.TrimSuffix(list, ".")

	var sentences []string
	for _, w := range strings.Split(list, ", ") {
		sentences = append(sentences, "The "+w+" danced.")
	}
	return strings.Join(sentences, " "), nil
}
