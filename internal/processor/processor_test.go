package processor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/wordtale/internal/cli"
	"codeberg.org/snonux/wordtale/internal/story"
	"codeberg.org/snonux/wordtale/internal/testutil"
)

// storyOrTranslation answers translation prompts with a fixed text and
// story prompts with one sentence per requested word
func storyOrTranslation(prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Translate") {
		return "翻译", nil
	}
	_, rest, _ := strings.Cut(prompt, "Include the following words: ")
	list, _, _ := strings.Cut(rest, ". ")
	list = strings.TrimSuffix(list, ".")

	var sentences []string
	for _, w := range strings.Split(list, ", ") {
		sentences = append(sentences, "The "+w+" danced.")
	}
	return strings.Join(sentences, " "), nil
}

type fakeNarrator struct {
	calls int
}

func (n *fakeNarrator) GenerateAudio(ctx context.Context, text, outputFile string) error {
	n.calls++
	return os.WriteFile(outputFile, testutil.MP3Data(), 0644)
}

func (n *fakeNarrator) Name() string { return "fake" }

func testFlags(t *testing.T) *cli.Flags {
	t.Helper()
	dir := t.TempDir()
	flags := cli.NewFlags()
	flags.OutputDir = filepath.Join(dir, "runs")
	flags.HistoryDB = filepath.Join(dir, "history.db")
	flags.Interval = time.Millisecond
	flags.Timeout = 5 * time.Second
	return flags
}

func newTestProcessor(t *testing.T, flags *cli.Flags, providers Providers) (*Processor, *bytes.Buffer) {
	t.Helper()
	if providers.Text == nil {
		providers.Text = &testutil.MockTextGenerator{Respond: storyOrTranslation}
	}
	if providers.Images == nil {
		providers.Images = &testutil.MockImageGenerator{}
	}
	if providers.Vision == nil {
		providers.Vision = &testutil.MockDescriber{Default: "The cat danced. The moon danced."}
	}

	p, err := NewProcessorWithProviders(flags, providers, nil)
	if err != nil {
		t.Fatalf("NewProcessorWithProviders failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	var out bytes.Buffer
	p.SetOutput(&out)
	return p, &out
}

func TestRunWritesRunFiles(t *testing.T) {
	p, _ := newTestProcessor(t, testFlags(t), Providers{})

	result, err := p.Run(context.Background(), story.Request{Words: "cat moon"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	testutil.AssertFileContains(t, filepath.Join(result.RunDir, "story.html"), "<b>cat</b>")
	testutil.AssertFileContains(t, filepath.Join(result.RunDir, "translations.txt"), "翻译")
	testutil.AssertFileExists(t, filepath.Join(result.RunDir, "group_1.png"))

	entries, err := p.history.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].RunID != result.RunID || entries[0].Failure != "" {
		t.Errorf("Unexpected history %+v", entries)
	}
}

func TestRunRecordsStoryFailure(t *testing.T) {
	flags := testFlags(t)
	flags.Retries = 2
	text := &testutil.MockTextGenerator{Fallback: "a story without the words"}
	p, _ := newTestProcessor(t, flags, Providers{Text: text})

	_, err := p.Run(context.Background(), story.Request{Words: "cat", RunID: "failed-run"})
	if !story.IsKind(err, story.KindStoryWords) {
		t.Fatalf("Expected story words failure, got %v", err)
	}

	entries, err := p.history.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].RunID != "failed-run" || !strings.Contains(entries[0].Failure, "'cat'") {
		t.Errorf("Unexpected history %+v", entries)
	}
}

func TestRunEmptyInputIsNotRecorded(t *testing.T) {
	p, _ := newTestProcessor(t, testFlags(t), Providers{})

	if _, err := p.Run(context.Background(), story.Request{Words: "   "}); !story.IsKind(err, story.KindInput) {
		t.Fatalf("Expected input failure, got %v", err)
	}

	entries, err := p.history.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no history entries, got %d", len(entries))
	}
}

func TestSampleFromFile(t *testing.T) {
	p, _ := newTestProcessor(t, testFlags(t), Providers{})
	path := testutil.CreateWordListFile(t, t.TempDir(), "cat", "moon", "sun", "tree")

	sample, err := p.SampleFromFile(path, 3)
	if err != nil {
		t.Fatalf("SampleFromFile failed: %v", err)
	}
	if n := len(strings.Fields(sample)); n != 3 {
		t.Errorf("Expected 3 words, got %d (%q)", n, sample)
	}

	if _, err := p.SampleFromFile(path, 5); err == nil {
		t.Error("Expected error when sampling more words than available")
	}
}

func TestProcessWords(t *testing.T) {
	flags := testFlags(t)
	flags.WordsFile = testutil.CreateWordListFile(t, t.TempDir(), "moon")
	flags.Sample = 1
	p, out := newTestProcessor(t, flags, Providers{})

	if err := p.ProcessWords(context.Background(), []string{"cat"}); err != nil {
		t.Fatalf("ProcessWords failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Words: cat moon", "Generating story", "The cat danced", "Saved to"} {
		if !strings.Contains(got, want) {
			t.Errorf("Output missing %q:\n%s", want, got)
		}
	}
}

func TestGenerateAnkiFile(t *testing.T) {
	tests := []struct {
		name   string
		csv    bool
		suffix string
	}{
		{"apkg", false, ".apkg"},
		{"csv", true, "anki_import.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := testFlags(t)
			flags.AnkiCSV = tt.csv
			narrator := &fakeNarrator{}
			p, out := newTestProcessor(t, flags, Providers{Audio: narrator})

			result, err := p.Run(context.Background(), story.Request{Words: "cat moon"})
			if err != nil {
				t.Fatal(err)
			}

			path, err := p.GenerateAnkiFile(context.Background(), result)
			if err != nil {
				t.Fatalf("GenerateAnkiFile failed: %v", err)
			}
			if !strings.HasSuffix(path, tt.suffix) {
				t.Errorf("Unexpected output path %s", path)
			}
			testutil.AssertFileExists(t, path)
			if narrator.calls != len(result.Sentences) {
				t.Errorf("Expected %d narrations, got %d", len(result.Sentences), narrator.calls)
			}
			if !strings.Contains(out.String(), "Generated 2 cards (2 with audio, 2 with images)") {
				t.Errorf("Unexpected stats output:\n%s", out.String())
			}
		})
	}
}

func TestPrintHistory(t *testing.T) {
	p, out := newTestProcessor(t, testFlags(t), Providers{})
	ctx := context.Background()

	if err := p.PrintHistory(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No runs recorded yet") {
		t.Errorf("Expected empty history message, got %q", out.String())
	}

	if _, err := p.Run(ctx, story.Request{Words: "cat", RunID: "r1"}); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := p.PrintHistory(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "r1") || !strings.Contains(out.String(), "group_1.png") {
		t.Errorf("Unexpected history output:\n%s", out.String())
	}
}

func TestArchiveRuns(t *testing.T) {
	flags := testFlags(t)
	p, out := newTestProcessor(t, flags, Providers{})
	testutil.CreateTestRunDirectory(t, flags.OutputDir, "old")

	if err := p.ArchiveRuns(); err != nil {
		t.Fatalf("ArchiveRuns failed: %v", err)
	}
	testutil.AssertFileNotExists(t, flags.OutputDir)
	if !strings.Contains(out.String(), "archived to") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestStoryPage(t *testing.T) {
	result := &story.Result{
		Words: []string{"<cat>"},
		HTML:  "<b>&lt;cat&gt;</b><br><br>",
		Images: []story.Image{
			{Sentence: "A <cat>", Path: "/runs/r/group_1.png"},
			{Failure: &story.Failure{Kind: story.KindImageMissing}},
		},
	}

	page := StoryPage(result)
	for _, want := range []string{"<title>&lt;cat&gt;</title>", `<img src="group_1.png">`, "A &lt;cat&gt;", "Image generation failed."} {
		if !strings.Contains(page, want) {
			t.Errorf("Page missing %q:\n%s", want, page)
		}
	}
}

func TestBuildProvidersRequiresKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := BuildProviders(context.Background(), cli.NewFlags(), nil)
	if err == nil || !strings.Contains(err.Error(), "API key is required") {
		t.Errorf("Expected missing key error, got %v", err)
	}
}

func TestBuildProviders(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "test-key")

	flags := cli.NewFlags()
	flags.CacheDir = ""
	flags.AnkiAudio = true

	providers, err := BuildProviders(context.Background(), flags, nil)
	if err != nil {
		t.Fatalf("BuildProviders failed: %v", err)
	}
	if providers.Text == nil || providers.Images == nil || providers.Vision == nil || providers.Audio == nil {
		t.Errorf("Expected all providers, got %+v", providers)
	}
}

func TestProcessorWithoutProviders(t *testing.T) {
	p, err := NewProcessorWithProviders(testFlags(t), Providers{}, nil)
	if err != nil {
		t.Fatalf("NewProcessorWithProviders failed: %v", err)
	}
	defer p.Close()

	if _, err := p.Run(context.Background(), story.Request{Words: "cat"}); err == nil {
		t.Error("Expected Run to fail without providers")
	}
}
