package story

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/wordtale/internal/testutil"
)

func TestStoryPrompt(t *testing.T) {
	got := StoryPrompt([]string{"apple", "bridge"}, "Set it on Mars.")
	want := "Write a bizarre, counterintuitive, and logically coherent story to help me remember these words. Include the following words: apple, bridge. Set it on Mars."
	if got != want {
		t.Errorf("StoryPrompt() = %q, want %q", got, want)
	}

	got = StoryPrompt([]string{"apple"}, "")
	if strings.HasSuffix(got, " ") {
		t.Errorf("Expected trimmed prompt, got %q", got)
	}
}

func TestGenerateSegment_AcceptsFirstAttempt(t *testing.T) {
	f := newFakes()
	f.text.Respond = nil
	f.text.Responses = []string{"A strange apple walked across the bridge."}
	p := newTestPipeline(t, f, Options{})

	chunk := SplitChunks([]string{"apple", "bridge"}, 2)[0]
	segment, err := p.generateSegment(context.Background(), chunk, "", 200)
	if err != nil {
		t.Fatalf("generateSegment() error = %v", err)
	}
	if segment != "A strange apple walked across the bridge." {
		t.Errorf("Unexpected segment %q", segment)
	}
	if calls := len(f.text.Calls()); calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestGenerateStory_RetriesUntilWordsIncluded(t *testing.T) {
	f := newFakes()
	f.text.Respond = nil
	f.text.Responses = []string{"no fruit here", "still nothing", "An apple at last."}
	p := newTestPipeline(t, f, Options{})

	story, err := p.GenerateStory(context.Background(), []string{"apple"}, "", 200, nil)
	if err != nil {
		t.Fatalf("GenerateStory() error = %v", err)
	}
	if story != "An apple at last." {
		t.Errorf("Unexpected story %q", story)
	}
	if calls := len(f.text.Calls()); calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestGenerateStory_GivesUpAfterFiveAttempts(t *testing.T) {
	f := newFakes()
	f.text.Respond = nil
	f.text.Fallback = "a story without the word"
	p := newTestPipeline(t, f, Options{})

	_, err := p.GenerateStory(context.Background(), []string{"x"}, "", 200, nil)
	if err == nil {
		t.Fatal("Expected failure")
	}
	if !IsKind(err, KindStoryWords) {
		t.Fatalf("Expected KindStoryWords, got %v", err)
	}
	if !strings.Contains(err.Error(), "'x'") || !strings.Contains(err.Error(), "5 attempts") {
		t.Errorf("Unexpected message: %q", err.Error())
	}
	if calls := len(f.text.Calls()); calls != 5 {
		t.Errorf("Expected exactly 5 calls, got %d", calls)
	}
}

func TestGenerateStory_PortError(t *testing.T) {
	f := newFakes()
	f.text.Errors = map[int]error{1: errors.New("invalid api key")}
	p := newTestPipeline(t, f, Options{})

	_, err := p.GenerateStory(context.Background(), []string{"apple"}, "", 200, nil)
	if !IsKind(err, KindStory) {
		t.Fatalf("Expected KindStory, got %v", err)
	}
	if err.Error() != "Error generating story: invalid api key" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
	if calls := len(f.text.Calls()); calls != 1 {
		t.Errorf("Expected no retry after a port error, got %d calls", calls)
	}
}

func TestGenerateStory_Timeout(t *testing.T) {
	f := newFakes()
	f.text.Respond = func(string) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "", context.DeadlineExceeded
	}
	p := newTestPipeline(t, f, Options{CallTimeout: 10 * time.Millisecond})

	_, err := p.GenerateStory(context.Background(), []string{"apple"}, "", 200, nil)
	if !IsKind(err, KindStoryTimeout) {
		t.Fatalf("Expected KindStoryTimeout, got %v", err)
	}
}

func TestGenerateStory_ContainsEveryWord(t *testing.T) {
	words := []string{"apple", "bridge", "candle", "dragon", "engine", "forest", "guitar"}
	f := newFakes()
	p := newTestPipeline(t, f, Options{Concurrency: 3})

	// A tiny length budget must not cut words away
	story, err := p.GenerateStory(context.Background(), words, "", 50, nil)
	if err != nil {
		t.Fatalf("GenerateStory() error = %v", err)
	}
	for _, w := range words {
		if !strings.Contains(story, w) {
			t.Errorf("Story %q is missing %q", story, w)
		}
	}
	if !strings.HasPrefix(story, "The apple danced.") {
		t.Errorf("Expected chunks in word order, got %q", story)
	}
}

func TestGenerateStory_Progress(t *testing.T) {
	f := newFakes()
	p := newTestPipeline(t, f, Options{})
	progress := &testutil.MockProgress{}

	_, err := p.GenerateStory(context.Background(), []string{"a1", "b2", "c3", "d4"}, "", 200, progress)
	if err != nil {
		t.Fatalf("GenerateStory() error = %v", err)
	}

	fractions := progress.Fractions()
	if len(fractions) == 0 || fractions[0] != 0.3 {
		t.Fatalf("Expected progress to start at 0.3, got %v", fractions)
	}
	for i, fr := range fractions {
		if fr < 0.3 || fr > 0.5 {
			t.Errorf("Fraction %v out of range", fr)
		}
		if i > 0 && fr < fractions[i-1] {
			t.Errorf("Progress went backwards: %v", fractions)
		}
	}
	if last := fractions[len(fractions)-1]; last != 0.5 {
		t.Errorf("Expected final fraction 0.5, got %v", last)
	}
}

func TestTruncateSegment(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		words []string
		limit int
		want  string
	}{
		{"shorter than limit", "An apple.", []string{"apple"}, 50, "An apple."},
		{"cut at limit", "An apple fell down the stairs.", []string{"apple"}, 12, "An apple fel"},
		{"extended to keep word", "Once upon a time a bridge.", []string{"bridge"}, 5, "Once upon a time a bridge"},
		{"counts runes not bytes", "ябълка и мост", []string{"ябълка"}, 8, "ябълка и"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateSegment(tt.text, tt.words, tt.limit); got != tt.want {
				t.Errorf("truncateSegment() = %q, want %q", got, tt.want)
			}
		})
	}
}
