package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/snonux/wordtale/internal/story"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now()

	entries := []Entry{
		{RunID: "a", CreatedAt: base, Words: []string{"cat"}, StoryHTML: "<b>cat</b>", Images: []string{"/x/group_1.png"}},
		{RunID: "b", CreatedAt: base.Add(time.Second), Words: []string{"dog", "sun"}, Failure: "story generation timed out"},
		{RunID: "c", CreatedAt: base.Add(2 * time.Second), Words: []string{"moon"}},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s) failed: %v", e.RunID, err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	if got[0].RunID != "c" || got[1].RunID != "b" {
		t.Errorf("Expected newest first, got %s, %s", got[0].RunID, got[1].RunID)
	}
	if got[1].Failure != "story generation timed out" {
		t.Errorf("Unexpected failure %q", got[1].Failure)
	}
	if len(got[1].Words) != 2 || got[1].Words[1] != "sun" {
		t.Errorf("Unexpected words %v", got[1].Words)
	}

	all, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(all))
	}
	if len(all[2].Images) != 1 || all[2].Images[0] != "/x/group_1.png" {
		t.Errorf("Unexpected images %v", all[2].Images)
	}
}

func TestRecordReplacesSameRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, Entry{RunID: "a", Failure: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, Entry{RunID: "a", StoryHTML: "done"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].StoryHTML != "done" || got[0].Failure != "" {
		t.Errorf("Expected single replaced entry, got %+v", got)
	}
}

func TestEntryConstructors(t *testing.T) {
	result := &story.Result{
		RunID:  "r",
		Words:  []string{"cat"},
		HTML:   "<b>cat</b>",
		Images: []story.Image{{Path: "/p.png"}, {Failure: &story.Failure{Kind: story.KindImage}}},
	}
	e := EntryFromResult(result)
	if e.RunID != "r" || len(e.Images) != 2 || e.Images[0] != "/p.png" {
		t.Errorf("Unexpected entry %+v", e)
	}

	f := EntryFromFailure("r2", []string{"x"}, errors.New("boom"))
	if f.Failure != "boom" || f.RunID != "r2" {
		t.Errorf("Unexpected failure entry %+v", f)
	}
}
