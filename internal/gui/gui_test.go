package gui

import (
	"testing"

	"codeberg.org/snonux/wordtale/internal/story"
)

func TestStoryMarkdown(t *testing.T) {
	words := []string{"cat", "moon"}
	tests := []struct {
		name      string
		sentences []story.AnnotatedSentence
		want      string
	}{
		{
			name: "bold words and translations",
			sentences: []story.AnnotatedSentence{
				{Index: 0, Text: "The cat sang", Translation: "猫唱歌"},
				{Index: 1, Text: "The moon slept.", Translation: "月亮睡了。"},
			},
			want: "The **cat** sang\n\n猫唱歌\n\nThe **moon** slept.\n\n月亮睡了。",
		},
		{
			name: "markup in the text stays literal",
			sentences: []story.AnnotatedSentence{
				{Text: "A <b> tag & moon", Translation: "<i>"},
			},
			want: `A \<b\> tag & **moon**` + "\n\n" + `\<i\>`,
		},
		{
			name: "markdown characters",
			sentences: []story.AnnotatedSentence{
				{Text: "2*3 is_six"},
			},
			want: `2\*3 is\_six`,
		},
		{
			name: "failed translation shows its message",
			sentences: []story.AnnotatedSentence{
				{
					Text:        "The cat",
					Translation: "Error: The request timed out while translating the sentence.",
					Failure:     &story.Failure{Kind: story.KindTranslationTimeout},
				},
			},
			want: "The **cat**\n\nError: The request timed out while translating the sentence.",
		},
		{
			name:      "empty sentences are skipped",
			sentences: []story.AnnotatedSentence{{Text: ""}},
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StoryMarkdown(tt.sentences, words); got != tt.want {
				t.Errorf("StoryMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCellCaption(t *testing.T) {
	ok := story.Image{Sentence: "The cat sang", Path: "/tmp/group_1.png"}
	if got := cellCaption(ok); got != "The cat sang" {
		t.Errorf("cellCaption(ok) = %q", got)
	}

	failed := story.Image{Sentence: "The cat sang", Failure: &story.Failure{Kind: story.KindMismatch}}
	if got := cellCaption(failed); got != "Image content does not match the story." {
		t.Errorf("cellCaption(failed) = %q", got)
	}
}

func TestStatusText(t *testing.T) {
	if got := statusText(0.5, "Translating sentences"); got != "Translating sentences (50%)" {
		t.Errorf("statusText = %q", got)
	}
}

func TestFileLabel(t *testing.T) {
	if got := fileLabel(""); got != "No file selected" {
		t.Errorf("fileLabel(\"\") = %q", got)
	}
	if got := fileLabel("/home/u/words.txt"); got != "words.txt" {
		t.Errorf("fileLabel = %q", got)
	}
}
