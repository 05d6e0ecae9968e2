package gui

import (
	"strings"

	"codeberg.org/snonux/wordtale/internal/story"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

// escapeMarkdown makes text render literally in a RichText
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// StoryMarkdown renders the annotated sentences of a run for widget.RichText:
// each sentence with its vocabulary words in bold, followed by its translation
func StoryMarkdown(sentences []story.AnnotatedSentence, words []string) string {
	var paragraphs []string
	for _, s := range sentences {
		if s.Text == "" {
			continue
		}

		var sb strings.Builder
		for _, seg := range story.Segments(s.Text, words) {
			if seg.Bold {
				sb.WriteString("**" + escapeMarkdown(seg.Text) + "**")
				continue
			}
			sb.WriteString(escapeMarkdown(seg.Text))
		}
		paragraphs = append(paragraphs, sb.String())

		if s.Translation != "" {
			paragraphs = append(paragraphs, escapeMarkdown(s.Translation))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
