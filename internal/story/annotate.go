package story

import (
	"context"
	"html"
	"sort"
	"strings"
)

// SplitSentences splits a story on ". " the way the annotation stage does
func SplitSentences(story string) []string {
	return strings.Split(story, ". ")
}

// AnnotateStory translates every sentence of story and renders the HTML
// fragment shown to the user. A failed translation is replaced by its
// failure message; it never drops the sentence.
func (p *Pipeline) AnnotateStory(ctx context.Context, story string, words []string, progress ProgressSink) ([]AnnotatedSentence, string, error) {
	if progress == nil {
		progress = NopProgress
	}

	texts := SplitSentences(story)
	sentences := make([]AnnotatedSentence, len(texts))
	tracker := newStageProgress(progress, 0.5, 0.25, len(texts), "Translating sentences")

	err := p.fanOut(ctx, len(texts), func(ctx context.Context, i int) error {
		sentences[i] = p.annotateSentence(ctx, i, texts[i], words)
		tracker.add(1)
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	var sb strings.Builder
	for _, s := range sentences {
		sb.WriteString(s.HTML)
	}
	return sentences, sb.String(), nil
}

func (p *Pipeline) annotateSentence(ctx context.Context, index int, text string, words []string) AnnotatedSentence {
	s := AnnotatedSentence{Index: index, Text: text}

	callCtx, cancel := p.withCallTimeout(ctx)
	translation, err := p.ports.Translator.Translate(callCtx, text)
	cancel()

	if err != nil {
		s.Failure = callFailure(err, KindTranslationTimeout, KindTranslation)
		s.Translation = s.Failure.Error()
	} else {
		s.Translation = translation
	}

	s.HTML = Highlight(text, words) + "<br><br>" + html.EscapeString(s.Translation) + "<br><br>"
	return s
}

// Segment is a run of sentence text; Bold marks a vocabulary word
type Segment struct {
	Text string
	Bold bool
}

// Segments splits text into plain runs and word occurrences. Longer words
// win over words they contain, and no occurrence is matched twice.
func Segments(text string, words []string) []Segment {
	sorted := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			sorted = append(sorted, w)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	var segments []Segment
	plainStart := 0
	for i := 0; i < len(text); {
		match := ""
		for _, w := range sorted {
			if strings.HasPrefix(text[i:], w) {
				match = w
				break
			}
		}
		if match == "" {
			i++
			continue
		}

		if i > plainStart {
			segments = append(segments, Segment{Text: text[plainStart:i]})
		}
		segments = append(segments, Segment{Text: match, Bold: true})
		i += len(match)
		plainStart = i
	}
	if plainStart < len(text) {
		segments = append(segments, Segment{Text: text[plainStart:]})
	}
	return segments
}

// Highlight HTML-escapes text and wraps every word occurrence in <b> tags
func Highlight(text string, words []string) string {
	var sb strings.Builder
	for _, seg := range Segments(text, words) {
		if seg.Bold {
			sb.WriteString("<b>" + html.EscapeString(seg.Text) + "</b>")
			continue
		}
		sb.WriteString(html.EscapeString(seg.Text))
	}
	return sb.String()
}
