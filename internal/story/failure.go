package story

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a Failure
type Kind int

const (
	KindInput Kind = iota + 1
	KindStoryWords
	KindStoryTimeout
	KindStory
	KindTranslationTimeout
	KindTranslation
	KindImageMissing
	KindImage
	KindMismatch
	KindVisionTimeout
	KindVision
)

var kindNames = map[Kind]string{
	KindInput:              "input",
	KindStoryWords:         "story-words",
	KindStoryTimeout:       "story-timeout",
	KindStory:              "story",
	KindTranslationTimeout: "translation-timeout",
	KindTranslation:        "translation",
	KindImageMissing:       "image-missing",
	KindImage:              "image",
	KindMismatch:           "mismatch",
	KindVisionTimeout:      "vision-timeout",
	KindVision:             "vision",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether a failure of this kind aborts a whole run
func (k Kind) Fatal() bool {
	switch k {
	case KindInput, KindStoryWords, KindStoryTimeout, KindStory:
		return true
	}
	return false
}

// Failure is the error type of every stage. Error renders the message
// shown to the user in place of the failed item.
type Failure struct {
	Kind     Kind
	Words    []string // KindStoryWords only
	Attempts int      // KindStoryWords only
	Detail   string
	Err      error
}

func (f *Failure) Error() string {
	switch f.Kind {
	case KindInput:
		return "Please enter at least one word."
	case KindStoryWords:
		return fmt.Sprintf("Error: The words '%s' could not be included in the story after %d attempts.",
			strings.Join(f.Words, ", "), f.Attempts)
	case KindStoryTimeout:
		return "Error: The request timed out while generating the story."
	case KindStory:
		return "Error generating story: " + f.Detail
	case KindTranslationTimeout:
		return "Error: The request timed out while translating the sentence."
	case KindTranslation:
		return "Error translating sentence: " + f.Detail
	case KindImageMissing:
		return "Image generation failed."
	case KindImage:
		return "Image generation failed: " + f.Detail
	case KindMismatch:
		return "Image content does not match the story."
	case KindVisionTimeout:
		return "Error: The request timed out while understanding the image."
	case KindVision:
		return "Image understanding failed: " + f.Detail
	}
	return f.Detail
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsKind reports whether err is a Failure of the given kind
func IsKind(err error, kind Kind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == kind
}

// callFailure classifies an error returned by a port
func callFailure(err error, timeoutKind, otherKind Kind) *Failure {
	if isTimeout(err) {
		return &Failure{Kind: timeoutKind, Err: err}
	}
	return &Failure{Kind: otherKind, Detail: err.Error(), Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
