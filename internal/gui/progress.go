package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// progressSink forwards pipeline progress to a progress bar and a status
// label from any goroutine
type progressSink struct {
	bar    *widget.ProgressBar
	status *widget.Label
}

func newProgressSink(bar *widget.ProgressBar, status *widget.Label) *progressSink {
	return &progressSink{bar: bar, status: status}
}

// Report implements story.ProgressSink
func (p *progressSink) Report(fraction float64, label string) {
	text := statusText(fraction, label)
	fyne.Do(func() {
		p.bar.SetValue(fraction)
		p.status.SetText(text)
	})
}

func statusText(fraction float64, label string) string {
	return fmt.Sprintf("%s (%.0f%%)", label, fraction*100)
}
