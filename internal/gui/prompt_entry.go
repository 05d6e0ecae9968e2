package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// PromptEntry is a wrapping multi-line entry that gives up focus on Escape
type PromptEntry struct {
	widget.Entry
	window fyne.Window
}

// NewPromptEntry creates a new prompt entry for window
func NewPromptEntry(window fyne.Window) *PromptEntry {
	entry := &PromptEntry{window: window}
	entry.MultiLine = true
	entry.Wrapping = fyne.TextWrapWord
	entry.SetMinRowsVisible(2)
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey handles key events
func (e *PromptEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyEscape && e.window != nil {
		e.window.Canvas().Unfocus()
		return
	}
	e.Entry.TypedKey(key)
}
