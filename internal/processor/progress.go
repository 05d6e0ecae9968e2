package processor

import (
	"fmt"
	"io"
	"sync"
)

// consoleProgress prints a line whenever the stage label changes
type consoleProgress struct {
	mu    sync.Mutex
	out   io.Writer
	label string
}

func newConsoleProgress(out io.Writer) *consoleProgress {
	return &consoleProgress{out: out}
}

func (c *consoleProgress) Report(fraction float64, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if label == c.label {
		return
	}
	c.label = label
	fmt.Fprintf(c.out, "[%3.0f%%] %s\n", fraction*100, label)
}
