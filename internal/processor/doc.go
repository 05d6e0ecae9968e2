// Package processor wires the providers, the story pipeline and the run
// history together. The CLI and the GUI both drive the application through
// a Processor.
package processor
