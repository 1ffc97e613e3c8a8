// Package progress draws file-processing progress bars on stderr.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for file processing. A disabled tracker
// accepts every call and draws nothing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// NewTracker creates a progress bar with the given label and total count.
// When enabled is false the tracker is a no-op.
func NewTracker(label string, total int, enabled bool) *Tracker {
	return newTracker(label, total, enabled, os.Stderr)
}

func newTracker(label string, total int, enabled bool, out io.Writer) *Tracker {
	t := &Tracker{label: label, out: out}
	if !enabled {
		return t
	}
	t.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return t
}

// Enabled reports whether the tracker draws anything.
func (t *Tracker) Enabled() bool {
	return t.bar != nil
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t.bar != nil {
		_ = t.bar.Add(1)
	}
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	if t.bar != nil {
		_ = t.bar.Finish()
		_ = t.bar.Clear()
	}
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
