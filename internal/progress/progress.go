// Package progress draws operator feedback on the terminal. Every type in
// it is nil-safe so callers can pass a nil value to run silently.
package progress

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// Tracker renders a single n/total progress bar
type Tracker struct {
	bar       progress.Model
	out       io.Writer
	desc      string
	total     int
	processed int
}

// NewTracker creates a Tracker writing to out. A nil out returns a nil Tracker.
func NewTracker(out io.Writer, desc string) *Tracker {
	if out == nil {
		return nil
	}
	return &Tracker{
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		out:  out,
		desc: desc,
	}
}

// SetTotal sets the number of items to process and draws the empty bar
func (t *Tracker) SetTotal(total int) {
	if t == nil {
		return
	}
	t.total = total
	t.processed = 0
	t.draw()
}

// Increment marks one more item processed
func (t *Tracker) Increment() {
	if t == nil {
		return
	}
	t.processed++
	t.draw()
	if t.processed == t.total {
		fmt.Fprintln(t.out)
	}
}

// Clear erases the bar line so a log line can take its place. The next
// Increment draws the bar again.
func (t *Tracker) Clear() {
	if t == nil || t.total == 0 || t.processed == t.total {
		return
	}
	fmt.Fprint(t.out, "\r\x1b[K")
}

// Percent returns the processed fraction in [0, 1]
func (t *Tracker) Percent() float64 {
	if t == nil || t.total == 0 {
		return 0
	}
	return float64(t.processed) / float64(t.total)
}

func (t *Tracker) draw() {
	if t.total == 0 {
		return
	}
	fmt.Fprintf(t.out, "\r%s: %s %d/%d", t.desc, t.bar.ViewAs(t.Percent()), t.processed, t.total)
}
