// Package progress wraps github.com/schollz/progressbar/v3 so scan, verify,
// and dedup can share one progress-display convention: a spinner while the
// walker is still discovering files, switching to a determinate bar once
// the total file count is known.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Bar wraps progressbar.ProgressBar with enabled/disabled handling; every
// method is a no-op when disabled, so callers never need to branch on
// whether progress display is on.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a progress bar. total=-1 renders a spinner (the "counting…"
// phase of spec §4.5); total>0 renders a determinate "X/Y" bar.
func New(enabled bool, total int64) *Bar {
	if !enabled {
		return &Bar{}
	}

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(false),
		)
		return &Bar{bar: progressbar.NewOptions(-1, opts...)}
	}

	opts = append(opts, progressbar.OptionSetWidth(40))
	return &Bar{bar: progressbar.NewOptions64(total, opts...)}
}

// Retarget switches a spinner into determinate mode once the walker's
// total file count becomes known, without tearing down the bar.
func (b *Bar) Retarget(total int64) {
	if b.bar != nil {
		b.bar.ChangeMax64(total)
	}
}

// Set moves the bar to an absolute value.
func (b *Bar) Set(n int64) {
	if b.bar != nil {
		_ = b.bar.Set64(n)
	}
}

// Describe updates the bar's description line, typically a stats Stringer.
func (b *Bar) Describe(s fmt.Stringer) {
	if b.bar != nil {
		b.bar.Describe(s.String())
	}
}

// Finish completes the bar and prints a final summary line.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(os.Stderr, "done: "+s.String())
	}
}
