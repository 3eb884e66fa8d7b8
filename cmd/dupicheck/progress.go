package main

import (
	"io"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"dupicheck/internal/hashing"
)

// hashProgress draws a progress bar for fingerprinting when the writer is a
// terminal. The bar is created on the first notification, once the total is
// known.
type hashProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newHashProgress(w io.Writer, enabled bool) *hashProgress {
	if !enabled || !shouldColorize(w) {
		return nil
	}
	return &hashProgress{w: w}
}

// Func returns the hook passed to the scan, or nil when progress is off.
func (p *hashProgress) Func() hashing.ProgressFunc {
	if p == nil {
		return nil
	}
	return func(index, total int, path string) {
		if p.bar == nil {
			p.bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetDescription("Hashing images"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		p.bar.Describe("Hashing " + filepath.Base(path))
		_ = p.bar.Set(index - 1)
	}
}

func (p *hashProgress) Finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
