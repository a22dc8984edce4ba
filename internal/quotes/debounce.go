package quotes

import (
	"sync"
	"time"
)

// SuggestionDelay is the quiet period after the last keystroke before a
// symbol search is dispatched
const SuggestionDelay = 300 * time.Millisecond

// Debouncer runs fn for only the last of a burst of triggers. Every trigger
// starts a new generation; a dispatch whose generation is no longer current
// when its result arrives must be discarded by the caller (see Current).
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a Debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger cancels any pending dispatch and schedules fn(gen) after the quiet
// period. It returns the new generation.
func (d *Debouncer) Trigger(fn func(gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if !d.Current(gen) {
			return
		}
		fn(gen)
	})
	return gen
}

// Cancel drops the pending dispatch and invalidates in-flight results
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Current reports whether gen is still the latest generation
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Stop cancels any pending dispatch. The Debouncer must not be triggered afterwards.
func (d *Debouncer) Stop() {
	d.Cancel()
}
