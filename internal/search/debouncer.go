package search

import (
	"sync"
	"time"
)

// Debouncer runs only the last of a burst of calls, once delay has passed
// without a newer one. Calls are not cancelled once they have started.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing anything still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen && !d.stopped
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			fn()
		}
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Stop cancels the pending call and ignores all later triggers.
func (d *Debouncer) Stop() {
	d.Cancel()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
