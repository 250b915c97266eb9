package filewatch

import (
	"sync"
	"time"
)

// debouncer coalesces a burst of fsnotify events on one file into a single
// reload call, fired duration after the last event.
type debouncer struct {
	duration time.Duration
	callback func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(duration time.Duration, callback func()) *debouncer {
	return &debouncer{duration: duration, callback: callback}
}

// Trigger resets the debounce timer.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.duration, d.fire)
}

// Stop cancels any pending callback and prevents future triggers.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	d.callback()
}
