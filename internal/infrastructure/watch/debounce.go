// Package watch reloads the task template when its file changes on disk.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of values into one callback carrying the
// latest value. Editors often emit several events for one save.
type Debouncer[T any] struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	latest   T
	pending  bool
	callback func(T)
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer[T any](window time.Duration, callback func(T)) *Debouncer[T] {
	return &Debouncer[T]{window: window, callback: callback}
}

// Trigger records v and restarts the quiet window.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.latest = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending callback.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.latest
	d.pending = false
	d.mu.Unlock()

	d.callback(v)
}
