package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"
)

// Debouncer coalesces bursts of changed paths into one batch. Editors and
// bundle updaters often write several files in a row; each batch triggers a
// single refresh.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	timer    *time.Timer
	window   time.Duration
	callback func(paths []string)
	stopped  bool
}

// NewDebouncer creates a debouncer that calls callback once no path was added for window.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add records a changed path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[unique.Make(path)] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// fire runs when the window expires and hands the batch to the callback asynchronously.
func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	paths := d.drain()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		go d.callback(paths)
	}
}

// Flush hands pending paths to the callback immediately and waits for it to return.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// Already firing; let that call deliver the batch.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	paths := d.drain()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// Stop discards pending paths and ignores later additions.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
}

// drain returns the pending paths sorted and clears the set. d.mu must be held.
func (d *Debouncer) drain() []string {
	if len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for handle := range d.pending {
		paths = append(paths, handle.Value())
	}
	clear(d.pending)
	slices.Sort(paths)
	return paths
}
