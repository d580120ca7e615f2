package watch

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer coalesces bursts of keys into one call. Every Add cancels the
// pending timer and schedules a new one, so fn runs once the burst has been
// quiet for the configured delay. Keys are de-duplicated and handed to fn in
// first-seen order.
type Debouncer struct {
	delay time.Duration
	fn    func(keys []string)

	mu      sync.Mutex
	timer   *time.Timer
	pending []string
	seen    map[string]bool
	stopped bool
}

// NewDebouncer returns a Debouncer calling fn after delay of quiet.
func NewDebouncer(delay time.Duration, fn func(keys []string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay: delay,
		fn:    fn,
		seen:  make(map[string]bool),
	}
}

// Add records key and reschedules the flush.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if !d.seen[key] {
		d.seen[key] = true
		d.pending = append(d.pending, key)
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.Flush)
}

// Flush runs fn immediately with the pending keys, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	keys := d.pending
	d.pending = nil
	d.seen = make(map[string]bool)
	d.mu.Unlock()

	if len(keys) > 0 {
		d.fn(keys)
	}
}

// Pending returns the number of keys waiting for the next flush.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels any pending flush and drops its keys. Later Adds are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
