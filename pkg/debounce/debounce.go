// Package debounce delays work until input goes quiet. Each key holds at most
// one pending call; triggering a key again cancels and replaces it, so only
// the latest call for a key ever runs.
package debounce

import (
	"sync"
	"time"

	"github.com/goliatone/go-authform/pkg/clock"
)

type pending struct {
	timer clock.Timer
	gen   uint64
}

// Debouncer schedules per-key delayed calls.
type Debouncer struct {
	mu      sync.Mutex
	clock   clock.Clock
	pending map[string]pending
	gen     uint64
	stopped bool
}

// New returns a Debouncer driven by c (the real clock when nil).
func New(c clock.Clock) *Debouncer {
	return &Debouncer{
		clock:   clock.OrReal(c),
		pending: make(map[string]pending),
	}
}

// Trigger schedules fn to run after delay, superseding any call pending for
// key. A non-positive delay runs fn immediately on the caller's goroutine.
func (d *Debouncer) Trigger(key string, delay time.Duration, fn func()) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.cancelLocked(key)
	if delay <= 0 {
		d.mu.Unlock()
		fn()
		return
	}

	d.gen++
	gen := d.gen
	timer := d.clock.AfterFunc(delay, func() {
		d.fire(key, gen, fn)
	})
	d.pending[key] = pending{timer: timer, gen: gen}
	d.mu.Unlock()
}

// Cancel drops the call pending for key. It reports whether one existed.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked(key)
}

// Pending reports whether key has a scheduled call.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels everything and rejects future triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.pending {
		d.cancelLocked(key)
	}
	d.stopped = true
}

func (d *Debouncer) fire(key string, gen uint64, fn func()) {
	d.mu.Lock()
	current, ok := d.pending[key]
	if !ok || current.gen != gen {
		// superseded between the timer firing and acquiring the lock
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) cancelLocked(key string) bool {
	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}
