// Package debounce provides a single-slot trailing timer with a last-issued key guard.
package debounce

import (
	"sync"
	"time"

	"github.com/de-tools/sales-atlas/pkg/clock"
)

const DefaultDelay = 250 * time.Millisecond

// Debouncer coalesces bursts of triggers into one call for the final key.
// A key equal to the last issued one is dropped.
type Debouncer struct {
	mu         sync.Mutex
	clock      clock.Clock
	delay      time.Duration
	timer      *clock.Timer
	generation uint64
	lastKey    string
	issued     bool
}

func New(c clock.Clock, delay time.Duration) *Debouncer {
	if c == nil {
		c = clock.Real()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{clock: c, delay: delay}
}

// Trigger replaces any pending call with fn(key), fired after the delay
func (d *Debouncer) Trigger(key string, fn func(key string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.timer.Stop()
	d.generation++
	generation := d.generation

	d.timer = d.clock.AfterFunc(d.delay, func() {
		if !d.claim(generation, key) {
			return
		}
		fn(key)
	})
}

// claim marks key as issued unless the timer went stale or key was already issued
func (d *Debouncer) claim(generation uint64, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if generation != d.generation {
		return false
	}
	d.timer = nil
	if d.issued && d.lastKey == key {
		return false
	}
	d.lastKey = key
	d.issued = true
	return true
}

// Forget clears the last issued key if it still equals key, so it can be issued again
func (d *Debouncer) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.issued && d.lastKey == key {
		d.lastKey = ""
		d.issued = false
	}
}

func (d *Debouncer) LastIssued() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastKey, d.issued
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending call, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timer.Stop()
	d.timer = nil
	d.generation++
}

// Reset cancels the pending call and clears the last issued key
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timer.Stop()
	d.timer = nil
	d.generation++
	d.lastKey = ""
	d.issued = false
}
