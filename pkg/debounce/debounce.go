// Package debounce coalesces bursts of calls into a single trailing invocation.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs its action once, delay after the most recent Trigger. A
// zero delay runs it as soon as the timer goroutine is scheduled.
// The action takes no arguments; it must read whatever state it needs when it
// fires, not when it was triggered.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	action func()
	timer  *time.Timer
	// gen invalidates timers that fired while being stopped or replaced
	gen uint64
}

func New(delay time.Duration, action func()) *Debouncer {
	return &Debouncer{
		delay:  delay,
		action: action,
	}
}

// Trigger cancels any pending invocation and schedules a new one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.action()
}

// Cancel drops the pending invocation, if any, and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}
