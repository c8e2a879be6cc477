// Package autosave persists the editor document after a quiet period and
// restores it on the next start.
package autosave

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period between the last change and the save.
const DefaultDelay = 400 * time.Millisecond

// State of a Debouncer.
type State int

const (
	// Idle has no save pending.
	Idle State = iota
	// Scheduled has exactly one save pending.
	Scheduled
)

func (s State) String() string {
	if s == Scheduled {
		return "scheduled"
	}
	return "idle"
}

// Debouncer coalesces bursts of changes into one save. Every Schedule call
// cancels the pending save and starts the quiet period over.
type Debouncer struct {
	mu    sync.Mutex
	clock Clock
	delay time.Duration
	save  func()
	state State
	timer Timer
	// gen invalidates callbacks of timers that were stopped too late.
	gen uint64
}

// NewDebouncer creates an idle debouncer. A nil clock means SystemClock and a
// non-positive delay means DefaultDelay.
func NewDebouncer(delay time.Duration, clock Clock, save func()) *Debouncer {
	if clock == nil {
		clock = SystemClock{}
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{clock: clock, delay: delay, save: save}
}

// Schedule (re)starts the quiet period.
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
	d.state = Scheduled
}

// Flush saves right away if a save is pending and reports whether it did.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.state != Scheduled {
		d.mu.Unlock()
		return false
	}
	d.cancelLocked()
	d.mu.Unlock()

	d.save()
	return true
}

// Stop drops a pending save.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// State returns the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.state = Idle
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.state != Scheduled {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.state = Idle
	d.mu.Unlock()

	d.save()
}
