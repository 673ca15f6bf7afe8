// Package timer provides the two repeating-timer primitives the monitor is
// built on: Interval fires on a fixed cadence measured from intended firing
// times, WallClock fires at absolute clock boundaries. Both guarantee that
// no further callback runs once Stop has returned.
package timer

import (
	"sync"
	"time"
)

// startupDelay is how long after Start the first Interval firing happens.
const startupDelay = time.Millisecond

// Interval calls a function repeatedly on a fixed cadence. Each firing is
// scheduled relative to the intended time of the previous firing, not the
// actual one, so callback execution time does not accumulate as drift. If a
// callback overruns the interval entirely, the schedule is rounded forward
// to the next multiple of the interval instead of firing a burst of
// catch-up calls.
type Interval struct {
	mu     sync.Mutex
	cancel chan struct{}
	done   chan struct{}
	active bool
}

// NewInterval returns an inactive timer. Call Start to begin firing.
func NewInterval() *Interval {
	return &Interval{}
}

// Start schedules fn to run every interval, with the first call almost
// immediately. fn runs on the timer's own goroutine and reports whether the
// timer should keep firing; returning false deactivates the timer from
// inside the callback, which is the only safe way to stop it from there.
// Calling Start while active resets the schedule. Start must not be called
// from the callback itself.
func (t *Interval) Start(interval time.Duration, fn func() bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	cancel := make(chan struct{})
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.active = true

	go func() {
		runInterval(interval, fn, cancel)
		close(done)
		// Voluntary exit (fn returned false): clear our own state,
		// unless Stop or a newer Start already replaced it.
		t.mu.Lock()
		if t.done == done {
			t.cancel = nil
			t.done = nil
			t.active = false
		}
		t.mu.Unlock()
	}()
}

func runInterval(interval time.Duration, fn func() bool, cancel <-chan struct{}) {
	next := time.Now().Add(startupDelay)
	wait := time.NewTimer(startupDelay)
	defer wait.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-wait.C:
		}

		if !fn() {
			return
		}

		next = next.Add(interval)
		sleep := time.Until(next)
		if sleep < 0 {
			// The callback overran the interval. Round the intended
			// time forward to the next multiple of the interval so
			// we do not fire a backlog of immediate calls.
			behind := -sleep
			steps := behind/interval + 1
			next = next.Add(steps * interval)
			sleep = time.Until(next)
		}
		wait.Reset(sleep)
	}
}

// Stop cancels any pending firing and waits for the timer goroutine to
// exit; after it returns the callback will not run again. Stop on an
// inactive timer is a no-op. Safe from any goroutine except the callback's
// own (the callback stops the timer by returning false instead).
func (t *Interval) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Interval) stopLocked() {
	if !t.active {
		return
	}
	close(t.cancel)
	<-t.done
	t.cancel = nil
	t.done = nil
	t.active = false
}

// IsActive reports whether the timer is currently scheduled.
func (t *Interval) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
