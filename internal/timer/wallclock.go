package timer

import (
	"sync"
	"time"
)

// WallClock calls a function at absolute clock boundaries: with a 5s
// interval the callback fires at :00, :05, :10 and so on, phase-locked to
// the wall clock rather than to when Start was called. After each firing
// the next boundary is re-derived from the live clock, so drift during the
// callback never accumulates into the schedule.
type WallClock struct {
	mu     sync.Mutex
	cancel chan struct{}
	done   chan struct{}
	active bool
}

// NewWallClock returns an inactive timer. Call Start to begin firing.
func NewWallClock() *WallClock {
	return &WallClock{}
}

// Start schedules fn to run at every multiple of interval measured from the
// Unix epoch, beginning with the next one. fn runs on the timer's own
// goroutine. Calling Start while active resets the schedule.
func (t *WallClock) Start(interval time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	cancel := make(chan struct{})
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	t.active = true

	go runWallClock(interval, fn, cancel, done)
}

func runWallClock(interval time.Duration, fn func(), cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	wait := time.NewTimer(untilBoundary(time.Now(), interval))
	defer wait.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-wait.C:
		}

		fn()

		wait.Reset(untilBoundary(time.Now(), interval))
	}
}

// untilBoundary returns the time remaining until the next multiple of
// interval measured from the Unix epoch.
func untilBoundary(now time.Time, interval time.Duration) time.Duration {
	r := time.Duration(now.UnixNano()) % interval
	return interval - r
}

// Stop cancels any pending firing and waits for the timer goroutine to
// exit; after it returns the callback will not run again. Stop on an
// inactive timer is a no-op. Safe from any goroutine except the callback's
// own.
func (t *WallClock) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *WallClock) stopLocked() {
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
func (t *WallClock) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}
