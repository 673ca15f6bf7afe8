package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// tolerance for scheduling jitter in real-time tests. Generous so the tests
// stay reliable on loaded CI machines.
const tolerance = 25 * time.Millisecond

func TestIntervalFirstFiringIsImmediate(t *testing.T) {
	tm := NewInterval()
	fired := make(chan time.Time, 1)

	start := time.Now()
	tm.Start(time.Second, func() bool {
		select {
		case fired <- time.Now():
		default:
		}
		return true
	})
	defer tm.Stop()

	select {
	case at := <-fired:
		if d := at.Sub(start); d > tolerance {
			t.Errorf("first firing took %v, expected near-immediate", d)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timer never fired")
	}
}

func TestIntervalCadence(t *testing.T) {
	tm := NewInterval()
	interval := 50 * time.Millisecond

	var mu sync.Mutex
	var firings []time.Time

	tm.Start(interval, func() bool {
		mu.Lock()
		firings = append(firings, time.Now())
		mu.Unlock()
		return true
	})

	time.Sleep(6 * interval)
	tm.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(firings) < 4 {
		t.Fatalf("expected at least 4 firings, got %d", len(firings))
	}
	for i := 1; i < len(firings); i++ {
		gap := firings[i].Sub(firings[i-1])
		if gap < interval-tolerance || gap > interval+tolerance {
			t.Errorf("gap %d was %v, expected about %v", i, gap, interval)
		}
		if !firings[i].After(firings[i-1]) {
			t.Errorf("firing %d regressed: %v then %v", i, firings[i-1], firings[i])
		}
	}
}

func TestIntervalCatchUpAfterOverrun(t *testing.T) {
	tm := NewInterval()
	interval := 40 * time.Millisecond

	var mu sync.Mutex
	var firings []time.Time
	var calls int

	tm.Start(interval, func() bool {
		mu.Lock()
		firings = append(firings, time.Now())
		calls++
		overrun := calls == 2
		mu.Unlock()
		if overrun {
			// Overrun the interval by more than 2x.
			time.Sleep(2*interval + interval/2)
		}
		return true
	})

	time.Sleep(8 * interval)
	tm.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(firings) < 4 {
		t.Fatalf("expected at least 4 firings, got %d", len(firings))
	}
	for i := 1; i < len(firings); i++ {
		gap := firings[i].Sub(firings[i-1])
		// Never a rapid-fire catch-up burst, and recovery to cadence
		// within one extra interval of the overrun.
		if gap < interval-tolerance {
			t.Errorf("gap %d was %v, faster than interval %v", i, gap, interval)
		}
		if gap > 4*interval {
			t.Errorf("gap %d was %v, did not recover within one missed interval", i, gap)
		}
	}
}

func TestIntervalStopIsIdempotent(t *testing.T) {
	tm := NewInterval()

	// Stop while inactive is a no-op.
	tm.Stop()
	tm.Stop()

	tm.Start(10*time.Millisecond, func() bool { return true })
	if !tm.IsActive() {
		t.Error("timer should be active after Start")
	}
	tm.Stop()
	tm.Stop()
	if tm.IsActive() {
		t.Error("timer should be inactive after Stop")
	}
}

func TestIntervalNoFiringAfterStop(t *testing.T) {
	tm := NewInterval()
	var count atomic.Int64

	tm.Start(5*time.Millisecond, func() bool {
		count.Add(1)
		return true
	})
	time.Sleep(30 * time.Millisecond)
	tm.Stop()

	at := count.Load()
	time.Sleep(50 * time.Millisecond)
	if after := count.Load(); after != at {
		t.Errorf("callback fired %d more times after Stop returned", after-at)
	}
}

func TestIntervalCallbackCanStopItself(t *testing.T) {
	tm := NewInterval()
	var count atomic.Int64

	tm.Start(5*time.Millisecond, func() bool {
		return count.Add(1) < 3
	})

	time.Sleep(100 * time.Millisecond)
	if got := count.Load(); got != 3 {
		t.Errorf("expected exactly 3 firings, got %d", got)
	}
	if tm.IsActive() {
		t.Error("timer should deactivate itself after callback returns false")
	}

	// A later Start must work again after a voluntary stop.
	tm.Start(5*time.Millisecond, func() bool {
		count.Add(1)
		return false
	})
	time.Sleep(50 * time.Millisecond)
	if got := count.Load(); got != 4 {
		t.Errorf("expected restart to fire once more, got total %d", got)
	}
}

func TestIntervalStartWhileActiveResets(t *testing.T) {
	tm := NewInterval()
	var first, second atomic.Int64

	tm.Start(5*time.Millisecond, func() bool {
		first.Add(1)
		return true
	})
	time.Sleep(20 * time.Millisecond)

	tm.Start(5*time.Millisecond, func() bool {
		second.Add(1)
		return true
	})
	firstAt := first.Load()
	time.Sleep(30 * time.Millisecond)
	tm.Stop()

	if first.Load() != firstAt {
		t.Error("old schedule kept firing after Start reset it")
	}
	if second.Load() == 0 {
		t.Error("new schedule never fired")
	}
}

func TestWallClockBoundaryAlignment(t *testing.T) {
	tm := NewWallClock()
	interval := 50 * time.Millisecond

	var mu sync.Mutex
	var firings []time.Time

	tm.Start(interval, func() {
		mu.Lock()
		firings = append(firings, time.Now())
		mu.Unlock()
	})

	// Enough for at least 20 firings.
	time.Sleep(22 * interval)
	tm.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(firings) < 20 {
		t.Fatalf("expected at least 20 firings, got %d", len(firings))
	}
	for i, at := range firings {
		phase := time.Duration(at.UnixNano()) % interval
		// Phase is either just past zero, or just shy of the next
		// boundary when the timer fired a hair early.
		if phase > tolerance && interval-phase > tolerance {
			t.Errorf("firing %d at phase %v of %v, expected near a boundary", i, phase, interval)
		}
	}
}

func TestWallClockStopIsIdempotent(t *testing.T) {
	tm := NewWallClock()
	tm.Stop()

	tm.Start(10*time.Millisecond, func() {})
	if !tm.IsActive() {
		t.Error("timer should be active after Start")
	}
	tm.Stop()
	tm.Stop()
	if tm.IsActive() {
		t.Error("timer should be inactive after Stop")
	}
}

func TestWallClockNoFiringAfterStop(t *testing.T) {
	tm := NewWallClock()
	var count atomic.Int64

	tm.Start(5*time.Millisecond, func() {
		count.Add(1)
	})
	time.Sleep(30 * time.Millisecond)
	tm.Stop()

	at := count.Load()
	time.Sleep(50 * time.Millisecond)
	if after := count.Load(); after != at {
		t.Errorf("callback fired %d more times after Stop returned", after-at)
	}
}

func TestUntilBoundary(t *testing.T) {
	base := time.Unix(1000, 0)

	cases := []struct {
		name     string
		now      time.Time
		interval time.Duration
		want     time.Duration
	}{
		{"exactly on boundary", base, 5 * time.Second, 5 * time.Second},
		{"one second past", base.Add(time.Second), 5 * time.Second, 4 * time.Second},
		{"just before boundary", base.Add(4*time.Second + 999*time.Millisecond), 5 * time.Second, time.Millisecond},
		{"sub-second interval", base.Add(30 * time.Millisecond), 50 * time.Millisecond, 20 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := untilBoundary(tc.now, tc.interval); got != tc.want {
				t.Errorf("untilBoundary(%v, %v) = %v, want %v", tc.now, tc.interval, got, tc.want)
			}
		})
	}
}
