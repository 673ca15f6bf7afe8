package command

import (
	"sync"
	"time"
)

// FakeRunner records invocations for test assertions.
type FakeRunner struct {
	mu sync.Mutex

	// WifiModes contains every mode passed to SetWifiMode, in order.
	WifiModes []WifiMode

	// ClockSets contains every time passed to SetClock, in order.
	ClockSets []time.Time

	// Shutdowns counts Shutdown calls.
	Shutdowns int
}

// NewFakeRunner creates a FakeRunner for testing.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

func (f *FakeRunner) SetWifiMode(mode WifiMode) {
	f.mu.Lock()
	f.WifiModes = append(f.WifiModes, mode)
	f.mu.Unlock()
}

func (f *FakeRunner) SetClock(t time.Time) {
	f.mu.Lock()
	f.ClockSets = append(f.ClockSets, t)
	f.mu.Unlock()
}

func (f *FakeRunner) Shutdown() {
	f.mu.Lock()
	f.Shutdowns++
	f.mu.Unlock()
}

// Calls returns snapshots of everything recorded.
func (f *FakeRunner) Calls() (wifi []WifiMode, clocks []time.Time, shutdowns int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wifi = append([]WifiMode(nil), f.WifiModes...)
	clocks = append([]time.Time(nil), f.ClockSets...)
	return wifi, clocks, f.Shutdowns
}
