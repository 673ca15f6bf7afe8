package source

import (
	"sync"
	"time"
)

// FakePosition is a scriptable Position for tests. Set the public fields,
// then point the monitor at it.
type FakePosition struct {
	mu sync.Mutex

	FixMode      FixQuality
	Visible      int
	InUse        int
	Lat          float64
	Lon          float64
	Alt          float64
	Epoch        time.Time
	MaxErrMeters int
	TzAbbrev     string
	TzOffset     string
	Decl         string

	// Updates counts Update calls.
	Updates int
}

// NewFakePosition creates a FakePosition with no fix.
func NewFakePosition() *FakePosition {
	return &FakePosition{FixMode: FixNone}
}

// Set3DFix scripts a 3D fix at the given position and GPS time.
func (f *FakePosition) Set3DFix(lat, lon, alt float64, epoch time.Time) {
	f.mu.Lock()
	f.FixMode = Fix3D
	f.Lat, f.Lon, f.Alt = lat, lon, alt
	f.Epoch = epoch
	f.mu.Unlock()
}

func (f *FakePosition) Update() {
	f.mu.Lock()
	f.Updates++
	f.mu.Unlock()
}

func (f *FakePosition) Fix() FixQuality {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FixMode
}

func (f *FakePosition) Satellites() (visible, inUse int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Visible, f.InUse
}

func (f *FakePosition) Coordinates() (lat, lon, alt float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Lat, f.Lon, f.Alt
}

func (f *FakePosition) EpochTime() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Epoch
}

func (f *FakePosition) MaxError() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MaxErrMeters
}

func (f *FakePosition) Grid() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FixMode != Fix3D {
		return NoGrid
	}
	return Maidenhead(f.Lat, f.Lon)
}

func (f *FakePosition) TimezoneAbbrev() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TzAbbrev
}

func (f *FakePosition) TimezoneOffset() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TzOffset
}

func (f *FakePosition) Declination() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Decl
}

// FakeTimeSync is a scriptable TimeSync for tests.
type FakeTimeSync struct {
	mu sync.Mutex

	ID  string
	Off string
	Dev string

	Updates int
}

// NewFakeTimeSync creates a FakeTimeSync reporting the given source.
func NewFakeTimeSync(id string) *FakeTimeSync {
	return &FakeTimeSync{ID: id}
}

func (f *FakeTimeSync) Update() {
	f.mu.Lock()
	f.Updates++
	f.mu.Unlock()
}

func (f *FakeTimeSync) SourceID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ID
}

func (f *FakeTimeSync) Offset() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Off
}

func (f *FakeTimeSync) Deviation() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Dev
}

// FakeNetwork is a scriptable Network for tests.
type FakeNetwork struct {
	mu sync.Mutex

	// Lines maps interface name to status line.
	Lines map[string]string

	Updates int
}

// NewFakeNetwork creates a FakeNetwork with no interfaces.
func NewFakeNetwork() *FakeNetwork {
	return &FakeNetwork{Lines: make(map[string]string)}
}

func (f *FakeNetwork) Update() {
	f.mu.Lock()
	f.Updates++
	f.mu.Unlock()
}

func (f *FakeNetwork) SetStatus(iface, line string) {
	f.mu.Lock()
	f.Lines[iface] = line
	f.mu.Unlock()
}

func (f *FakeNetwork) Status(iface string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if line, ok := f.Lines[iface]; ok {
		return line
	}
	return iface + ": unknown"
}
