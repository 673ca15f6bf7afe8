// Package display defines the draw-and-commit contract the monitor renders
// through. Driving the actual e-ink panel (SPI transfers, waveform init,
// font rasterization) is the panel collaborator's job; the monitor only
// composes frames out of these primitives.
package display

// Font selects one of the fixed monospace sizes the panel provides.
type Font int

const (
	Font12 Font = 12
	Font18 Font = 18
	Font24 Font = 24
	Font32 Font = 32
)

// Region is a rectangle on the panel in pixel coordinates, given by its
// corners.
type Region struct {
	Left, Top, Right, Bottom int
}

// Panel dimensions of the 2.13" e-ink module, landscape.
const (
	Width  = 250
	Height = 122
)

// Full-screen picture names.
const (
	PictureScreenSaver  = "screen-saver"
	PictureShuttingDown = "shutting-down"
)

// Sink receives draw primitives and commits them to the panel. A commit
// failure is the sink's to log; the monitor retries naturally on the next
// pass.
type Sink interface {
	// Text blanks the region and draws s into it with the given font.
	Text(s string, font Font, r Region)

	// Icon pastes the named icon (or full-screen picture) with its
	// top-left corner at x, y.
	Icon(name string, x, y int)

	// Frame draws an outlined, blanked rectangle.
	Frame(r Region)

	// Dial draws the satellite dial: a ring labeled with the fix
	// quality, filled proportionally to the number of satellites in use.
	Dial(label string, used int, r Region)

	// Clear blanks the whole frame.
	Clear()

	// Commit flushes the composed frame with a partial refresh, or a
	// full one if a full refresh was requested since the last Commit.
	Commit()

	// CommitFull flushes the composed frame with a full panel refresh.
	CommitFull()

	// RequestFullRefresh arms a one-shot full-panel refresh consumed by
	// the next Commit. Used after sleep or on explicit user request,
	// when partial refresh artifacts have accumulated.
	RequestFullRefresh()
}
