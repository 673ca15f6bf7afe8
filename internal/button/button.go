// Package button turns raw GPIO edge transitions into debounced short and
// long click events. Each registered button tracks two state variables: the
// momentary state written by the edge callback, and the debounced state
// committed by a high-frequency poll once the momentary state has been
// stable for the settle duration. The poll only runs while at least one
// button is mid-transition.
package button

import "time"

// State is the logical position of a button.
type State string

const (
	StateUp   State = "UP"
	StateDown State = "DOWN"
)

// ID identifies a registered button.
type ID string

// Handler is invoked when a click is classified. Handlers run synchronously
// on the debounce poll goroutine.
type Handler func()

// Default GPIO line offsets for the three panel buttons (BCM numbering).
const (
	DefaultOffsetTop    = 26
	DefaultOffsetMiddle = 6
	DefaultOffsetBottom = 5
)

// Button holds the identity and the two-sided state of one physical button.
// The momentary side is written by the edge callback, the debounced side
// only by the poll. Both sides are guarded by the Debouncer's mutex.
type Button struct {
	id     ID
	offset int
	short  Handler
	long   Handler

	momentary   State
	momentaryAt time.Time
	debounced   State
	debouncedAt time.Time
}

func newButton(id ID, offset int, short, long Handler, now time.Time) *Button {
	return &Button{
		id:          id,
		offset:      offset,
		short:       short,
		long:        long,
		momentary:   StateUp,
		momentaryAt: now,
		debounced:   StateUp,
		debouncedAt: now,
	}
}

// press records a raw DOWN edge. A duplicate press without an intervening
// release is a no-op, which absorbs repeated edge notifications from a
// bouncing contact.
func (b *Button) press(now time.Time) {
	if b.momentary == StateUp {
		b.momentary = StateDown
		b.momentaryAt = now
	}
}

// release records a raw UP edge. Idempotent like press.
func (b *Button) release(now time.Time) {
	if b.momentary == StateDown {
		b.momentary = StateUp
		b.momentaryAt = now
	}
}

// settled reports whether the debounced state has caught up with the
// momentary state.
func (b *Button) settled() bool {
	return b.momentary == b.debounced
}
