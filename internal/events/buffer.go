package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// DefaultBufferSize is how many events survive a broker outage.
const DefaultBufferSize = 64

// Buffered wraps a Publisher and parks events the broker refuses in a
// fixed-size ring, oldest dropped first on overflow. Parked events are
// replayed in order before the next event that finds the broker healthy, so
// a short outage loses nothing and a long one loses only the oldest states.
type Buffered struct {
	next Publisher
	log  zerolog.Logger

	mu   sync.Mutex
	ring ring
}

// NewBuffered wraps next with a ring of the given size (DefaultBufferSize
// when size is not positive).
func NewBuffered(next Publisher, log zerolog.Logger, size int) *Buffered {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffered{
		next: next,
		log:  log.With().Str("component", "events").Logger(),
		ring: ring{buf: make([]Event, size)},
	}
}

// Publish replays any parked events, then sends e. A refusal parks e and
// reports success; the outage is the buffer's problem, not the caller's.
func (b *Buffered) Publish(e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.flushLocked() {
		b.park(e)
		return nil
	}
	if err := b.next.Publish(e); err != nil {
		b.log.Debug().Err(err).Str("kind", string(e.Kind)).Msg("event parked")
		b.park(e)
	}
	return nil
}

// Pending returns the number of parked events.
func (b *Buffered) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ring.count
}

// Close tries one last replay, then closes the wrapped publisher.
func (b *Buffered) Close() error {
	b.mu.Lock()
	if !b.flushLocked() {
		b.log.Warn().Int("pending", b.ring.count).Msg("events lost at close")
	}
	b.mu.Unlock()
	return b.next.Close()
}

// flushLocked replays parked events oldest first. Returns false if the
// broker is still refusing.
func (b *Buffered) flushLocked() bool {
	for {
		e, ok := b.ring.oldest()
		if !ok {
			return true
		}
		if err := b.next.Publish(e); err != nil {
			return false
		}
		b.ring.dropOldest()
	}
}

func (b *Buffered) park(e Event) {
	if b.ring.push(e) {
		b.log.Warn().Int("size", len(b.ring.buf)).Msg("event buffer full, dropping oldest")
	}
}

// ring is a fixed-capacity event FIFO. Not safe for concurrent use.
type ring struct {
	buf   []Event
	head  int // next write position
	count int
}

// push appends e, overwriting the oldest entry when full. Reports whether
// an entry was lost.
func (r *ring) push(e Event) (dropped bool) {
	dropped = r.count == len(r.buf)
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if !dropped {
		r.count++
	}
	return dropped
}

func (r *ring) oldest() (Event, bool) {
	if r.count == 0 {
		return Event{}, false
	}
	i := (r.head - r.count + len(r.buf)) % len(r.buf)
	return r.buf[i], true
}

func (r *ring) dropOldest() {
	if r.count > 0 {
		r.count--
	}
}
