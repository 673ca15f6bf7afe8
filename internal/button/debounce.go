package button

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ve3nkl/portable-ntp-server/internal/timer"
)

// Config holds the debounce timing parameters. Zero values are replaced by
// the defaults.
type Config struct {
	// PollInterval is the cadence of the settle poll while any button is
	// mid-transition.
	PollInterval time.Duration
	// Settle is how long the momentary state must hold before it is
	// committed to the debounced state.
	Settle time.Duration
	// LongPress is the minimum held duration for a long click.
	LongPress time.Duration
	// Now is the clock, injectable for tests.
	Now func() time.Time
}

const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultSettle       = 100 * time.Millisecond
	DefaultLongPress    = time.Second
)

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Settle <= 0 {
		c.Settle = DefaultSettle
	}
	if c.LongPress <= 0 {
		c.LongPress = DefaultLongPress
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Debouncer owns the registered buttons and the on-demand settle poll. Raw
// edges arm the poll; the poll commits stable momentary states, classifies
// completed presses as short or long clicks, and stops itself once every
// button is settled again.
type Debouncer struct {
	cfg  Config
	src  EdgeSource
	log  zerolog.Logger
	poll *timer.Interval

	mu      sync.Mutex
	buttons map[int]*Button
}

// NewDebouncer creates a Debouncer reading edges from src. It owns src and
// closes it on Close.
func NewDebouncer(src EdgeSource, log zerolog.Logger, cfg Config) *Debouncer {
	return &Debouncer{
		cfg:     cfg.withDefaults(),
		src:     src,
		log:     log.With().Str("component", "button").Logger(),
		poll:    timer.NewInterval(),
		buttons: make(map[int]*Button),
	}
}

// Register adds a button on the given GPIO line offset. Either handler may
// be nil, in which case the corresponding click kind is ignored.
func (d *Debouncer) Register(id ID, offset int, short, long Handler) error {
	d.mu.Lock()
	if _, dup := d.buttons[offset]; dup {
		d.mu.Unlock()
		return fmt.Errorf("button: line offset %d already registered", offset)
	}
	d.buttons[offset] = newButton(id, offset, short, long, d.cfg.Now())
	d.mu.Unlock()

	if err := d.src.Watch(offset, func(pressed bool) {
		d.handleEdge(offset, pressed)
	}); err != nil {
		d.mu.Lock()
		delete(d.buttons, offset)
		d.mu.Unlock()
		return fmt.Errorf("button: watch line %d: %w", offset, err)
	}

	d.log.Debug().Str("button", string(id)).Int("offset", offset).Msg("registered")
	return nil
}

// handleEdge is the raw edge callback. It updates the momentary state and
// arms the settle poll. Arming while the poll already runs just resets its
// schedule.
func (d *Debouncer) handleEdge(offset int, pressed bool) {
	now := d.cfg.Now()

	d.mu.Lock()
	b, ok := d.buttons[offset]
	if !ok {
		d.mu.Unlock()
		return
	}
	if pressed {
		b.press(now)
	} else {
		b.release(now)
	}
	d.mu.Unlock()

	d.poll.Start(d.cfg.PollInterval, d.checkTransitions)
}

// checkTransitions is the poll body. It commits momentary states that have
// been stable for the settle duration, fires click handlers for completed
// releases, and reports whether any button remains unsettled so the poll
// knows to keep running.
func (d *Debouncer) checkTransitions() bool {
	now := d.cfg.Now()

	var fire []Handler
	unsettled := false

	d.mu.Lock()
	for _, b := range d.buttons {
		if b.settled() {
			continue
		}
		if now.Sub(b.momentaryAt) < d.cfg.Settle {
			unsettled = true
			continue
		}

		wasAt := b.debouncedAt
		b.debounced = b.momentary
		b.debouncedAt = b.momentaryAt

		if b.debounced == StateUp {
			held := b.debouncedAt.Sub(wasAt)
			if held >= d.cfg.LongPress {
				d.log.Info().Str("button", string(b.id)).Dur("held", held).Msg("long click")
				if b.long != nil {
					fire = append(fire, b.long)
				}
			} else {
				d.log.Info().Str("button", string(b.id)).Dur("held", held).Msg("short click")
				if b.short != nil {
					fire = append(fire, b.short)
				}
			}
		}
	}
	d.mu.Unlock()

	for _, h := range fire {
		h()
	}

	return unsettled
}

// Polling reports whether the settle poll is currently armed.
func (d *Debouncer) Polling() bool {
	return d.poll.IsActive()
}

// Close stops the poll and releases the edge source. No handler fires after
// Close returns.
func (d *Debouncer) Close() error {
	d.poll.Stop()
	err := d.src.Close()

	d.mu.Lock()
	d.buttons = make(map[int]*Button)
	d.mu.Unlock()
	return err
}
