// Package monitor is the control core of the appliance. It owns the
// operating-mode state machine, the active menu, the shutdown staging, and
// the refresh pipeline: timer ticks and button actions set a binary wake
// latch, and a single consumer loop wakes, runs one refresh pass against
// the data sources and the display, and blocks again.
package monitor

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ve3nkl/portable-ntp-server/internal/button"
	"github.com/ve3nkl/portable-ntp-server/internal/command"
	"github.com/ve3nkl/portable-ntp-server/internal/display"
	"github.com/ve3nkl/portable-ntp-server/internal/events"
	"github.com/ve3nkl/portable-ntp-server/internal/menu"
	"github.com/ve3nkl/portable-ntp-server/internal/source"
	"github.com/ve3nkl/portable-ntp-server/internal/timer"
)

// Mode is the operating mode of the monitor.
type Mode string

const (
	ModeRun     Mode = "run"
	ModeSleep   Mode = "sleep"
	ModeStopped Mode = "stopped"
)

// ShutdownStage tracks the two-phase shutdown: announce on the display
// first, power off on the pass after.
type ShutdownStage int

const (
	StageNone ShutdownStage = iota
	StageRequested
	StageConfirmed
)

// Config holds monitor tuning. Zero values are replaced by the defaults.
type Config struct {
	// RefreshInterval is the wall-clock-aligned display refresh cadence.
	RefreshInterval time.Duration
	// WifiMode is the mode the appliance boots in.
	WifiMode command.WifiMode
	// Top, Middle, Bottom are the GPIO line offsets of the buttons.
	Top, Middle, Bottom int
	// Now is the clock, injectable for tests.
	Now func() time.Time
}

const DefaultRefreshInterval = 5 * time.Second

func (c Config) withDefaults() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.WifiMode == "" {
		c.WifiMode = command.WifiAP
	}
	if c.Top == 0 {
		c.Top = button.DefaultOffsetTop
	}
	if c.Middle == 0 {
		c.Middle = button.DefaultOffsetMiddle
	}
	if c.Bottom == 0 {
		c.Bottom = button.DefaultOffsetBottom
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Deps are the monitor's collaborators. Buttons may be nil in tests that
// dispatch clicks directly; Publisher may be nil to disable event
// publishing.
type Deps struct {
	Position  source.Position
	TimeSync  source.TimeSync
	Network   source.Network
	Sink      display.Sink
	Runner    command.Runner
	Publisher events.Publisher
	Buttons   *button.Debouncer
	Log       zerolog.Logger
}

// Monitor serializes all appliance state changes: concurrent producers
// (timer ticks, button handlers) funnel through the mutex-guarded state
// and the wake latch; the single consumer loop does all display work.
type Monitor struct {
	log zerolog.Logger
	cfg Config

	position source.Position
	timesync source.TimeSync
	network  source.Network
	sink     display.Sink
	runner   command.Runner
	pub      events.Publisher
	buttons  *button.Debouncer

	refreshTimer *timer.WallClock

	// wake is a binary latch: a non-blocking send sets it, a receive
	// waits and clears it. Multiple sets before a clear coalesce, which
	// is intended; a refresh pass always reads live state.
	wake chan struct{}

	// static menus; the wifi menu is built on demand.
	mainMenu  *menu.Menu
	sleepMenu *menu.Menu
	powerMenu *menu.Menu
	exitMenu  *menu.Menu

	mu           sync.Mutex
	mode         Mode
	stage        ShutdownStage
	wifiMode     command.WifiMode
	current      *menu.Menu
	menuChanged  bool
	pictureDone  bool
	firstFixSeen bool

	refreshMu  sync.Mutex
	inProgress bool
}

// New creates a Monitor and registers the three panel buttons with the
// debouncer, if one is supplied.
func New(deps Deps, cfg Config) (*Monitor, error) {
	cfg = cfg.withDefaults()

	pub := deps.Publisher
	if pub == nil {
		pub = events.NopPublisher{}
	}

	m := &Monitor{
		log:          deps.Log.With().Str("component", "monitor").Logger(),
		cfg:          cfg,
		position:     deps.Position,
		timesync:     deps.TimeSync,
		network:      deps.Network,
		sink:         deps.Sink,
		runner:       deps.Runner,
		pub:          pub,
		buttons:      deps.Buttons,
		refreshTimer: timer.NewWallClock(),
		wake:         make(chan struct{}, 1),
		mode:         ModeRun,
		wifiMode:     cfg.WifiMode,
	}

	m.mainMenu = menu.New(
		menu.Entry{Icon: menu.IconRefresh, Short: menu.Refresh, Long: menu.Sleep},
		menu.Entry{Icon: menu.IconWifi, Short: menu.WifiSelect},
		menu.Entry{Icon: menu.IconPower, Short: menu.Power, Long: menu.ExitConfirm},
	)
	m.sleepMenu = menu.New(
		menu.Entry{Icon: menu.IconAlarm, Short: menu.Wakeup},
		menu.Entry{Icon: menu.IconEmpty},
		menu.Entry{Icon: menu.IconPower, Short: menu.Power},
	)
	m.powerMenu = menu.New(
		menu.Entry{Icon: menu.IconShutdown, Short: menu.Shutdown},
		menu.Entry{Icon: menu.IconBack, Short: menu.CancelShutdown},
		menu.Entry{Icon: menu.IconEmpty},
	)
	m.exitMenu = menu.New(
		menu.Entry{Icon: menu.IconExit, Short: menu.Exit},
		menu.Entry{Icon: menu.IconBack, Short: menu.CancelExit},
		menu.Entry{Icon: menu.IconEmpty},
	)
	m.current = m.mainMenu

	if m.buttons != nil {
		regs := []struct {
			id     button.ID
			offset int
			slot   menu.Slot
		}{
			{"TOP", cfg.Top, menu.Top},
			{"MIDDLE", cfg.Middle, menu.Middle},
			{"BOTTOM", cfg.Bottom, menu.Bottom},
		}
		for _, r := range regs {
			slot := r.slot
			err := m.buttons.Register(r.id, r.offset,
				func() { m.Click(slot, false) },
				func() { m.Click(slot, true) })
			if err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// Wake sets the wake latch. Safe from any goroutine; sets coalesce.
func (m *Monitor) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Run is the consumer loop: it starts the refresh timer, then blocks on
// the wake latch, runs one refresh pass per wake, and returns once the
// mode reaches stopped. The caller decides whether to power off afterwards
// (see ShutdownConfirmed).
func (m *Monitor) Run() {
	m.refreshTimer.Start(m.cfg.RefreshInterval, m.Wake)
	defer m.refreshTimer.Stop()

	m.publish(events.Event{Kind: events.KindStartup})
	m.log.Info().Dur("refresh", m.cfg.RefreshInterval).Msg("monitor running")

	for {
		<-m.wake
		m.refresh()
		if !m.IsRunning() {
			m.log.Info().Msg("monitor stopped")
			return
		}
	}
}

// IsRunning reports whether the monitor has not yet stopped.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode != ModeStopped
}

// Mode returns the current operating mode.
func (m *Monitor) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// WifiMode returns the current wifi mode.
func (m *Monitor) WifiMode() command.WifiMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wifiMode
}

// ShutdownConfirmed reports whether the two-phase shutdown completed and
// the system should power off.
func (m *Monitor) ShutdownConfirmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage == StageConfirmed
}

// Stop forces the monitor out of its loop without a power-off. Used by the
// daemon's signal handler; the panel keeps its last frame.
func (m *Monitor) Stop(reason string) {
	m.mu.Lock()
	if m.mode == ModeStopped {
		m.mu.Unlock()
		return
	}
	m.mode = ModeStopped
	m.mu.Unlock()
	m.publish(events.Event{Kind: events.KindShutdown, Reason: reason})
	m.Wake()
}

// Teardown stops the refresh timer and releases the button registrations.
// Safe to call after Run returns, or to abort from outside.
func (m *Monitor) Teardown() {
	m.refreshTimer.Stop()
	if m.buttons != nil {
		if err := m.buttons.Close(); err != nil {
			m.log.Error().Err(err).Msg("button teardown failed")
		}
	}
}

func (m *Monitor) publish(e events.Event) {
	e.Timestamp = m.cfg.Now()
	m.mu.Lock()
	e.Mode = string(m.mode)
	e.WifiMode = string(m.wifiMode)
	m.mu.Unlock()
	if err := m.pub.Publish(e); err != nil {
		m.log.Warn().Err(err).Str("kind", string(e.Kind)).Msg("event publish failed")
	}
}
