package monitor

import (
	"fmt"

	"github.com/ve3nkl/portable-ntp-server/internal/display"
	"github.com/ve3nkl/portable-ntp-server/internal/source"
)

// Panel layout. Coordinates are the rectangles the original face was
// designed around; the button icon column sits at x 210.
var (
	dialRegion        = display.Region{Left: 10, Top: 0, Right: 50, Bottom: 40}
	ntpBoxRegion      = display.Region{Left: 5, Top: 52, Right: 65, Bottom: 102}
	ntpSourceRegion   = display.Region{Left: 8, Top: 57, Right: 62, Bottom: 75}
	ntpDevRegion      = display.Region{Left: 8, Top: 77, Right: 62, Bottom: 97}
	gridRegion        = display.Region{Left: 95, Top: 0, Right: 205, Bottom: 26}
	altitudeRegion    = display.Region{Left: 94, Top: 27, Right: 205, Bottom: 57}
	declValueRegion   = display.Region{Left: 55, Top: 0, Right: 95, Bottom: 8}
	declLetterRegion  = display.Region{Left: 69, Top: 15, Right: 80, Bottom: 23}
	tzAbbrevRegion    = display.Region{Left: 75, Top: 54, Right: 114, Bottom: 69}
	tzOffsetRegion    = display.Region{Left: 75, Top: 70, Right: 114, Bottom: 82}
	clockHourRegion   = display.Region{Left: 120, Top: 52, Right: 159, Bottom: 82}
	clockColonRegion  = display.Region{Left: 154, Top: 52, Right: 165, Bottom: 82}
	clockMinuteRegion = display.Region{Left: 170, Top: 52, Right: 205, Bottom: 82}
	dateRegion        = display.Region{Left: 95, Top: 85, Right: 200, Bottom: 100}
	statusRegion      = display.Region{Left: 0, Top: 105, Right: 185, Bottom: 112}
)

const (
	iconColumnX = 210
	iconRowStep = 40
)

// refresh runs one pass of the display pipeline. Concurrent callers
// collapse into the one pass already running; the pass reads live state, so
// a collapsed wake loses nothing. The in-progress flag is released no
// matter how the pass went.
func (m *Monitor) refresh() {
	m.refreshMu.Lock()
	if m.inProgress {
		m.refreshMu.Unlock()
		return
	}
	m.inProgress = true
	m.refreshMu.Unlock()

	defer func() {
		m.refreshMu.Lock()
		m.inProgress = false
		m.refreshMu.Unlock()
	}()

	switch m.Mode() {
	case ModeRun:
		m.refreshRun()
	case ModeSleep:
		m.refreshSleep()
	}

	// the pass that painted the shutdown announcement is the last one
	m.mu.Lock()
	if m.stage == StageConfirmed {
		m.mode = ModeStopped
	}
	m.mu.Unlock()
}

func (m *Monitor) refreshRun() {
	m.position.Update()
	m.timesync.Update()
	m.network.Update()

	m.maybeSetClock()

	m.mu.Lock()
	icons := m.current.Icons()
	m.menuChanged = false
	shuttingDown := m.stage != StageNone
	if m.stage == StageRequested {
		m.stage = StageConfirmed
	}
	m.pictureDone = false
	m.mu.Unlock()

	m.sink.Clear()
	m.renderButtons(icons)

	_, inUse := m.position.Satellites()
	m.sink.Dial(string(m.position.Fix()), inUse, dialRegion)

	m.sink.Frame(ntpBoxRegion)
	m.sink.Text(ljust(m.timesync.SourceID(), 5)[:5], display.Font18, ntpSourceRegion)
	m.sink.Text(rjust(m.timesync.Deviation(), 5), display.Font18, ntpDevRegion)

	m.sink.Text(m.position.Grid(), display.Font24, gridRegion)

	_, _, alt := m.position.Coordinates()
	m.sink.Text(rjust(fmt.Sprintf("%+d", int(alt)), 7)+"m", display.Font24, altitudeRegion)

	m.renderDeclination()
	m.renderDateTime()

	if shuttingDown {
		m.sink.Text("Shutting down ...", display.Font12, statusRegion)
	} else {
		m.sink.Text(m.network.Status(source.IfaceWlan), display.Font12, statusRegion)
	}

	m.sink.Commit()
}

// refreshSleep repaints only when something actually changed: the sleep
// screen is static and every full e-ink refresh flashes the panel.
func (m *Monitor) refreshSleep() {
	m.mu.Lock()
	repaint := m.menuChanged || !m.pictureDone || m.stage == StageRequested
	shuttingDown := m.stage == StageRequested
	icons := m.current.Icons()
	m.menuChanged = false
	if shuttingDown {
		m.stage = StageConfirmed
	}
	if repaint {
		m.pictureDone = true
	}
	m.mu.Unlock()

	if !repaint {
		return
	}

	if shuttingDown {
		m.sink.Icon(display.PictureShuttingDown, 0, 0)
	} else {
		m.sink.Icon(display.PictureScreenSaver, 0, 0)
		m.renderButtons(icons)
	}
	m.sink.CommitFull()
}

// maybeSetClock pushes the GPS time into the system clock once, on the
// first 3D fix. Until chrony takes over the Pi has no battery-backed clock
// worth trusting.
func (m *Monitor) maybeSetClock() {
	if m.position.Fix() != source.Fix3D {
		return
	}
	m.mu.Lock()
	first := !m.firstFixSeen
	m.firstFixSeen = true
	m.mu.Unlock()
	if !first {
		return
	}
	t := m.position.EpochTime()
	m.log.Info().Time("gps", t).Msg("setting system clock from first 3D fix")
	m.runner.SetClock(t)
}

func (m *Monitor) renderButtons(icons [3]string) {
	for i, name := range icons {
		m.sink.Icon(name, iconColumnX, i*iconRowStep)
	}
}

// renderDeclination splits the declination into its hemisphere letter and
// the numeric part, drawn on separate lines beside the dial.
func (m *Monitor) renderDeclination() {
	decl := m.position.Declination()
	letter, value := "", ""
	if decl != "" {
		letter, value = decl[:1], decl[1:]
	}
	m.sink.Text(value, display.Font12, declValueRegion)
	m.sink.Text(letter, display.Font12, declLetterRegion)
}

func (m *Monitor) renderDateTime() {
	now := m.cfg.Now().UTC()

	m.sink.Text(ljust(m.position.TimezoneAbbrev(), 4)+" ☀", display.Font12, tzAbbrevRegion)
	if offs := m.position.TimezoneOffset(); len(offs) >= 5 {
		m.sink.Text(offs[:3]+":"+offs[3:5], display.Font12, tzOffsetRegion)
	}

	hhmm := now.Format("1504")
	m.sink.Text(":", display.Font32, clockColonRegion)
	m.sink.Text(hhmm[:2], display.Font32, clockHourRegion)
	m.sink.Text(hhmm[2:], display.Font32, clockMinuteRegion)
	m.sink.Text(now.Format("Mon Jan 02"), display.Font18, dateRegion)
}

func ljust(s string, n int) string {
	return fmt.Sprintf("%-*s", n, s)
}

func rjust(s string, n int) string {
	return fmt.Sprintf("%*s", n, s)
}
