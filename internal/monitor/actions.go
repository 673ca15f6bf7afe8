package monitor

import (
	"github.com/ve3nkl/portable-ntp-server/internal/command"
	"github.com/ve3nkl/portable-ntp-server/internal/events"
	"github.com/ve3nkl/portable-ntp-server/internal/menu"
)

var slotNames = map[menu.Slot]string{
	menu.Top:    "TOP",
	menu.Middle: "MIDDLE",
	menu.Bottom: "BOTTOM",
}

// Click dispatches a classified button click against the active menu. An
// action whose guard does not match the current mode is a silent no-op, so
// a click raced against a menu swap can never corrupt state.
func (m *Monitor) Click(slot menu.Slot, long bool) {
	m.mu.Lock()
	action := m.current.ActionFor(slot, long)
	m.mu.Unlock()

	kind := "short"
	if long {
		kind = "long"
	}
	m.log.Debug().Str("button", slotNames[slot]).Str("click", kind).
		Stringer("action", action).Msg("click")
	m.publish(events.Event{Kind: events.KindClick, Button: slotNames[slot], Click: kind})

	m.dispatch(action)
}

func (m *Monitor) dispatch(action menu.Action) {
	switch action {
	case menu.None:
		return
	case menu.Refresh:
		m.actionRefresh()
	case menu.Sleep:
		m.actionSleep()
	case menu.Wakeup:
		m.actionWakeup()
	case menu.WifiSelect:
		m.actionWifiSelect()
	case menu.WifiHome:
		m.actionSetWifi(command.WifiClient)
	case menu.WifiField:
		m.actionSetWifi(command.WifiAP)
	case menu.WifiOff:
		m.actionSetWifi(command.WifiOff)
	case menu.CancelWifi:
		m.actionCancelWifi()
	case menu.Power:
		m.actionPower()
	case menu.ExitConfirm:
		m.actionExitConfirm()
	case menu.Shutdown:
		m.actionShutdown()
	case menu.CancelShutdown, menu.CancelExit:
		m.actionCancel()
	case menu.Exit:
		m.actionExit()
	}
	m.Wake()
}

// actionRefresh forces a full panel refresh on the next pass.
func (m *Monitor) actionRefresh() {
	if m.Mode() != ModeRun {
		return
	}
	m.sink.RequestFullRefresh()
}

func (m *Monitor) actionSleep() {
	m.mu.Lock()
	if m.mode != ModeRun {
		m.mu.Unlock()
		return
	}
	m.mode = ModeSleep
	m.setMenuLocked(m.sleepMenu)
	m.mu.Unlock()
	m.publish(events.Event{Kind: events.KindModeChange})
}

func (m *Monitor) actionWakeup() {
	m.mu.Lock()
	if m.mode != ModeSleep {
		m.mu.Unlock()
		return
	}
	m.mode = ModeRun
	m.setMenuLocked(m.mainMenu)
	m.mu.Unlock()
	// the screen-saver leaves ghosting a partial refresh cannot clean
	m.sink.RequestFullRefresh()
	m.publish(events.Event{Kind: events.KindModeChange})
}

func (m *Monitor) actionWifiSelect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeRun {
		return
	}
	m.setMenuLocked(wifiMenu(m.wifiMode))
}

// wifiMenu builds the selection menu for the current wifi mode: the slot
// that would select the already active mode holds the back icon instead.
func wifiMenu(active command.WifiMode) *menu.Menu {
	home := menu.Entry{Icon: menu.IconHomeWifi, Short: menu.WifiHome}
	field := menu.Entry{Icon: menu.IconFieldWifi, Short: menu.WifiField}
	off := menu.Entry{Icon: menu.IconNoWifi, Short: menu.WifiOff}
	back := menu.Entry{Icon: menu.IconBack, Short: menu.CancelWifi}

	switch active {
	case command.WifiClient:
		return menu.New(back, field, off)
	case command.WifiOff:
		return menu.New(home, field, back)
	default: // access point
		return menu.New(home, back, off)
	}
}

func (m *Monitor) actionSetWifi(mode command.WifiMode) {
	m.mu.Lock()
	if m.mode != ModeRun {
		m.mu.Unlock()
		return
	}
	m.wifiMode = mode
	m.setMenuLocked(m.mainMenu)
	m.mu.Unlock()
	m.runner.SetWifiMode(mode)
	m.publish(events.Event{Kind: events.KindWifiChange})
}

func (m *Monitor) actionCancelWifi() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeRun {
		return
	}
	m.setMenuLocked(m.mainMenu)
}

func (m *Monitor) actionPower() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeRun && m.mode != ModeSleep {
		return
	}
	m.setMenuLocked(m.powerMenu)
}

func (m *Monitor) actionExitConfirm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeRun && m.mode != ModeSleep {
		return
	}
	m.setMenuLocked(m.exitMenu)
}

// actionShutdown stages the power-off: the next refresh pass announces it
// on the display, and the pass after that the monitor stops.
func (m *Monitor) actionShutdown() {
	m.mu.Lock()
	if m.mode != ModeRun && m.mode != ModeSleep {
		m.mu.Unlock()
		return
	}
	m.stage = StageRequested
	m.mu.Unlock()
	m.publish(events.Event{Kind: events.KindShutdown, Reason: "power-button"})
}

// actionCancel backs out of a confirmation menu into the menu matching the
// current mode.
func (m *Monitor) actionCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.mode {
	case ModeRun:
		m.setMenuLocked(m.mainMenu)
	case ModeSleep:
		m.setMenuLocked(m.sleepMenu)
	}
}

// actionExit stops the monitor without powering the system off.
func (m *Monitor) actionExit() {
	m.mu.Lock()
	if m.mode != ModeRun && m.mode != ModeSleep {
		m.mu.Unlock()
		return
	}
	m.mode = ModeStopped
	m.mu.Unlock()
	m.publish(events.Event{Kind: events.KindModeChange})
}

func (m *Monitor) setMenuLocked(next *menu.Menu) {
	if m.current == next {
		return
	}
	m.current = next
	m.menuChanged = true
}
