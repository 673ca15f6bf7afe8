// Package menu defines the immutable menu bundles the monitor cycles
// through: three button icons plus an action tag for each click kind. A
// menu never references the monitor; the monitor dispatches the tags, so
// there is no ownership cycle between the two.
package menu

// Action tags what the monitor should do when a menu slot is clicked.
type Action int

const (
	None Action = iota
	Refresh
	Sleep
	Wakeup
	WifiSelect
	WifiHome
	WifiField
	WifiOff
	CancelWifi
	Power
	ExitConfirm
	Shutdown
	CancelShutdown
	Exit
	CancelExit
)

var actionNames = map[Action]string{
	None:           "none",
	Refresh:        "refresh",
	Sleep:          "sleep",
	Wakeup:         "wakeup",
	WifiSelect:     "wifi-select",
	WifiHome:       "wifi-home",
	WifiField:      "wifi-field",
	WifiOff:        "wifi-off",
	CancelWifi:     "cancel-wifi",
	Power:          "power",
	ExitConfirm:    "exit-confirm",
	Shutdown:       "shutdown",
	CancelShutdown: "cancel-shutdown",
	Exit:           "exit",
	CancelExit:     "cancel-exit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Slot selects one of the three physical buttons.
type Slot int

const (
	Top Slot = iota
	Middle
	Bottom
)

// Icon names resolved by the display collaborator. The empty icon renders
// as a blank slot.
const (
	IconEmpty     = "empty"
	IconRefresh   = "refresh"
	IconWifi      = "wifi"
	IconPower     = "power"
	IconAlarm     = "alarm-clock"
	IconShutdown  = "shutdown"
	IconBack      = "back"
	IconExit      = "exit"
	IconHomeWifi  = "home-wifi"
	IconFieldWifi = "field-wifi"
	IconNoWifi    = "no-wifi"
)

// Entry is one slot of a menu: the icon shown next to the button and the
// actions for a short and a long click.
type Entry struct {
	Icon  string
	Short Action
	Long  Action
}

// Menu is an immutable bundle of three entries. Construct with New and
// treat as read-only afterwards.
type Menu struct {
	entries [3]Entry
}

// New builds a menu from its top, middle and bottom entries.
func New(top, middle, bottom Entry) *Menu {
	return &Menu{entries: [3]Entry{top, middle, bottom}}
}

// Entry returns the entry for the given slot.
func (m *Menu) Entry(s Slot) Entry {
	return m.entries[s]
}

// Icons returns the three icon names in top, middle, bottom order.
func (m *Menu) Icons() [3]string {
	return [3]string{m.entries[Top].Icon, m.entries[Middle].Icon, m.entries[Bottom].Icon}
}

// ActionFor returns the action for a short or long click on the given slot.
func (m *Menu) ActionFor(s Slot, long bool) Action {
	if long {
		return m.entries[s].Long
	}
	return m.entries[s].Short
}
