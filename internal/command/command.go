// Package command issues the appliance's OS-level side effects: switching
// the wifi mode, setting the system clock from the GPS, and powering off.
// All invocations are fire-and-forget; the monitor never inspects exit
// status beyond best-effort logging.
package command

import "time"

// WifiMode is the network operating mode of the appliance.
type WifiMode string

const (
	// WifiAP is field mode: the appliance runs its own access point.
	WifiAP WifiMode = "AP"
	// WifiClient is home mode: the appliance joins a known network.
	WifiClient WifiMode = "CLIENT"
	// WifiOff disables wireless entirely.
	WifiOff WifiMode = "OFF"
)

// Runner invokes external commands on behalf of the monitor.
type Runner interface {
	// SetWifiMode switches the network operating mode.
	SetWifiMode(mode WifiMode)

	// SetClock sets the system clock. Used once, when the first 3D fix
	// delivers GPS time before NTP has converged.
	SetClock(t time.Time)

	// Shutdown powers the system off.
	Shutdown()
}
