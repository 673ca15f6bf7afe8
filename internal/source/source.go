// Package source defines the update-then-read contracts for the external
// data the monitor displays: the GPS fix, the chrony time-sync statistics,
// and the network interface status. Implementations refresh their fields on
// Update and retain the last good values when a read fails; the monitor
// never sees an error from them, only possibly stale fields.
package source

import "time"

// FixQuality is the GPS fix mode as displayed: none, acquiring, 2D or 3D.
type FixQuality string

const (
	FixNone FixQuality = "  "
	FixSeek FixQuality = "--"
	Fix2D   FixQuality = "2D"
	Fix3D   FixQuality = "3D"
)

// NoGrid is displayed in place of the locator before a 3D fix.
const NoGrid = "--------"

// Position exposes the GPS fix. Acquiring the fix (gpsd shared memory,
// NMEA) is a collaborator concern; this package carries only the contract
// and a test fake.
type Position interface {
	// Update refreshes all fields from the GPS. Failures keep the last
	// good values.
	Update()

	Fix() FixQuality
	// Satellites returns the visible and in-use satellite counts.
	Satellites() (visible, inUse int)
	// Coordinates returns latitude, longitude in degrees and altitude
	// in meters.
	Coordinates() (lat, lon, alt float64)
	// EpochTime is the GPS time observed with the last 3D fix.
	EpochTime() time.Time
	// MaxError is the larger of the horizontal position errors, meters.
	MaxError() int
	// Grid is the Maidenhead locator, or NoGrid without a 3D fix.
	Grid() string
	// TimezoneAbbrev is the abbreviation at the fix position ("EST"),
	// empty when unknown or purely numeric.
	TimezoneAbbrev() string
	// TimezoneOffset is the UTC offset at the fix position ("-0500").
	TimezoneOffset() string
	// Declination is the formatted magnetic declination ("W10.3°").
	Declination() string
}

// TimeSync exposes the chrony tracking state.
type TimeSync interface {
	Update()

	// SourceID is the currently selected time source ("GPPS").
	SourceID() string
	// Offset is the source offset in engineering notation ("103ns").
	Offset() string
	// Deviation is the offset standard deviation, same notation.
	Deviation() string
}

// Network exposes per-interface status lines.
type Network interface {
	Update()

	// Status returns "<iface>: <address or inactive>", with the client
	// lease count appended for the access-point interface.
	Status(iface string) string
}
