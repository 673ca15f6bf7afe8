// Package events publishes appliance lifecycle events to MQTT: startup and
// shutdown, operating-mode and wifi-mode changes, and classified button
// clicks. Publishing is best-effort; a broker outage degrades to log lines,
// never to monitor misbehavior.
package events

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for monitor state events.
const Topic = "time/ntp-monitor/events"

// TopicSystem is the MQTT topic for lifecycle events.
const TopicSystem = "time/ntp-monitor/system"

// Kind classifies an event.
type Kind string

const (
	KindStartup    Kind = "STARTUP"
	KindShutdown   Kind = "SHUTDOWN"
	KindModeChange Kind = "MODE_CHANGE"
	KindWifiChange Kind = "WIFI_CHANGE"
	KindClick      Kind = "CLICK"
)

// Event is one appliance state change.
type Event struct {
	Timestamp time.Time
	Kind      Kind

	// Mode is the operating mode after the event (run/sleep/stopped).
	Mode string
	// WifiMode is the wifi mode after the event (AP/CLIENT/OFF).
	WifiMode string
	// Button and Click are set for click events.
	Button string
	Click  string
	// Reason is set for shutdown events.
	Reason string
}

// System reports whether the event belongs on the lifecycle topic.
func (e Event) System() bool {
	return e.Kind == KindStartup || e.Kind == KindShutdown
}

// Publisher publishes monitor events.
type Publisher interface {
	// Publish sends the event to the broker. Failures must not crash
	// the caller.
	Publish(e Event) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the JSON wire structure.
type Payload struct {
	Monitor MonitorPayload `json:"monitor"`
}

// MonitorPayload carries the event details.
type MonitorPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Mode      string `json:"mode,omitempty"`
	WifiMode  string `json:"wifi_mode,omitempty"`
	Button    string `json:"button,omitempty"`
	Click     string `json:"click,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// FormatPayload creates the JSON payload for an event.
func FormatPayload(e Event) ([]byte, error) {
	return json.Marshal(Payload{
		Monitor: MonitorPayload{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(e.Kind),
			Mode:      e.Mode,
			WifiMode:  e.WifiMode,
			Button:    e.Button,
			Click:     e.Click,
			Reason:    e.Reason,
		},
	})
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }
func (NopPublisher) Close() error        { return nil }
