package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatPayload(t *testing.T) {
	e := Event{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Kind:      KindModeChange,
		Mode:      "sleep",
		WifiMode:  "AP",
	}

	payload, err := FormatPayload(e)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Payload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	m := decoded.Monitor
	if m.Timestamp != "2026-01-02T03:04:05Z" {
		t.Errorf("timestamp = %q", m.Timestamp)
	}
	if m.Event != "MODE_CHANGE" || m.Mode != "sleep" || m.WifiMode != "AP" {
		t.Errorf("unexpected fields: %+v", m)
	}
	if m.Button != "" || m.Reason != "" {
		t.Errorf("empty fields should stay empty: %+v", m)
	}
}

func TestSystemTopicSelection(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{KindStartup, true},
		{KindShutdown, true},
		{KindModeChange, false},
		{KindWifiChange, false},
		{KindClick, false},
	}
	for _, tc := range cases {
		if got := (Event{Kind: tc.kind}).System(); got != tc.want {
			t.Errorf("System() for %s = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestRateLimitedDropsClickBursts(t *testing.T) {
	fake := NewFakePublisher()
	limited := NewRateLimited(fake, 2)

	for i := 0; i < 10; i++ {
		if err := limited.Publish(Event{Kind: KindClick, Button: "TOP"}); err != nil {
			t.Fatal(err)
		}
	}

	got := len(fake.Recorded())
	if got > 2 {
		t.Errorf("expected at most 2 clicks through the limiter, got %d", got)
	}
	if got == 0 {
		t.Error("limiter let no clicks through at all")
	}
}

func TestRateLimitedPassesLifecycle(t *testing.T) {
	fake := NewFakePublisher()
	limited := NewRateLimited(fake, 1)

	for i := 0; i < 5; i++ {
		if err := limited.Publish(Event{Kind: KindModeChange}); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(fake.Recorded()); got != 5 {
		t.Errorf("mode changes must not be rate limited, got %d of 5", got)
	}

	if err := limited.Close(); err != nil {
		t.Fatal(err)
	}
	if !fake.Closed {
		t.Error("Close should propagate to the wrapped publisher")
	}
}
