package events

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func click(n int) Event {
	return Event{Kind: KindClick, Button: fmt.Sprintf("B%d", n)}
}

func TestBufferedPassesThroughWhenHealthy(t *testing.T) {
	next := NewFakePublisher()
	b := NewBuffered(next, zerolog.Nop(), 4)

	if err := b.Publish(click(1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := len(next.Recorded()); got != 1 {
		t.Errorf("delivered %d events, want 1", got)
	}
	if b.Pending() != 0 {
		t.Errorf("pending = %d, want 0", b.Pending())
	}
}

func TestBufferedParksDuringOutageAndReplays(t *testing.T) {
	next := NewFakePublisher()
	b := NewBuffered(next, zerolog.Nop(), 4)

	next.PublishError = errors.New("broker down")
	b.Publish(click(1))
	b.Publish(click(2))
	if got := b.Pending(); got != 2 {
		t.Fatalf("pending = %d, want 2", got)
	}
	if got := len(next.Recorded()); got != 0 {
		t.Fatalf("delivered %d events during outage", got)
	}

	next.PublishError = nil
	b.Publish(click(3))

	got := next.Recorded()
	if len(got) != 3 {
		t.Fatalf("delivered %d events after recovery, want 3", len(got))
	}
	for i, e := range got {
		if want := fmt.Sprintf("B%d", i+1); e.Button != want {
			t.Errorf("event %d = %q, want %q (replay out of order)", i, e.Button, want)
		}
	}
	if b.Pending() != 0 {
		t.Errorf("pending = %d after replay, want 0", b.Pending())
	}
}

func TestBufferedOverflowDropsOldest(t *testing.T) {
	next := NewFakePublisher()
	b := NewBuffered(next, zerolog.Nop(), 3)

	next.PublishError = errors.New("broker down")
	for i := 1; i <= 5; i++ {
		b.Publish(click(i))
	}
	if got := b.Pending(); got != 3 {
		t.Fatalf("pending = %d, want 3", got)
	}

	next.PublishError = nil
	b.Publish(click(6))

	got := next.Recorded()
	want := []string{"B3", "B4", "B5", "B6"}
	if len(got) != len(want) {
		t.Fatalf("delivered %d events, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Button != want[i] {
			t.Errorf("event %d = %q, want %q", i, e.Button, want[i])
		}
	}
}

func TestBufferedCloseClosesNext(t *testing.T) {
	next := NewFakePublisher()
	b := NewBuffered(next, zerolog.Nop(), 2)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !next.Closed {
		t.Error("wrapped publisher not closed")
	}
}
