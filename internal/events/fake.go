package events

import "sync"

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Events contains all events that were published.
	Events []Event

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the event.
func (f *FakePublisher) Publish(e Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	f.Events = append(f.Events, e)

	payload, err := FormatPayload(e)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Recorded returns a snapshot of all published events.
func (f *FakePublisher) Recorded() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.Events))
	copy(out, f.Events)
	return out
}

// Kinds returns the kinds of all published events, in order.
func (f *FakePublisher) Kinds() []Kind {
	var out []Kind
	for _, e := range f.Recorded() {
		out = append(out, e.Kind)
	}
	return out
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	f.Events = nil
	f.Payloads = nil
	f.Closed = false
	f.PublishError = nil
	f.mu.Unlock()
}
