package button

import (
	"fmt"
	"sync"
)

// FakeEdgeSource is a test double that lets tests inject edge transitions.
type FakeEdgeSource struct {
	mu       sync.Mutex
	handlers map[int]func(pressed bool)

	// Closed tracks if Close was called.
	Closed bool

	// WatchError, if set, will be returned by Watch.
	WatchError error
}

// NewFakeEdgeSource creates a FakeEdgeSource for testing.
func NewFakeEdgeSource() *FakeEdgeSource {
	return &FakeEdgeSource{handlers: make(map[int]func(bool))}
}

// Watch records the handler for the given offset.
func (f *FakeEdgeSource) Watch(offset int, fn func(pressed bool)) error {
	if f.WatchError != nil {
		return f.WatchError
	}
	f.mu.Lock()
	f.handlers[offset] = fn
	f.mu.Unlock()
	return nil
}

// Trigger synchronously delivers an edge to the watcher of the given
// offset. It panics if the offset was never watched, which in a test means
// the registration under test is broken.
func (f *FakeEdgeSource) Trigger(offset int, pressed bool) {
	f.mu.Lock()
	fn, ok := f.handlers[offset]
	f.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("button: no watcher for offset %d", offset))
	}
	fn(pressed)
}

// Close marks the source as closed.
func (f *FakeEdgeSource) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.handlers = make(map[int]func(bool))
	f.mu.Unlock()
	return nil
}
