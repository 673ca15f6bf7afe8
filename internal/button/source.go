package button

// EdgeSource delivers raw press/release transitions for GPIO lines.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
type EdgeSource interface {
	// Watch subscribes to both edges of the given line offset. fn is
	// called with pressed=true on a falling edge (the buttons are wired
	// active-low with pull-ups) and pressed=false on a rising edge. fn
	// runs on the source's own goroutine.
	Watch(offset int, fn func(pressed bool)) error

	// Close releases GPIO resources. No fn is called after Close returns.
	Close() error
}
