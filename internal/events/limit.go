package events

import "golang.org/x/time/rate"

// RateLimited wraps a Publisher and drops click events over the configured
// rate. Lifecycle and mode events always pass; only clicks can burst (a
// worn switch, a leaning thumb), and flooding the broker with them helps
// nobody.
type RateLimited struct {
	next    Publisher
	limiter *rate.Limiter
}

// NewRateLimited wraps next, allowing clicksPerSec click events with a
// burst of the same size.
func NewRateLimited(next Publisher, clicksPerSec int) *RateLimited {
	if clicksPerSec <= 0 {
		clicksPerSec = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(clicksPerSec), clicksPerSec),
	}
}

// Publish forwards the event, dropping over-rate clicks silently.
func (r *RateLimited) Publish(e Event) error {
	if e.Kind == KindClick && !r.limiter.Allow() {
		return nil
	}
	return r.next.Publish(e)
}

// Close closes the wrapped publisher.
func (r *RateLimited) Close() error {
	return r.next.Close()
}
