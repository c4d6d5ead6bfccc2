package sandbox

import (
	"sync"
	"time"

	"github.com/mangayouknow/extcore/domain"
)

// rateLimiter is a token bucket with a deliberately coarse refill rule:
// refill only fires once at least one full second has elapsed since the
// last refill, and it adds a whole second's worth of tokens per whole
// second elapsed, never a fractional, continuously-compounding rate.
type rateLimiter struct {
	mu                   sync.Mutex
	maxRequestsPerSecond int
	tokens               int
	lastRefill           time.Time
}

func newRateLimiter(maxRequestsPerSecond int) *rateLimiter {
	return &rateLimiter{
		maxRequestsPerSecond: maxRequestsPerSecond,
		tokens:               maxRequestsPerSecond,
		lastRefill:           time.Now(),
	}
}

func (r *rateLimiter) check() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refillLocked()

	if r.tokens > 0 {
		r.tokens--
		return nil
	}
	return domain.NewHTTPError("Rate limit exceeded. Please try again later.")
}

func (r *rateLimiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill)

	if elapsed >= time.Second {
		secondsPassed := int(elapsed.Seconds())
		r.tokens = min(r.maxRequestsPerSecond, r.tokens+r.maxRequestsPerSecond*secondsPassed)
		r.lastRefill = now
	}
}

func (r *rateLimiter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = r.maxRequestsPerSecond
	r.lastRefill = time.Now()
}
