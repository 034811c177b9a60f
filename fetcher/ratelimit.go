package fetcher

import (
	"sync"
	"time"
)

// rateLimiter is a simple token bucket, refilled once per second. It
// exists to keep the fetcher from hammering a public RPC endpoint when
// streaming or backfilling a range of slots.
type rateLimiter struct {
	mu               sync.Mutex
	permitsPerSecond int
	available        int
	lastRefill       time.Time
}

func newRateLimiter(permitsPerSecond int) *rateLimiter {
	if permitsPerSecond <= 0 {
		permitsPerSecond = 10
	}
	return &rateLimiter{
		permitsPerSecond: permitsPerSecond,
		available:        permitsPerSecond,
		lastRefill:       time.Now(),
	}
}

// acquire blocks until a permit is available.
func (r *rateLimiter) acquire() {
	for {
		r.mu.Lock()
		r.refillLocked()
		if r.available > 0 {
			r.available--
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
		time.Sleep(100 * time.Millisecond)
	}
}

func (r *rateLimiter) refillLocked() {
	elapsed := time.Since(r.lastRefill)
	if elapsed < time.Second {
		return
	}
	r.available = r.permitsPerSecond
	r.lastRefill = time.Now()
}
