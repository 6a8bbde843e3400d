package memory

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	expires time.Time
}

// RateLimiter is a fixed-window counter for single-process use. Expired
// windows are swept at most once per period.
type RateLimiter struct {
	mu        sync.Mutex
	windows   map[string]window
	limit     int64
	period    time.Duration
	lastSweep time.Time
	nowF      func() time.Time
}

func NewRateLimiter(limit int64, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]window),
		limit:   limit,
		period:  period,
		nowF:    time.Now,
	}
}

func (r *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowF()
	r.sweep(now)

	w, ok := r.windows[key]
	if !ok || !now.Before(w.expires) {
		w = window{expires: now.Add(r.period)}
	}
	w.count++
	r.windows[key] = w
	return w.count <= r.limit, nil
}

func (r *RateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < r.period {
		return
	}
	for key, w := range r.windows {
		if !now.Before(w.expires) {
			delete(r.windows, key)
		}
	}
	r.lastSweep = now
}
