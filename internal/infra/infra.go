// Package infra provides shared infrastructure components used across
// the application: caching, rate limiting, HTTP access and logging.
package infra

import (
	"context"
	"sync"
	"time"
)

// --- Rate limiter ---

// RateLimiter is a fixed-window token bucket: up to burst calls per
// window, refilled in whole windows.
type RateLimiter struct {
	mu          sync.Mutex
	burst       int
	window      time.Duration
	left        int
	windowStart time.Time
	now         func() time.Time
}

// NewRateLimiter allows burst calls per window. A non-positive burst
// disables limiting.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		burst:       burst,
		window:      window,
		left:        burst,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// Wait blocks until a call is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.burst <= 0 {
		return ctx.Err()
	}
	for {
		delay := rl.reserve()
		if delay == 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until the next
// window opens.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if rl.window <= 0 {
		return 0
	}
	if elapsed := now.Sub(rl.windowStart); elapsed >= rl.window {
		rl.windowStart = rl.windowStart.Add(elapsed.Truncate(rl.window))
		rl.left = rl.burst
	}
	if rl.left > 0 {
		rl.left--
		return 0
	}
	return rl.windowStart.Add(rl.window).Sub(now)
}
