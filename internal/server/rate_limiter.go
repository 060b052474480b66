// Package server implements a token bucket rate limiter for per-connection
// throttling that protects a room from a single noisy participant.
package server

import (
	"sync"
	"time"
)

// tokenBucket refills continuously at capacity tokens per interval and is
// consulted once per inbound frame.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

func newTokenBucket(cfg RateLimitConfig, now func() time.Time) *tokenBucket {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if now == nil {
		now = time.Now
	}

	return &tokenBucket{
		tokens:   float64(cfg.Burst),
		capacity: float64(cfg.Burst),
		perSec:   float64(cfg.Burst) / cfg.RefillInterval.Seconds(),
		last:     now(),
		now:      now,
	}
}

// allow takes one token and reports whether one was available.
func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.now()
	if elapsed := current.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.perSec)
	}
	b.last = current

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
