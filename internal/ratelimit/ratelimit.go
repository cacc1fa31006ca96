// Package ratelimit spaces out requests to third-party sites.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Well-known pacing keys.
const (
	KeyFetch  = "fetch"
	KeySearch = "search"
)

// Pacer enforces a fixed minimum delay between consecutive calls that share a
// key. The first call for a key never waits, and the delay does not adapt.
// Spacing is measured between the starts of calls, so time the caller spends
// working after Wait returns counts toward the next delay.
type Pacer struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

// NewPacer returns a Pacer that allows one call per delay per key.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

func (p *Pacer) limiterFor(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lim, ok := p.limiters[key]; ok {
		return lim
	}
	limit := rate.Inf
	if p.delay > 0 {
		limit = rate.Every(p.delay)
	}
	lim := rate.NewLimiter(limit, 1)
	p.limiters[key] = lim
	return lim
}

// Wait blocks until a call for key is allowed.
func (p *Pacer) Wait(ctx context.Context, key string) error {
	if err := p.limiterFor(key).Wait(ctx); err != nil {
		return fmt.Errorf("pacer wait for %s: %w", key, err)
	}
	return nil
}

// Delay returns the configured spacing.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}
