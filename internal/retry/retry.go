// Package retry implements configurable exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// Policy controls how many attempts are made and how long to wait between
// them. The wait before retry n (counting from 0) is BaseWait * Multiplier^n.
type Policy struct {
	MaxAttempts int
	BaseWait    time.Duration
	Multiplier  float64
	MaxWait     time.Duration // zero means uncapped
	Jitter      float64       // fraction of the delay, e.g. 0.3 for ±30%
}

// DefaultPolicy waits 1s, 2s, 4s... over three attempts.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseWait: time.Second, Multiplier: 2}
}

// Delay returns the wait before retry attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	delay := time.Duration(float64(p.BaseWait) * math.Pow(mult, float64(attempt)))
	if p.MaxWait > 0 && delay > p.MaxWait {
		delay = p.MaxWait
	}
	if p.Jitter > 0 {
		jitter := float64(delay) * p.Jitter
		delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
	}
	return delay
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry cancelled: %w", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// Retrier applies a Policy.
type Retrier struct {
	policy Policy
	sleep  SleepFunc
	logger *slog.Logger
}

// New returns a Retrier that sleeps for real.
func New(p Policy, logger *slog.Logger) *Retrier {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return &Retrier{policy: p, sleep: Sleep, logger: logger}
}

// WithSleep replaces the sleep function, mainly so tests can record waits.
func (r *Retrier) WithSleep(fn SleepFunc) *Retrier {
	r.sleep = fn
	return r
}

// Policy returns the policy in effect.
func (r *Retrier) Policy() Policy {
	return r.policy
}

// MaxRetryAfter bounds a server's Retry-After hint when the policy has no
// MaxWait of its own.
const MaxRetryAfter = 2 * time.Minute

// Backoff waits before the retry that follows a failed attempt. A Retry-After
// hint on an HTTP error takes precedence over the computed delay, clamped to
// MaxWait (or MaxRetryAfter when MaxWait is unset).
func (r *Retrier) Backoff(ctx context.Context, attempt int, err error) error {
	delay := r.policy.Delay(attempt)
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		delay = httpErr.RetryAfter
		limit := r.policy.MaxWait
		if limit <= 0 {
			limit = MaxRetryAfter
		}
		if delay > limit {
			r.logger.Debug("clamping retry-after", "requested", delay, "limit", limit)
			delay = limit
		}
	}

	r.logger.Warn("retrying after error",
		"attempt", attempt+1,
		"max_attempts", r.policy.MaxAttempts,
		"delay", delay,
		"error", err,
	)
	return r.sleep(ctx, delay)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned in the latter case.
func Do[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := r.Backoff(ctx, attempt-1, lastErr); err != nil {
				return zero, err
			}
		}
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, fmt.Errorf("%w: %w", ctxErr, err)
		}
		if !IsRetryable(ctx, err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// IsRetryable reports whether err is worth another attempt. Job boards answer
// bot-like traffic with assorted statuses, so everything is retried unless the
// caller's ctx is done or err is an explicit cancellation. An http.Client
// timeout also matches context.DeadlineExceeded, so deadline errors are only
// final when they come from ctx itself.
func IsRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
