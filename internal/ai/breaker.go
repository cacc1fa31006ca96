package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerProvider stops calling a provider that keeps failing, so an outage
// degrades the rest of the run quickly instead of paying a timeout per job.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerProvider trips after maxFailures consecutive failures and probes
// again after cooldown.
func NewBreakerProvider(inner Provider, maxFailures uint32, cooldown time.Duration, logger *slog.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "scoring",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("scoring circuit changed state", "from", from.String(), "to", to.String())
		},
	})
	return &BreakerProvider{inner: inner, cb: cb}
}

func (b *BreakerProvider) Complete(ctx context.Context, req Request) (Completion, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Complete(ctx, req)
	})
	if err != nil {
		return Completion{}, err
	}
	return res.(Completion), nil
}
