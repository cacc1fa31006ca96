// Package scheduler repeats pipeline runs for watch mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// Runner executes one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*model.Results, error)
}

// Scheduler owns the watch loop: it runs once immediately, then again each
// interval after the previous run finished. Runs never overlap.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	fatal    func(error) bool
	logger   *slog.Logger
}

// NewScheduler creates a scheduler. Run errors for which fatal returns true
// stop the loop; all others are logged. A nil fatal treats no error as fatal.
func NewScheduler(runner Runner, interval time.Duration, fatal func(error) bool, logger *slog.Logger) *Scheduler {
	if fatal == nil {
		fatal = func(error) bool { return false }
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		fatal:    fatal,
		logger:   logger,
	}
}

// Run starts the loop. It returns nil when ctx is cancelled (graceful
// shutdown) and the run error when it is fatal.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	for cycle := 1; ; cycle++ {
		if err := s.runOnce(ctx, cycle); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, cycle int) error {
	if ctx.Err() != nil {
		return nil
	}
	start := time.Now()
	res, err := s.runner.Run(ctx)
	if err != nil {
		if s.fatal(err) {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		s.logger.Error("run failed", "cycle", cycle, "error", err)
		return nil
	}
	s.logger.Info("cycle complete",
		"cycle", cycle,
		"kept", len(res.Jobs),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"next_run", time.Now().Add(s.interval).Format(time.Kitchen),
	)
	return nil
}
