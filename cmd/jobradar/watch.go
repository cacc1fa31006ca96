package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the pipeline on a schedule",
	Long: "Runs immediately, then again every schedule.interval; blocks until SIGINT/SIGTERM. " +
		"Failed runs are retried on the next tick unless results or history could not be saved.",
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, profileName, buildOptions{notify: true}, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.NewScheduler(a.coordinator, cfg.Schedule.Interval, fatalRunError, logger)
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler stopped: %w", err)
	}

	logger.Info("goodbye")
	return nil
}
