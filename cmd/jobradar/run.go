package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/review"
)

var runInteractive bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once",
	Long: "Searches, scores and filters new postings for the profile, then saves results and " +
		"history and sends the configured notification.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "show a spinner while running, then open the review TUI")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if runInteractive {
		// Log output would corrupt the spinner and TUI.
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a, err := buildApp(ctx, cfg, profileName, buildOptions{notify: true}, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if !runInteractive {
		if _, err := a.coordinator.Run(ctx); err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		return nil
	}

	results, err := review.RunLoader(ctx, "profile "+a.profile.Name, a.coordinator.Run)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	fmt.Fprintln(os.Stdout, summaryLine(results))
	return review.Run(a.profile.Name, results, a.history.Entries())
}

func summaryLine(r *model.Results) string {
	md := r.Metadata
	return fmt.Sprintf("%d searched, %d new, %d analyzed, %d shortlisted, %d failed (%s)",
		md.TotalSearched, md.NewJobsFound, md.JobsAnalyzed, len(r.Jobs), md.JobsFailed, md.Usage)
}
