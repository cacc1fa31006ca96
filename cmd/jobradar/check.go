package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run once without saving anything",
	Long: "Dry run: searches and scores like run, logs the shortlist and exits. History and " +
		"results are left untouched, so the same jobs will be processed again next time.",
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, profileName, buildOptions{dryRun: true}, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.coordinator.Run(ctx)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Fprintln(os.Stdout, summaryLine(results))
	for i, j := range results.Jobs {
		fmt.Fprintf(os.Stdout, "%2d. %3d%%  %s at %s\n     %s\n", i+1, j.BestScore(), j.Title, j.Company, j.URL)
	}
	return nil
}
