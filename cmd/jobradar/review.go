package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/config"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/review"
	"github.com/amishk599/jobradar/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse results and history interactively (TUI)",
	Long: "Shows the profile picker (unless --profile is set), then the split-pane view of the " +
		"latest shortlist and everything in history.",
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if profileName != "" {
		return reviewProfile(cfg, profileName)
	}

	names := cfg.ProfileNames()
	if len(names) == 1 {
		return reviewProfile(cfg, names[0])
	}

	options := make([]review.ProfileOption, 0, len(names))
	for _, n := range names {
		p := cfg.Profiles[n]
		keys := make([]string, 0, len(p.Tracks))
		for _, t := range p.Tracks {
			keys = append(keys, t.Key)
		}
		options = append(options, review.ProfileOption{Name: n, Tracks: keys, Active: n == cfg.ActiveProfile})
	}

	choice, err := review.RunProfilePicker(options)
	if err != nil {
		return fmt.Errorf("profile picker: %w", err)
	}
	if choice < 0 {
		return nil
	}
	return reviewProfile(cfg, names[choice])
}

func reviewProfile(cfg *config.Config, name string) error {
	if _, ok := cfg.Profiles[name]; !ok {
		return fmt.Errorf("unknown profile %q", name)
	}
	results, entries, err := loadProfileState(cfg, name)
	if err != nil {
		return err
	}
	return review.Run(name, results, entries)
}

// loadProfileState reads the latest results (nil if the profile never ran)
// and the history entries for a profile.
func loadProfileState(cfg *config.Config, name string) (*model.Results, []store.Entry, error) {
	results, err := store.LoadResults(store.ResultsPath(cfg.Storage.DataDir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}

	history, err := store.Open(cfg.Storage.HistoryBackend, cfg.Storage.DataDir, name)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history: %w", err)
	}
	defer history.Close()

	return results, history.Entries(), nil
}
