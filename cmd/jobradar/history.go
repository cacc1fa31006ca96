package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List jobs already processed for a profile",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries to print (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	name := profileName
	if name == "" {
		name = cfg.ActiveProfile
	}
	if _, ok := cfg.Profiles[name]; !ok {
		return fmt.Errorf("unknown profile %q", name)
	}

	_, entries, err := loadProfileState(cfg, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-16s %-10s %-40s %-20s %s\n", "Job ID", "Seen", "Title", "Company", "Scores")
	fmt.Fprintln(os.Stdout, strings.Repeat("─", 110))

	shown := entries
	if historyLimit > 0 && len(shown) > historyLimit {
		shown = shown[:historyLimit]
	}
	for _, e := range shown {
		fmt.Fprintf(os.Stdout, "%-16s %-10s %-40s %-20s %s\n",
			e.ID, e.FirstSeen.Local().Format("2006-01-02"), clip(e.Title, 40), clip(e.Company, 20), formatScores(e.Scores))
	}

	fmt.Fprintf(os.Stdout, "\nProfile %s: %d jobs in history (showing %d)\n", name, len(entries), len(shown))
	return nil
}

func formatScores(scores map[string]int) string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, scores[k]))
	}
	return strings.Join(parts, " ")
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
