package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List all configured profiles",
	Long:  "Reads the config and prints a table of all profiles and their scoring tracks.",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("%-20s %-8s %-6s %s\n", "Profile", "Kind", "Min", "Tracks")
	fmt.Println(strings.Repeat("─", 60))

	for _, name := range cfg.ProfileNames() {
		p := cfg.Profiles[name]
		keys := make([]string, 0, len(p.Tracks))
		for _, t := range p.Tracks {
			keys = append(keys, t.Key)
		}
		marker := ""
		if name == cfg.ActiveProfile {
			marker = " (active)"
		}
		fmt.Printf("%-20s %-8s %-6d %s%s\n", name, p.Kind, *p.MinFitScore, strings.Join(keys, ", "), marker)
	}

	fmt.Printf("\nTotal: %d profiles\n", len(cfg.Profiles))
	return nil
}
