package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// version is stamped with -ldflags "-X main.version=..." on release builds.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version, commit and toolchain info",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(cmd.OutOrStdout(), versionString(version, info))
	},
}

// versionString prefers the stamped version, then the module version recorded
// by `go install`, and appends VCS details when the build carries them.
func versionString(stamped string, info *debug.BuildInfo) string {
	v := stamped
	if info == nil {
		return "jobradar " + v
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}

	var revision, built string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			built = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "jobradar %s", v)
	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if dirty {
			revision += "-dirty"
		}
		fmt.Fprintf(&b, " (%s", revision)
		if built != "" {
			fmt.Fprintf(&b, ", %s", built)
		}
		b.WriteString(")")
	}
	if info.GoVersion != "" {
		fmt.Fprintf(&b, " %s", info.GoVersion)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
