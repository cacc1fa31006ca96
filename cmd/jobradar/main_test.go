package main

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/pipeline"
	"github.com/amishk599/jobradar/internal/store"
)

func TestFatalRunError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("%w: saving history: disk full", pipeline.ErrPersist), true},
		{fmt.Errorf("opening: %w", store.ErrCorruptHistory), true},
		{errors.New("search: serpapi returned 500"), false},
	}
	for _, tt := range tests {
		if got := fatalRunError(tt.err); got != tt.want {
			t.Errorf("fatalRunError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestSummaryLine(t *testing.T) {
	r := &model.Results{
		Jobs: []model.AnalyzedJob{{}},
		Metadata: model.RunMetadata{
			TotalSearched: 12,
			NewJobsFound:  4,
			JobsAnalyzed:  3,
			JobsFailed:    1,
		},
	}
	got := summaryLine(r)
	if !strings.HasPrefix(got, "12 searched, 4 new, 3 analyzed, 1 shortlisted, 1 failed") {
		t.Errorf("summaryLine = %q", got)
	}
}

func TestFormatScores(t *testing.T) {
	got := formatScores(map[string]int{"sustainability": 45, "ai": 80})
	if got != "ai:80 sustainability:45" {
		t.Errorf("formatScores = %q", got)
	}
}

func TestClip(t *testing.T) {
	if got := clip("Senior Engineer", 8); got != "Senior …" {
		t.Errorf("clip = %q", got)
	}
	if got := clip("short", 8); got != "short" {
		t.Errorf("clip = %q", got)
	}
}

func TestVersionString(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.24.2",
		Main:      debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f9c2a7d81e04b6c5a2f"},
			{Key: "vcs.time", Value: "2025-05-02T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name    string
		stamped string
		info    *debug.BuildInfo
		want    string
	}{
		{"no build info", "dev", nil, "jobradar dev"},
		{"module version", "dev", info, "jobradar v0.4.1 (3f9c2a7d81e0-dirty, 2025-05-02T10:00:00Z) go1.24.2"},
		{"stamped wins", "v1.0.0", info, "jobradar v1.0.0 (3f9c2a7d81e0-dirty, 2025-05-02T10:00:00Z) go1.24.2"},
		{"devel build", "dev", &debug.BuildInfo{GoVersion: "go1.24.2", Main: debug.Module{Version: "(devel)"}}, "jobradar dev go1.24.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionString(tt.stamped, tt.info); got != tt.want {
				t.Errorf("versionString = %q, want %q", got, tt.want)
			}
		})
	}
}
