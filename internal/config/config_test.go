package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/dispatch"
	"github.com/amishk599/jobradar/internal/secrets"
)

const validConfig = `
active_profile: climate
profiles:
  climate:
    kind: multi
    min_fit_score: 70
    tracks:
      - key: ai
        reference_file: resumes/ai.md
      - key: sustainability
        reference_file: resumes/sustainability.md
    keywords:
      focus: [climate, sustainability]
      roles: [engineer]
  solo:
    tracks:
      - key: backend
        reference_file: resumes/ai.md
search:
  job_boards: [greenhouse.io, lever.co]
  locations: [Remote]
  page_delay: 500ms
scraping:
  delay_between_requests: 3s
scoring:
  provider: openai
  model: gpt-4o-mini
storage:
  history_backend: sqlite
schedule:
  interval: 6h
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "resumes"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range map[string]string{"ai.md": "AI resume", "sustainability.md": "Climate resume"} {
		if err := os.WriteFile(filepath.Join(dir, "resumes", name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ActiveProfile != "climate" {
		t.Errorf("ActiveProfile = %q", cfg.ActiveProfile)
	}
	if cfg.Search.PageDelay != 500*time.Millisecond {
		t.Errorf("PageDelay = %v, want 500ms", cfg.Search.PageDelay)
	}
	if cfg.Scraping.DelayBetweenRequests != 3*time.Second {
		t.Errorf("DelayBetweenRequests = %v, want 3s", cfg.Scraping.DelayBetweenRequests)
	}
	if cfg.Schedule.Interval != 6*time.Hour {
		t.Errorf("Interval = %v, want 6h", cfg.Schedule.Interval)
	}
	if cfg.Storage.HistoryBackend != "sqlite" {
		t.Errorf("HistoryBackend = %q", cfg.Storage.HistoryBackend)
	}
	if got := cfg.ProfileNames(); strings.Join(got, ",") != "climate,solo" {
		t.Errorf("ProfileNames = %v", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MaxResults != 50 || cfg.Search.ResultsPerPage != 10 || cfg.Search.TimeframeDays != 7 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Scraping.MaxAttempts != 3 || cfg.Scraping.MinDescriptionLength != 100 {
		t.Errorf("scraping defaults = %+v", cfg.Scraping)
	}
	if cfg.Scoring.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Scoring.BaseURL = %q", cfg.Scoring.BaseURL)
	}
	if cfg.Scoring.InputCostPerMTok != 3 || cfg.Scoring.OutputCostPerMTok != 15 {
		t.Errorf("pricing = %v/%v, want 3/15", cfg.Scoring.InputCostPerMTok, cfg.Scoring.OutputCostPerMTok)
	}
	if cfg.Scoring.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", cfg.Scoring.Temperature)
	}
	if cfg.Notification.Type != "log" {
		t.Errorf("Notification.Type = %q, want log", cfg.Notification.Type)
	}
	solo := cfg.Profiles["solo"]
	if solo.Kind != dispatch.KindSingle || *solo.MinFitScore != dispatch.DefaultMinFitScore {
		t.Errorf("solo profile = kind %q min %d", solo.Kind, *solo.MinFitScore)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("JOBRADAR_TEST_KEY", "from-env")
	content := strings.Replace(validConfig, "search:\n", "search:\n  api_key: ${JOBRADAR_TEST_KEY}\n", 1)
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want from-env", cfg.Search.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "active_profile: [broken"))
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr string
	}{
		{"unknown active profile", "active_profile: climate", "active_profile: nope", `active_profile "nope"`},
		{"bad duration", "interval: 6h", "interval: soon", "schedule.interval"},
		{"zero interval", "interval: 6h", "interval: 0s", "schedule.interval must be positive"},
		{"bad backend", "history_backend: sqlite", "history_backend: redis", "history_backend must be one of"},
		{"bad provider", "provider: openai", "provider: claude", "provider must be one of"},
		{"threshold out of range", "min_fit_score: 70", "min_fit_score: 120", "min_fit_score"},
		{"no boards", "job_boards: [greenhouse.io, lever.co]", "job_boards: []", "job_boards"},
		{"single with two tracks", "kind: multi", "kind: single", "exactly 1 track"},
		{"missing model", "model: gpt-4o-mini", "model: \"\"", "scoring.model is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validConfig, tt.from, tt.to, 1)
			_, err := Load(writeConfig(t, content))
			if err == nil {
				t.Fatalf("Load: expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_SlackWebhookPrefix(t *testing.T) {
	content := validConfig + `
notification:
  type: slack
  webhook_url: https://example.com/hook
`
	_, err := Load(writeConfig(t, content))
	if err == nil || !strings.Contains(err.Error(), "hooks.slack.com") {
		t.Fatalf("Load: error = %v, want webhook prefix error", err)
	}
}

func TestProfile_ReadsReferences(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, err := cfg.Profile("")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Name != "climate" || p.Kind != dispatch.KindMulti || p.MinFitScore != 70 {
		t.Errorf("profile = %+v", p)
	}
	if len(p.Tracks) != 2 || p.Tracks[0].Key != "ai" || p.Tracks[1].Reference != "Climate resume" {
		t.Errorf("tracks = %+v", p.Tracks)
	}
	if kw := cfg.Keywords(""); len(kw.Focus) != 2 || kw.Roles[0] != "engineer" {
		t.Errorf("keywords = %+v", kw)
	}
}

func TestProfile_Unknown(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.Profile("nope"); err == nil {
		t.Fatal("Profile: expected error for unknown profile")
	}
}

func TestProfile_MissingReferenceFile(t *testing.T) {
	content := strings.Replace(validConfig, "resumes/sustainability.md", "resumes/missing.md", 1)
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.Profile("climate"); err == nil {
		t.Fatal("Profile: expected error for missing reference file")
	}
}

func TestResolveCredentials(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	store := map[string]string{
		secrets.AccountSerpAPI: "serp-key",
		secrets.AccountOpenAI:  "openai-key",
	}
	var asked []string
	lookup := func(account string) (string, error) {
		asked = append(asked, account)
		v, ok := store[account]
		if !ok {
			return "", secrets.ErrNotFound
		}
		return v, nil
	}

	if err := cfg.ResolveCredentials(lookup); err != nil {
		t.Fatalf("ResolveCredentials: %v", err)
	}
	if cfg.Search.APIKey != "serp-key" || cfg.Scoring.APIKey != "openai-key" {
		t.Errorf("keys = %q/%q", cfg.Search.APIKey, cfg.Scoring.APIKey)
	}
	if strings.Join(asked, ",") != "serpapi,openai" {
		t.Errorf("looked up %v, want serpapi,openai", asked)
	}
}

func TestResolveCredentials_KeepsFileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, strings.Replace(validConfig, "provider: openai", "provider: none", 1)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Search.APIKey = "inline"
	lookup := func(account string) (string, error) {
		t.Errorf("unexpected lookup of %s", account)
		return "", secrets.ErrNotFound
	}
	if err := cfg.ResolveCredentials(lookup); err != nil {
		t.Fatalf("ResolveCredentials: %v", err)
	}
}

func TestResolveCredentials_Missing(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = cfg.ResolveCredentials(func(string) (string, error) { return "", secrets.ErrNotFound })
	if !errors.Is(err, secrets.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
