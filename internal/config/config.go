// Package config loads and validates the jobradar YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobradar/internal/dispatch"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/search"
	"github.com/amishk599/jobradar/internal/secrets"
)

// Scoring providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// Config is the root configuration.
type Config struct {
	ActiveProfile string
	Profiles      map[string]ProfileConfig
	Search        SearchConfig
	Scraping      ScrapingConfig
	Scoring       ScoringConfig
	Storage       StorageConfig
	Notification  NotificationConfig
	Schedule      ScheduleConfig

	dir string // directory of the config file; reference files resolve against it
}

// ProfileConfig describes one search persona.
type ProfileConfig struct {
	Kind        dispatch.Kind   `yaml:"kind" validate:"omitempty,oneof=single multi"`
	MinFitScore *int            `yaml:"min_fit_score" validate:"omitempty,gte=0,lte=100"`
	Tracks      []TrackConfig   `yaml:"tracks" validate:"required,min=1,dive"`
	Keywords    search.Keywords `yaml:"keywords"`
}

// TrackConfig names a reference text (usually a resume) to score against.
type TrackConfig struct {
	Key           string `yaml:"key" validate:"required"`
	ReferenceFile string `yaml:"reference_file" validate:"required"`
}

// SearchConfig controls lead discovery.
type SearchConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	JobBoards      []string
	Locations      []string
	TimeframeDays  int
	MaxResults     int
	ResultsPerPage int
	PageDelay      time.Duration
}

// ScrapingConfig controls page fetching and extraction.
type ScrapingConfig struct {
	UserAgent            string
	Timeout              time.Duration
	MaxAttempts          int
	BaseWait             time.Duration
	Multiplier           float64
	MaxWait              time.Duration
	Jitter               float64
	DelayBetweenRequests time.Duration
	MinDescriptionLength int
	UseBrowser           bool
	BrowserTimeout       time.Duration
}

// ScoringConfig controls the scoring service.
type ScoringConfig struct {
	Provider          string
	Model             string
	APIKey            string
	BaseURL           string
	MaxTokens         int
	Temperature       float64
	Timeout           time.Duration
	InputCostPerMTok  float64
	OutputCostPerMTok float64
	ClassifyLocation  bool
	BreakerFailures   uint32
	BreakerCooldown   time.Duration
}

// StorageConfig controls where history and results live.
type StorageConfig struct {
	DataDir        string
	HistoryBackend string
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type" validate:"omitempty,oneof=log slack"`
	WebhookURL string `yaml:"webhook_url"`
	TopN       int    `yaml:"top_n" validate:"gte=0"`
}

// ScheduleConfig controls watch mode.
type ScheduleConfig struct {
	Interval time.Duration
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	ActiveProfile string                   `yaml:"active_profile" validate:"required"`
	Profiles      map[string]ProfileConfig `yaml:"profiles" validate:"required,min=1,dive"`
	Search        rawSearchConfig          `yaml:"search"`
	Scraping      rawScrapingConfig        `yaml:"scraping"`
	Scoring       rawScoringConfig         `yaml:"scoring"`
	Storage       rawStorageConfig         `yaml:"storage"`
	Notification  NotificationConfig       `yaml:"notification"`
	Schedule      rawScheduleConfig        `yaml:"schedule"`
}

type rawSearchConfig struct {
	Provider       string   `yaml:"provider" validate:"omitempty,oneof=serpapi"`
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url" validate:"omitempty,url"`
	JobBoards      []string `yaml:"job_boards" validate:"required,min=1,dive,required"`
	Locations      []string `yaml:"locations"`
	TimeframeDays  int      `yaml:"timeframe_days" validate:"gte=0"`
	MaxResults     int      `yaml:"max_results" validate:"gte=0"`
	ResultsPerPage int      `yaml:"results_per_page" validate:"gte=0,lte=100"`
	PageDelay      string   `yaml:"page_delay"`
}

type rawScrapingConfig struct {
	UserAgent            string  `yaml:"user_agent"`
	Timeout              string  `yaml:"timeout"`
	MaxAttempts          int     `yaml:"max_attempts" validate:"gte=0,lte=10"`
	BaseWait             string  `yaml:"base_wait"`
	Multiplier           float64 `yaml:"multiplier" validate:"gte=0"`
	MaxWait              string  `yaml:"max_wait"`
	Jitter               float64 `yaml:"jitter" validate:"gte=0,lte=1"`
	DelayBetweenRequests string  `yaml:"delay_between_requests"`
	MinDescriptionLength int     `yaml:"min_description_length" validate:"gte=0"`
	UseBrowser           bool    `yaml:"use_browser"`
	BrowserTimeout       string  `yaml:"browser_timeout"`
}

type rawScoringConfig struct {
	Provider          string   `yaml:"provider" validate:"omitempty,oneof=openai gemini none"`
	Model             string   `yaml:"model"`
	APIKey            string   `yaml:"api_key"`
	BaseURL           string   `yaml:"base_url" validate:"omitempty,url"`
	MaxTokens         int      `yaml:"max_tokens" validate:"gte=0"`
	Temperature       *float64 `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	Timeout           string   `yaml:"timeout"`
	InputCostPerMTok  *float64 `yaml:"input_cost_per_mtok" validate:"omitempty,gte=0"`
	OutputCostPerMTok *float64 `yaml:"output_cost_per_mtok" validate:"omitempty,gte=0"`
	ClassifyLocation  bool     `yaml:"classify_location"`
	BreakerFailures   uint32   `yaml:"breaker_failures"`
	BreakerCooldown   string   `yaml:"breaker_cooldown"`
}

type rawStorageConfig struct {
	DataDir        string `yaml:"data_dir"`
	HistoryBackend string `yaml:"history_backend" validate:"omitempty,oneof=json sqlite"`
}

type rawScheduleConfig struct {
	Interval string `yaml:"interval"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report YAML names in errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Credentials are not resolved; see ResolveCredentials.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate.Struct(raw); err != nil {
		return nil, describe(err)
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)

	if err := check(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// describe turns validator errors into one readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		// Namespace is "rawConfig.search.job_boards"; drop the root.
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entries", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, e.Param(), e.Value()))
		case "url":
			msgs = append(msgs, field+" must be a URL")
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", field, e.Tag(), e.Param()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func build(raw rawConfig) (*Config, error) {
	var errs []error
	dur := func(field, value string, def time.Duration) time.Duration {
		if value == "" {
			return def
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s %q: %w", field, value, err))
			return def
		}
		return d
	}

	profiles := make(map[string]ProfileConfig, len(raw.Profiles))
	for name, p := range raw.Profiles {
		if p.Kind == "" {
			p.Kind = dispatch.KindSingle
			if len(p.Tracks) > 1 {
				p.Kind = dispatch.KindMulti
			}
		}
		if p.MinFitScore == nil {
			def := dispatch.DefaultMinFitScore
			p.MinFitScore = &def
		}
		profiles[name] = p
	}

	cfg := &Config{
		ActiveProfile: raw.ActiveProfile,
		Profiles:      profiles,
		Search: SearchConfig{
			Provider:       orDefault(raw.Search.Provider, "serpapi"),
			APIKey:         raw.Search.APIKey,
			BaseURL:        orDefault(raw.Search.BaseURL, search.DefaultBaseURL),
			JobBoards:      raw.Search.JobBoards,
			Locations:      raw.Search.Locations,
			TimeframeDays:  intOr(raw.Search.TimeframeDays, 7),
			MaxResults:     intOr(raw.Search.MaxResults, 50),
			ResultsPerPage: intOr(raw.Search.ResultsPerPage, 10),
			PageDelay:      dur("search.page_delay", raw.Search.PageDelay, time.Second),
		},
		Scraping: ScrapingConfig{
			UserAgent:            orDefault(raw.Scraping.UserAgent, defaultUserAgent),
			Timeout:              dur("scraping.timeout", raw.Scraping.Timeout, 30*time.Second),
			MaxAttempts:          intOr(raw.Scraping.MaxAttempts, 3),
			BaseWait:             dur("scraping.base_wait", raw.Scraping.BaseWait, time.Second),
			Multiplier:           floatOr(raw.Scraping.Multiplier, 2),
			MaxWait:              dur("scraping.max_wait", raw.Scraping.MaxWait, 0),
			Jitter:               raw.Scraping.Jitter,
			DelayBetweenRequests: dur("scraping.delay_between_requests", raw.Scraping.DelayBetweenRequests, 2*time.Second),
			MinDescriptionLength: intOr(raw.Scraping.MinDescriptionLength, 100),
			UseBrowser:           raw.Scraping.UseBrowser,
			BrowserTimeout:       dur("scraping.browser_timeout", raw.Scraping.BrowserTimeout, 45*time.Second),
		},
		Scoring: ScoringConfig{
			Provider:          orDefault(raw.Scoring.Provider, ProviderOpenAI),
			Model:             raw.Scoring.Model,
			APIKey:            raw.Scoring.APIKey,
			BaseURL:           raw.Scoring.BaseURL,
			MaxTokens:         intOr(raw.Scoring.MaxTokens, 1000),
			Temperature:       ptrOr(raw.Scoring.Temperature, 0.3),
			Timeout:           dur("scoring.timeout", raw.Scoring.Timeout, 60*time.Second),
			InputCostPerMTok:  ptrOr(raw.Scoring.InputCostPerMTok, 3.0),
			OutputCostPerMTok: ptrOr(raw.Scoring.OutputCostPerMTok, 15.0),
			ClassifyLocation:  raw.Scoring.ClassifyLocation,
			BreakerFailures:   raw.Scoring.BreakerFailures,
			BreakerCooldown:   dur("scoring.breaker_cooldown", raw.Scoring.BreakerCooldown, 2*time.Minute),
		},
		Storage: StorageConfig{
			DataDir:        orDefault(raw.Storage.DataDir, "data"),
			HistoryBackend: orDefault(raw.Storage.HistoryBackend, "json"),
		},
		Notification: raw.Notification,
		Schedule: ScheduleConfig{
			Interval: dur("schedule.interval", raw.Schedule.Interval, 24*time.Hour),
		},
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Scoring.Provider == ProviderOpenAI && cfg.Scoring.BaseURL == "" {
		cfg.Scoring.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Scoring.BreakerFailures == 0 {
		cfg.Scoring.BreakerFailures = 5
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// check runs the cross-field rules struct tags cannot express.
func check(cfg *Config) error {
	if _, ok := cfg.Profiles[cfg.ActiveProfile]; !ok {
		return fmt.Errorf("active_profile %q is not defined under profiles (have %s)",
			cfg.ActiveProfile, strings.Join(cfg.ProfileNames(), ", "))
	}
	for name, p := range cfg.Profiles {
		if p.Kind == dispatch.KindSingle && len(p.Tracks) != 1 {
			return fmt.Errorf("profiles.%s: kind single needs exactly 1 track, got %d", name, len(p.Tracks))
		}
		if p.Kind == dispatch.KindMulti && len(p.Tracks) < 2 {
			return fmt.Errorf("profiles.%s: kind multi needs at least 2 tracks, got %d", name, len(p.Tracks))
		}
	}
	if cfg.Scraping.DelayBetweenRequests < 0 || cfg.Search.PageDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if cfg.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive, got %v", cfg.Schedule.Interval)
	}
	if cfg.Scoring.Provider != ProviderNone && cfg.Scoring.Model == "" {
		return fmt.Errorf("scoring.model is required when scoring.provider is %q", cfg.Scoring.Provider)
	}
	if cfg.Notification.Type == "slack" && cfg.Notification.WebhookURL != "" &&
		!strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
		return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
	}
	return nil
}

// Lookup returns the stored secret for a keychain account.
type Lookup func(account string) (string, error)

// ResolveCredentials fills credentials left empty in the file from lookup.
// Only the credentials the configured providers need are looked up.
func (c *Config) ResolveCredentials(lookup Lookup) error {
	fill := func(dst *string, account string) error {
		if *dst != "" {
			return nil
		}
		v, err := lookup(account)
		if err == nil {
			*dst = v
			return nil
		}
		return fmt.Errorf("credential %s: %w (set it in the config file or run: jobradar keyring set %s)", account, err, account)
	}

	if err := fill(&c.Search.APIKey, secrets.AccountSerpAPI); err != nil {
		return err
	}
	switch c.Scoring.Provider {
	case ProviderOpenAI:
		if err := fill(&c.Scoring.APIKey, secrets.AccountOpenAI); err != nil {
			return err
		}
	case ProviderGemini:
		if err := fill(&c.Scoring.APIKey, secrets.AccountGemini); err != nil {
			return err
		}
	}
	if c.Notification.Type == "slack" {
		if err := fill(&c.Notification.WebhookURL, secrets.AccountSlack); err != nil {
			return err
		}
		if !strings.HasPrefix(c.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	}
	return nil
}

// ProfileNames returns the configured profile names, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for n := range c.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Profile resolves the named profile, reading each track's reference file.
// An empty name selects the active profile.
func (c *Config) Profile(name string) (dispatch.Profile, error) {
	if name == "" {
		name = c.ActiveProfile
	}
	pc, ok := c.Profiles[name]
	if !ok {
		return dispatch.Profile{}, fmt.Errorf("unknown profile %q (have %s)", name, strings.Join(c.ProfileNames(), ", "))
	}

	tracks := make([]model.Track, 0, len(pc.Tracks))
	for _, t := range pc.Tracks {
		path := t.ReferenceFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, path)
		}
		ref, err := os.ReadFile(path)
		if err != nil {
			return dispatch.Profile{}, fmt.Errorf("profile %s: read reference for track %s: %w", name, t.Key, err)
		}
		tracks = append(tracks, model.Track{Key: t.Key, Reference: string(ref)})
	}

	p := dispatch.Profile{Name: name, Kind: pc.Kind, Tracks: tracks, MinFitScore: *pc.MinFitScore}
	if err := p.Validate(); err != nil {
		return dispatch.Profile{}, err
	}
	return p, nil
}

// Keywords returns the search keywords of the named profile.
func (c *Config) Keywords(name string) search.Keywords {
	if name == "" {
		name = c.ActiveProfile
	}
	return c.Profiles[name].Keywords
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func floatOr(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func ptrOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
