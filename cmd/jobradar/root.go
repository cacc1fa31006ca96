package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/adapter"
	"github.com/amishk599/jobradar/internal/ai"
	"github.com/amishk599/jobradar/internal/config"
	"github.com/amishk599/jobradar/internal/dispatch"
	"github.com/amishk599/jobradar/internal/fetch"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/notifier"
	"github.com/amishk599/jobradar/internal/pipeline"
	"github.com/amishk599/jobradar/internal/ratelimit"
	"github.com/amishk599/jobradar/internal/retry"
	"github.com/amishk599/jobradar/internal/search"
	"github.com/amishk599/jobradar/internal/secrets"
	"github.com/amishk599/jobradar/internal/store"
)

var (
	cfgPath     string
	debug       bool
	profileName string
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Job radar: find, score and shortlist new postings",
	Long: "Job Radar searches job boards for new postings, scores each one against your " +
		"profile's reference resumes and keeps a shortlist of the best fits.",
	// Default to `run` so that `jobradar` with no args does a single pass.
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (default: active_profile from config)")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, cfg.Notification.TopN, logger)
	default:
		return notifier.NewLogNotifier(logger, cfg.Notification.TopN)
	}
}

// scorer is what the pipeline needs from the scoring service.
type scorer interface {
	dispatch.Scorer
	pipeline.LocationClassifier
}

// setupScorer builds the configured scoring provider behind a circuit
// breaker. The returned closer releases provider resources.
func setupScorer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (scorer, func() error, error) {
	nop := func() error { return nil }

	var provider ai.Provider
	closer := nop
	switch cfg.Scoring.Provider {
	case config.ProviderNone:
		logger.Info("scoring disabled, every job scores 0")
		return ai.NewNopScorer(), nop, nil
	case config.ProviderGemini:
		g, err := ai.NewGeminiProvider(ctx, cfg.Scoring.APIKey, cfg.Scoring.Model)
		if err != nil {
			return nil, nop, fmt.Errorf("creating gemini provider: %w", err)
		}
		provider, closer = g, g.Close
	default:
		httpClient := &http.Client{Timeout: cfg.Scoring.Timeout}
		provider = ai.NewOpenAIProvider(cfg.Scoring.BaseURL, cfg.Scoring.APIKey, cfg.Scoring.Model, httpClient)
	}

	provider = ai.NewBreakerProvider(provider, cfg.Scoring.BreakerFailures, cfg.Scoring.BreakerCooldown, logger)
	s := ai.NewScorer(provider, ai.ScorerConfig{
		MaxTokens:   cfg.Scoring.MaxTokens,
		Temperature: cfg.Scoring.Temperature,
		Pricing: ai.Pricing{
			InputPerMTok:  cfg.Scoring.InputCostPerMTok,
			OutputPerMTok: cfg.Scoring.OutputCostPerMTok,
		},
	}, logger)
	logger.Info("scoring enabled", "provider", cfg.Scoring.Provider, "model", cfg.Scoring.Model)
	return s, closer, nil
}

// app is a fully wired pipeline for one profile.
type app struct {
	cfg         *config.Config
	profile     dispatch.Profile
	coordinator *pipeline.Coordinator
	history     store.History
	closers     []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

type buildOptions struct {
	// dryRun keeps history in memory and skips the results file.
	dryRun bool
	// notify sends the configured notification after each run.
	notify bool
}

// buildApp loads credentials and wires every pipeline collaborator for the
// selected profile.
func buildApp(ctx context.Context, cfg *config.Config, name string, opts buildOptions, logger *slog.Logger) (*app, error) {
	if err := cfg.ResolveCredentials(secrets.Get); err != nil {
		return nil, err
	}
	profile, err := cfg.Profile(name)
	if err != nil {
		return nil, err
	}
	logger = logger.With("profile", profile.Name)

	a := &app{cfg: cfg, profile: profile}

	history, err := store.Open(cfg.Storage.HistoryBackend, cfg.Storage.DataDir, profile.Name)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	a.history = history
	a.closers = append(a.closers, history.Close)

	var hist model.History = history
	var results pipeline.ResultsSink = store.ResultsFile{Path: store.ResultsPath(cfg.Storage.DataDir, profile.Name)}
	if opts.dryRun {
		logger.Info("dry run: history and results will not be written")
		hist = store.NewReadOnly(history)
		results = nil
	}

	sc, closeScorer, err := setupScorer(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeScorer)

	retrier := retry.New(retry.Policy{
		MaxAttempts: cfg.Scraping.MaxAttempts,
		BaseWait:    cfg.Scraping.BaseWait,
		Multiplier:  cfg.Scraping.Multiplier,
		MaxWait:     cfg.Scraping.MaxWait,
		Jitter:      cfg.Scraping.Jitter,
	}, logger)

	pageClient := &http.Client{Timeout: cfg.Scraping.Timeout}
	extractorOpts := []adapter.Option{adapter.WithMinDescription(cfg.Scraping.MinDescriptionLength)}
	if cfg.Scraping.UseBrowser {
		extractorOpts = append(extractorOpts, adapter.WithRenderer(fetch.NewBrowserRenderer(cfg.Scraping.BrowserTimeout, logger)))
	}
	extractor := adapter.NewExtractor(fetch.NewClient(pageClient, cfg.Scraping.UserAgent, retrier, logger), logger, extractorOpts...)

	searcher := search.NewSerpAPI(search.Options{
		BaseURL:        cfg.Search.BaseURL,
		APIKey:         cfg.Search.APIKey,
		Keywords:       cfg.Keywords(profile.Name),
		Boards:         cfg.Search.JobBoards,
		Locations:      cfg.Search.Locations,
		TimeframeDays:  cfg.Search.TimeframeDays,
		MaxResults:     cfg.Search.MaxResults,
		ResultsPerPage: cfg.Search.ResultsPerPage,
	}, &http.Client{Timeout: 30 * time.Second}, ratelimit.NewPacer(cfg.Search.PageDelay), retrier, logger)
	logger.Debug("search query", "q", searcher.Query())

	deps := pipeline.Deps{
		Search:     searcher,
		Extractor:  extractor,
		Dispatcher: dispatch.NewDispatcher(sc, profile, logger),
		History:    hist,
		Filter:     filter.NewScoreFilter(profile.MinFitScore),
		Pacer:      ratelimit.NewPacer(cfg.Scraping.DelayBetweenRequests),
		Results:    results,
		RunID:      func() string { return uuid.NewString() },
	}
	if cfg.Scoring.ClassifyLocation {
		deps.Locator = sc
	}
	if opts.notify {
		deps.Notifier = setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	}
	a.coordinator = pipeline.New(deps, logger)

	logger.Info("pipeline ready",
		"kind", profile.Kind,
		"tracks", profile.TrackKeys(),
		"min_fit_score", profile.MinFitScore,
		"history_backend", cfg.Storage.HistoryBackend,
		"known_jobs", history.Len(),
	)
	return a, nil
}

// fatalRunError reports whether a run error should stop a watch loop.
// Search and network failures are retried on the next tick; losing state is not.
func fatalRunError(err error) bool {
	return errors.Is(err, pipeline.ErrPersist) || errors.Is(err, store.ErrCorruptHistory)
}
