package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/amishk599/jobradar/internal/model"
)

// Default per-million-token prices, in USD.
const (
	DefaultInputCostPerMTok  = 3.0
	DefaultOutputCostPerMTok = 15.0
)

// Location classifier call settings.
const (
	locationMaxTokens   = 500
	locationTemperature = 0.1
)

// Pricing converts token counts into dollars.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the dollar cost of one call.
func (p Pricing) Cost(input, output int) float64 {
	return float64(input)/1_000_000*p.InputPerMTok + float64(output)/1_000_000*p.OutputPerMTok
}

// ScorerConfig holds the generation settings shared by every call.
type ScorerConfig struct {
	MaxTokens   int
	Temperature float64
	Pricing     Pricing
}

// Scorer renders prompts, calls the provider and parses structured replies.
// It holds no counters: every call returns the usage it incurred.
type Scorer struct {
	provider Provider
	cfg      ScorerConfig
	fit      *template.Template
	location *template.Template
	logger   *slog.Logger
}

// NewScorer creates a scorer backed by provider.
func NewScorer(provider Provider, cfg ScorerConfig, logger *slog.Logger) *Scorer {
	if cfg.Pricing == (Pricing{}) {
		cfg.Pricing = Pricing{InputPerMTok: DefaultInputCostPerMTok, OutputPerMTok: DefaultOutputCostPerMTok}
	}
	return &Scorer{
		provider: provider,
		cfg:      cfg,
		fit:      FitTemplate,
		location: LocationTemplate,
		logger:   logger,
	}
}

// Score rates payload against one track's reference text. Usage is returned
// whenever the provider answered, even if the reply could not be parsed.
func (s *Scorer) Score(ctx context.Context, payload string, track model.Track) (model.Analysis, model.Usage, error) {
	prompt, err := render(s.fit, struct {
		Track       string
		Description string
		Reference   string
	}{
		Track:       strings.ToUpper(track.Key),
		Description: truncate(payload, maxDescriptionChars),
		Reference:   track.Reference,
	})
	if err != nil {
		return model.Analysis{}, model.Usage{}, err
	}

	comp, err := s.provider.Complete(ctx, Request{
		Prompt:      prompt,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		SchemaName:  "job_fit",
		Schema:      fitSchema,
	})
	if err != nil {
		return model.Analysis{}, model.Usage{}, fmt.Errorf("llm complete: %w", err)
	}
	usage := s.usage(comp)

	analysis, coerced, err := parseAnalysis(comp.Text)
	if err != nil {
		return model.Analysis{}, usage, fmt.Errorf("parse analysis: %w", err)
	}
	if coerced {
		s.logger.Warn("unexpected category, defaulting to Hybrid", "track", track.Key)
	}
	s.logger.Info("scored job", "track", track.Key, "fit_score", analysis.FitScore)
	return analysis, usage, nil
}

// ClassifyLocation asks the model where job is located.
func (s *Scorer) ClassifyLocation(ctx context.Context, job model.ScrapedJob) (*model.LocationAnalysis, model.Usage, error) {
	location := job.Location
	if location == "" {
		location = model.Placeholder
	}
	prompt, err := render(s.location, struct {
		Title       string
		Location    string
		Snippet     string
		Description string
	}{
		Title:       job.Title,
		Location:    location,
		Snippet:     truncate(job.Snippet, maxSnippetChars),
		Description: truncate(job.Description, maxLocationDescriptionChars),
	})
	if err != nil {
		return nil, model.Usage{}, err
	}

	maxTokens := locationMaxTokens
	if s.cfg.MaxTokens > 0 && s.cfg.MaxTokens < maxTokens {
		maxTokens = s.cfg.MaxTokens
	}
	comp, err := s.provider.Complete(ctx, Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: locationTemperature,
		SchemaName:  "job_location",
		Schema:      locationSchema,
	})
	if err != nil {
		return nil, model.Usage{}, fmt.Errorf("llm complete: %w", err)
	}
	usage := s.usage(comp)

	loc, err := parseLocation(comp.Text)
	if err != nil {
		return nil, usage, fmt.Errorf("parse location: %w", err)
	}
	s.logger.Info("classified location", "location", loc.LocationText, "is_us", loc.IsUS, "confidence", loc.Confidence)
	return loc, usage, nil
}

func (s *Scorer) usage(c Completion) model.Usage {
	return model.Usage{
		Calls:        1,
		InputTokens:  c.InputTokens,
		OutputTokens: c.OutputTokens,
		CostUSD:      s.cfg.Pricing.Cost(c.InputTokens, c.OutputTokens),
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
