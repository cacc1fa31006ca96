// Package dispatch routes a scraped job to the scoring service once per
// profile track and merges the results.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobradar/internal/model"
)

// Scorer rates a text payload against one track.
type Scorer interface {
	Score(ctx context.Context, payload string, track model.Track) (model.Analysis, model.Usage, error)
}

// Degraded is the analysis recorded when scoring fails. A zero score with
// category Unknown separates "scoring broken" from "scored low".
func Degraded() model.Analysis {
	return model.Analysis{
		FitScore:          0,
		Category:          model.CategoryUnknown,
		Justification:     "Analysis failed",
		PositioningAdvice: "Could not analyze this job",
	}
}

// Dispatcher scores jobs for a single profile.
type Dispatcher struct {
	scorer  Scorer
	profile Profile
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher for profile.
func NewDispatcher(scorer Scorer, profile Profile, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{scorer: scorer, profile: profile, logger: logger}
}

// Profile returns the profile jobs are scored for.
func (d *Dispatcher) Profile() Profile {
	return d.profile
}

// Dispatch scores job once per track, keyed by track. The description is the
// payload; fallbackTitle is used when it is empty. A failed track gets
// Degraded and the remaining tracks still run.
func (d *Dispatcher) Dispatch(ctx context.Context, job model.ScrapedJob, fallbackTitle string) (map[string]model.Analysis, model.Usage) {
	payload := job.Description
	if payload == "" {
		payload = fallbackTitle
	}

	analyses := make(map[string]model.Analysis, len(d.profile.Tracks))
	var usage model.Usage
	for _, track := range d.profile.Tracks {
		a, u, err := d.scorer.Score(ctx, payload, track)
		usage = usage.Add(u)
		if err != nil {
			d.logger.Error("scoring failed",
				"url", job.URL,
				"track", track.Key,
				"error", err,
			)
			a = Degraded()
		}
		analyses[track.Key] = a
	}
	return analyses, usage
}

// ScoringTitles returns titles inferred by the scoring service, in track order.
func (d *Dispatcher) ScoringTitles(analyses map[string]model.Analysis) []string {
	var titles []string
	for _, t := range d.profile.Tracks {
		if title := analyses[t.Key].ExtractedTitle; title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
