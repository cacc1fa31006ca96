package ai

import (
	"context"

	"github.com/amishk599/jobradar/internal/model"
)

// NopScorer is used when scoring.provider is "none". It makes no calls and
// scores every job 0 so dry runs exercise the rest of the pipeline.
type NopScorer struct{}

// NewNopScorer returns a NopScorer.
func NewNopScorer() *NopScorer {
	return &NopScorer{}
}

// Score returns an unscored analysis.
func (n *NopScorer) Score(_ context.Context, _ string, _ model.Track) (model.Analysis, model.Usage, error) {
	return model.Analysis{
		FitScore:          0,
		Category:          model.CategoryUnknown,
		Justification:     "Scoring disabled",
		PositioningAdvice: "Enable a scoring provider to analyze this job",
	}, model.Usage{}, nil
}

// ClassifyLocation returns no classification.
func (n *NopScorer) ClassifyLocation(_ context.Context, _ model.ScrapedJob) (*model.LocationAnalysis, model.Usage, error) {
	return nil, model.Usage{}, nil
}
