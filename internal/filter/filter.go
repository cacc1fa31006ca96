// Package filter decides which analyzed jobs make it into the results file.
package filter

import (
	"github.com/amishk599/jobradar/internal/model"
)

// ScoreFilter keeps jobs whose best track score reaches Min.
type ScoreFilter struct {
	Min int
}

// NewScoreFilter returns a filter with the given inclusive threshold.
func NewScoreFilter(min int) *ScoreFilter {
	return &ScoreFilter{Min: min}
}

// Match reports whether job's best score is at least Min.
func (f *ScoreFilter) Match(job model.AnalyzedJob) bool {
	return job.BestScore() >= f.Min
}

// Apply returns the jobs that pass, preserving order.
func (f *ScoreFilter) Apply(jobs []model.AnalyzedJob) []model.AnalyzedJob {
	kept := make([]model.AnalyzedJob, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			kept = append(kept, j)
		}
	}
	return kept
}
