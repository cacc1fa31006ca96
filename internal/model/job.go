package model

import (
	"context"
	"time"
)

// Placeholder marks a string field that could not be resolved. It is kept
// distinct from the empty string so consumers can tell "missing" from "blank".
const Placeholder = "N/A"

// Source identifies the job board a posting lives on.
type Source string

const (
	SourceGreenhouse Source = "greenhouse"
	SourceAshby      Source = "ashby"
	SourceLever      Source = "lever"
	SourceWorkable   Source = "workable"
)

// Lead is a candidate posting returned by search, before extraction.
type Lead struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  Source `json:"source"`
}

// ScrapedJob is a lead enriched with fields recovered from the posting page.
type ScrapedJob struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Source      Source    `json:"source"`
	SearchTitle string    `json:"search_title,omitempty"`
	Snippet     string    `json:"search_snippet"`
	ScrapedAt   time.Time `json:"scraped_at"`
	PostedDate  time.Time `json:"posted_date"` // sites rarely expose it; defaults to ScrapedAt
}

// Analysis categories returned by the scoring service.
const (
	CategoryAITech         = "AI/Tech"
	CategorySustainability = "Sustainability"
	CategoryHybrid         = "Hybrid"
	CategoryUnknown        = "Unknown"
)

// Analysis is one track's structured scoring result.
type Analysis struct {
	FitScore          int    `json:"fit_score"`
	Category          string `json:"category"`
	Justification     string `json:"justification"`
	PositioningAdvice string `json:"positioning_advice"`
	ExtractedTitle    string `json:"extracted_title,omitempty"`
}

// LocationAnalysis is the location classifier's output. IsUS is "true",
// "false" or "unknown".
type LocationAnalysis struct {
	LocationText string  `json:"location_text"`
	Country      string  `json:"country"`
	Region       string  `json:"region"`
	IsUS         string  `json:"is_us"`
	Confidence   float64 `json:"confidence"`
	Evidence     string  `json:"evidence"`
}

// AnalyzedJob is a scraped job plus one analysis per active track.
// Analyses serialize as "<track>_analysis" keys next to the job fields.
type AnalyzedJob struct {
	ScrapedJob
	JobID            string
	DaysOld          int
	Analyses         map[string]Analysis
	LocationAnalysis *LocationAnalysis
}

// BestScore returns the highest fit score across all tracks.
func (j AnalyzedJob) BestScore() int {
	best := 0
	for _, a := range j.Analyses {
		if a.FitScore > best {
			best = a.FitScore
		}
	}
	return best
}

// HistoryEntry is what the history store remembers about a processed job.
type HistoryEntry struct {
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Company   string         `json:"company"`
	LeadID    string         `json:"lead_id,omitempty"`
	FirstSeen time.Time      `json:"first_seen"`
	Scores    map[string]int `json:"fit_scores"`
}

// RunMetadata summarizes one pipeline run.
type RunMetadata struct {
	Profile          string    `json:"profile"`
	RunID            string    `json:"run_id"`
	RunTimestamp     time.Time `json:"run_timestamp"`
	TotalSearched    int       `json:"total_searched"`
	NewJobsFound     int       `json:"new_jobs_found"`
	JobsAnalyzed     int       `json:"jobs_analyzed"`
	JobsSkipped      int       `json:"jobs_skipped"`
	JobsFailed       int       `json:"jobs_failed"`
	UnresolvedTitles int       `json:"unresolved_titles"`
	Usage            Usage     `json:"usage"`
}

// Results is the persisted output of a run.
type Results struct {
	Jobs     []AnalyzedJob `json:"jobs"`
	Metadata RunMetadata   `json:"metadata"`
}

// SearchProvider discovers leads.
type SearchProvider interface {
	Search(ctx context.Context) ([]Lead, error)
}

// JobExtractor turns a lead into a scraped job. A nil job with a nil error
// means the lead's source is not supported.
type JobExtractor interface {
	Extract(ctx context.Context, lead Lead) (*ScrapedJob, error)
}

// History tracks which jobs have already been processed.
type History interface {
	Contains(id string) bool
	Record(id string, entry HistoryEntry) bool
	Save() error
	Len() int
}

// Notifier reports a finished run.
type Notifier interface {
	Notify(results *Results) error
}

// FitLabel buckets a fit score into the labels used in summaries.
func FitLabel(score int) string {
	switch {
	case score >= 90:
		return "Exceptional"
	case score >= 75:
		return "Strong"
	case score >= 60:
		return "Moderate"
	case score >= 40:
		return "Weak"
	default:
		return "Poor"
	}
}
