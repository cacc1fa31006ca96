package notifier

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// DefaultTopN is how many jobs a summary lists when unset.
const DefaultTopN = 5

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes a run summary and the top jobs to the given logger.
type LogNotifier struct {
	logger *slog.Logger
	topN   int
}

// NewLogNotifier returns a notifier that logs via slog.
func NewLogNotifier(logger *slog.Logger, topN int) *LogNotifier {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &LogNotifier{logger: logger, topN: topN}
}

// Notify logs the run counters, then each of the top jobs.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(results *model.Results) error {
	md := results.Metadata
	n.logger.Info("run summary",
		"profile", md.Profile,
		"run_timestamp", md.RunTimestamp,
		"searched", md.TotalSearched,
		"new", md.NewJobsFound,
		"analyzed", md.JobsAnalyzed,
		"skipped", md.JobsSkipped,
		"in_results", len(results.Jobs),
		"usage", md.Usage.String(),
	)
	for i, j := range topJobs(results.Jobs, n.topN) {
		best := j.BestScore()
		n.logger.Info("top job",
			"rank", i+1,
			"title", j.Title,
			"company", j.Company,
			"fit_score", best,
			"fit", model.FitLabel(best),
			"scores", trackScores(j),
			"url", j.URL,
		)
	}
	return nil
}

// topJobs returns up to n jobs with the highest best score.
func topJobs(jobs []model.AnalyzedJob, n int) []model.AnalyzedJob {
	sorted := make([]model.AnalyzedJob, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BestScore() > sorted[j].BestScore() })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// trackScores renders per-track scores as "ai: 80, sustainability: 45".
func trackScores(j model.AnalyzedJob) string {
	keys := make([]string, 0, len(j.Analyses))
	for k := range j.Analyses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + strconv.Itoa(j.Analyses[k].FitScore)
	}
	return strings.Join(parts, ", ")
}
