// Package pipeline runs one search-to-results pass for a profile.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/amishk599/jobradar/internal/dispatch"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/identity"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/ratelimit"
	"github.com/amishk599/jobradar/internal/resolve"
)

// ErrPersist marks a failure to write results or history. It ends a watch
// loop as well as the run.
var ErrPersist = errors.New("persist")

// LocationClassifier works out where a job is located.
type LocationClassifier interface {
	ClassifyLocation(ctx context.Context, job model.ScrapedJob) (*model.LocationAnalysis, model.Usage, error)
}

// ResultsSink persists a finished run.
type ResultsSink interface {
	SaveResults(results *model.Results) error
}

// Deps are the collaborators of a Coordinator. Locator, Results and Notifier
// are optional.
type Deps struct {
	Search     model.SearchProvider
	Extractor  model.JobExtractor
	Dispatcher *dispatch.Dispatcher
	History    model.History
	Filter     *filter.ScoreFilter
	Pacer      *ratelimit.Pacer
	Locator    LocationClassifier
	Results    ResultsSink
	Notifier   model.Notifier
	RunID      func() string
}

// Coordinator owns the full pipeline for a single profile:
// search → dedup → extract → score → resolve title → record → filter → persist.
type Coordinator struct {
	Deps
	profile string
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a coordinator wired with all its dependencies.
func New(d Deps, logger *slog.Logger) *Coordinator {
	if d.RunID == nil {
		d.RunID = func() string { return "" }
	}
	return &Coordinator{
		Deps:    d,
		profile: d.Dispatcher.Profile().Name,
		now:     time.Now,
		logger:  logger,
	}
}

// pending is a lead that survived dedup.
type pending struct {
	lead   model.Lead
	leadID string
}

// Run executes one pass. Per-lead failures are logged and counted; only a
// failed search or a failed save aborts the run.
func (c *Coordinator) Run(ctx context.Context) (*model.Results, error) {
	md := model.RunMetadata{
		Profile:      c.profile,
		RunID:        c.RunID(),
		RunTimestamp: c.now().UTC(),
	}
	log := c.logger.With("profile", c.profile, "run_id", md.RunID)

	leads, err := c.Search.Search(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	md.TotalSearched = len(leads)

	fresh := c.dedup(leads, &md, log)
	md.NewJobsFound = len(fresh)
	log.Info("deduplicated leads", "searched", md.TotalSearched, "new", md.NewJobsFound, "skipped", md.JobsSkipped)

	var analyzed []model.AnalyzedJob
	for i, p := range fresh {
		if err := c.Pacer.Wait(ctx, ratelimit.KeyFetch); err != nil {
			log.Warn("run interrupted, saving what was processed", "processed", i, "error", err)
			break
		}
		job, usage, ok := c.process(ctx, p, &md, log.With("url", p.lead.URL))
		md.Usage = md.Usage.Add(usage)
		if ok {
			analyzed = append(analyzed, job)
		}
	}
	md.JobsAnalyzed = len(analyzed)

	kept := c.Filter.Apply(analyzed)
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].BestScore() > kept[j].BestScore() })

	results := &model.Results{Jobs: kept, Metadata: md}
	if err := c.persist(results); err != nil {
		return nil, err
	}

	log.Info("run complete",
		"searched", md.TotalSearched,
		"new", md.NewJobsFound,
		"analyzed", md.JobsAnalyzed,
		"skipped", md.JobsSkipped,
		"failed", md.JobsFailed,
		"unresolved_titles", md.UnresolvedTitles,
		"kept", len(kept),
		"usage", md.Usage.String(),
	)

	if c.Notifier != nil {
		if err := c.Notifier.Notify(results); err != nil {
			log.Error("notify failed", "stage", "notify", "error", err)
		}
	}
	return results, nil
}

// dedup drops leads already in history (counted as skipped) and repeats
// within the same batch.
func (c *Coordinator) dedup(leads []model.Lead, md *model.RunMetadata, log *slog.Logger) []pending {
	inBatch := make(map[string]bool, len(leads))
	var fresh []pending
	for _, lead := range leads {
		id := identity.LeadID(lead)
		switch {
		case c.History.Contains(id):
			md.JobsSkipped++
			log.Debug("already seen", "url", lead.URL, "title", lead.Title)
		case inBatch[id]:
			log.Debug("duplicate lead in batch", "url", lead.URL)
		default:
			inBatch[id] = true
			fresh = append(fresh, pending{lead: lead, leadID: id})
		}
	}
	return fresh
}

// process takes one lead through extraction, scoring and title resolution,
// then records it in history. ok is false when the lead produced no job.
func (c *Coordinator) process(ctx context.Context, p pending, md *model.RunMetadata, log *slog.Logger) (model.AnalyzedJob, model.Usage, bool) {
	job, err := c.Extractor.Extract(ctx, p.lead)
	if err != nil {
		md.JobsFailed++
		log.Error("extraction failed", "stage", "extract", "error", err)
		return model.AnalyzedJob{}, model.Usage{}, false
	}
	if job == nil {
		md.JobsFailed++
		log.Warn("lead skipped, unsupported source", "stage", "extract", "source", p.lead.Source)
		return model.AnalyzedJob{}, model.Usage{}, false
	}
	job.Snippet = p.lead.Snippet

	// The description is the scoring payload; when it is empty the best
	// title known before scoring stands in.
	provisional := resolve.Title(job.Title, resolve.Candidates{Search: p.lead.Title, Snippet: p.lead.Snippet})
	analyses, usage := c.Dispatcher.Dispatch(ctx, *job, provisional.Title)

	res := resolve.Title(job.Title, resolve.Candidates{
		Search:  p.lead.Title,
		Scoring: c.Dispatcher.ScoringTitles(analyses),
		Snippet: p.lead.Snippet,
	})
	job.Title = res.Title
	if res.Unresolved() {
		md.UnresolvedTitles++
		log.Warn("title unresolved", "stage", "resolve")
	} else if res.Origin != resolve.OriginExtracted {
		log.Info("title resolved from fallback", "stage", "resolve", "origin", res.Origin, "title", res.Title)
	}

	aj := model.AnalyzedJob{
		ScrapedJob: *job,
		JobID:      identity.JobID(job.URL, job.Title, job.Company),
		DaysOld:    0,
		Analyses:   analyses,
	}

	if c.Locator != nil {
		loc, u, err := c.Locator.ClassifyLocation(ctx, *job)
		usage = usage.Add(u)
		if err != nil {
			log.Warn("location classification failed", "stage", "location", "error", err)
		}
		aj.LocationAnalysis = loc
	}

	scores := make(map[string]int, len(analyses))
	for track, a := range analyses {
		scores[track] = a.FitScore
	}
	if !c.History.Record(aj.JobID, model.HistoryEntry{
		URL:     job.URL,
		Title:   job.Title,
		Company: job.Company,
		LeadID:  p.leadID,
		Scores:  scores,
	}) {
		log.Debug("job already in history under another lead", "job_id", aj.JobID)
	}

	log.Info("analyzed job", "title", aj.Title, "company", aj.Company, "best_score", aj.BestScore())
	return aj, usage, true
}

// persist writes results then history. Either failure is fatal. History is
// left untouched when results cannot be written so the jobs are retried.
func (c *Coordinator) persist(results *model.Results) error {
	if c.Results != nil {
		if err := c.Results.SaveResults(results); err != nil {
			return fmt.Errorf("%w: saving results: %w", ErrPersist, err)
		}
	}
	if err := c.History.Save(); err != nil {
		return fmt.Errorf("%w: saving history: %w", ErrPersist, err)
	}
	return nil
}
