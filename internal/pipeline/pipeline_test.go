package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amishk599/jobradar/internal/dispatch"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/identity"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/ratelimit"
)

// --- Mock/Fake Implementations ---

type stubSearch struct {
	leads []model.Lead
	err   error
}

func (s *stubSearch) Search(_ context.Context) ([]model.Lead, error) {
	return s.leads, s.err
}

// stubExtractor returns canned jobs by URL; unknown URLs fail.
type stubExtractor struct {
	jobs  map[string]*model.ScrapedJob
	calls []string
}

func (e *stubExtractor) Extract(_ context.Context, lead model.Lead) (*model.ScrapedJob, error) {
	e.calls = append(e.calls, lead.URL)
	job, ok := e.jobs[lead.URL]
	if !ok {
		return nil, errors.New("fetch exhausted")
	}
	cp := *job
	return &cp, nil
}

// memHistory is a map-based History that counts records and saves.
type memHistory struct {
	entries map[string]model.HistoryEntry
	leads   map[string]bool
	records int
	saves   int
	saveErr error
}

func newMemHistory() *memHistory {
	return &memHistory{entries: map[string]model.HistoryEntry{}, leads: map[string]bool{}}
}

func (h *memHistory) Contains(id string) bool {
	_, ok := h.entries[id]
	return ok || h.leads[id]
}

func (h *memHistory) Record(id string, e model.HistoryEntry) bool {
	if _, ok := h.entries[id]; ok {
		return false
	}
	h.entries[id] = e
	h.leads[e.LeadID] = true
	h.records++
	return true
}

func (h *memHistory) Save() error { h.saves++; return h.saveErr }
func (h *memHistory) Len() int    { return len(h.entries) }

// trackScorer scores by track key; failing tracks return an error.
type trackScorer struct {
	scores  map[string]int
	titles  map[string]string
	failAll bool
}

func (s *trackScorer) Score(_ context.Context, _ string, track model.Track) (model.Analysis, model.Usage, error) {
	if s.failAll {
		return model.Analysis{}, model.Usage{}, errors.New("scoring service unavailable")
	}
	return model.Analysis{
		FitScore:       s.scores[track.Key],
		Category:       model.CategoryAITech,
		ExtractedTitle: s.titles[track.Key],
	}, model.Usage{Calls: 1, InputTokens: 10, OutputTokens: 2}, nil
}

type recordingSink struct {
	saved *model.Results
	err   error
}

func (r *recordingSink) SaveResults(res *model.Results) error {
	r.saved = res
	return r.err
}

type recordingNotifier struct {
	got *model.Results
}

func (n *recordingNotifier) Notify(res *model.Results) error {
	n.got = res
	return nil
}

type stubLocator struct{}

func (stubLocator) ClassifyLocation(_ context.Context, _ model.ScrapedJob) (*model.LocationAnalysis, model.Usage, error) {
	return &model.LocationAnalysis{LocationText: "Remote (US)", IsUS: "true", Confidence: 0.9}, model.Usage{Calls: 1}, nil
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func lead(url, title string) model.Lead {
	return model.Lead{URL: url, Title: title, Snippet: title + ". Apply now.", Source: model.SourceGreenhouse}
}

func scraped(url, title, company string) *model.ScrapedJob {
	return &model.ScrapedJob{URL: url, Title: title, Company: company, Location: "Remote", Description: "A long description.", Source: model.SourceGreenhouse}
}

type fixture struct {
	search    *stubSearch
	extractor *stubExtractor
	history   *memHistory
	scorer    *trackScorer
	sink      *recordingSink
	notifier  *recordingNotifier
}

func newFixture() *fixture {
	return &fixture{
		search:    &stubSearch{},
		extractor: &stubExtractor{jobs: map[string]*model.ScrapedJob{}},
		history:   newMemHistory(),
		scorer:    &trackScorer{scores: map[string]int{"ai": 70, "sustainability": 50}},
		sink:      &recordingSink{},
		notifier:  &recordingNotifier{},
	}
}

func (f *fixture) coordinator(t *testing.T, minScore int, locator LocationClassifier) *Coordinator {
	t.Helper()
	profile, err := dispatch.NewMulti("dual", []model.Track{{Key: "ai"}, {Key: "sustainability"}}, minScore)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	return New(Deps{
		Search:     f.search,
		Extractor:  f.extractor,
		Dispatcher: dispatch.NewDispatcher(f.scorer, profile, discardLogger()),
		History:    f.history,
		Filter:     filter.NewScoreFilter(minScore),
		Pacer:      ratelimit.NewPacer(0),
		Locator:    locator,
		Results:    f.sink,
		Notifier:   f.notifier,
		RunID:      func() string { return "run-1" },
	}, discardLogger())
}

// --- Tests ---

func TestRun_OneNewOneSeen(t *testing.T) {
	f := newFixture()
	seen := lead("https://boards.greenhouse.io/acme/jobs/1", "Data Analyst")
	fresh := lead("https://boards.greenhouse.io/acme/jobs/2", "ML Engineer")
	f.search.leads = []model.Lead{seen, fresh}
	f.history.Record("old-job-id", model.HistoryEntry{URL: seen.URL, LeadID: identity.LeadID(seen)})
	f.history.records = 0
	f.extractor.jobs[fresh.URL] = scraped(fresh.URL, "ML Engineer", "Acme")

	res, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	md := res.Metadata
	if md.TotalSearched != 2 || md.NewJobsFound != 1 || md.JobsSkipped != 1 || md.JobsAnalyzed != 1 {
		t.Errorf("metadata = %+v", md)
	}
	if f.history.records != 1 {
		t.Errorf("history records = %d, want exactly 1", f.history.records)
	}
	if len(f.extractor.calls) != 1 || f.extractor.calls[0] != fresh.URL {
		t.Errorf("extracted %v, want only the new lead", f.extractor.calls)
	}
	if f.history.saves != 1 {
		t.Errorf("history saves = %d, want 1", f.history.saves)
	}

	wantID := identity.JobID(fresh.URL, "ML Engineer", "Acme")
	if len(res.Jobs) != 1 || res.Jobs[0].JobID != wantID {
		t.Fatalf("jobs = %+v, want one with id %s", res.Jobs, wantID)
	}
	if res.Jobs[0].DaysOld != 0 {
		t.Errorf("DaysOld = %d, want 0", res.Jobs[0].DaysOld)
	}
	entry := f.history.entries[wantID]
	if entry.Scores["ai"] != 70 || entry.Scores["sustainability"] != 50 {
		t.Errorf("history scores = %v", entry.Scores)
	}
	if md.Profile != "dual" || md.RunID != "run-1" {
		t.Errorf("profile/run_id = %q/%q", md.Profile, md.RunID)
	}
	if md.Usage.Calls != 2 {
		t.Errorf("usage calls = %d, want 2", md.Usage.Calls)
	}
	if f.sink.saved != res || f.notifier.got != res {
		t.Error("results should be saved and notified")
	}
}

func TestRun_DegradedScoringContinues(t *testing.T) {
	f := newFixture()
	f.scorer.failAll = true
	a := lead("https://boards.greenhouse.io/acme/jobs/1", "Analyst")
	b := lead("https://boards.greenhouse.io/acme/jobs/2", "Engineer")
	f.search.leads = []model.Lead{a, b}
	f.extractor.jobs[a.URL] = scraped(a.URL, "Analyst", "Acme")
	f.extractor.jobs[b.URL] = scraped(b.URL, "Engineer", "Acme")

	res, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Metadata.JobsAnalyzed != 2 {
		t.Fatalf("JobsAnalyzed = %d, want 2", res.Metadata.JobsAnalyzed)
	}
	for _, j := range res.Jobs {
		for track, an := range j.Analyses {
			if an.FitScore != 0 || an.Category != model.CategoryUnknown {
				t.Errorf("%s/%s = %+v, want degraded", j.URL, track, an)
			}
		}
	}
}

func TestRun_ExtractionFailureIsCounted(t *testing.T) {
	f := newFixture()
	bad := lead("https://boards.greenhouse.io/acme/jobs/404", "Gone")
	good := lead("https://boards.greenhouse.io/acme/jobs/2", "Engineer")
	f.search.leads = []model.Lead{bad, good}
	f.extractor.jobs[good.URL] = scraped(good.URL, "Engineer", "Acme")

	res, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Metadata.JobsFailed != 1 || res.Metadata.JobsAnalyzed != 1 {
		t.Errorf("metadata = %+v, want 1 failed / 1 analyzed", res.Metadata)
	}
	if f.history.records != 1 {
		t.Errorf("history records = %d, want 1 (failed lead must stay unseen)", f.history.records)
	}
}

func TestRun_FiltersAndSortsByBestScore(t *testing.T) {
	f := newFixture()
	f.scorer.scores = map[string]int{"ai": 59, "sustainability": 10}
	low := lead("https://boards.greenhouse.io/acme/jobs/1", "Low")
	f.search.leads = []model.Lead{low}
	f.extractor.jobs[low.URL] = scraped(low.URL, "Low", "Acme")

	res, err := f.coordinator(t, 60, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Jobs) != 0 {
		t.Errorf("jobs = %d, want 0 (59 is below 60)", len(res.Jobs))
	}
	if res.Metadata.JobsAnalyzed != 1 || f.history.records != 1 {
		t.Error("filtered jobs are still analyzed and recorded")
	}
}

func TestRun_TitleResolvedFromScoring(t *testing.T) {
	f := newFixture()
	f.scorer.titles = map[string]string{"sustainability": "Climate Program Manager"}
	l := model.Lead{URL: "https://jobs.lever.co/acme/abc", Source: model.SourceLever}
	f.search.leads = []model.Lead{l}
	f.extractor.jobs[l.URL] = scraped(l.URL, model.Placeholder, "Acme")

	res, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.Jobs[0]
	if got.Title != "Climate Program Manager" {
		t.Errorf("Title = %q, want the scoring title", got.Title)
	}
	if got.JobID != identity.JobID(l.URL, "Climate Program Manager", "Acme") {
		t.Error("job id must be computed over the resolved title")
	}
	if res.Metadata.UnresolvedTitles != 0 {
		t.Errorf("UnresolvedTitles = %d, want 0", res.Metadata.UnresolvedTitles)
	}
}

func TestRun_UnresolvedTitleCounted(t *testing.T) {
	f := newFixture()
	l := model.Lead{URL: "https://jobs.lever.co/acme/abc", Snippet: "Hi", Source: model.SourceLever}
	f.search.leads = []model.Lead{l}
	f.extractor.jobs[l.URL] = scraped(l.URL, model.Placeholder, "Acme")

	res, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Jobs[0].Title != model.Placeholder || res.Metadata.UnresolvedTitles != 1 {
		t.Errorf("title = %q unresolved = %d", res.Jobs[0].Title, res.Metadata.UnresolvedTitles)
	}
}

func TestRun_AttachesLocation(t *testing.T) {
	f := newFixture()
	l := lead("https://boards.greenhouse.io/acme/jobs/1", "Analyst")
	f.search.leads = []model.Lead{l}
	f.extractor.jobs[l.URL] = scraped(l.URL, "Analyst", "Acme")

	res, err := f.coordinator(t, 0, stubLocator{}).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc := res.Jobs[0].LocationAnalysis
	if loc == nil || loc.IsUS != "true" {
		t.Errorf("LocationAnalysis = %+v", loc)
	}
	if res.Metadata.Usage.Calls != 3 {
		t.Errorf("usage calls = %d, want 3 (two tracks plus location)", res.Metadata.Usage.Calls)
	}
}

func TestRun_DuplicateLeadsInBatch(t *testing.T) {
	f := newFixture()
	l := lead("https://boards.greenhouse.io/acme/jobs/1", "Analyst")
	f.search.leads = []model.Lead{l, l}
	f.extractor.jobs[l.URL] = scraped(l.URL, "Analyst", "Acme")

	res, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Metadata.NewJobsFound != 1 || len(f.extractor.calls) != 1 {
		t.Errorf("new = %d, extracted = %d; want 1, 1", res.Metadata.NewJobsFound, len(f.extractor.calls))
	}
}

func TestRun_SearchErrorAborts(t *testing.T) {
	f := newFixture()
	f.search.err = errors.New("invalid api key")

	_, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if f.history.saves != 0 {
		t.Error("history must not be saved after a failed search")
	}
}

func TestRun_PersistenceErrorsAreFatal(t *testing.T) {
	t.Run("results", func(t *testing.T) {
		f := newFixture()
		f.sink.err = errors.New("read-only file system")
		_, err := f.coordinator(t, 0, nil).Run(context.Background())
		if !errors.Is(err, ErrPersist) {
			t.Fatalf("err = %v, want ErrPersist", err)
		}
		if f.history.saves != 0 {
			t.Error("history must stay untouched when results cannot be written")
		}
		if f.notifier.got != nil {
			t.Error("notifier should not run after a failed save")
		}
	})
	t.Run("history", func(t *testing.T) {
		f := newFixture()
		f.history.saveErr = errors.New("disk full")
		_, err := f.coordinator(t, 0, nil).Run(context.Background())
		if !errors.Is(err, ErrPersist) {
			t.Fatalf("err = %v, want ErrPersist", err)
		}
	})
}

func TestRun_NoLeadsStillPersists(t *testing.T) {
	f := newFixture()

	res, err := f.coordinator(t, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Jobs != nil && len(res.Jobs) != 0 {
		t.Errorf("jobs = %v, want none", res.Jobs)
	}
	if f.sink.saved == nil || f.history.saves != 1 {
		t.Error("an empty run still writes results and history")
	}
}
