package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleJob(title, company string, scores map[string]int) model.AnalyzedJob {
	analyses := make(map[string]model.Analysis, len(scores))
	for k, s := range scores {
		analyses[k] = model.Analysis{FitScore: s, Category: model.CategoryHybrid, Justification: k + " fit"}
	}
	return model.AnalyzedJob{
		ScrapedJob: model.ScrapedJob{
			URL:      "https://example.com/apply/" + strings.ToLower(company),
			Title:    title,
			Company:  company,
			Location: "Remote, US",
			Source:   model.SourceGreenhouse,
		},
		Analyses: analyses,
	}
}

func sampleResults(jobs ...model.AnalyzedJob) *model.Results {
	return &model.Results{
		Jobs: jobs,
		Metadata: model.RunMetadata{
			Profile:       "dual",
			RunTimestamp:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
			TotalSearched: 12,
			NewJobsFound:  4,
			JobsAnalyzed:  4,
			Usage:         model.Usage{Calls: 8, CostUSD: 0.1234},
		},
	}
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestSlackNotifier_NoJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), 5, discardLogger())

	if err := n.Notify(sampleResults()); err != nil {
		t.Errorf("Notify(empty) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleDigest(t *testing.T) {
	var calls atomic.Int32
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), 5, discardLogger())
	res := sampleResults(
		sampleJob("Engineer 1", "A", map[string]int{"ai": 80}),
		sampleJob("Engineer 2", "B", map[string]int{"ai": 70}),
		sampleJob("Engineer 3", "C", map[string]int{"ai": 65}),
	)

	if err := n.Notify(res); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 HTTP call for the whole run, got %d", c)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got := payload.Blocks[0].Text.Text; got != "📡 Job Radar: dual" {
		t.Errorf("header text = %q", got)
	}
	// header, summary, divider, then one section per job
	if len(payload.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(payload.Blocks))
	}
	if f := payload.Blocks[1].Fields[0].Text; f != "*New jobs:*\n4" {
		t.Errorf("summary field = %q", f)
	}
	if f := payload.Blocks[1].Fields[3].Text; f != "*Scoring cost:*\n$0.1234" {
		t.Errorf("cost field = %q", f)
	}
	first := payload.Blocks[3]
	if first.Accessory == nil || first.Accessory.URL != "https://example.com/apply/a" {
		t.Errorf("first job button = %+v", first.Accessory)
	}
	if first.Accessory.Style != "primary" {
		t.Errorf("button style = %q, want primary", first.Accessory.Style)
	}
	if !strings.Contains(first.Text.Text, "*80%* Strong (ai: 80)") {
		t.Errorf("job text = %q", first.Text.Text)
	}
}

func TestSlackNotifier_TopNLimitsJobs(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), 1, discardLogger())
	res := sampleResults(
		sampleJob("Lower", "A", map[string]int{"ai": 61}),
		sampleJob("Higher", "B", map[string]int{"ai": 20, "sustainability": 95}),
	)
	if err := n.Notify(res); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(payload.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(payload.Blocks))
	}
	text := payload.Blocks[3].Text.Text
	if !strings.Contains(text, "Higher") || !strings.Contains(text, "_sustainability fit_") {
		t.Errorf("top job text = %q", text)
	}
}

func TestSlackNotifier_SlackReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), 5, discardLogger())
	err := n.Notify(sampleResults(sampleJob("Fails", "A", map[string]int{"ai": 90})))
	if err == nil {
		t.Error("expected error on 500, got nil")
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := calls.Add(1)
		if c == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	var waited time.Duration
	n := NewSlackNotifier(srv.URL, srv.Client(), 5, discardLogger())
	n.sleep = func(_ context.Context, d time.Duration) error { waited = d; return nil }

	err := n.Notify(sampleResults(sampleJob("Rate Limited Job", "Test", map[string]int{"ai": 90})))
	if err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
	if waited != 3*time.Second {
		t.Errorf("waited %v, want Retry-After of 3s", waited)
	}
}

func TestSendTestMessage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), 5, discardLogger())
	n.sleep = noSleep
	if err := SendTestMessage(n); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 HTTP call, got %d", calls.Load())
	}
}
