package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/retry"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts a run digest to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	topN       int
	sleep      retry.SleepFunc
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts one Block Kit message per run.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, topN int, logger *slog.Logger) *SlackNotifier {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		topN:       topN,
		sleep:      retry.Sleep,
		logger:     logger,
	}
}

// Notify posts the digest. Runs that kept no jobs are not posted.
func (s *SlackNotifier) Notify(results *model.Results) error {
	if len(results.Jobs) == 0 {
		return nil
	}

	body, err := json.Marshal(buildPayload(results, s.topN))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		if err := s.sleep(context.Background(), retryAfter); err != nil {
			return err
		}
		status, _, err = s.post(body)
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack digest sent", "profile", results.Metadata.Profile, "retried", true)
		return nil
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack digest sent", "profile", results.Metadata.Profile)
	return nil
}

func (s *SlackNotifier) post(body []byte) (int, time.Duration, error) {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type      string         `json:"type"`
	Text      *slackText     `json:"text,omitempty"`
	Fields    []slackText    `json:"fields,omitempty"`
	Elements  []slackElement `json:"elements,omitempty"`
	Accessory *slackElement  `json:"accessory,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style,omitempty"`
}

// SendTestMessage sends a sample digest to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now().UTC()
	sample := &model.Results{
		Jobs: []model.AnalyzedJob{{
			ScrapedJob: model.ScrapedJob{
				URL:       "https://boards.greenhouse.io/example/jobs/1",
				Title:     "Test Notification: Integration Verified",
				Company:   "Job Radar",
				Location:  "Everywhere",
				Source:    model.SourceGreenhouse,
				ScrapedAt: now,
			},
			JobID: "test-001",
			Analyses: map[string]model.Analysis{
				"test": {FitScore: 100, Category: model.CategoryHybrid, Justification: "Notifications work."},
			},
		}},
		Metadata: model.RunMetadata{Profile: "test", RunTimestamp: now, TotalSearched: 1, NewJobsFound: 1, JobsAnalyzed: 1},
	}
	return n.Notify(sample)
}

func buildPayload(results *model.Results, topN int) slackPayload {
	md := results.Metadata
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "📡 Job Radar: " + md.Profile},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*New jobs:*\n" + strconv.Itoa(md.NewJobsFound)},
				{Type: "mrkdwn", Text: "*Analyzed:*\n" + strconv.Itoa(md.JobsAnalyzed)},
				{Type: "mrkdwn", Text: "*Shortlisted:*\n" + strconv.Itoa(len(results.Jobs))},
				{Type: "mrkdwn", Text: "*Scoring cost:*\n" + fmt.Sprintf("$%.4f", md.Usage.CostUSD)},
			},
		},
		{Type: "divider"},
	}

	for _, j := range topJobs(results.Jobs, topN) {
		best := j.BestScore()
		text := fmt.Sprintf("*%s*\n%s · %s\n*%d%%* %s (%s)",
			j.Title, j.Company, j.Location, best, model.FitLabel(best), trackScores(j))
		if why := bestJustification(j); why != "" {
			text += "\n_" + why + "_"
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
			Accessory: &slackElement{
				Type:  "button",
				Text:  slackText{Type: "plain_text", Text: "Apply Now"},
				URL:   j.URL,
				Style: "primary",
			},
		})
	}
	return slackPayload{Blocks: blocks}
}

// bestJustification returns the justification of the highest-scoring track.
// Ties go to the first track in key order.
func bestJustification(j model.AnalyzedJob) string {
	keys := make([]string, 0, len(j.Analyses))
	for k := range j.Analyses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, why := -1, ""
	for _, k := range keys {
		if a := j.Analyses[k]; a.FitScore > best {
			best, why = a.FitScore, a.Justification
		}
	}
	return why
}
