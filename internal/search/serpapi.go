// Package search discovers job leads through the SerpAPI Google search API.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobradar/internal/adapter"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/ratelimit"
	"github.com/amishk599/jobradar/internal/retry"
)

// DefaultBaseURL is the SerpAPI JSON endpoint.
const DefaultBaseURL = "https://serpapi.com/search.json"

// Options configures a search.
type Options struct {
	BaseURL        string
	APIKey         string
	Keywords       Keywords
	Boards         []string
	Locations      []string
	TimeframeDays  int
	MaxResults     int
	ResultsPerPage int
}

type serpResponse struct {
	OrganicResults []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// SerpAPI implements model.SearchProvider.
type SerpAPI struct {
	opts       Options
	httpClient *http.Client
	pacer      *ratelimit.Pacer
	retrier    *retry.Retrier
	now        func() time.Time
	logger     *slog.Logger
}

// NewSerpAPI creates a search provider. Pages are spaced by pacer.
func NewSerpAPI(opts Options, httpClient *http.Client, pacer *ratelimit.Pacer, retrier *retry.Retrier, logger *slog.Logger) *SerpAPI {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ResultsPerPage <= 0 {
		opts.ResultsPerPage = 10
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 50
	}
	return &SerpAPI{
		opts:       opts,
		httpClient: httpClient,
		pacer:      pacer,
		retrier:    retrier,
		now:        time.Now,
		logger:     logger,
	}
}

// Query returns the full query string including the recency filter.
func (s *SerpAPI) Query() string {
	q := BuildQuery(s.opts.Keywords, s.opts.Boards, s.opts.Locations)
	return WithRecency(q, s.now(), s.opts.TimeframeDays)
}

// Search pages through results until MaxResults leads are collected or a
// page comes back empty. Results on unrecognized boards are dropped. A
// failure on the first page is returned; later page failures end the
// search with what was collected so far.
func (s *SerpAPI) Search(ctx context.Context) ([]model.Lead, error) {
	query := s.Query()
	s.logger.Info("searching", "query", query, "max_results", s.opts.MaxResults)

	pages := (s.opts.MaxResults + s.opts.ResultsPerPage - 1) / s.opts.ResultsPerPage
	var leads []model.Lead
	for page := 0; page < pages; page++ {
		if err := s.pacer.Wait(ctx, ratelimit.KeySearch); err != nil {
			return leads, err
		}

		resp, err := retry.Do(ctx, s.retrier, func(ctx context.Context, _ int) (*serpResponse, error) {
			return s.fetchPage(ctx, query, page*s.opts.ResultsPerPage)
		})
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("search page 1: %w", err)
			}
			s.logger.Error("search page failed", "page", page+1, "error", err)
			break
		}
		if len(resp.OrganicResults) == 0 {
			s.logger.Info("no more results", "page", page+1)
			break
		}

		matched := 0
		for _, r := range resp.OrganicResults {
			source, ok := adapter.DetectSource(r.Link)
			if !ok {
				s.logger.Debug("dropping result from unrecognized board", "url", r.Link)
				continue
			}
			leads = append(leads, model.Lead{URL: r.Link, Title: r.Title, Snippet: r.Snippet, Source: source})
			matched++
		}
		s.logger.Info("search page", "page", page+1, "results", len(resp.OrganicResults), "matched", matched)

		if len(leads) >= s.opts.MaxResults {
			leads = leads[:s.opts.MaxResults]
			break
		}
	}

	s.logger.Info("search complete", "leads", len(leads))
	return leads, nil
}

func (s *SerpAPI) fetchPage(ctx context.Context, query string, start int) (*serpResponse, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", s.opts.APIKey)
	params.Set("num", strconv.Itoa(s.opts.ResultsPerPage))
	params.Set("start", strconv.Itoa(start))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        s.opts.BaseURL,
			Err:        errors.New(strings.TrimSpace(string(body))),
		}
	}

	var out serpResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if out.Error != "" {
		// SerpAPI reports "no results" as an error string on a 200.
		if out.Error == "Google hasn't returned any results for this query." {
			return &serpResponse{}, nil
		}
		return nil, fmt.Errorf("search error: %s", out.Error)
	}
	return &out, nil
}
