// Package adapter extracts job postings from job-board pages. Each board is
// described by a Site: ordered fallback chains of extraction strategies.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobradar/internal/fetch"
	"github.com/amishk599/jobradar/internal/model"
)

// DefaultMinDescription is the shortest text accepted as a description.
const DefaultMinDescription = 100

// Extractor fetches a lead's page and runs its board's chains over it.
type Extractor struct {
	fetcher        fetch.Fetcher
	renderer       fetch.Fetcher
	sites          map[model.Source]Site
	minDescription int
	logger         *slog.Logger
	now            func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRenderer sets a fallback fetcher, typically a headless browser, used
// when the plain page yields no description.
func WithRenderer(r fetch.Fetcher) Option {
	return func(e *Extractor) { e.renderer = r }
}

// WithMinDescription overrides DefaultMinDescription.
func WithMinDescription(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minDescription = n
		}
	}
}

// WithSites replaces the supported boards.
func WithSites(sites ...Site) Option {
	return func(e *Extractor) {
		e.sites = make(map[model.Source]Site, len(sites))
		for _, s := range sites {
			e.sites[s.Source] = s
		}
	}
}

// NewExtractor creates an Extractor over every board in Sites.
func NewExtractor(fetcher fetch.Fetcher, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher:        fetcher,
		minDescription: DefaultMinDescription,
		logger:         logger,
		now:            time.Now,
	}
	WithSites(Sites()...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches and parses a lead. An unsupported board is logged and
// yields (nil, nil). Fetch failures are returned; missing fields are not.
func (e *Extractor) Extract(ctx context.Context, lead model.Lead) (*model.ScrapedJob, error) {
	site, ok := e.siteFor(lead)
	if !ok {
		e.logger.Warn("no extractor for source", "url", lead.URL, "source", lead.Source)
		return nil, nil
	}

	page, err := e.fetcher.Fetch(ctx, lead.URL)
	if err != nil {
		return nil, fmt.Errorf("%s extract for %s: %w", site.Source, lead.URL, err)
	}

	job := e.Parse(site, page, lead)
	if job.Description == "" && e.renderer != nil {
		job = e.retryRendered(ctx, site, lead, job)
	}

	e.logger.Info("extracted posting",
		"source", site.Source,
		"title", job.Title,
		"company", job.Company,
		"description_chars", len(job.Description),
	)
	return job, nil
}

// Parse runs site's chains over an already fetched page.
func (e *Extractor) Parse(site Site, page *fetch.Page, lead model.Lead) *model.ScrapedJob {
	resolve := func(c Chain) string {
		v, strategy := c.Resolve(page)
		e.logger.Debug("field resolved", "url", lead.URL, "field", c.Field, "strategy", strategy, "found", v != "")
		return v
	}

	scrapedAt := e.now().UTC()
	job := &model.ScrapedJob{
		URL:         lead.URL,
		Title:       orPlaceholder(resolve(site.Title)),
		Company:     orPlaceholder(resolve(site.Company)),
		Location:    orPlaceholder(resolve(site.Location)),
		Description: resolve(e.descriptionChain(site)),
		Source:      site.Source,
		SearchTitle: lead.Title,
		Snippet:     lead.Snippet,
		ScrapedAt:   scrapedAt,
		PostedDate:  scrapedAt,
	}
	if jp := findJobPosting(page); jp != nil {
		if t, ok := jp.postedAt(); ok {
			job.PostedDate = t
		}
	}
	return job
}

func (e *Extractor) descriptionChain(site Site) Chain {
	if site.Description.MinLength > 0 {
		return site.Description
	}
	return site.Description.withMin(e.minDescription)
}

func (e *Extractor) retryRendered(ctx context.Context, site Site, lead model.Lead, job *model.ScrapedJob) *model.ScrapedJob {
	page, err := e.renderer.Fetch(ctx, lead.URL)
	if err != nil {
		e.logger.Warn("browser render failed", "url", lead.URL, "stage", "render", "error", err)
		return job
	}
	rendered := e.Parse(site, page, lead)
	if rendered.Description == "" {
		return job
	}
	// Keep whatever the plain page already resolved.
	if job.Title != model.Placeholder {
		rendered.Title = job.Title
	}
	if job.Company != model.Placeholder {
		rendered.Company = job.Company
	}
	if job.Location != model.Placeholder {
		rendered.Location = job.Location
	}
	return rendered
}

func (e *Extractor) siteFor(lead model.Lead) (Site, bool) {
	if site, ok := e.sites[lead.Source]; ok {
		return site, true
	}
	if src, ok := DetectSource(lead.URL); ok {
		site, ok := e.sites[src]
		return site, ok
	}
	return Site{}, false
}
