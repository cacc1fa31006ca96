package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserRenderer renders pages in headless Chrome for boards that build the
// posting client-side. Requires Chrome or Chromium on the host.
type BrowserRenderer struct {
	timeout time.Duration
	settle  time.Duration
	logger  *slog.Logger
}

// NewBrowserRenderer returns a renderer that gives each page timeout to load
// and settle for scripts to finish after the body is ready.
func NewBrowserRenderer(timeout time.Duration, logger *slog.Logger) *BrowserRenderer {
	return &BrowserRenderer{timeout: timeout, settle: 2 * time.Second, logger: logger}
}

// Fetch renders url and returns the resulting DOM.
func (b *BrowserRenderer) Fetch(ctx context.Context, url string) (*Page, error) {
	b.logger.Debug("rendering in headless browser", "url", url)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}

	b.logger.Debug("rendered page", "url", url, "bytes", len(html))
	return ParsePage(url, []byte(html), "text/html; charset=utf-8")
}
