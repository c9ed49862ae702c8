// Package crawler fetches pages and discovers same-origin links for one
// website. All fetch failures are soft: a Page marked Unavailable comes
// back instead of an error, and the pipeline continues without the page.
package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mati018/website-search/pkg/metrics"
	"github.com/Mati018/website-search/pkg/resilience"
)

const userAgent = "website-search/1.0"

// FetcherOpts configures fetch behavior.
type FetcherOpts struct {
	// Timeout bounds one request end to end.
	Timeout time.Duration
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
	// RatePerSecond throttles outbound requests. <= 0 disables throttling.
	RatePerSecond float64
	// Burst is the token bucket capacity when throttling.
	Burst int
}

// DefaultFetcherOpts returns the production defaults.
func DefaultFetcherOpts() FetcherOpts {
	return FetcherOpts{
		Timeout:      10 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Fetcher retrieves raw page bytes with a bounded timeout.
type Fetcher struct {
	client  *http.Client
	limiter *resilience.Limiter
	logger  *slog.Logger

	maxBody int64
	fetched *metrics.Counter
	failed  *metrics.Counter
}

// NewFetcher creates a Fetcher. reg may be nil when metrics are not wanted.
func NewFetcher(opts FetcherOpts, logger *slog.Logger, reg *metrics.Registry) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 10 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = metrics.New()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: resilience.NewLimiter(opts.RatePerSecond, opts.Burst),
		logger:  logger,
		maxBody: opts.MaxBodyBytes,
		fetched: reg.Counter("pages_fetched_total", "Pages fetched successfully."),
		failed:  reg.Counter("fetch_failures_total", "Fetches absorbed as unavailable."),
	}
}

// Fetch retrieves one page. On any transport error, timeout, or non-200
// status it returns the URL marked Unavailable rather than an error.
// No retries: each URL is attempted exactly once.
func (f *Fetcher) Fetch(ctx context.Context, url string) Page {
	if err := f.limiter.Wait(ctx); err != nil {
		f.failed.Inc()
		f.logger.Warn("fetch aborted while rate limited", "url", url, "err", err)
		return unavailable(url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.failed.Inc()
		f.logger.Warn("fetch request build failed", "url", url, "err", err)
		return unavailable(url)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.failed.Inc()
		f.logger.Warn("fetch failed", "url", url, "err", err)
		return unavailable(url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.failed.Inc()
		f.logger.Warn("fetch non-200", "url", url, "status", resp.StatusCode)
		return unavailable(url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		f.failed.Inc()
		f.logger.Warn("fetch body read failed", "url", url, "err", err)
		return unavailable(url)
	}

	f.fetched.Inc()
	return Page{URL: url, HTML: string(body)}
}
