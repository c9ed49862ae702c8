// Package pipeline orchestrates one search request end to end: discover
// links, rebuild the site index from scratch, query it, and assemble the
// response envelope. Every request performs a full destructive reindex of
// its target site; nothing is cached across requests.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/Mati018/website-search/engine/domain"
	"github.com/Mati018/website-search/engine/query"
	"github.com/Mati018/website-search/pkg/metrics"
)

// Discoverer finds candidate page URLs for a seed.
type Discoverer interface {
	Discover(ctx context.Context, seed string, maxPages int) []string
}

// Indexer rebuilds and populates a site collection.
type Indexer interface {
	Rebuild(ctx context.Context, urls []string, collection string) (int, error)
}

// QueryEngine answers a query against a collection.
type QueryEngine interface {
	Search(ctx context.Context, queryText, collection string, topK int) ([]query.Result, error)
}

// CollectionAdmin is the surface the administrative sweep needs.
type CollectionAdmin interface {
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Options configures the orchestrator.
type Options struct {
	// MaxPages caps link discovery per site.
	MaxPages int
	// TopK is the number of results per query.
	TopK int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{MaxPages: 1500, TopK: query.DefaultTopK}
}

// Outcome is the response envelope for one search request.
type Outcome struct {
	Results     []query.Result
	Elapsed     float64 // seconds, rounded to 2 decimals
	TotalChunks int
}

// Service sequences the crawl-chunk-index-search pipeline.
type Service struct {
	discoverer Discoverer
	indexer    Indexer
	query      QueryEngine
	admin      CollectionAdmin
	events     *Events
	logger     *slog.Logger
	opts       Options

	searches *metrics.Counter
	duration *metrics.Histogram
}

// New creates a Service. events and reg may be nil.
func New(d Discoverer, i Indexer, q QueryEngine, admin CollectionAdmin, events *Events, opts Options, logger *slog.Logger, reg *metrics.Registry) *Service {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1500
	}
	if opts.TopK <= 0 {
		opts.TopK = query.DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = metrics.New()
	}
	return &Service{
		discoverer: d,
		indexer:    i,
		query:      q,
		admin:      admin,
		events:     events,
		logger:     logger,
		opts:       opts,
		searches:   reg.Counter("searches_total", "Search requests processed."),
		duration:   reg.Histogram("search_duration_seconds", "End-to-end search duration.", nil),
	}
}

// Search runs the full pipeline for one request.
//
// Two concurrent searches of the same site race on the collection's
// delete/create/populate; the vector store's own consistency decides the
// outcome. No lock serializes same-site rebuilds.
func (s *Service) Search(ctx context.Context, queryText, website string) (*Outcome, error) {
	start := time.Now()

	if err := domain.ValidateQuery(queryText); err != nil {
		return nil, err
	}
	site, err := domain.NormalizeWebsite(website)
	if err != nil {
		return nil, err
	}
	collection := domain.CollectionName(site)

	s.logger.Info("discovering links", "website", site)
	urls := s.discoverer.Discover(ctx, site, s.opts.MaxPages)

	s.logger.Info("indexing pages", "website", site, "pages", len(urls))
	total, err := s.indexer.Rebuild(ctx, urls, collection)
	if err != nil {
		return nil, fmt.Errorf("pipeline: index %s: %w", site, err)
	}

	s.logger.Info("searching", "collection", collection, "query", queryText)
	results, err := s.query.Search(ctx, queryText, collection, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("pipeline: query %s: %w", collection, err)
	}

	elapsed := math.Round(time.Since(start).Seconds()*100) / 100
	s.searches.Inc()
	s.duration.Since(start)
	s.events.SearchCompleted(ctx, SearchCompletedEvent{
		Website: site,
		Query:   queryText,
		Pages:   len(urls),
		Chunks:  total,
		Elapsed: elapsed,
	})

	return &Outcome{Results: results, Elapsed: elapsed, TotalChunks: total}, nil
}

// ClearCollections deletes every site collection this service owns,
// returning how many were removed. Individual deletion failures are
// logged and skipped.
func (s *Service) ClearCollections(ctx context.Context) (int, error) {
	names, err := s.admin.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("pipeline: list collections: %w", err)
	}

	deleted := 0
	for _, name := range names {
		if !strings.HasPrefix(name, domain.CollectionPrefix) {
			continue
		}
		if err := s.admin.Delete(ctx, name); err != nil {
			s.logger.Error("collection delete failed", "collection", name, "err", err)
			continue
		}
		s.logger.Info("deleted collection", "collection", name)
		deleted++
	}

	s.events.CollectionsCleared(ctx, CollectionsClearedEvent{Deleted: deleted})
	return deleted, nil
}
