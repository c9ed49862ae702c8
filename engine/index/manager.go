// Package index owns the per-site collection lifecycle: destructive
// recreation, concurrent page fetching, chunking, embedding, and bulk
// population. A rebuild is not atomic: on failure the collection may be
// left empty or partially populated.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Mati018/website-search/engine/content"
	"github.com/Mati018/website-search/engine/crawler"
	"github.com/Mati018/website-search/engine/semantic"
	"github.com/Mati018/website-search/pkg/fn"
	"github.com/Mati018/website-search/pkg/metrics"

	"github.com/google/uuid"
)

// Store is the collection lifecycle surface of the vector store.
type Store interface {
	Create(ctx context.Context, name string, dims int) error
	Delete(ctx context.Context, name string) error
	Upsert(ctx context.Context, name string, records []semantic.VectorRecord) error
}

// Embedder maps a text string to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options configures a rebuild.
type Options struct {
	// MaxWords caps the words per chunk.
	MaxWords int
	// SnippetLen bounds the stored raw-markup snippet.
	SnippetLen int
	// EmbedDims is the embedding vector dimensionality.
	EmbedDims int
	// FetchWorkers bounds concurrent page fetches.
	FetchWorkers int
	// UpsertBatch is the number of records per bulk insertion.
	UpsertBatch int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxWords:     content.DefaultMaxWords,
		SnippetLen:   1000,
		EmbedDims:    768,
		FetchWorkers: 8,
		UpsertBatch:  100,
	}
}

// Manager rebuilds and populates one site collection per search request.
type Manager struct {
	store    Store
	embedder Embedder
	fetcher  *crawler.Fetcher
	logger   *slog.Logger
	opts     Options

	chunksIndexed *metrics.Counter
}

// NewManager creates a Manager. reg may be nil.
func NewManager(store Store, embedder Embedder, fetcher *crawler.Fetcher, opts Options, logger *slog.Logger, reg *metrics.Registry) *Manager {
	if opts.MaxWords <= 0 {
		opts.MaxWords = content.DefaultMaxWords
	}
	if opts.SnippetLen <= 0 {
		opts.SnippetLen = 1000
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = 8
	}
	if opts.UpsertBatch <= 0 {
		opts.UpsertBatch = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = metrics.New()
	}
	return &Manager{
		store:         store,
		embedder:      embedder,
		fetcher:       fetcher,
		logger:        logger,
		opts:          opts,
		chunksIndexed: reg.Counter("chunks_indexed_total", "Chunks submitted for insertion."),
	}
}

// Rebuild drops and recreates the collection, fetches all candidate URLs
// concurrently, and populates the collection with embedded chunks.
// Returns the count of chunks submitted for insertion.
//
// Delete failures are swallowed (best-effort idempotent reset); a create
// failure other than "already exists" is fatal, as is any embed or upsert
// failure.
func (m *Manager) Rebuild(ctx context.Context, urls []string, collection string) (int, error) {
	if err := m.store.Delete(ctx, collection); err != nil {
		m.logger.Debug("pre-rebuild delete skipped", "collection", collection, "err", err)
	}

	if err := m.store.Create(ctx, collection, m.opts.EmbedDims); err != nil {
		if !semantic.IsAlreadyExists(err) {
			return 0, fmt.Errorf("index: create %s: %w", collection, err)
		}
		// Lost a create race with a concurrent rebuild; reuse the
		// existing collection.
		m.logger.Info("collection already exists, reusing", "collection", collection)
	}

	pages := m.fetchAll(ctx, urls)

	records, err := m.buildRecords(ctx, pages, collection)
	if err != nil {
		return 0, err
	}

	for _, batch := range fn.Chunk(records, m.opts.UpsertBatch) {
		if err := m.store.Upsert(ctx, collection, batch); err != nil {
			return 0, fmt.Errorf("index: populate %s: %w", collection, err)
		}
	}

	m.chunksIndexed.Add(int64(len(records)))
	m.logger.Info("indexed site", "collection", collection, "pages", len(urls), "chunks", len(records))
	return len(records), nil
}

// fetchAll retrieves every URL with bounded concurrency and join-all
// semantics: it returns only once all fetches complete.
func (m *Manager) fetchAll(ctx context.Context, urls []string) []crawler.Page {
	var fetch fn.Stage[string, crawler.Page] = func(ctx context.Context, url string) fn.Result[crawler.Page] {
		return fn.Ok(m.fetcher.Fetch(ctx, url))
	}
	fetch = fn.Traced("index.fetch", fetch)
	result := fn.BatchStage(m.opts.FetchWorkers, fetch)(ctx, urls)
	// Fetch stages absorb failures into Unavailable pages and never error.
	return result.UnwrapOr(nil)
}

// buildRecords cleans and chunks each usable page and embeds every retained
// chunk sequentially, preserving chunk-to-vector correspondence.
func (m *Manager) buildRecords(ctx context.Context, pages []crawler.Page, collection string) ([]semantic.VectorRecord, error) {
	var records []semantic.VectorRecord
	for _, page := range pages {
		if page.Unavailable || page.HTML == "" {
			continue
		}

		ex := content.Clean(page.HTML)
		chunks := fn.Filter(content.SplitWords(ex.Text, m.opts.MaxWords), content.Indexable)
		if len(chunks) == 0 {
			continue
		}
		snippet := truncate(ex.Markup, m.opts.SnippetLen)

		for i, chunk := range chunks {
			vec, err := m.embedder.Embed(ctx, chunk)
			if err != nil {
				return nil, fmt.Errorf("index: embed chunk %d of %s: %w", i, page.URL, err)
			}
			records = append(records, semantic.VectorRecord{
				ID:        pointID(collection, page.URL, i),
				Embedding: vec,
				Payload: map[string]any{
					semantic.FieldContent:     chunk,
					semantic.FieldURL:         page.URL,
					semantic.FieldHTMLSnippet: snippet,
					semantic.FieldPageTitle:   ex.Title,
				},
			})
		}
	}
	return records, nil
}

// pointID derives a deterministic UUID for a chunk, stable across rebuilds
// of unchanged source pages.
func pointID(collection, url string, chunkIndex int) string {
	key := collection + "|" + url + "|" + strconv.Itoa(chunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
