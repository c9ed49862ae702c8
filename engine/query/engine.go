// Package query embeds a query string, runs nearest-neighbor search
// against a site collection, and maps raw hits into ranked results.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Mati018/website-search/engine/semantic"
)

const (
	// DefaultTopK is the number of nearest vectors requested.
	DefaultTopK = 10
	// previewLen caps the content preview.
	previewLen = 300
	// snippetLen caps the returned markup snippet.
	snippetLen = 500
)

// Searcher is the nearest-neighbor surface of the vector store.
type Searcher interface {
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]semantic.Hit, error)
}

// Embedder maps a text string to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is one ranked search result.
type Result struct {
	Score       float64 `json:"score"`
	URL         string  `json:"url"`
	Content     string  `json:"content"`
	HTMLSnippet string  `json:"html_snippet,omitempty"`
}

// Engine executes queries against site collections.
type Engine struct {
	searcher Searcher
	embedder Embedder
	logger   *slog.Logger
}

// New creates an Engine.
func New(searcher Searcher, embedder Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{searcher: searcher, embedder: embedder, logger: logger}
}

// Search embeds the query and returns up to topK results, best first.
// Querying a collection that does not exist is an error, not an empty
// result: it means the index build never happened.
func (e *Engine) Search(ctx context.Context, queryText, collection string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := e.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("query: embed: %w", err)
	}

	hits, err := e.searcher.Search(ctx, collection, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("query: search %s: %w", collection, err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			Score:       Score(h.Distance),
			URL:         h.URL,
			Content:     preview(h.Content),
			HTMLSnippet: truncate(h.HTMLSnippet, snippetLen),
		}
	}
	return results, nil
}

// Score converts a bounded distance into a similarity score rounded to
// three decimals: 0 distance scores 1.0.
func Score(distance float32) float64 {
	return math.Round((1-float64(distance))*1000) / 1000
}

// preview truncates content to 300 characters plus an ellipsis marker.
func preview(s string) string {
	if len(s) <= previewLen {
		return s
	}
	return s[:previewLen] + "..."
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
