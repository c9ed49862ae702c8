// Package main implements a one-shot CLI that crawls a website, rebuilds its
// index, and prints ranked results for a single query. Useful for smoke tests
// without running the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Mati018/website-search/engine/crawler"
	"github.com/Mati018/website-search/engine/index"
	"github.com/Mati018/website-search/engine/pipeline"
	"github.com/Mati018/website-search/engine/query"
	"github.com/Mati018/website-search/engine/semantic"
	"github.com/Mati018/website-search/pkg/metrics"
	"github.com/Mati018/website-search/pkg/ollama"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		website  = flag.String("website", "", "website to crawl and search (required)")
		queryStr = flag.String("query", "", "query text (required)")
		maxPages = flag.Int("max-pages", envIntOr("MAX_PAGES", 1500), "page cap for link discovery")
		topK     = flag.Int("top-k", query.DefaultTopK, "number of results to return")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *website == "" || *queryStr == "" {
		fmt.Fprintln(os.Stderr, "usage: search -website <url> -query <text> [-max-pages N] [-top-k N]")
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*website, *queryStr, *maxPages, *topK, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(website, queryStr string, maxPages, topK int, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := semantic.New(envOr("QDRANT_URL", "localhost:6334"))
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	embedder := ollama.NewEmbedClient(
		envOr("OLLAMA_URL", "http://localhost:11434"),
		envOr("EMBED_MODEL", "nomic-embed-text"),
	)

	reg := metrics.New()
	fetcher := crawler.NewFetcher(crawler.DefaultFetcherOpts(), logger, reg)
	discoverer := crawler.NewDiscoverer(fetcher, logger)

	indexOpts := index.DefaultOptions()
	indexOpts.EmbedDims = envIntOr("EMBED_DIMS", 768)
	indexer := index.NewManager(store, embedder, fetcher, indexOpts, logger, reg)

	engine := query.New(store, embedder, logger)

	svc := pipeline.New(discoverer, indexer, engine, store, nil,
		pipeline.Options{MaxPages: maxPages, TopK: topK}, logger, reg)

	out, err := svc.Search(ctx, queryStr, website)
	if err != nil {
		return err
	}

	fmt.Printf("%d results in %.2fs (%d chunks indexed)\n\n", len(out.Results), out.Elapsed, out.TotalChunks)
	for i, r := range out.Results {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, r.Score, r.URL)
		if r.Content != "" {
			fmt.Printf("    %s\n", r.Content)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
