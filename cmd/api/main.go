// Package main implements the website search API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Mati018/website-search/engine/crawler"
	"github.com/Mati018/website-search/engine/index"
	"github.com/Mati018/website-search/engine/pipeline"
	"github.com/Mati018/website-search/engine/query"
	"github.com/Mati018/website-search/engine/semantic"
	"github.com/Mati018/website-search/pkg/metrics"
	"github.com/Mati018/website-search/pkg/mid"
	"github.com/Mati018/website-search/pkg/ollama"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	QdrantURL    string
	OllamaURL    string
	EmbedModel   string
	EmbedDims    int
	NATSURL      string
	CORSOrigin   string
	MaxPages     int
	FetchWorkers int
	FetchRate    float64
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8000"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:   envOr("EMBED_MODEL", "nomic-embed-text"),
		EmbedDims:    envIntOr("EMBED_DIMS", 768),
		NATSURL:      os.Getenv("NATS_URL"),
		CORSOrigin:   envOr("CORS_ORIGIN", "http://localhost:3000"),
		MaxPages:     envIntOr("MAX_PAGES", 1500),
		FetchWorkers: envIntOr("FETCH_WORKERS", 8),
		FetchRate:    envFloatOr("FETCH_RATE", 0),
	}
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

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()

	// --- Connect to Qdrant ---
	store, err := semantic.New(cfg.QdrantURL)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer store.Close()

	// --- Ollama embedder ---
	embedder := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)

	// --- Optional NATS events ---
	var events *pipeline.Events
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
		events = pipeline.NewEvents(nc, logger)
		logger.Info("event publishing enabled", "url", cfg.NATSURL)
	}

	// --- Assemble the pipeline ---
	fetchOpts := crawler.DefaultFetcherOpts()
	fetchOpts.RatePerSecond = cfg.FetchRate
	fetchOpts.Burst = cfg.FetchWorkers
	fetcher := crawler.NewFetcher(fetchOpts, logger, reg)
	discoverer := crawler.NewDiscoverer(fetcher, logger)

	indexOpts := index.DefaultOptions()
	indexOpts.EmbedDims = cfg.EmbedDims
	indexOpts.FetchWorkers = cfg.FetchWorkers
	indexer := index.NewManager(store, embedder, fetcher, indexOpts, logger, reg)

	engine := query.New(store, embedder, logger)

	svcOpts := pipeline.DefaultOptions()
	svcOpts.MaxPages = cfg.MaxPages
	svc := pipeline.New(discoverer, indexer, engine, store, events, svcOpts, logger, reg)

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/search", handleSearch(svc, logger))
	mux.HandleFunc("DELETE /api/collections", handleClearCollections(svc, logger))
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("website-search"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // a search request crawls and reindexes a whole site
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
