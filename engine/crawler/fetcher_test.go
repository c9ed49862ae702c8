package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mati018/website-search/pkg/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	reg := metrics.New()
	f := NewFetcher(DefaultFetcherOpts(), testLogger(), reg)
	page := f.Fetch(context.Background(), srv.URL)

	if page.Unavailable {
		t.Fatal("expected available page")
	}
	if page.URL != srv.URL {
		t.Fatalf("url: %q", page.URL)
	}
	if page.HTML != "<html>hello</html>" {
		t.Fatalf("html: %q", page.HTML)
	}
	if got := reg.Counter("pages_fetched_total", "").Value(); got != 1 {
		t.Fatalf("fetched counter: %d", got)
	}
}

func TestFetch_Non200IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	reg := metrics.New()
	f := NewFetcher(DefaultFetcherOpts(), testLogger(), reg)
	page := f.Fetch(context.Background(), srv.URL)

	if !page.Unavailable {
		t.Fatal("expected unavailable page")
	}
	if page.HTML != "" {
		t.Fatalf("unavailable page must carry no content, got %q", page.HTML)
	}
	if got := reg.Counter("fetch_failures_total", "").Value(); got != 1 {
		t.Fatalf("failed counter: %d", got)
	}
}

func TestFetch_TransportErrorIsUnavailable(t *testing.T) {
	f := NewFetcher(DefaultFetcherOpts(), testLogger(), nil)
	page := f.Fetch(context.Background(), "http://127.0.0.1:1")
	if !page.Unavailable {
		t.Fatal("expected unavailable page")
	}
}

func TestFetch_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	opts := DefaultFetcherOpts()
	opts.Timeout = 20 * time.Millisecond
	f := NewFetcher(opts, testLogger(), nil)
	if page := f.Fetch(context.Background(), srv.URL); !page.Unavailable {
		t.Fatal("expected timeout to be absorbed as unavailable")
	}
}

func TestFetch_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	opts := DefaultFetcherOpts()
	opts.MaxBodyBytes = 100
	f := NewFetcher(opts, testLogger(), nil)
	page := f.Fetch(context.Background(), srv.URL)
	if page.Unavailable {
		t.Fatal("capped read must still succeed")
	}
	if len(page.HTML) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(page.HTML))
	}
}
