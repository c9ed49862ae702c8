package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newDiscoverer() *Discoverer {
	f := NewFetcher(DefaultFetcherOpts(), testLogger(), nil)
	return NewDiscoverer(f, testLogger())
}

func TestDiscover_SameOriginOnly(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/about">about</a>
			<a href="%s/docs">docs</a>
			<a href="https://other.example.com/page">external</a>
		</body></html>`, srv.URL)
	}))
	defer srv.Close()

	got := newDiscoverer().Discover(context.Background(), srv.URL, 1500)

	want := []string{srv.URL, srv.URL + "/about", srv.URL + "/docs"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDiscover_Blocklist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/page#section">fragment</a>
			<a href="/file.PDF">pdf</a>
			<a href="/pic.jpg">image</a>
			<a href="javascript:void(0)">js</a>
			<a href="mailto:x@y.z">mail</a>
			<a href="//evil.example.com/x">protocol-relative</a>
			<a href="/ok">ok</a>
		</body></html>`)
	}))
	defer srv.Close()

	got := newDiscoverer().Discover(context.Background(), srv.URL, 1500)
	if len(got) != 2 || got[1] != srv.URL+"/ok" {
		t.Fatalf("expected only seed plus /ok, got %v", got)
	}
}

func TestDiscover_Dedup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<a href="/a">1</a><a href="/a">2</a><a href="/b">3</a>`)
	}))
	defer srv.Close()

	got := newDiscoverer().Discover(context.Background(), srv.URL, 1500)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique urls, got %v", got)
	}
}

func TestDiscover_CapNeverExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for i := 0; i < 50; i++ {
			fmt.Fprintf(w, `<a href="/p%d">p</a>`, i)
		}
	}))
	defer srv.Close()

	got := newDiscoverer().Discover(context.Background(), srv.URL, 10)
	if len(got) != 10 {
		t.Fatalf("expected exactly 10 urls, got %d", len(got))
	}
	if got[0] != srv.URL {
		t.Fatal("seed must be first")
	}
}

func TestDiscover_SeedUnavailableFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	got := newDiscoverer().Discover(context.Background(), srv.URL, 1500)
	if len(got) != 1 || got[0] != srv.URL {
		t.Fatalf("expected fallback {seed}, got %v", got)
	}
}

func TestDiscover_SeedAlwaysMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>no links here</body></html>`)
	}))
	defer srv.Close()

	got := newDiscoverer().Discover(context.Background(), srv.URL, 1500)
	if len(got) != 1 || got[0] != srv.URL {
		t.Fatalf("expected {seed}, got %v", got)
	}
}
