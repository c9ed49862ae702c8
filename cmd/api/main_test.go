package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mati018/website-search/engine/pipeline"
	"github.com/Mati018/website-search/engine/query"
)

// --- Fake pipeline components ---

type stubDiscoverer struct{}

func (stubDiscoverer) Discover(_ context.Context, seed string, _ int) []string {
	return []string{seed}
}

type stubIndexer struct {
	total int
	err   error
}

func (s stubIndexer) Rebuild(context.Context, []string, string) (int, error) {
	return s.total, s.err
}

type stubQuery struct {
	results []query.Result
	err     error
}

func (s stubQuery) Search(context.Context, string, string, int) ([]query.Result, error) {
	return s.results, s.err
}

type stubAdmin struct {
	names []string
	err   error
}

func (s stubAdmin) List(context.Context) ([]string, error) { return s.names, s.err }
func (s stubAdmin) Delete(context.Context, string) error   { return nil }

func testService(i stubIndexer, q stubQuery, a stubAdmin) *pipeline.Service {
	return pipeline.New(stubDiscoverer{}, i, q, a, nil, pipeline.DefaultOptions(),
		slog.New(slog.DiscardHandler), nil)
}

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// --- Tests ---

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("status: %s", resp["status"])
	}
}

func TestSearchEndpoint_OK(t *testing.T) {
	svc := testService(
		stubIndexer{total: 7},
		stubQuery{results: []query.Result{{Score: 0.93, URL: "https://example.com/a", Content: "text"}}},
		stubAdmin{},
	)
	handler := handleSearch(svc, testLogger())

	body := `{"query":"pricing","website":"example.com"}`
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/search", bytes.NewBufferString(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalChunks != 7 || len(resp.Results) != 1 {
		t.Fatalf("response: %+v", resp)
	}
	if resp.Results[0].Score != 0.93 {
		t.Fatalf("score: %v", resp.Results[0].Score)
	}
}

func TestSearchEndpoint_EmptyQueryIs400(t *testing.T) {
	svc := testService(stubIndexer{}, stubQuery{}, stubAdmin{})
	handler := handleSearch(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/search",
		bytes.NewBufferString(`{"query":"","website":"example.com"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchEndpoint_EmptyWebsiteIs400(t *testing.T) {
	svc := testService(stubIndexer{}, stubQuery{}, stubAdmin{})
	handler := handleSearch(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/search",
		bytes.NewBufferString(`{"query":"q","website":""}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchEndpoint_InvalidJSONIs400(t *testing.T) {
	svc := testService(stubIndexer{}, stubQuery{}, stubAdmin{})
	handler := handleSearch(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/search", bytes.NewBufferString("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchEndpoint_PipelineFailureIs500(t *testing.T) {
	svc := testService(stubIndexer{err: errors.New("qdrant unreachable")}, stubQuery{}, stubAdmin{})
	handler := handleSearch(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/search",
		bytes.NewBufferString(`{"query":"q","website":"example.com"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp errorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error == "" {
		t.Fatal("error response must carry the failure description")
	}
}

func TestClearCollectionsEndpoint(t *testing.T) {
	svc := testService(stubIndexer{}, stubQuery{}, stubAdmin{names: []string{"Website_a", "other"}})
	handler := handleClearCollections(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("DELETE", "/api/collections", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp messageResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Message != "Deleted 1 collections" {
		t.Fatalf("message: %q", resp.Message)
	}
}

func TestClearCollectionsEndpoint_ListFailureIs500(t *testing.T) {
	svc := testService(stubIndexer{}, stubQuery{}, stubAdmin{err: errors.New("down")})
	handler := handleClearCollections(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("DELETE", "/api/collections", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "QDRANT_URL", "EMBED_DIMS", "MAX_PAGES"} {
		t.Setenv(key, "")
	}
	cfg := loadConfig()
	if cfg.Port != "8000" {
		t.Fatalf("port: %s", cfg.Port)
	}
	if cfg.QdrantURL != "localhost:6334" {
		t.Fatalf("qdrant url: %s", cfg.QdrantURL)
	}
	if cfg.EmbedDims != 768 {
		t.Fatalf("dims: %d", cfg.EmbedDims)
	}
	if cfg.MaxPages != 1500 {
		t.Fatalf("max pages: %d", cfg.MaxPages)
	}
}

func TestSearchEndpoint_EmptyResultsRenderAsArray(t *testing.T) {
	svc := testService(stubIndexer{}, stubQuery{}, stubAdmin{})
	handler := handleSearch(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/search",
		bytes.NewBufferString(`{"query":"q","website":"example.com"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"results":[]`)) {
		t.Fatalf("results must serialize as [], got: %s", rec.Body.String())
	}
}
