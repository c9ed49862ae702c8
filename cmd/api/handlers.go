package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Mati018/website-search/engine/domain"
	"github.com/Mati018/website-search/engine/pipeline"
	"github.com/Mati018/website-search/engine/query"
)

// SearchRequest is the JSON body for POST /api/search.
type SearchRequest struct {
	Query   string `json:"query"`
	Website string `json:"website"`
}

// SearchResponse is the JSON response for POST /api/search.
type SearchResponse struct {
	Results     []query.Result `json:"results"`
	Time        float64        `json:"time"`
	TotalChunks int            `json:"total_chunks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleSearch(svc *pipeline.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		out, err := svc.Search(r.Context(), req.Query, req.Website)
		if err != nil {
			if domain.IsValidation(err) {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			logger.Error("search failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		results := out.Results
		if results == nil {
			results = []query.Result{}
		}
		writeJSON(w, http.StatusOK, SearchResponse{
			Results:     results,
			Time:        out.Elapsed,
			TotalChunks: out.TotalChunks,
		})
	}
}

func handleClearCollections(svc *pipeline.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := svc.ClearCollections(r.Context())
		if err != nil {
			logger.Error("clear collections failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Deleted %d collections", deleted)})
	}
}
