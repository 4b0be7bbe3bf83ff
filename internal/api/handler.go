// Package api exposes the analysis pipeline over HTTP and MCP. The
// analyze endpoint always answers 200 with a result bundle; pipeline
// failures travel inside the bundle's error field.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightpilot/insightpilot/internal/dataset"
	"github.com/insightpilot/insightpilot/internal/history"
	"github.com/insightpilot/insightpilot/internal/pipeline"
)

const maxRequestBodySize = 1 << 20 // 1MB
const maxUploadBodySize = 20 << 20 // 20MB

// Runner runs one analysis request to completion.
type Runner interface {
	Run(ctx context.Context, question, renderedHistory string) pipeline.Result
}

// AppDeps holds the handler dependencies.
type AppDeps struct {
	Pipeline Runner
	Store    *dataset.Store
	History  *history.Store
	Token    string // optional bearer token; empty disables auth
}

type analyzeRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// NewAppHandler builds the HTTP API router.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuth(deps.Token))

	r.Get("/api/health", handleHealth)
	r.Post("/api/analyze", handleAnalyze(deps))
	r.Post("/api/upload-csv", handleUploadCSV(deps))
	r.Get("/api/datasets", handleDatasets(deps))
	r.Post("/api/session/reset", handleSessionReset(deps))

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleAnalyze(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}
		if req.SessionID == "" {
			req.SessionID = "default"
		}

		// Scheduled stages run to completion even if the caller
		// disconnects; each stage is still bounded by its own timeout.
		ctx := context.WithoutCancel(r.Context())
		res := deps.Pipeline.Run(ctx, req.Query, deps.History.Render(req.SessionID))

		if res.Error == nil {
			deps.History.Append(req.SessionID, history.Turn{
				Question:  req.Query,
				Narrative: res.Narrative,
				Query:     res.GeneratedQuery,
			})
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func handleUploadCSV(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		defer r.Body.Close()

		file, _, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "file is required: %v", err)
			return
		}
		defer file.Close()

		tableName := r.FormValue("table_name")
		if tableName == "" {
			tableName = "sales"
		}

		res, err := deps.Store.IngestCSV(tableName, file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "csv ingestion failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"table":   res.Table,
			"rows":    res.Rows,
			"columns": res.Columns,
		})
	}
}

func handleDatasets(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables, err := deps.Store.Tables()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list datasets: %v", err)
			return
		}
		if tables == nil {
			tables = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
	}
}

func handleSessionReset(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req resetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}

		deps.History.Reset(req.SessionID)
		writeJSON(w, http.StatusOK, map[string]string{
			"status":     "cleared",
			"session_id": req.SessionID,
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(sanitizeJSON(v))
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
