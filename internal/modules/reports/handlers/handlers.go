// Package handlers provides HTTP handlers for report operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/compass/internal/modules/reports"
	"github.com/aristath/compass/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles report HTTP requests
type Handler struct {
	generator  *reports.Generator
	resultRepo *reports.ResultRepository
	log        zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(generator *reports.Generator, resultRepo *reports.ResultRepository, log zerolog.Logger) *Handler {
	return &Handler{
		generator:  generator,
		resultRepo: resultRepo,
		log:        log.With().Str("handler", "reports").Logger(),
	}
}

// HandleGenerateReport handles POST /api/reports/{ticker}
func (h *Handler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	report, err := h.generator.GenerateStockReport(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, universe.ErrCompanyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to generate report")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": report})
}

// HandleLatestAnalyses handles GET /api/reports/latest
func (h *Handler) HandleLatestAnalyses(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultRepo.LatestAnalyses(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list analyses")
		http.Error(w, "Failed to list analyses", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": results,
		"metadata": map[string]interface{}{
			"count":     len(results),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleAnalysisHistory handles GET /api/reports/{ticker}/history
func (h *Handler) HandleAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	results, err := h.resultRepo.AnalysisHistory(r.Context(), ticker, 50)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to load history")
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": results})
}

// HandleListRuns handles GET /api/reports/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.resultRepo.ListRuns(r.Context(), 50)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list optimization runs")
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": runs})
}

// HandleGetRun handles GET /api/reports/runs/{runID}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	result, err := h.resultRepo.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, reports.ErrRunNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load run")
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
