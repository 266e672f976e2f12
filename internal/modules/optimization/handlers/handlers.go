// Package handlers provides HTTP handlers for portfolio optimization operations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/compass/internal/modules/optimization"
	"github.com/rs/zerolog"
)

// RunArchiver persists optimization results for later retrieval.
type RunArchiver interface {
	SaveRun(ctx context.Context, result *optimization.PortfolioResult, period string) error
}

// Handler handles optimization HTTP requests
type Handler struct {
	service  *optimization.Service
	archiver RunArchiver
	log      zerolog.Logger
}

// NewHandler creates a new optimization handler. archiver may be nil to
// skip run archiving.
func NewHandler(service *optimization.Service, archiver RunArchiver, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		archiver: archiver,
		log:      log.With().Str("handler", "optimization").Logger(),
	}
}

type optimizeRequest struct {
	Tickers        []string  `json:"tickers"`
	Period         string    `json:"period"`
	Trials         int       `json:"trials"`
	RiskFreeRate   *float64  `json:"risk_free_rate"`
	Seed           *int64    `json:"seed"`
	CurrentWeights []float64 `json:"current_weights"`
}

type backtestRequest struct {
	Tickers      []string  `json:"tickers"`
	Weights      []float64 `json:"weights"`
	Period       string    `json:"period"`
	RiskFreeRate *float64  `json:"risk_free_rate"`
}

// HandleOptimize handles POST /api/optimization/optimize
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Optimize(r.Context(), req.Tickers, optimization.OptimizeOptions{
		Period:         req.Period,
		Trials:         req.Trials,
		RiskFreeRate:   req.RiskFreeRate,
		Seed:           req.Seed,
		CurrentWeights: req.CurrentWeights,
	})
	if err != nil {
		h.writeError(w, err, "Optimization failed")
		return
	}

	if h.archiver != nil {
		if err := h.archiver.SaveRun(r.Context(), result, req.Period); err != nil {
			h.log.Warn().Err(err).Str("run_id", result.RunID).Msg("Failed to archive optimization run")
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleBacktest handles POST /api/optimization/backtest
func (h *Handler) HandleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Backtest(r.Context(), req.Tickers, req.Weights, optimization.BacktestOptions{
		Period:       req.Period,
		RiskFreeRate: req.RiskFreeRate,
	})
	if err != nil {
		h.writeError(w, err, "Backtest failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeError maps domain errors onto HTTP status codes. Validation
// failures are the caller's fault; everything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, optimization.ErrEmptyUniverse),
		errors.Is(err, optimization.ErrInvalidWeights),
		errors.Is(err, optimization.ErrInvalidInput),
		errors.Is(err, optimization.ErrDimensionMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, optimization.ErrInsufficientData),
		errors.Is(err, optimization.ErrEmptyReturnSeries):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg(msg)
	} else {
		h.log.Warn().Err(err).Msg(msg)
	}
	http.Error(w, err.Error(), status)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
