// Package handlers provides HTTP handlers for universe management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/compass/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles universe HTTP requests
type Handler struct {
	companyRepo *universe.CompanyRepository
	priceRepo   *universe.PriceRepository
	syncService *universe.SyncService
	log         zerolog.Logger
}

// NewHandler creates a new universe handler
func NewHandler(
	companyRepo *universe.CompanyRepository,
	priceRepo *universe.PriceRepository,
	syncService *universe.SyncService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		companyRepo: companyRepo,
		priceRepo:   priceRepo,
		syncService: syncService,
		log:         log.With().Str("handler", "universe").Logger(),
	}
}

// HandleListCompanies handles GET /api/universe/companies
func (h *Handler) HandleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companyRepo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list companies")
		http.Error(w, "Failed to list companies", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": companies,
		"metadata": map[string]interface{}{
			"count":     len(companies),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetCompany handles GET /api/universe/companies/{ticker}
func (h *Handler) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	company, err := h.companyRepo.GetByTicker(ticker)
	if err != nil {
		if errors.Is(err, universe.ErrCompanyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get company")
		http.Error(w, "Failed to get company", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": company})
}

// HandleAddCompany handles POST /api/universe/companies
func (h *Handler) HandleAddCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker string `json:"ticker"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ticker == "" {
		http.Error(w, "Invalid request body: ticker is required", http.StatusBadRequest)
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))

	company, err := h.syncService.AddTicker(r.Context(), ticker)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to add ticker")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": company})
}

// HandleDeleteCompany handles DELETE /api/universe/companies/{ticker}
func (h *Handler) HandleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	if err := h.companyRepo.Delete(ticker); err != nil {
		if errors.Is(err, universe.ErrCompanyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to delete company")
		http.Error(w, "Failed to delete company", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetPrices handles GET /api/universe/companies/{ticker}/prices?limit=N
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	limit := 252
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	prices, err := h.priceRepo.GetDailyPrices(ticker, limit)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get prices")
		http.Error(w, "Failed to get prices", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": prices,
		"metadata": map[string]interface{}{
			"count":  len(prices),
			"ticker": ticker,
		},
	})
}

// HandleSync handles POST /api/universe/sync
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	synced, err := h.syncService.SyncAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Universe sync failed")
		http.Error(w, "Sync failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"synced": synced},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
