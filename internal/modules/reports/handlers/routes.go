package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/latest", h.HandleLatestAnalyses)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.HandleListRuns)
			r.Get("/{runID}", h.HandleGetRun)
		})
		r.Post("/{ticker}", h.HandleGenerateReport)
		r.Get("/{ticker}/history", h.HandleAnalysisHistory)
	})
}
