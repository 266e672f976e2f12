package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all universe routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/universe", func(r chi.Router) {
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", h.HandleListCompanies)
			r.Post("/", h.HandleAddCompany)
			r.Get("/{ticker}", h.HandleGetCompany)
			r.Delete("/{ticker}", h.HandleDeleteCompany)
			r.Get("/{ticker}/prices", h.HandleGetPrices)
		})
		r.Post("/sync", h.HandleSync)
	})
}
