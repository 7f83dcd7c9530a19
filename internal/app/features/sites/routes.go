package sites

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the dive sites feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{siteID}", h.Get)
	r.Delete("/{siteID}", h.Delete)
	r.Get("/{siteID}/divers", h.Divers)
	r.Post("/{siteID}/interest", h.ToggleInterest)
	return r
}
