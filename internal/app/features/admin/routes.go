package admin

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the admin feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/promote", h.Promote)
	r.Get("/users", h.UsersList)
	r.Post("/digest", h.RunDigest)
	return r
}
