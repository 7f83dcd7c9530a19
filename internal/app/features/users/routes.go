package users

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the users feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.Me)
	r.Post("/profile", h.UpdateProfile)
	return r
}
