package availability

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the availability feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/calendar", h.Calendar)
	r.Get("/my-dates", h.MyDates)
	r.Post("/toggle", h.Toggle)
	// Static segments above take precedence over the date parameter.
	r.Get("/{date}", h.Day)
	return r
}
