package availability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	availabilitystore "github.com/dalemusser/boatfinder/internal/app/store/availability"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/auth"
	"github.com/dalemusser/boatfinder/internal/app/system/httpapi"
	"github.com/dalemusser/boatfinder/internal/app/system/timeouts"
	"github.com/dalemusser/boatfinder/internal/app/system/validate"
	"github.com/dalemusser/boatfinder/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the shared availability calendar.
type Handler struct {
	Avail *availabilitystore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(avail *availabilitystore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Avail: avail, Users: users, Log: logger}
}

// calendarDiver is a diver entry visible to all logged-in users.
type calendarDiver struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	MaxDepth  int    `json:"maxDepth"`
	Phone     string `json:"phone"`
}

// dayDiver adds the contact detail operators need to fill a boat.
type dayDiver struct {
	calendarDiver
	Email     string `json:"email"`
	CertLevel string `json:"certLevel"`
}

// Calendar handles GET /api/availability/calendar?startDate=...&endDate=...
//
// Returns a map of date to the divers available on that date, so the
// front end can paint the whole range in one request.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	if err := validate.DateRange(start, end); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	records, err := h.Avail.InRange(ctx, start, end)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	byID, err := h.Users.ByIDs(ctx, recordUserIDs(records))
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	calendar := map[string][]calendarDiver{}
	seen := map[string]map[string]bool{}
	for _, rec := range records {
		u, ok := byID[rec.UserID]
		if !ok {
			continue
		}
		if seen[rec.Date] == nil {
			seen[rec.Date] = map[string]bool{}
		}
		if seen[rec.Date][rec.UserID] {
			continue
		}
		seen[rec.Date][rec.UserID] = true
		calendar[rec.Date] = append(calendar[rec.Date], calendarDiver{
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			MaxDepth:  u.MaxDepth,
			Phone:     u.Phone,
		})
	}
	httpapi.WriteOK(w, calendar)
}

// Day handles GET /api/availability/{date}.
//
// Operator-only: includes each diver's email and phone.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, httpapi.Forbidden("operator access required"))
			return
		}
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	if !caller.IsOperator {
		httpapi.WriteError(w, h.Log, httpapi.Forbidden("operator access required"))
		return
	}

	date := chi.URLParam(r, "date")
	if err := validate.Date(date); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}

	records, err := h.Avail.OnDate(ctx, date)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	byID, err := h.Users.ByIDs(ctx, recordUserIDs(records))
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	divers := []dayDiver{}
	seen := map[string]bool{}
	for _, rec := range records {
		u, ok := byID[rec.UserID]
		if !ok || seen[rec.UserID] {
			continue
		}
		seen[rec.UserID] = true
		divers = append(divers, dayDiver{
			calendarDiver: calendarDiver{
				UserID:    u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				MaxDepth:  u.MaxDepth,
				Phone:     u.Phone,
			},
			Email:     u.Email,
			CertLevel: u.CertLevel,
		})
	}

	httpapi.WriteOK(w, map[string]any{
		"date":   date,
		"divers": divers,
	})
}

type toggleRequest struct {
	Date string `json:"date"`
}

// Toggle handles POST /api/availability/toggle.
//
// Flips the caller's availability on the given date and reports the
// resulting state.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	var req toggleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid("invalid request body: "+err.Error()))
		return
	}
	if err := validate.Date(req.Date); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	available, err := h.Avail.Toggle(ctx, p.UserID, req.Date)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	httpapi.WriteOK(w, map[string]any{
		"date":      req.Date,
		"available": available,
	})
}

// MyDates handles GET /api/availability/my-dates?startDate=...&endDate=...
func (h *Handler) MyDates(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	if err := validate.DateRange(start, end); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	dates, err := h.Avail.DatesForUser(ctx, p.UserID, start, end)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	if dates == nil {
		dates = []string{}
	}
	httpapi.WriteOK(w, dates)
}

func recordUserIDs(records []models.AvailabilityRecord) []string {
	seen := make(map[string]bool, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if seen[rec.UserID] {
			continue
		}
		seen[rec.UserID] = true
		ids = append(ids, rec.UserID)
	}
	return ids
}
