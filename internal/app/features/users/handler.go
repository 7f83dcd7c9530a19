package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/auth"
	"github.com/dalemusser/boatfinder/internal/app/system/httpapi"
	"github.com/dalemusser/boatfinder/internal/app/system/normalize"
	"github.com/dalemusser/boatfinder/internal/app/system/timeouts"
	"github.com/dalemusser/boatfinder/internal/app/system/validate"
	"github.com/dalemusser/boatfinder/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the user profile endpoints.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// Me handles GET /api/users/me.
//
// Returns the caller's profile, creating a minimal one on first login.
// The first name for a fresh profile is seeded from the local part of
// the login email; the diver fills in the rest via the profile form.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.UserID)
	switch {
	case err == nil:
		if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
			h.Log.Warn("users: touch last_login failed", zap.String("user_id", u.ID), zap.Error(err))
		}
		u.LastLogin = time.Now().UTC()
		httpapi.WriteOK(w, u)
	case errors.Is(err, userstore.ErrNotFound):
		created, err := h.Users.Create(ctx, models.User{
			ID:        p.UserID,
			Email:     p.Email,
			FirstName: firstNameFromEmail(p.Email),
		})
		if err != nil {
			httpapi.WriteError(w, h.Log, httpapi.Internal(err))
			return
		}
		httpapi.WriteOK(w, created)
	default:
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
	}
}

type profileRequest struct {
	FirstName                     *string `json:"firstName"`
	LastName                      *string `json:"lastName"`
	Phone                         *string `json:"phone"`
	CertLevel                     *string `json:"certLevel"`
	MaxDepth                      *int    `json:"maxDepth"`
	OperatorNotificationThreshold *int    `json:"operatorNotificationThreshold"`
}

// UpdateProfile handles POST /api/users/profile.
//
// Applies a partial update: only fields present in the body change.
// The notification threshold is rejected unless the caller is already
// an operator; promotion itself is an admin action.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	var req profileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid("invalid request body: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, httpapi.NotFound("profile not found"))
			return
		}
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	upd, err := buildUpdate(req, current.IsOperator)
	if err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	updated, err := h.Users.ApplyProfile(ctx, p.UserID, upd)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	httpapi.WriteOK(w, updated)
}

func buildUpdate(req profileRequest, isOperator bool) (userstore.ProfileUpdate, error) {
	var upd userstore.ProfileUpdate

	if req.FirstName != nil {
		name := normalize.Name(*req.FirstName)
		if name == "" {
			return upd, httpapi.Invalid("firstName cannot be empty")
		}
		upd.FirstName = &name
	}
	if req.LastName != nil {
		name := normalize.Name(*req.LastName)
		upd.LastName = &name
	}
	if req.Phone != nil {
		canonical, err := validate.Phone(*req.Phone)
		if err != nil {
			return upd, httpapi.Invalid(err.Error())
		}
		upd.Phone = &canonical
	}
	if req.CertLevel != nil {
		level := normalize.FreeText(*req.CertLevel)
		upd.CertLevel = &level
	}
	if req.MaxDepth != nil {
		if err := validate.DiverMaxDepth(*req.MaxDepth); err != nil {
			return upd, httpapi.Invalid(err.Error())
		}
		upd.MaxDepth = req.MaxDepth
	}
	if req.OperatorNotificationThreshold != nil {
		if !isOperator {
			return upd, httpapi.Invalid("only operators can set a notification threshold")
		}
		if err := validate.Threshold(*req.OperatorNotificationThreshold); err != nil {
			return upd, httpapi.Invalid(err.Error())
		}
		upd.Threshold = req.OperatorNotificationThreshold
	}
	return upd, nil
}

func firstNameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}
	return local
}
