package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/boatfinder/internal/app/digest"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/auth"
	"github.com/dalemusser/boatfinder/internal/app/system/httpapi"
	"github.com/dalemusser/boatfinder/internal/app/system/normalize"
	"github.com/dalemusser/boatfinder/internal/app/system/timeouts"
	"github.com/dalemusser/boatfinder/internal/app/system/validate"
	"github.com/dalemusser/boatfinder/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultOperatorThreshold is applied when an admin promotes a user
// without picking a threshold; the operator can tune it afterwards.
const DefaultOperatorThreshold = 3

// Handler serves the admin endpoints. Access is gated on the caller's
// email matching the configured admin address.
type Handler struct {
	Users      *userstore.Store
	Digest     *digest.Runner
	AdminEmail string
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, runner *digest.Runner, adminEmail string, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Digest: runner, AdminEmail: adminEmail, Log: logger}
}

func (h *Handler) requireAdmin(r *http.Request) (*models.User, error) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return nil, httpapi.Unauthorized("authentication required")
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, httpapi.Forbidden("admin access required")
		}
		return nil, httpapi.Internal(err)
	}
	if !strings.EqualFold(u.Email, h.AdminEmail) {
		return nil, httpapi.Forbidden("admin access required")
	}
	return u, nil
}

type promoteRequest struct {
	UserID    string `json:"userId"`
	Threshold *int   `json:"threshold"`
}

// Promote handles POST /api/adminapi/promote.
//
// Marks a user as a boat operator so they start receiving digests.
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	var req promoteRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid("invalid request body: "+err.Error()))
		return
	}
	if req.UserID == "" {
		httpapi.WriteError(w, h.Log, httpapi.Invalid("userId is required"))
		return
	}

	threshold := DefaultOperatorThreshold
	if req.Threshold != nil {
		if err := validate.Threshold(*req.Threshold); err != nil {
			httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
			return
		}
		threshold = *req.Threshold
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Promote(ctx, req.UserID, threshold)
	switch {
	case err == nil:
		httpapi.WriteOK(w, u)
	case errors.Is(err, userstore.ErrNotFound):
		httpapi.WriteError(w, h.Log, httpapi.NotFound("user not found"))
	case errors.Is(err, userstore.ErrAlreadyOperator):
		httpapi.WriteError(w, h.Log, httpapi.Invalid("user is already an operator"))
	default:
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
	}
}

// Users handles GET /api/adminapi/users?search=...
func (h *Handler) UsersList(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	term := normalize.FreeText(r.URL.Query().Get("search"))
	users, err := h.Users.Search(ctx, term)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	if users == nil {
		users = []models.User{}
	}
	httpapi.WriteOK(w, users)
}

type digestRequest struct {
	Email     string `json:"email"`
	Threshold int    `json:"threshold"`
}

// RunDigest handles POST /api/adminapi/digest.
//
// Runs the digest computation immediately and sends the result to the
// given address with the given threshold, regardless of who the
// registered operators are. Used to preview the email.
func (h *Handler) RunDigest(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireAdmin(r); err != nil {
		httpapi.WriteError(w, h.Log, err)
		return
	}

	var req digestRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid("invalid request body: "+err.Error()))
		return
	}
	req.Email = normalize.Email(req.Email)
	if req.Email == "" {
		httpapi.WriteError(w, h.Log, httpapi.Invalid("email is required"))
		return
	}
	if err := validate.Threshold(req.Threshold); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	if err := h.Digest.RunWithOverride(ctx, req.Email, req.Threshold); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	httpapi.WriteOK(w, map[string]any{
		"sent":      true,
		"email":     req.Email,
		"threshold": req.Threshold,
	})
}
