package sites

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	intereststore "github.com/dalemusser/boatfinder/internal/app/store/interests"
	sitestore "github.com/dalemusser/boatfinder/internal/app/store/sites"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/auth"
	"github.com/dalemusser/boatfinder/internal/app/system/httpapi"
	"github.com/dalemusser/boatfinder/internal/app/system/normalize"
	"github.com/dalemusser/boatfinder/internal/app/system/timeouts"
	"github.com/dalemusser/boatfinder/internal/app/system/validate"
	"github.com/dalemusser/boatfinder/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the dive site catalogue and interest toggles.
type Handler struct {
	Sites     *sitestore.Store
	Interests *intereststore.Store
	Users     *userstore.Store
	Log       *zap.Logger
}

func NewHandler(sites *sitestore.Store, interests *intereststore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Sites: sites, Interests: interests, Users: users, Log: logger}
}

type interestedDiver struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	MaxDepth  int    `json:"maxDepth"`
}

type siteView struct {
	models.DiveSite
	IsInterested     bool              `json:"isInterested"`
	InterestedDivers []interestedDiver `json:"interestedDivers"`
}

// List handles GET /api/sites.
//
// Every site carries the caller's interest flag and the full roster of
// interested divers, deepest-rated first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Sites.All(ctx)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	siteIDs := make([]string, len(all))
	for i, s := range all {
		siteIDs[i] = s.ID
	}
	interests, err := h.Interests.ForSites(ctx, siteIDs)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	userIDs := make([]string, 0, len(interests))
	bySite := map[string][]string{}
	mine := map[string]bool{}
	for _, it := range interests {
		bySite[it.SiteID] = append(bySite[it.SiteID], it.UserID)
		userIDs = append(userIDs, it.UserID)
		if it.UserID == p.UserID {
			mine[it.SiteID] = true
		}
	}
	byID, err := h.Users.ByIDs(ctx, userIDs)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	views := make([]siteView, 0, len(all))
	for _, s := range all {
		views = append(views, siteView{
			DiveSite:         s,
			IsInterested:     mine[s.ID],
			InterestedDivers: diverRoster(bySite[s.ID], byID),
		})
	}
	httpapi.WriteOK(w, views)
}

// Get handles GET /api/sites/{siteID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	site, err := h.Sites.GetByID(ctx, chi.URLParam(r, "siteID"))
	if err != nil {
		if errors.Is(err, sitestore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, httpapi.NotFound("dive site not found"))
			return
		}
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	httpapi.WriteOK(w, site)
}

// Divers handles GET /api/sites/{siteID}/divers.
func (h *Handler) Divers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	siteID := chi.URLParam(r, "siteID")
	if _, err := h.Sites.GetByID(ctx, siteID); err != nil {
		if errors.Is(err, sitestore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, httpapi.NotFound("dive site not found"))
			return
		}
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	interests, err := h.Interests.ForSite(ctx, siteID)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	userIDs := make([]string, len(interests))
	for i, it := range interests {
		userIDs[i] = it.UserID
	}
	byID, err := h.Users.ByIDs(ctx, userIDs)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	httpapi.WriteOK(w, diverRoster(userIDs, byID))
}

type createRequest struct {
	Name      string   `json:"name"`
	Depth     int      `json:"depth"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Create handles POST /api/sites.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	var req createRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid("invalid request body: "+err.Error()))
		return
	}

	name := normalize.Name(req.Name)
	if err := validate.SiteName(name); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}
	if err := validate.SiteDepth(req.Depth); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}
	if err := validate.Coordinates(req.Latitude, req.Longitude); err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Invalid(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	site, err := h.Sites.Create(ctx, models.DiveSite{
		Name:      name,
		Depth:     req.Depth,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedBy: p.UserID,
	})
	if err != nil {
		if errors.Is(err, sitestore.ErrDuplicateName) {
			httpapi.WriteError(w, h.Log, httpapi.Conflict("a dive site with that name already exists"))
			return
		}
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	httpapi.WriteOK(w, site)
}

// Delete handles DELETE /api/sites/{siteID}.
//
// Only the creator may delete a site. Interest records for the site go
// with it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err := h.Sites.Delete(ctx, chi.URLParam(r, "siteID"), p.UserID)
	switch {
	case err == nil:
		httpapi.WriteOK(w, map[string]any{"deleted": true})
	case errors.Is(err, sitestore.ErrNotFound):
		httpapi.WriteError(w, h.Log, httpapi.NotFound("dive site not found"))
	case errors.Is(err, sitestore.ErrNotCreator):
		httpapi.WriteError(w, h.Log, httpapi.Forbidden("only the creator can delete a dive site"))
	default:
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
	}
}

// ToggleInterest handles POST /api/sites/{siteID}/interest.
func (h *Handler) ToggleInterest(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		httpapi.WriteError(w, h.Log, httpapi.Unauthorized("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	siteID := chi.URLParam(r, "siteID")
	if _, err := h.Sites.GetByID(ctx, siteID); err != nil {
		if errors.Is(err, sitestore.ErrNotFound) {
			httpapi.WriteError(w, h.Log, httpapi.NotFound("dive site not found"))
			return
		}
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}

	interested, err := h.Interests.Toggle(ctx, p.UserID, siteID)
	if err != nil {
		httpapi.WriteError(w, h.Log, httpapi.Internal(err))
		return
	}
	httpapi.WriteOK(w, map[string]any{
		"siteId":     siteID,
		"interested": interested,
	})
}

// diverRoster resolves user IDs to diver entries, deepest maxDepth
// first, dropping IDs with no profile.
func diverRoster(userIDs []string, byID map[string]models.User) []interestedDiver {
	divers := []interestedDiver{}
	seen := map[string]bool{}
	for _, id := range userIDs {
		u, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		divers = append(divers, interestedDiver{
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			MaxDepth:  u.MaxDepth,
		})
	}
	sort.SliceStable(divers, func(i, j int) bool {
		if divers[i].MaxDepth != divers[j].MaxDepth {
			return divers[i].MaxDepth > divers[j].MaxDepth
		}
		return divers[i].FirstName < divers[j].FirstName
	})
	return divers
}
