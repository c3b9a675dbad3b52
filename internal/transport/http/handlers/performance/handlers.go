package performancehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/org"
	"perfdash/internal/domain/reports"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
)

type Handler struct {
	Reports *reports.Service
	Org     *org.Service
	Perms   middleware.PermissionStore
}

func NewHandler(reportsSvc *reports.Service, orgSvc *org.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Reports: reportsSvc, Org: orgSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/score", h.handleScore)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/overview", h.handleOverview)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/grades", h.handleGrades)
	})
}

// handleScore answers the full performance picture for one user: weighted
// score, resolved grade, weight summary, workflow stage, and the per-goal
// breakdown with impact points.
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = user.UserID
	}
	if userID != user.UserID && !auth.IsManagerTier(user.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another user's score", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Reports.UserResult(r.Context(), user.OrgID, userID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no performance data for this user", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

// handleOverview scores every direct report of the caller (or, for
// admin-tier callers, of the manager named by ?managerId).
func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if !auth.IsManagerTier(user.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "overview is limited to managers", middleware.GetRequestID(r.Context()))
		return
	}

	managerID := user.UserID
	if requested := r.URL.Query().Get("managerId"); requested != "" && requested != user.UserID {
		if !auth.IsAdminTier(user.Role) {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another manager's overview", middleware.GetRequestID(r.Context()))
			return
		}
		managerID = requested
	}

	overview, err := h.Reports.ManagerOverview(r.Context(), user.OrgID, managerID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overview_failed", "failed to build overview", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, overview, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGrades(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	bands, err := h.Org.EffectiveBands(r.Context(), user.OrgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "grades_failed", "failed to resolve grade bands", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, bands, middleware.GetRequestID(r.Context()))
}
