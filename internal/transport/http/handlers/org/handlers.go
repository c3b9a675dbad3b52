package orghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/audit"
	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/org"
	"perfdash/internal/domain/scoring"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
	"perfdash/internal/transport/http/shared"
)

type Handler struct {
	Service *org.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Idem    *middleware.IdempotencyStore
}

func NewHandler(service *org.Service, perms middleware.PermissionStore, auditSvc *audit.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Idem: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/organizations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Get("/", h.handleListOrganizations)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Post("/", h.handleCreateOrganization)
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/current", h.handleCurrentOrganization)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Put("/{orgID}", h.handleUpdateOrganization)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, h.Perms)).Delete("/{orgID}", h.handleDeleteOrganization)
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/{orgID}/grades", h.handleListGrades)
		r.With(middleware.RequirePermission(auth.PermGradesWrite, h.Perms)).Put("/{orgID}/grades", h.handleReplaceGrades)
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/{orgID}/welcome", h.handleGetWelcome)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Put("/{orgID}/welcome", h.handleSetWelcome)
	})

	r.Route("/users", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/", h.handleListUsers)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Post("/", h.handleCreateUser)
		r.With(middleware.RequirePermission(auth.PermUsersRead, h.Perms)).Get("/subordinates", h.handleSubordinates)
		r.Get("/{userID}", h.handleGetUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Put("/{userID}", h.handleUpdateUser)
		r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Perms)).Delete("/{userID}", h.handleDeleteUser)
	})
}

// orgScope resolves which organization a request may act on. Superadmins
// may address any organization; everyone else is pinned to their own.
func orgScope(user auth.UserContext, requested string) (string, bool) {
	if user.Role == auth.RoleSuperAdmin {
		if requested != "" {
			return requested, true
		}
		return user.OrgID, user.OrgID != ""
	}
	if requested == "" || requested == user.OrgID {
		return user.OrgID, user.OrgID != ""
	}
	return "", false
}

func (h *Handler) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListOrganizations(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_list_failed", "failed to list organizations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name    string `json:"name"`
		AppName string `json:"appName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "organization name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.CreateOrganization(r.Context(), payload.Name, payload.AppName)
	if err != nil {
		switch {
		case errors.Is(err, org.ErrSlugTaken):
			api.Fail(w, http.StatusConflict, "slug_taken", "an organization with this name already exists", middleware.GetRequestID(r.Context()))
		case errors.Is(err, org.ErrInvalidName):
			api.Fail(w, http.StatusBadRequest, "invalid_name", "organization name is invalid", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "org_create_failed", "failed to create organization", middleware.GetRequestID(r.Context()))
		}
		return
	}

	h.record(r, user, "organization.create", "organization", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrentOrganization(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if user.OrgID == "" {
		api.Fail(w, http.StatusNotFound, "not_found", "no organization for this user", middleware.GetRequestID(r.Context()))
		return
	}
	o, err := h.Service.Organization(r.Context(), user.OrgID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, o, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, ok := orgScope(user, chi.URLParam(r, "orgID"))
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "organization out of scope", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name    string `json:"name"`
		AppName string `json:"appName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "organization name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	before, err := h.Service.Organization(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.UpdateOrganization(r.Context(), orgID, payload.Name, payload.AppName); err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_update_failed", "failed to update organization", middleware.GetRequestID(r.Context()))
		return
	}
	after, _ := h.Service.Organization(r.Context(), orgID)

	h.record(r, user, "organization.update", "organization", orgID, before, after)
	api.Success(w, after, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID := chi.URLParam(r, "orgID")

	before, err := h.Service.Organization(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "organization not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteOrganization(r.Context(), orgID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_delete_failed", "failed to delete organization", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "organization.delete", "organization", orgID, before, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListGrades(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, ok := orgScope(user, chi.URLParam(r, "orgID"))
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "organization out of scope", middleware.GetRequestID(r.Context()))
		return
	}

	bands, err := h.Service.EffectiveBands(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "grades_list_failed", "failed to list grade bands", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, bands, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReplaceGrades(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, ok := orgScope(user, chi.URLParam(r, "orgID"))
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "organization out of scope", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Bands []scoring.Band `json:"bands"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	canonical, _ := json.Marshal(payload.Bands)
	reqHash := middleware.RequestHash(append([]byte(orgID+"|"), canonical...))
	if idemKey != "" {
		stored, found, err := h.Idem.Check(r.Context(), user.OrgID, user.UserID, "grades.replace", idemKey, reqHash)
		if err != nil {
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was already used with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			slog.Warn("idempotency check failed", "endpoint", "grades.replace", "err", err)
		}
		if found {
			api.Success(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
			return
		}
	}

	if err := h.Service.ReplaceBands(r.Context(), orgID, payload.Bands); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_bands", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "grades.replace", "performance_grades", orgID, nil, payload.Bands)
	if idemKey != "" {
		if err := h.Idem.Save(r.Context(), user.OrgID, user.UserID, "grades.replace", idemKey, reqHash, canonical); err != nil {
			slog.Warn("idempotency save failed", "endpoint", "grades.replace", "err", err)
		}
	}
	api.Success(w, payload.Bands, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetWelcome(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, ok := orgScope(user, chi.URLParam(r, "orgID"))
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "organization out of scope", middleware.GetRequestID(r.Context()))
		return
	}

	msg, err := h.Service.Welcome(r.Context(), orgID)
	if err != nil {
		api.Success(w, org.WelcomeMessage{OrganizationID: orgID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, msg, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetWelcome(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, ok := orgScope(user, chi.URLParam(r, "orgID"))
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "organization out of scope", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.SetWelcome(r.Context(), orgID, payload.Title, payload.Body); err != nil {
		api.Fail(w, http.StatusInternalServerError, "welcome_update_failed", "failed to update welcome message", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "welcome.update", "welcome_message", orgID, nil, payload)
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	list, err := h.Service.ListProfiles(r.Context(), user.OrgID, r.URL.Query().Get("role"), r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload org.NewMember
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("role", payload.Role, "role is required")
	if len(payload.Password) < 8 {
		v.Add("password", "password must be at least 8 characters")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.CreateMember(r.Context(), user.OrgID, payload)
	if err != nil {
		h.failMemberError(w, r, err, "user_create_failed", "failed to create user")
		return
	}

	h.record(r, user, "user.create", "profile", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	userID := chi.URLParam(r, "userID")

	// Anyone may read their own profile; reading others needs users.read.
	if userID != user.UserID {
		allowed, err := h.Perms.HasPermission(r.Context(), user.Role, auth.PermUsersRead)
		if err != nil || !allowed {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
			return
		}
	}

	profile, err := h.Service.Profile(r.Context(), user.OrgID, userID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	before, err := h.Service.Profile(r.Context(), user.OrgID, userID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}

	payload := before
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = userID

	updated, err := h.Service.UpdateMember(r.Context(), user.OrgID, payload)
	if err != nil {
		h.failMemberError(w, r, err, "user_update_failed", "failed to update user")
		return
	}

	h.record(r, user, "user.update", "profile", userID, before, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	before, err := h.Service.Profile(r.Context(), user.OrgID, userID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteMember(r.Context(), user.OrgID, userID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_delete_failed", "failed to delete user", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "user.delete", "profile", userID, before, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubordinates(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	managerID := r.URL.Query().Get("managerId")
	if managerID == "" {
		managerID = user.UserID
	}
	list, err := h.Service.Subordinates(r.Context(), user.OrgID, managerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "subordinate_list_failed", "failed to list subordinates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failMemberError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, org.ErrInvalidRole):
		api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", requestID)
	case errors.Is(err, org.ErrNotAManager):
		api.Fail(w, http.StatusBadRequest, "invalid_manager", "manager target must hold a manager role", requestID)
	case errors.Is(err, org.ErrManagerCycle):
		api.Fail(w, http.StatusBadRequest, "manager_cycle", "assignment would make the reporting chain circular", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), user.OrgID, user.UserID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
