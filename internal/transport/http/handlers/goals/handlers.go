package goalshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/audit"
	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/goals"
	"perfdash/internal/domain/notifications"
	"perfdash/internal/domain/scoring"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
	"perfdash/internal/transport/http/shared"
)

type Handler struct {
	Service *goals.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Notify  *notifications.Service
	Idem    *middleware.IdempotencyStore
}

func NewHandler(service *goals.Service, perms middleware.PermissionStore, auditSvc *audit.Service, notify *notifications.Service, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Notify: notify, Idem: idem}
}

// replayIdempotent answers a repeated Idempotency-Key request from the stored
// response. It reports whether the request was already answered.
func (h *Handler) replayIdempotent(w http.ResponseWriter, r *http.Request, user auth.UserContext, endpoint, key, requestHash string) bool {
	stored, found, err := h.Idem.Check(r.Context(), user.OrgID, user.UserID, endpoint, key, requestHash)
	if err != nil {
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was already used with a different payload", middleware.GetRequestID(r.Context()))
			return true
		}
		slog.Warn("idempotency check failed", "endpoint", endpoint, "err", err)
	}
	if found {
		api.Success(w, json.RawMessage(stored), middleware.GetRequestID(r.Context()))
		return true
	}
	return false
}

func (h *Handler) saveIdempotent(r *http.Request, user auth.UserContext, endpoint, key, requestHash string, response any) {
	payload, err := json.Marshal(response)
	if err != nil {
		slog.Warn("idempotency marshal failed", "endpoint", endpoint, "err", err)
		return
	}
	if err := h.Idem.Save(r.Context(), user.OrgID, user.UserID, endpoint, key, requestHash, payload); err != nil {
		slog.Warn("idempotency save failed", "endpoint", endpoint, "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).Get("/", h.handleListCycles)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite, h.Perms)).Post("/", h.handleCreateCycle)
		r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).Get("/{cycleID}", h.handleGetCycle)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite, h.Perms)).Put("/{cycleID}", h.handleUpdateCycle)
		r.With(middleware.RequirePermission(auth.PermCyclesWrite, h.Perms)).Delete("/{cycleID}", h.handleDeleteCycle)
	})

	r.Route("/goals", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).Get("/", h.handleListGoals)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite, h.Perms)).Post("/", h.handleCreateGoal)
		r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).Get("/{goalID}", h.handleGetGoal)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite, h.Perms)).Put("/{goalID}", h.handleUpdateGoal)
		r.With(middleware.RequirePermission(auth.PermGoalsWrite, h.Perms)).Delete("/{goalID}", h.handleDeleteGoal)
	})

	r.With(middleware.RequirePermission(auth.PermGoalsEvaluate, h.Perms)).
		Put("/users/{userID}/evaluation-status", h.handleBulkEvaluationStatus)
	r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).
		Get("/users/{userID}/evaluation-status", h.handleCurrentStatus)

	r.With(middleware.RequirePermission(auth.PermGoalsRead, h.Perms)).
		Get("/users/{userID}/summary-evaluation", h.handleGetSummary)
	r.With(middleware.RequirePermission(auth.PermGoalsEvaluate, h.Perms)).
		Put("/users/{userID}/summary-evaluation", h.handleUpsertSummary)
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	list, err := h.Service.ListCycles(r.Context(), user.OrgID, r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

type cyclePayload struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Status    string `json:"status"`
}

func (h *Handler) decodeCycle(w http.ResponseWriter, r *http.Request) (goals.Cycle, bool) {
	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return goals.Cycle{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "cycle name is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return goals.Cycle{}, false
	}

	return goals.Cycle{
		Name:      payload.Name,
		StartDate: start,
		EndDate:   end,
		Status:    payload.Status,
	}, true
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	c, ok := h.decodeCycle(w, r)
	if !ok {
		return
	}
	c.OrganizationID = user.OrgID

	created, err := h.Service.CreateCycle(r.Context(), c)
	if err != nil {
		h.failGoalError(w, r, err, "cycle_create_failed", "failed to create cycle")
		return
	}

	h.record(r, user, "cycle.create", "evaluation_cycle", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	c, err := h.Service.Cycle(r.Context(), user.OrgID, chi.URLParam(r, "cycleID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "cycle not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	before, err := h.Service.Cycle(r.Context(), user.OrgID, cycleID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "cycle not found", middleware.GetRequestID(r.Context()))
		return
	}
	c, ok := h.decodeCycle(w, r)
	if !ok {
		return
	}
	c.ID = cycleID
	if c.Status == "" {
		c.Status = before.Status
	}

	updated, err := h.Service.UpdateCycle(r.Context(), user.OrgID, c)
	if err != nil {
		h.failGoalError(w, r, err, "cycle_update_failed", "failed to update cycle")
		return
	}

	h.record(r, user, "cycle.update", "evaluation_cycle", cycleID, before, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	before, err := h.Service.Cycle(r.Context(), user.OrgID, cycleID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "cycle not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteCycle(r.Context(), user.OrgID, cycleID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_delete_failed", "failed to delete cycle", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "cycle.delete", "evaluation_cycle", cycleID, before, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// handleListGoals answers with the goal list plus the weight summary, so the
// dashboard can flag partial or over-allocation without refusing it.
func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = user.UserID
	}
	if userID != user.UserID && !auth.IsManagerTier(user.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot list another user's goals", middleware.GetRequestID(r.Context()))
		return
	}

	list, weights, err := h.Service.ListGoals(r.Context(), user.OrgID, userID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_list_failed", "failed to list goals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"goals":   list,
		"weights": weights,
	}, middleware.GetRequestID(r.Context()))
}

type goalPayload struct {
	UserID      string `json:"userId"`
	CycleID     string `json:"cycleId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`

	EvaluationScore  int    `json:"evaluationScore"`
	EvaluationStatus string `json:"evaluationStatus"`
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload goalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "goal title is required")
	var due *time.Time
	if payload.DueDate != "" {
		if parsed, ok := v.Date("dueDate", payload.DueDate); ok {
			due = &parsed
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	reqHash := middleware.RequestHash([]byte(fmt.Sprintf("%s|%s|%s|%s|%d",
		user.UserID, payload.UserID, payload.CycleID, payload.Title, payload.Weight)))
	if idemKey != "" && h.replayIdempotent(w, r, user, "goals.create", idemKey, reqHash) {
		return
	}

	g := goals.Goal{
		UserID:      payload.UserID,
		CycleID:     payload.CycleID,
		Title:       payload.Title,
		Description: payload.Description,
		Weight:      payload.Weight,
		Status:      payload.Status,
		DueDate:     due,
	}
	created, err := h.Service.CreateGoal(r.Context(), user, g)
	if err != nil {
		h.failGoalError(w, r, err, "goal_create_failed", "failed to create goal")
		return
	}
	if idemKey != "" {
		h.saveIdempotent(r, user, "goals.create", idemKey, reqHash, created)
	}

	if created.UserID != user.UserID && h.Notify != nil {
		err := h.Notify.Notify(r.Context(), user.OrgID, created.UserID, notifications.TypeGoalCreated,
			"New goal assigned", fmt.Sprintf("A new goal %q was set for you.", created.Title))
		if err != nil {
			slog.Warn("goal notification failed", "goalId", created.ID, "err", err)
		}
	}

	h.record(r, user, "goal.create", "goal", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	g, err := h.Service.Goal(r.Context(), user.OrgID, chi.URLParam(r, "goalID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "goal not found", middleware.GetRequestID(r.Context()))
		return
	}
	if g.UserID != user.UserID && !auth.IsManagerTier(user.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another user's goal", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, g, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "goalID")

	before, err := h.Service.Goal(r.Context(), user.OrgID, goalID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "goal not found", middleware.GetRequestID(r.Context()))
		return
	}

	payload := goalPayload{
		CycleID:          before.CycleID,
		Title:            before.Title,
		Description:      before.Description,
		Weight:           before.Weight,
		Status:           before.Status,
		EvaluationScore:  before.EvaluationScore,
		EvaluationStatus: string(before.EvaluationStatus),
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "goal title is required")
	due := before.DueDate
	if payload.DueDate != "" {
		if parsed, ok := v.Date("dueDate", payload.DueDate); ok {
			due = &parsed
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	g := goals.Goal{
		ID:               goalID,
		CycleID:          payload.CycleID,
		Title:            payload.Title,
		Description:      payload.Description,
		Weight:           payload.Weight,
		Status:           payload.Status,
		EvaluationScore:  payload.EvaluationScore,
		EvaluationStatus: scoring.Status(payload.EvaluationStatus),
		DueDate:          due,
	}
	updated, err := h.Service.UpdateGoal(r.Context(), user, g)
	if err != nil {
		h.failGoalError(w, r, err, "goal_update_failed", "failed to update goal")
		return
	}

	evaluated := auth.IsManagerTier(user.Role) && updated.UserID != user.UserID &&
		updated.EvaluationScore != before.EvaluationScore && updated.EvaluationScore > 0
	if evaluated && h.Notify != nil {
		err := h.Notify.Notify(r.Context(), user.OrgID, updated.UserID, notifications.TypeGoalEvaluated,
			"Goal evaluated", fmt.Sprintf("Your goal %q was scored %d/5.", updated.Title, updated.EvaluationScore))
		if err != nil {
			slog.Warn("evaluation notification failed", "goalId", goalID, "err", err)
		}
	}

	h.record(r, user, "goal.update", "goal", goalID, before, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	goalID := chi.URLParam(r, "goalID")

	before, err := h.Service.Goal(r.Context(), user.OrgID, goalID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "goal not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteGoal(r.Context(), user, goalID); err != nil {
		h.failGoalError(w, r, err, "goal_delete_failed", "failed to delete goal")
		return
	}

	h.record(r, user, "goal.delete", "goal", goalID, before, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

// handleBulkEvaluationStatus moves every goal of one user to the requested
// workflow stage. Any stage may be targeted from any stage.
func (h *Handler) handleBulkEvaluationStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload struct {
		Status  string `json:"status"`
		CycleID string `json:"cycleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	status, err := scoring.ParseStatus(payload.Status)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown evaluation status", middleware.GetRequestID(r.Context()))
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	reqHash := middleware.RequestHash([]byte(fmt.Sprintf("%s|%s|%s", userID, status, payload.CycleID)))
	if idemKey != "" && h.replayIdempotent(w, r, user, "goals.bulk_status", idemKey, reqHash) {
		return
	}

	updated, err := h.Service.BulkSetEvaluationStatus(r.Context(), user.OrgID, userID, payload.CycleID, status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "status_update_failed", "failed to update evaluation status", middleware.GetRequestID(r.Context()))
		return
	}

	if status == scoring.StatusFinalized && updated > 0 && h.Notify != nil {
		err := h.Notify.Notify(r.Context(), user.OrgID, userID, notifications.TypeEvaluationFinalized,
			"Evaluation finalized", "Your performance evaluation has been finalized.")
		if err != nil {
			slog.Warn("finalize notification failed", "userId", userID, "err", err)
		}
	}

	h.record(r, user, "evaluation_status.set", "goal", userID, nil, map[string]any{
		"status":  status,
		"cycleId": payload.CycleID,
		"updated": updated,
	})

	response := map[string]any{
		"status":  status,
		"updated": updated,
	}
	if idemKey != "" {
		h.saveIdempotent(r, user, "goals.bulk_status", idemKey, reqHash, response)
	}
	api.Success(w, response, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrentStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")
	if userID != user.UserID && !auth.IsManagerTier(user.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another user's status", middleware.GetRequestID(r.Context()))
		return
	}

	status, err := h.Service.CurrentStatus(r.Context(), user.OrgID, userID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "status_read_failed", "failed to resolve evaluation status", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"status": status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")
	if userID != user.UserID && !auth.IsManagerTier(user.Role) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot read another user's summary", middleware.GetRequestID(r.Context()))
		return
	}

	summary, err := h.Service.Summary(r.Context(), user.OrgID, userID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.Success(w, goals.SummaryEvaluation{UserID: userID}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload struct {
		CycleID     string `json:"cycleId"`
		Summary     string `json:"summary"`
		Suggestions string `json:"suggestions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	se := goals.SummaryEvaluation{
		UserID:      userID,
		CycleID:     payload.CycleID,
		Summary:     payload.Summary,
		Suggestions: payload.Suggestions,
	}
	if err := h.Service.UpsertSummary(r.Context(), user.OrgID, se); err != nil {
		api.Fail(w, http.StatusInternalServerError, "summary_update_failed", "failed to save summary evaluation", middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "summary_evaluation.upsert", "summary_evaluation", userID, nil, se)
	api.Success(w, se, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failGoalError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, goals.ErrInvalidWeight):
		api.Fail(w, http.StatusBadRequest, "invalid_weight", "weight must be between 0 and 100", requestID)
	case errors.Is(err, goals.ErrInvalidScore):
		api.Fail(w, http.StatusBadRequest, "invalid_score", "evaluation score must be between 1 and 5", requestID)
	case errors.Is(err, goals.ErrInvalidStatus):
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown status", requestID)
	case errors.Is(err, goals.ErrInactiveCycle):
		api.Fail(w, http.StatusBadRequest, "inactive_cycle", "cycle is not active", requestID)
	case errors.Is(err, goals.ErrNotOwner):
		api.Fail(w, http.StatusForbidden, "forbidden", "only the owner or a manager may change this goal", requestID)
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
