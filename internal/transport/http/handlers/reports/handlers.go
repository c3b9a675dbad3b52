package reportshandler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfdash/internal/domain/audit"
	"perfdash/internal/domain/auth"
	"perfdash/internal/domain/org"
	"perfdash/internal/domain/reports"
	"perfdash/internal/platform/metrics"
	"perfdash/internal/transport/http/api"
	"perfdash/internal/transport/http/middleware"
)

type Handler struct {
	Reports *reports.Service
	Org     *org.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(reportsSvc *reports.Service, orgSvc *org.Service, perms middleware.PermissionStore, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Reports: reportsSvc, Org: orgSvc, Perms: perms, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsExport, h.Perms)).Get("/results.xlsx", h.handleResultsWorkbook)
		r.Get("/performance.pdf", h.handlePerformancePDF)
	})
}

// handleResultsWorkbook streams the Excel export. ?userId=all (the default)
// exports every active employee; a specific userId exports one sheet row set.
func (h *Handler) handleResultsWorkbook(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var (
		results []reports.Result
		err     error
	)
	userID := r.URL.Query().Get("userId")
	cycleID := r.URL.Query().Get("cycleId")
	if userID == "" || userID == "all" {
		results, err = h.Reports.OrgResults(r.Context(), user.OrgID, cycleID)
	} else {
		var result reports.Result
		result, err = h.Reports.UserResult(r.Context(), user.OrgID, userID, cycleID)
		results = []reports.Result{result}
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to assemble export data", middleware.GetRequestID(r.Context()))
		return
	}

	buf, err := reports.WriteResultsWorkbook(results)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build workbook", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Audit != nil {
		_ = h.Audit.Record(r.Context(), user.OrgID, user.UserID, "report.export.xlsx", "report", userID,
			middleware.GetRequestID(r.Context()), r.RemoteAddr, nil, map[string]string{"cycleId": cycleID})
	}
	h.Metrics.RecordExport()

	filename := fmt.Sprintf("performance-results-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handlePerformancePDF renders one user's report. Users may download their
// own; their manager and admin-tier users may download anyone's.
func (h *Handler) handlePerformancePDF(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = user.UserID
	}
	if !h.mayDownload(r, user, userID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot download this user's report", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Reports.UserResult(r.Context(), user.OrgID, userID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no performance data for this user", middleware.GetRequestID(r.Context()))
		return
	}

	buf, err := reports.WritePerformancePDF(result)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Audit != nil {
		_ = h.Audit.Record(r.Context(), user.OrgID, user.UserID, "report.export.pdf", "report", userID,
			middleware.GetRequestID(r.Context()), r.RemoteAddr, nil, nil)
	}
	h.Metrics.RecordExport()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="performance-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) mayDownload(r *http.Request, user auth.UserContext, targetID string) bool {
	if targetID == user.UserID || auth.IsAdminTier(user.Role) {
		return true
	}
	if !auth.IsManagerTier(user.Role) {
		return false
	}
	target, err := h.Org.Profile(r.Context(), user.OrgID, targetID)
	if err != nil {
		return false
	}
	return target.ManagerID == user.UserID
}
