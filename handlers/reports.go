package handlers

import (
	"net/http"
	"strings"

	"daynight/apierror"
	"daynight/audit"
	"daynight/auth"
	"daynight/db"
	"daynight/middleware"
	"daynight/models"

	"github.com/gorilla/mux"
)

type ReportsHandler struct {
	store db.Store
	gate  *auth.Gate
	audit *audit.Logger
}

func NewReportsHandler(store db.Store, gate *auth.Gate, auditLog *audit.Logger) *ReportsHandler {
	return &ReportsHandler{store: store, gate: gate, audit: auditLog}
}

// List returns all reports, newest first.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.store.GetAllReports(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}
	writeOK(w, map[string]interface{}{"reports": reports})
}

type CreateReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create files a report authored by the caller. Requires create_reports.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermCreateReports); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var req CreateReportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		writeError(w, apierror.Missing)
		return
	}

	report := models.Report{
		Title:       title,
		Description: description,
		Author:      user.Display,
	}
	if _, err := h.store.CreateReport(r.Context(), &report); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Report created: %s by %s", title, user.Username)
	writeOK(w, nil)
}

// Delete removes a report. Allowed for admins, sergeants, and the author.
// Authorship is matched by display name, not id; renaming a user breaks
// their ownership of older reports. Kept as-is.
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	reportID := mux.Vars(r)["id"]
	report, err := h.store.GetReport(r.Context(), reportID)
	if err == db.ErrNotFound {
		writeError(w, apierror.NotFound)
		return
	}
	if err != nil {
		writeStorageError(w, err)
		return
	}

	if user.Role != models.RoleAdmin && user.Role != models.RoleSergeant && report.Author != user.Display {
		writeError(w, apierror.Unauthorized)
		return
	}

	if err := h.store.DeleteReport(r.Context(), reportID); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Report %s deleted by %s", reportID, user.Username)
	writeOK(w, nil)
}
