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

type AlertsHandler struct {
	store db.Store
	gate  *auth.Gate
	audit *audit.Logger
}

func NewAlertsHandler(store db.Store, gate *auth.Gate, auditLog *audit.Logger) *AlertsHandler {
	return &AlertsHandler{store: store, gate: gate, audit: auditLog}
}

// List returns all alerts, newest first.
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.store.GetAllAlerts(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeOK(w, map[string]interface{}{"alerts": alerts})
}

type CreateAlertRequest struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Create posts an alert. No permission needed: any identity may post,
// including guests, whose alerts are recorded under the guest marker. Empty
// text is allowed; a level-only alert is a valid status signal.
func (h *AlertsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())

	var req CreateAlertRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}
	if req.Level == "" {
		req.Level = "green"
	}
	text := strings.TrimSpace(req.Text)

	createdBy := models.GuestName
	if user, ok := identity.User(); ok {
		createdBy = user.Username
	}

	alert := models.Alert{
		Level:     req.Level,
		Text:      text,
		CreatedBy: createdBy,
	}
	if _, err := h.store.CreateAlert(r.Context(), &alert); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Alert created: %s - %s", req.Level, text)
	writeOK(w, nil)
}

// Delete removes an alert. Requires manage_alerts.
func (h *AlertsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermManageAlerts); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	alertID := mux.Vars(r)["id"]
	if err := h.store.DeleteAlert(r.Context(), alertID); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Alert %s deleted by %s", alertID, user.Username)
	writeOK(w, nil)
}
