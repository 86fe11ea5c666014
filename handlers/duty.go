package handlers

import (
	"net/http"

	"daynight/audit"
	"daynight/db"
	"daynight/models"
)

type DutyHandler struct {
	store db.Store
	audit *audit.Logger
}

func NewDutyHandler(store db.Store, auditLog *audit.Logger) *DutyHandler {
	return &DutyHandler{store: store, audit: auditLog}
}

// Toggle flips the caller's own duty state. Only a valid session is needed;
// the entry is created if absent and deleted if present, so two sequential
// toggles return to the starting state with no drift.
func (h *DutyHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	onDuty, err := h.store.IsOnDuty(r.Context(), user.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	if onDuty {
		if err := h.store.DeleteDutyEntry(r.Context(), user.ID); err != nil {
			writeStorageError(w, err)
			return
		}
		h.audit.Event(r.Context(), "%s went off duty", user.Display)
		writeOK(w, map[string]interface{}{"status": "off"})
		return
	}

	if err := h.store.SetDutyEntry(r.Context(), user.ID, user.Display); err != nil {
		writeStorageError(w, err)
		return
	}
	h.audit.Event(r.Context(), "%s went on duty", user.Display)
	writeOK(w, map[string]interface{}{"status": "on"})
}

// List returns the current on-duty roster.
func (h *DutyHandler) List(w http.ResponseWriter, r *http.Request) {
	roster, err := h.store.GetDutyRoster(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if roster == nil {
		roster = []models.DutyEntry{}
	}
	writeOK(w, map[string]interface{}{"onDuty": roster})
}
