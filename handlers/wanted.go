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

type WantedHandler struct {
	store db.Store
	gate  *auth.Gate
	audit *audit.Logger
}

func NewWantedHandler(store db.Store, gate *auth.Gate, auditLog *audit.Logger) *WantedHandler {
	return &WantedHandler{store: store, gate: gate, audit: auditLog}
}

// List returns all wanted notices, newest first.
func (h *WantedHandler) List(w http.ResponseWriter, r *http.Request) {
	notices, err := h.store.GetAllWanted(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if notices == nil {
		notices = []models.WantedNotice{}
	}
	writeOK(w, map[string]interface{}{"wanted": notices})
}

type CreateWantedRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Bounty      int    `json:"bounty"`
}

// Create posts a BOLO. Requires create_bolo; bounty must not be negative.
func (h *WantedHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermCreateBolo); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var req CreateWantedRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Bounty < 0 {
		writeError(w, apierror.Missing)
		return
	}

	notice := models.WantedNotice{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Bounty:      req.Bounty,
	}
	if _, err := h.store.CreateWanted(r.Context(), &notice); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Wanted notice created: %s by %s", name, user.Username)
	writeOK(w, nil)
}

// Delete removes a wanted notice. Requires manage_wanted.
func (h *WantedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermManageWanted); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	noticeID := mux.Vars(r)["id"]
	if err := h.store.DeleteWanted(r.Context(), noticeID); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Wanted notice %s deleted by %s", noticeID, user.Username)
	writeOK(w, nil)
}
