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
)

type FinesHandler struct {
	store db.Store
	gate  *auth.Gate
	audit *audit.Logger
}

func NewFinesHandler(store db.Store, gate *auth.Gate, auditLog *audit.Logger) *FinesHandler {
	return &FinesHandler{store: store, gate: gate, audit: auditLog}
}

// List returns all fines, newest first.
func (h *FinesHandler) List(w http.ResponseWriter, r *http.Request) {
	fines, err := h.store.GetAllFines(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if fines == nil {
		fines = []models.Fine{}
	}
	writeOK(w, map[string]interface{}{"fines": fines})
}

type CreateFineRequest struct {
	Offender string `json:"offender"`
	Amount   int    `json:"amount"`
	Reason   string `json:"reason"`
}

// Create issues a fine. Requires create_fine; the offender must be named
// and the amount strictly positive.
func (h *FinesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermCreateFine); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var req CreateFineRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}
	offender := strings.TrimSpace(req.Offender)
	if offender == "" || req.Amount <= 0 {
		writeError(w, apierror.Missing)
		return
	}

	fine := models.Fine{
		Offender: offender,
		Amount:   req.Amount,
		Reason:   strings.TrimSpace(req.Reason),
		Author:   user.Display,
	}
	if _, err := h.store.CreateFine(r.Context(), &fine); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Fine created: %s %d by %s", offender, req.Amount, user.Username)
	writeOK(w, nil)
}
