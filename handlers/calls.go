package handlers

import (
	"net/http"

	"daynight/apierror"
	"daynight/audit"
	"daynight/auth"
	"daynight/db"
	"daynight/middleware"
	"daynight/models"

	"github.com/gorilla/mux"
)

type CallsHandler struct {
	store db.Store
	gate  *auth.Gate
	audit *audit.Logger
}

func NewCallsHandler(store db.Store, gate *auth.Gate, auditLog *audit.Logger) *CallsHandler {
	return &CallsHandler{store: store, gate: gate, audit: auditLog}
}

// List returns all calls, newest first.
func (h *CallsHandler) List(w http.ResponseWriter, r *http.Request) {
	calls, err := h.store.GetAllCalls(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if calls == nil {
		calls = []models.Call{}
	}
	writeOK(w, map[string]interface{}{"calls": calls})
}

type CreateCallRequest struct {
	Caller  string `json:"caller"`
	Message string `json:"message"`
}

// Create files a new dispatch call. This is the one anonymous-eligible
// mutation: the gate grants create_call to guests. A system alert of type
// "call" is emitted as a second, independent write; a crash in between
// leaves a call with no alert, which is accepted and audit-visible.
func (h *CallsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if apiErr := checkPermission(r.Context(), h.gate, identity, models.PermCreateCall); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var req CreateCallRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}
	if req.Caller == "" {
		req.Caller = "Anonymous"
	}
	if req.Message == "" {
		writeError(w, apierror.MissingMessage)
		return
	}

	call := models.Call{
		Caller:  req.Caller,
		Message: req.Message,
		Status:  models.CallPending,
	}
	callID, err := h.store.CreateCall(r.Context(), &call)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Call created by %s", req.Caller)

	alert := models.Alert{Type: models.AlertTypeCall, CallID: callID, Level: "info"}
	if _, err := h.store.CreateAlert(r.Context(), &alert); err != nil {
		// The call exists either way; the missing notification is
		// reported, not fatal.
		h.audit.Event(r.Context(), "Alert emission failed for call %s", callID)
	}

	writeOK(w, nil)
}

// Assign transitions a call pending -> assigned. Requires assign_call, and
// always assigns the acting identity itself, never a third party. The store
// applies the update only while the call is still pending, so the loser of
// a race gets already_assigned instead of silently overwriting.
func (h *CallsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermAssignCall); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	callID := mux.Vars(r)["id"]
	err := h.store.AssignCall(r.Context(), callID, user.ID)
	if err == db.ErrNotFound {
		writeError(w, apierror.NotFound)
		return
	}
	if err == db.ErrAlreadyAssigned {
		writeError(w, apierror.AlreadyAssigned)
		return
	}
	if err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Call %s assigned to %s", callID, user.Username)

	alert := models.Alert{Type: models.AlertTypeAssign, CallID: callID, User: user.Username, Level: "info"}
	if _, err := h.store.CreateAlert(r.Context(), &alert); err != nil {
		h.audit.Event(r.Context(), "Alert emission failed for call %s", callID)
	}

	writeOK(w, nil)
}

// Delete removes a call. Only an admin or the currently assigned user may
// delete; an unrelated user is refused even with a broad permission set.
func (h *CallsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	callID := mux.Vars(r)["id"]
	call, err := h.store.GetCall(r.Context(), callID)
	if err == db.ErrNotFound {
		writeError(w, apierror.NotFound)
		return
	}
	if err != nil {
		writeStorageError(w, err)
		return
	}

	if user.Role != models.RoleAdmin && call.AssignedTo != user.ID {
		writeError(w, apierror.Unauthorized)
		return
	}

	if err := h.store.DeleteCall(r.Context(), callID); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Call %s deleted by %s", callID, user.Username)
	writeOK(w, nil)
}
