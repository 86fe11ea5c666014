package handlers

import (
	"log"
	"net/http"

	"daynight/apierror"
	"daynight/audit"
	"daynight/auth"
	"daynight/db"
	"daynight/middleware"
	"daynight/models"

	"github.com/gorilla/mux"
)

type UsersHandler struct {
	store db.Store
	gate  *auth.Gate
	audit *audit.Logger
}

func NewUsersHandler(store db.Store, gate *auth.Gate, auditLog *audit.Logger) *UsersHandler {
	return &UsersHandler{store: store, gate: gate, audit: auditLog}
}

// List returns all users. Unauthenticated, like every list endpoint.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.GetAllUsers(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeOK(w, map[string]interface{}{"users": users})
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Display  string `json:"display"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Badge    string `json:"badge"`
}

// Create adds a console account. Requires manage_users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermManageUsers); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var req CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}
	if req.Username == "" {
		writeError(w, apierror.MissingUsername)
		return
	}
	if req.Display == "" {
		req.Display = req.Username
	}
	if req.Password == "" {
		req.Password = "1234"
	}

	// Usernames are unique across the collection.
	_, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err == nil {
		writeError(w, apierror.Exists)
		return
	}
	if err != db.ErrNotFound {
		writeStorageError(w, err)
		return
	}

	user := models.User{
		Username: req.Username,
		Display:  req.Display,
		Password: req.Password,
		Role:     req.Role,
		Badge:    req.Badge,
	}
	if _, err := h.store.CreateUser(r.Context(), &user); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "User created: %s by %s", req.Username, actor.Username)
	writeOK(w, nil)
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRole updates a user's role. Requires manage_users. The new role may
// be empty (unassigned) or any role name; unknown names simply grant no
// permissions.
func (h *UsersHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermManageUsers); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var req ChangeRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.store.SetUserRole(r.Context(), id, req.Role); err != nil {
		if err == db.ErrNotFound {
			writeError(w, apierror.NotFound)
			return
		}
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Role changed: %s -> %s by %s", id, req.Role, actor.Username)
	writeOK(w, nil)
}

// Delete removes a user. Requires manage_users. The seeded bootstrap admin
// is protected, and any duty roster entry for the user is removed alongside
// so no orphaned on-duty entry survives.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, apiErr := requireUser(r.Context())
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if apiErr := checkPermission(r.Context(), h.gate, middleware.IdentityFromContext(r.Context()), models.PermManageUsers); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	id := mux.Vars(r)["id"]
	target, err := h.store.GetUser(r.Context(), id)
	if err == db.ErrNotFound {
		writeError(w, apierror.NotFound)
		return
	}
	if err != nil {
		writeStorageError(w, err)
		return
	}

	if target.Username == models.SeedAdminUsername {
		writeError(w, apierror.CannotDeleteSeedAdmin)
		return
	}

	if err := h.store.DeleteDutyEntry(r.Context(), id); err != nil {
		log.Printf("Warning: failed to clear duty entry for %s: %v", id, err)
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "User deleted: %s by %s", id, actor.Username)
	writeOK(w, nil)
}
