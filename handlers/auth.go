package handlers

import (
	"log"
	"net/http"
	"strings"

	"daynight/apierror"
	"daynight/audit"
	"daynight/auth"
	"daynight/db"
	"daynight/models"
)

type AuthHandler struct {
	store    db.Store
	sessions *auth.SessionManager
	audit    *audit.Logger
}

func NewAuthHandler(store db.Store, sessions *auth.SessionManager, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{
		store:    store,
		sessions: sessions,
		audit:    auditLog,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and opens a session. Passwords are compared in
// plaintext; a preserved limitation of the system, not an oversight.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, apierror.Missing)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		writeError(w, apierror.Missing)
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if err == db.ErrNotFound {
		writeError(w, apierror.Invalid)
		return
	}
	if err != nil {
		writeStorageError(w, err)
		return
	}

	if user.Password != req.Password {
		writeError(w, apierror.Invalid)
		return
	}

	token, err := h.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	h.sessions.SetCookie(w, token)

	h.audit.Event(r.Context(), "Session started: %s", username)
	writeOK(w, map[string]interface{}{"user": user})
}

// Logout destroys the current session, if any.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.TokenFromRequest(r)
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		log.Printf("Warning: failed to revoke session: %v", err)
	}
	h.sessions.ClearCookie(w)
	writeOK(w, nil)
}

// SeedRoles is the default role set created by the one-time seed.
var SeedRoles = map[string]models.Role{
	"officer": {
		Name:        "Officer",
		Permissions: []models.Permission{models.PermCreateReports, "create_pda", models.PermCreateCall},
	},
	"sergeant": {
		Name:        "Sergeant",
		Permissions: []models.Permission{models.PermCreateReports, "create_pda", models.PermCreateCall, models.PermDeleteReports},
	},
	"dispatcher": {
		Name:        "Dispatcher",
		Permissions: []models.Permission{models.PermCreateCall, models.PermAssignCall},
	},
	"admin": {
		Name:        "Admin",
		Permissions: []models.Permission{models.PermAll},
	},
}

// SeedAdmin is the bootstrap account created by Seed.
var SeedAdmin = models.User{
	Username: models.SeedAdminUsername,
	Display:  "Perety",
	Password: "Rodriguez2009_",
	Role:     models.RoleAdmin,
	Badge:    "ADM-001",
}

// Seed creates the default roles and the bootstrap admin. Permitted only
// while the users collection is empty.
func (h *AuthHandler) Seed(w http.ResponseWriter, r *http.Request) {
	hasUsers, err := h.store.HasUsers(r.Context())
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if hasUsers {
		writeError(w, apierror.AlreadySeeded)
		return
	}

	for name, role := range SeedRoles {
		role := role
		if err := h.store.CreateRole(r.Context(), name, &role); err != nil {
			writeStorageError(w, err)
			return
		}
	}

	admin := SeedAdmin
	if _, err := h.store.CreateUser(r.Context(), &admin); err != nil {
		writeStorageError(w, err)
		return
	}

	h.audit.Event(r.Context(), "Initial seed created via API")
	writeOK(w, nil)
}
