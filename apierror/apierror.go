// Package apierror defines the error taxonomy returned to API clients.
// Every failure surfaces as {ok:false, error:<code>} with a matching HTTP
// status; storage-layer errors are never passed through as-is.
package apierror

import "net/http"

// Error is a client-visible failure with a stable code.
type Error struct {
	Code   string `json:"error"`
	Status int    `json:"-"`
	// Detail carries extra context for operators (import partial failures).
	Detail string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	return e.Code
}

var (
	// AuthRequired: no resolvable identity on an operation that needs one.
	AuthRequired = &Error{Code: "auth_required", Status: http.StatusUnauthorized}
	// Unauthorized: identity resolved but the permission check failed.
	Unauthorized = &Error{Code: "unauthorized", Status: http.StatusForbidden}
	// Invalid: bad credentials on login.
	Invalid = &Error{Code: "invalid", Status: http.StatusUnauthorized}

	Missing         = &Error{Code: "missing", Status: http.StatusBadRequest}
	MissingMessage  = &Error{Code: "missing_message", Status: http.StatusBadRequest}
	MissingUsername = &Error{Code: "missing username", Status: http.StatusBadRequest}

	Exists                = &Error{Code: "exists", Status: http.StatusBadRequest}
	NotFound              = &Error{Code: "notfound", Status: http.StatusNotFound}
	AlreadySeeded         = &Error{Code: "already_seeded", Status: http.StatusBadRequest}
	CannotDeleteSeedAdmin = &Error{Code: "cannot_delete_seed_admin", Status: http.StatusBadRequest}
	AlreadyAssigned       = &Error{Code: "already_assigned", Status: http.StatusConflict}

	// Storage: a transient document-store failure. No retry happens server
	// side; clients retry.
	Storage = &Error{Code: "storage", Status: http.StatusInternalServerError}
)

// PartialImport reports an import that replaced some collections before
// failing. Distinct from Storage so operators can detect a half-applied
// restore.
func PartialImport(detail string) *Error {
	return &Error{Code: "partial_import", Status: http.StatusInternalServerError, Detail: detail}
}
