// Package handlers implements the HTTP surface of the dispatch console. One
// handler struct per resource family; every mutation runs the same protocol:
// resolve identity, consult the gate, validate input, enforce the domain
// invariant, mutate the store, append an audit record.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"daynight/apierror"
	"daynight/auth"
	"daynight/middleware"
	"daynight/models"
)

// writeOK responds {ok:true} merged with the given fields.
func writeOK(w http.ResponseWriter, fields map[string]interface{}) {
	payload := map[string]interface{}{"ok": true}
	for k, v := range fields {
		payload[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// writeError responds {ok:false, error:<code>} with the taxonomy status.
func writeError(w http.ResponseWriter, apiErr *apierror.Error) {
	payload := map[string]interface{}{"ok": false, "error": apiErr.Code}
	if apiErr.Detail != "" {
		payload["detail"] = apiErr.Detail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(payload)
}

// writeStorageError hides a store failure behind the generic 5xx code.
func writeStorageError(w http.ResponseWriter, err error) {
	log.Printf("❌ Storage error: %v", err)
	writeError(w, apierror.Storage)
}

// decodeBody parses a JSON request body. An empty body decodes into the
// zero value, matching clients that POST without payload.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// requireUser returns the authenticated user or the auth_required error.
func requireUser(ctx context.Context) (*models.User, *apierror.Error) {
	identity := middleware.IdentityFromContext(ctx)
	user, ok := identity.User()
	if !ok {
		return nil, apierror.AuthRequired
	}
	return user, nil
}

// checkPermission runs the gate and maps the outcome onto the taxonomy.
func checkPermission(ctx context.Context, gate *auth.Gate, identity auth.Identity, perm models.Permission) *apierror.Error {
	allowed, err := gate.Allowed(ctx, identity, perm)
	if err != nil {
		log.Printf("❌ Permission check failed: %v", err)
		return apierror.Storage
	}
	if !allowed {
		return apierror.Unauthorized
	}
	return nil
}
