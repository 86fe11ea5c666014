package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"daynight/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity resolves the session cookie into an auth.Identity and injects it
// into the request context on every request. Anonymous is a valid identity
// and passes through; each handler decides through the gate what the
// identity may do. Only a store failure during resolution rejects, with the
// generic storage error.
func Identity(sessions *auth.SessionManager, resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.TokenFromRequest(r)
			identity, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				log.Printf("❌ Identity resolution failed: %v", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"ok":    false,
					"error": "storage",
				})
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the resolved identity. Requests that did not
// pass through the Identity middleware count as anonymous.
func IdentityFromContext(ctx context.Context) auth.Identity {
	if identity, ok := ctx.Value(identityContextKey).(auth.Identity); ok {
		return identity
	}
	return auth.Anonymous()
}
