package auth

import (
	"context"
	"fmt"
	"net/http"

	"daynight/db"

	"github.com/google/uuid"
)

// SessionManager issues and revokes the opaque session tokens carried in the
// session cookie. Tokens have no expiry; a session dies on logout or when
// the bound user is deleted (the resolver then fails closed).
type SessionManager struct {
	store      db.Store
	cookieName string
}

func NewSessionManager(store db.Store, cookieName string) *SessionManager {
	return &SessionManager{store: store, cookieName: cookieName}
}

// Issue creates a new session for the user and returns its token.
func (s *SessionManager) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.store.CreateSession(ctx, token, userID); err != nil {
		return "", fmt.Errorf("failed to issue session: %w", err)
	}
	return token, nil
}

// Revoke destroys the session binding for the token.
func (s *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// TokenFromRequest extracts the session token from the cookie, or "".
func (s *SessionManager) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetCookie attaches the session cookie to the response.
func (s *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
