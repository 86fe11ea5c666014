package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"daynight/audit"
	"daynight/auth"
	"daynight/db"
	"daynight/handlers"
	"daynight/models"

	"github.com/stretchr/testify/require"
)

const cookieName = "daynight_session"

// api is a full handler stack over the in-memory store.
type api struct {
	t       *testing.T
	store   *db.MemoryStore
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := db.NewMemoryStore()
	sessions := auth.NewSessionManager(store, cookieName)
	resolver := auth.NewResolver(store)
	gate := auth.NewGate(auth.NewRegistry(store))
	auditLog := audit.NewLogger(store)
	handler := handlers.NewRouter(store, sessions, resolver, gate, auditLog)
	return &api{t: t, store: store, handler: handler}
}

// do performs a request, optionally authenticated by a session token.
func (a *api) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// seed runs the one-time bootstrap and expects success.
func (a *api) seed() {
	a.t.Helper()
	rec, _ := a.do(http.MethodPost, "/api/seed", "", nil)
	require.Equal(a.t, http.StatusOK, rec.Code)
}

// login authenticates and returns the session token from the cookie.
func (a *api) login(username, password string) string {
	a.t.Helper()
	rec, _ := a.do(http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(a.t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			return c.Value
		}
	}
	a.t.Fatal("no session cookie in login response")
	return ""
}

// createUser provisions an account directly in the store; password is "pw".
func (a *api) createUser(username, display, role string) string {
	a.t.Helper()
	id, err := a.store.CreateUser(context.Background(), &models.User{
		Username: username,
		Display:  display,
		Password: "pw",
		Role:     role,
	})
	require.NoError(a.t, err)
	return id
}

// loginAs provisions an account and opens a session for it.
func (a *api) loginAs(username, display, role string) (string, string) {
	a.t.Helper()
	id := a.createUser(username, display, role)
	return id, a.login(username, "pw")
}
