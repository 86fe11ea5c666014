package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"daynight/auth"
	"daynight/db"
	"daynight/middleware"
	"daynight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outageStore struct {
	db.Store
}

func (s outageStore) GetSession(context.Context, string) (string, error) {
	return "", errors.New("deadline exceeded")
}

func identityEcho(t *testing.T, got *auth.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = middleware.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityInjectsResolvedUser(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	sessions := auth.NewSessionManager(store, "daynight_session")
	resolver := auth.NewResolver(store)

	userID, err := store.CreateUser(ctx, &models.User{Username: "rivera", Display: "Rivera"})
	require.NoError(t, err)
	token, err := sessions.Issue(ctx, userID)
	require.NoError(t, err)

	var got auth.Identity
	handler := middleware.Identity(sessions, resolver)(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "daynight_session", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	user, ok := got.User()
	require.True(t, ok)
	assert.Equal(t, userID, user.ID)
}

func TestIdentityPassesAnonymousThrough(t *testing.T) {
	store := db.NewMemoryStore()
	sessions := auth.NewSessionManager(store, "daynight_session")
	resolver := auth.NewResolver(store)

	var got auth.Identity
	handler := middleware.Identity(sessions, resolver)(identityEcho(t, &got))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.IsAnonymous())
}

// A store outage during resolution surfaces as the generic storage error,
// not as a silently anonymous request.
func TestIdentityStoreFailureIsStorageError(t *testing.T) {
	store := outageStore{Store: db.NewMemoryStore()}
	sessions := auth.NewSessionManager(store, "daynight_session")
	resolver := auth.NewResolver(store)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("request must not reach the handler")
	})
	handler := middleware.Identity(sessions, resolver)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "daynight_session", Value: "some-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["ok"])
	assert.Equal(t, "storage", resp["error"])
}
