package auth_test

import (
	"context"
	"errors"
	"testing"

	"daynight/auth"
	"daynight/db"
	"daynight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outageStore fails every session read, as a store outage would.
type outageStore struct {
	db.Store
}

func (s outageStore) GetSession(context.Context, string) (string, error) {
	return "", errors.New("deadline exceeded")
}

func TestResolveWithoutTokenIsAnonymous(t *testing.T) {
	store := db.NewMemoryStore()
	resolver := auth.NewResolver(store)

	identity, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, identity.IsAnonymous())
}

func TestResolveUnknownTokenIsAnonymous(t *testing.T) {
	store := db.NewMemoryStore()
	resolver := auth.NewResolver(store)

	identity, err := resolver.Resolve(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.True(t, identity.IsAnonymous())
}

func TestResolveBoundSession(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	resolver := auth.NewResolver(store)
	sessions := auth.NewSessionManager(store, "daynight_session")

	userID, err := store.CreateUser(ctx, &models.User{Username: "rivera", Display: "Rivera"})
	require.NoError(t, err)

	token, err := sessions.Issue(ctx, userID)
	require.NoError(t, err)

	identity, err := resolver.Resolve(ctx, token)
	require.NoError(t, err)
	user, ok := identity.User()
	require.True(t, ok)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "rivera", user.Username)
}

// A session whose user has been deleted resolves to anonymous, never an
// error: stale sessions fail closed.
func TestResolveDeletedUserFailsClosed(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	resolver := auth.NewResolver(store)
	sessions := auth.NewSessionManager(store, "daynight_session")

	userID, err := store.CreateUser(ctx, &models.User{Username: "rivera", Display: "Rivera"})
	require.NoError(t, err)
	token, err := sessions.Issue(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, userID))

	identity, err := resolver.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, identity.IsAnonymous())
}

func TestRevokedSessionIsAnonymous(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	resolver := auth.NewResolver(store)
	sessions := auth.NewSessionManager(store, "daynight_session")

	userID, err := store.CreateUser(ctx, &models.User{Username: "rivera", Display: "Rivera"})
	require.NoError(t, err)
	token, err := sessions.Issue(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, token))

	identity, err := resolver.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, identity.IsAnonymous())
}

// A store failure is not a stale session: it must come back as an error, not
// demote the caller to anonymous.
func TestResolveStoreFailureIsAnError(t *testing.T) {
	store := outageStore{Store: db.NewMemoryStore()}
	resolver := auth.NewResolver(store)

	_, err := resolver.Resolve(context.Background(), "some-token")
	assert.Error(t, err)
}
