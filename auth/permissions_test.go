package auth_test

import (
	"context"
	"testing"

	"daynight/auth"
	"daynight/db"
	"daynight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allPermissions = []models.Permission{
	models.PermCreateCall,
	models.PermAssignCall,
	models.PermCreateReports,
	models.PermDeleteReports,
	models.PermCreateBolo,
	models.PermManageWanted,
	models.PermCreateFine,
	models.PermManageAlerts,
	models.PermManageUsers,
	models.PermExport,
}

func newGate(t *testing.T) (*auth.Gate, db.Store) {
	t.Helper()
	store := db.NewMemoryStore()
	return auth.NewGate(auth.NewRegistry(store)), store
}

func TestAnonymousMayOnlyCreateCalls(t *testing.T) {
	gate, _ := newGate(t)
	ctx := context.Background()

	for _, perm := range allPermissions {
		allowed, err := gate.Allowed(ctx, auth.Anonymous(), perm)
		require.NoError(t, err)
		assert.Equal(t, perm == models.PermCreateCall, allowed, "permission %s", perm)
	}
}

func TestAllSentinelGrantsEveryPermission(t *testing.T) {
	gate, store := newGate(t)
	ctx := context.Background()

	err := store.CreateRole(ctx, "admin", &models.Role{Name: "Admin", Permissions: []models.Permission{models.PermAll}})
	require.NoError(t, err)

	admin := auth.Authenticated(&models.User{ID: "u1", Username: "root", Role: "admin"})
	for _, perm := range allPermissions {
		allowed, err := gate.Allowed(ctx, admin, perm)
		require.NoError(t, err)
		assert.True(t, allowed, "permission %s", perm)
	}
}

func TestExactPermissionMatch(t *testing.T) {
	gate, store := newGate(t)
	ctx := context.Background()

	err := store.CreateRole(ctx, "dispatcher", &models.Role{
		Name:        "Dispatcher",
		Permissions: []models.Permission{models.PermCreateCall, models.PermAssignCall},
	})
	require.NoError(t, err)

	dispatcher := auth.Authenticated(&models.User{ID: "u1", Username: "disp", Role: "dispatcher"})

	allowed, err := gate.Allowed(ctx, dispatcher, models.PermAssignCall)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = gate.Allowed(ctx, dispatcher, models.PermManageUsers)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestUnknownAndUnassignedRolesGrantNothing(t *testing.T) {
	gate, _ := newGate(t)
	ctx := context.Background()

	for _, roleName := range []string{"", "ghost"} {
		user := auth.Authenticated(&models.User{ID: "u1", Username: "nobody", Role: roleName})
		for _, perm := range allPermissions {
			allowed, err := gate.Allowed(ctx, user, perm)
			require.NoError(t, err)
			assert.False(t, allowed, "role %q permission %s", roleName, perm)
		}
	}
}

// An authenticated user without create_call in their role does not inherit
// the guest grant: the anonymous branch applies to anonymous callers only.
func TestAuthenticatedUserDoesNotInheritGuestGrant(t *testing.T) {
	gate, store := newGate(t)
	ctx := context.Background()

	err := store.CreateRole(ctx, "clerk", &models.Role{Name: "Clerk", Permissions: []models.Permission{models.PermCreateFine}})
	require.NoError(t, err)

	clerk := auth.Authenticated(&models.User{ID: "u1", Username: "clerk", Role: "clerk"})
	allowed, err := gate.Allowed(ctx, clerk, models.PermCreateCall)
	require.NoError(t, err)
	assert.False(t, allowed)
}

// The registry re-reads roles on every check, so a role edit is visible on
// the very next decision.
func TestRoleEditsTakeEffectImmediately(t *testing.T) {
	gate, store := newGate(t)
	ctx := context.Background()

	err := store.CreateRole(ctx, "officer", &models.Role{Name: "Officer", Permissions: []models.Permission{models.PermCreateCall}})
	require.NoError(t, err)

	officer := auth.Authenticated(&models.User{ID: "u1", Username: "off", Role: "officer"})

	allowed, err := gate.Allowed(ctx, officer, models.PermAssignCall)
	require.NoError(t, err)
	assert.False(t, allowed)

	err = store.CreateRole(ctx, "officer", &models.Role{Name: "Officer", Permissions: []models.Permission{models.PermAssignCall}})
	require.NoError(t, err)

	allowed, err = gate.Allowed(ctx, officer, models.PermAssignCall)
	require.NoError(t, err)
	assert.True(t, allowed)
}
