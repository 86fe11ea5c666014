package auth

import (
	"context"
	"fmt"

	"daynight/db"
	"daynight/models"
)

// Registry answers "what may this role do". The role mapping is re-read from
// the store on every check, so role edits (seed, import) take effect
// immediately at the cost of one read per authorization decision.
type Registry struct {
	store db.Store
}

func NewRegistry(store db.Store) *Registry {
	return &Registry{store: store}
}

// PermissionsOf returns the permission set of a role. Unknown role names
// (including the empty "unassigned" role) yield an empty set, not an error;
// only storage failures error.
func (r *Registry) PermissionsOf(ctx context.Context, roleName string) (map[models.Permission]bool, error) {
	roles, err := r.store.GetAllRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	perms := make(map[models.Permission]bool)
	role, ok := roles[roleName]
	if !ok {
		return perms, nil
	}
	for _, p := range role.Permissions {
		perms[p] = true
	}
	return perms, nil
}

// Gate is the single authorization primitive. Every mutating operation is
// expressed as one or more Allowed calls before touching the store.
type Gate struct {
	registry *Registry
}

func NewGate(registry *Registry) *Gate {
	return &Gate{registry: registry}
}

// Allowed decides whether the identity may exercise the permission.
// Anonymous callers hold exactly one capability: creating a call. Everyone
// else is granted through their role's permission set, with the sentinel
// "all" matching any permission.
func (g *Gate) Allowed(ctx context.Context, identity Identity, perm models.Permission) (bool, error) {
	user, ok := identity.User()
	if !ok {
		return perm == models.PermCreateCall, nil
	}

	perms, err := g.registry.PermissionsOf(ctx, user.Role)
	if err != nil {
		return false, err
	}
	return perms[models.PermAll] || perms[perm], nil
}
