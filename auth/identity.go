// Package auth holds the authorization core: identity resolution from
// session tokens, the role/permission registry, and the single gate every
// mutation is checked against.
package auth

import (
	"context"
	"fmt"

	"daynight/db"
	"daynight/models"
)

// Identity is the caller of a request: either anonymous or an authenticated
// user. Handlers pattern-match through User() instead of carrying a nullable
// user around.
type Identity struct {
	user *models.User
}

// Anonymous is the identity of a request with no resolvable session.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated wraps a resolved user.
func Authenticated(user *models.User) Identity {
	return Identity{user: user}
}

// User returns the authenticated user, or false for anonymous callers.
func (id Identity) User() (*models.User, bool) {
	if id.user == nil {
		return nil, false
	}
	return id.user, true
}

// IsAnonymous reports whether no user is bound to this identity.
func (id Identity) IsAnonymous() bool {
	return id.user == nil
}

// Resolver turns a session token into an Identity.
type Resolver struct {
	store db.Store
}

func NewResolver(store db.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up the session binding and the referenced user. Missing
// tokens, unknown sessions, and sessions pointing at deleted users all
// resolve to anonymous: stale sessions fail closed. A store failure is a
// different animal and is returned as an error, so an outage surfaces as a
// 5xx instead of silently demoting every caller to anonymous.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Anonymous(), nil
	}

	userID, err := r.store.GetSession(ctx, token)
	if err == db.ErrNotFound {
		return Anonymous(), nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := r.store.GetUser(ctx, userID)
	if err == db.ErrNotFound {
		return Anonymous(), nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve session user: %w", err)
	}

	return Authenticated(user), nil
}
