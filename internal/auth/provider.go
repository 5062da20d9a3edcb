// Package auth is the identity provider: accounts in auth_users, JWT sessions
// persisted on the client, and auth-state notifications.
package auth

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
)

// Listener receives auth-state transitions. sess is nil after sign-out.
type Listener func(event model.AuthEvent, sess *model.Session)

// Provider is the delegated authentication interface consumed by the session manager.
type Provider interface {
	// CurrentUser returns the signed-in user or nil when there is no valid session.
	CurrentUser(ctx context.Context) (*model.SessionUser, error)
	// SignUp creates an account. It does not sign the user in.
	SignUp(ctx context.Context, email, password string, meta model.UserMetadata) (*model.SessionUser, error)
	// SignIn authenticates and persists a new session.
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	// SignOut revokes and forgets the current session.
	SignOut(ctx context.Context) error
	// Refresh exchanges the refresh token for a new session.
	Refresh(ctx context.Context) (*model.Session, error)
	// UpdateUser replaces the signed-in user's metadata.
	UpdateUser(ctx context.Context, meta model.UserMetadata) (*model.SessionUser, error)
	// Subscribe registers l and returns an idempotent dispose function.
	Subscribe(l Listener) (dispose func())
}
