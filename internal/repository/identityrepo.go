// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// IdentityRepository provides access to auth provider accounts.
type IdentityRepository interface {
	// Create inserts a new identity; ErrAlreadyExists on duplicate email.
	Create(ctx context.Context, id *model.Identity) error
	// GetByID loads an identity by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	// GetByEmail loads an identity by (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*model.Identity, error)
	// TouchSignIn stamps last_sign_in_at with the current time.
	TouchSignIn(ctx context.Context, id uuid.UUID) error
	// UpdateMetadata replaces the sign-up metadata.
	UpdateMetadata(ctx context.Context, id uuid.UUID, meta model.UserMetadata) error
}
