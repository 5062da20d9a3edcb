package repository

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepository provides access to user profiles.
type ProfileRepository interface {
	// Create inserts a profile and returns the stored row.
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	// GetByID loads a profile by user ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// Update applies a partial patch and returns the stored row.
	Update(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.Profile, error)
}
