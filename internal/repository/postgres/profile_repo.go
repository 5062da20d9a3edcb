package postgres

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileCols = `id, email, full_name, username, avatar_url, bio, created_at, updated_at`

// Create inserts a profile row and returns it.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	const q = `
INSERT INTO user_profiles (id, email, full_name, username)
VALUES ($1, $2, $3, $4)
RETURNING ` + profileCols
	return scanProfile(r.db.Pool.QueryRow(ctx, q, p.ID, p.Email, p.FullName, p.Username))
}

// GetByID selects a profile by user ID.
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM user_profiles WHERE id=$1`
	return scanProfile(r.db.Pool.QueryRow(ctx, q, id))
}

// Update applies non-nil patch fields.
func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.Profile, error) {
	const q = `
UPDATE user_profiles SET
  full_name = COALESCE($2, full_name),
  username = COALESCE($3, username),
  avatar_url = COALESCE($4, avatar_url),
  bio = COALESCE($5, bio),
  updated_at = now()
WHERE id = $1
RETURNING ` + profileCols
	return scanProfile(r.db.Pool.QueryRow(ctx, q, id, patch.FullName, patch.Username, patch.AvatarURL, patch.Bio))
}

func scanProfile(row interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Username, &p.AvatarURL, &p.Bio, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}
