package postgres

import (
	"context"
	"strings"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// IdentityRepo implements IdentityRepository using PostgreSQL.
type IdentityRepo struct{ db *DB }

// NewIdentityRepo constructs an identity repository.
func NewIdentityRepo(db *DB) *IdentityRepo { return &IdentityRepo{db: db} }

const identityCols = `id, email, pwd_hash, username, full_name, created_at, last_sign_in_at`

// Create inserts a new auth_users row.
func (r *IdentityRepo) Create(ctx context.Context, id *model.Identity) error {
	const q = `
INSERT INTO auth_users (id, email, pwd_hash, username, full_name)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, id.ID, strings.ToLower(id.Email), id.PasswordHash,
		nullable(id.Metadata.Username), nullable(id.Metadata.FullName))
	return mapErr(err)
}

// GetByID selects an identity by ID.
func (r *IdentityRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM auth_users WHERE id=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects an identity by email.
func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	const q = `SELECT ` + identityCols + ` FROM auth_users WHERE email=$1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, q, strings.ToLower(email)))
}

// TouchSignIn stamps last_sign_in_at.
func (r *IdentityRepo) TouchSignIn(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE auth_users SET last_sign_in_at = now() WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateMetadata overwrites username and full_name.
func (r *IdentityRepo) UpdateMetadata(ctx context.Context, id uuid.UUID, meta model.UserMetadata) error {
	const q = `UPDATE auth_users SET username = $2, full_name = $3 WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, nullable(meta.Username), nullable(meta.FullName))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *IdentityRepo) scanOne(row interface{ Scan(...any) error }) (*model.Identity, error) {
	var (
		it                 model.Identity
		username, fullName *string
	)
	if err := row.Scan(&it.ID, &it.Email, &it.PasswordHash, &username, &fullName, &it.CreatedAt, &it.LastSignInAt); err != nil {
		return nil, mapErr(err)
	}
	it.Metadata = model.UserMetadata{Username: deref(username), FullName: deref(fullName)}
	return &it, nil
}

// nullable maps "" to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
