package postgres

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
)

// CategoryRepo implements CategoryRepository using PostgreSQL.
type CategoryRepo struct{ db *DB }

// NewCategoryRepo constructs a category repository.
func NewCategoryRepo(db *DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List returns categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name, slug, description, created_at FROM categories ORDER BY name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListWithCounts returns categories with an exact count of their published posts.
func (r *CategoryRepo) ListWithCounts(ctx context.Context) ([]model.Category, error) {
	const q = `
SELECT c.id, c.name, c.slug, c.description, c.created_at, COUNT(p.id)
FROM categories c
LEFT JOIN posts p ON p.category_id = c.id AND p.status = 'published'
GROUP BY c.id
ORDER BY c.name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.PostCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetBySlug selects a category by exact slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	const q = `SELECT id, name, slug, description, created_at FROM categories WHERE slug=$1`
	var c model.Category
	if err := r.db.Pool.QueryRow(ctx, q, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

// Create inserts a category.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	const q = `INSERT INTO categories (id, name, slug, description) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, c.ID, c.Name, c.Slug, c.Description)
	return mapErr(err)
}
