package repository

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
)

// CategoryRepository provides access to post categories.
type CategoryRepository interface {
	// List returns all categories ordered by name.
	List(ctx context.Context) ([]model.Category, error)
	// ListWithCounts returns all categories ordered by name with published post counts.
	ListWithCounts(ctx context.Context) ([]model.Category, error)
	// GetBySlug loads a category by exact slug.
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	// Create inserts a category; ErrAlreadyExists on duplicate slug.
	Create(ctx context.Context, c *model.Category) error
}
