package repository

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PostRepository provides access to posts.
type PostRepository interface {
	// ListPublished returns published posts, newest publication first, with author and category.
	ListPublished(ctx context.Context) ([]model.Post, error)
	// ListPublishedByCategory is ListPublished restricted to one category.
	ListPublishedByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Post, error)
	// ListByAuthor returns every post of an author, newest first.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error)
	// GetByID loads a post with author and category.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	// Create inserts a post and returns the stored row.
	Create(ctx context.Context, id, authorID uuid.UUID, in model.PostInput) (*model.Post, error)
	// Update overwrites the editable fields and returns the stored row.
	Update(ctx context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error)
	// Delete removes a post.
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementViews bumps the view counter and returns the new value.
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
}
