package repository

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CommentRepository provides access to comments.
type CommentRepository interface {
	// ListApprovedByPost returns approved comments of a post, oldest first, with authors.
	ListApprovedByPost(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	// GetByID loads a single comment.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	// Create inserts a comment and returns the stored row.
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	// Delete removes a comment.
	Delete(ctx context.Context, id uuid.UUID) error
}
