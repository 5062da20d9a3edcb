package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// CommentService defines comment reading and writing.
type CommentService interface {
	// List returns the approved comments of a post, oldest first.
	List(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	// Add posts a comment as user.
	Add(ctx context.Context, user *model.SessionUser, postID uuid.UUID, content string) (*model.Comment, error)
	// Delete removes one of the user's own comments.
	Delete(ctx context.Context, user *model.SessionUser, id uuid.UUID) error
}

type CommentServiceImpl struct {
	comments repository.CommentRepository
}

// NewCommentService constructs CommentService.
func NewCommentService(comments repository.CommentRepository) *CommentServiceImpl {
	return &CommentServiceImpl{comments: comments}
}

func (s *CommentServiceImpl) List(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	return s.comments.ListApprovedByPost(ctx, postID)
}

// Add trims content and rejects empty comments.
func (s *CommentServiceImpl) Add(ctx context.Context, user *model.SessionUser, postID uuid.UUID, content string) (*model.Comment, error) {
	if user == nil {
		return nil, errs.ErrNoSession
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c, err := s.comments.Create(ctx, &model.Comment{
		ID:       id,
		Content:  content,
		PostID:   postID,
		AuthorID: user.ID,
		Status:   model.CommentApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

func (s *CommentServiceImpl) Delete(ctx context.Context, user *model.SessionUser, id uuid.UUID) error {
	if user == nil {
		return errs.ErrNoSession
	}
	c, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrForbidden
	}
	if err != nil {
		return err
	}
	if c.AuthorID != user.ID {
		return errs.ErrForbidden
	}
	return s.comments.Delete(ctx, id)
}
