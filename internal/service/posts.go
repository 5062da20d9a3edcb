// Package service contains the application services behind the terminal views.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// PostForm is what the create and edit screens submit.
type PostForm struct {
	Title        string
	Slug         string // derived from Title when empty
	Excerpt      string
	Content      string
	Status       model.PostStatus // draft when empty
	CategorySlug string           // no category when empty
}

// PostService defines post authoring and reading.
type PostService interface {
	// Create inserts a post authored by user.
	Create(ctx context.Context, user *model.SessionUser, f PostForm) (*model.Post, error)
	// GetForEdit loads a post the user owns. Anything else is ErrForbidden.
	GetForEdit(ctx context.Context, user *model.SessionUser, id uuid.UUID) (*model.Post, error)
	// Update overwrites a post the user owns.
	Update(ctx context.Context, user *model.SessionUser, id uuid.UUID, f PostForm) (*model.Post, error)
	// Delete removes a post the user owns.
	Delete(ctx context.Context, user *model.SessionUser, id uuid.UUID) error
	// View loads a post for reading and counts the view.
	View(ctx context.Context, id uuid.UUID) (*model.Post, error)
	// ListPublished returns all published posts, newest first.
	ListPublished(ctx context.Context) ([]model.Post, error)
	// ListByCategorySlug resolves the category and returns its published posts.
	ListByCategorySlug(ctx context.Context, slug string) (*model.Category, []model.Post, error)
	// ListByAuthor returns every post of the author, drafts included.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error)
}

type PostServiceImpl struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	log        *zap.Logger
	now        func() time.Time
}

// NewPostService constructs PostService.
func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository, log *zap.Logger) *PostServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostServiceImpl{posts: posts, categories: categories, log: log, now: time.Now}
}

// input validates f and builds the stored fields. prev is the post being edited, if any.
func (s *PostServiceImpl) input(ctx context.Context, f PostForm, prev *model.Post) (model.PostInput, error) {
	in := model.PostInput{
		Title:   strings.TrimSpace(f.Title),
		Slug:    strings.TrimSpace(f.Slug),
		Content: f.Content,
		Status:  f.Status,
	}
	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	if strings.TrimSpace(in.Content) == "" {
		return in, fmt.Errorf("%w: content is required", errs.ErrValidation)
	}
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	if !in.Status.Valid() {
		return in, fmt.Errorf("%w: unknown status %q", errs.ErrValidation, in.Status)
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.Slug == "" {
		return in, fmt.Errorf("%w: cannot derive a slug from the title", errs.ErrValidation)
	}
	if e := strings.TrimSpace(f.Excerpt); e != "" {
		in.Excerpt = &e
	}
	if cs := strings.TrimSpace(f.CategorySlug); cs != "" {
		c, err := s.categories.GetBySlug(ctx, cs)
		if errors.Is(err, errs.ErrNotFound) {
			return in, fmt.Errorf("%w: unknown category %q", errs.ErrValidation, cs)
		}
		if err != nil {
			return in, fmt.Errorf("resolve category: %w", err)
		}
		in.CategoryID = &c.ID
	}

	switch {
	case in.Status != model.StatusPublished:
		in.PublishedAt = nil
	case prev != nil && prev.Status == model.StatusPublished && prev.PublishedAt != nil:
		in.PublishedAt = prev.PublishedAt
	default:
		now := s.now().UTC()
		in.PublishedAt = &now
	}
	return in, nil
}

// Create validates the form and inserts the post.
func (s *PostServiceImpl) Create(ctx context.Context, user *model.SessionUser, f PostForm) (*model.Post, error) {
	if user == nil {
		return nil, errs.ErrNoSession
	}
	in, err := s.input(ctx, f, nil)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p, err := s.posts.Create(ctx, id, user.ID, in)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// GetForEdit hides both missing posts and other authors' posts behind ErrForbidden.
func (s *PostServiceImpl) GetForEdit(ctx context.Context, user *model.SessionUser, id uuid.UUID) (*model.Post, error) {
	if user == nil {
		return nil, errs.ErrNoSession
	}
	p, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("load post: %w", err)
	}
	if p.AuthorID != user.ID {
		return nil, errs.ErrForbidden
	}
	return p, nil
}

// Update rewrites an owned post.
func (s *PostServiceImpl) Update(ctx context.Context, user *model.SessionUser, id uuid.UUID, f PostForm) (*model.Post, error) {
	prev, err := s.GetForEdit(ctx, user, id)
	if err != nil {
		return nil, err
	}
	in, err := s.input(ctx, f, prev)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete removes an owned post.
func (s *PostServiceImpl) Delete(ctx context.Context, user *model.SessionUser, id uuid.UUID) error {
	if _, err := s.GetForEdit(ctx, user, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// View loads the post and bumps its counter. A failed bump is logged only.
func (s *PostServiceImpl) View(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.posts.IncrementViews(ctx, id)
	if err != nil {
		s.log.Debug("view count not updated", zap.String("post_id", id.String()), zap.Error(err))
		return p, nil
	}
	p.ViewCount = n
	return p, nil
}

// ListPublished returns the published feed.
func (s *PostServiceImpl) ListPublished(ctx context.Context) ([]model.Post, error) {
	return s.posts.ListPublished(ctx)
}

// ListByCategorySlug looks the category up first, then filters posts by its id.
func (s *PostServiceImpl) ListByCategorySlug(ctx context.Context, slug string) (*model.Category, []model.Post, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.posts.ListPublishedByCategory(ctx, c.ID)
	if err != nil {
		return c, nil, err
	}
	return c, posts, nil
}

// ListByAuthor returns the author's posts.
func (s *PostServiceImpl) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}
