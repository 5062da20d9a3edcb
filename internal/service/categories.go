package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// CategoryService defines category reads and creation.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	ListWithCounts(ctx context.Context) ([]model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	// Create adds a category; the slug defaults to Slugify(name).
	Create(ctx context.Context, user *model.SessionUser, name, slug, description string) (*model.Category, error)
}

type CategoryServiceImpl struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(categories repository.CategoryRepository) *CategoryServiceImpl {
	return &CategoryServiceImpl{categories: categories}
}

func (s *CategoryServiceImpl) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryServiceImpl) ListWithCounts(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListWithCounts(ctx)
}

func (s *CategoryServiceImpl) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return s.categories.GetBySlug(ctx, slug)
}

func (s *CategoryServiceImpl) Create(ctx context.Context, user *model.SessionUser, name, slug, description string) (*model.Category, error) {
	if user == nil {
		return nil, errs.ErrNoSession
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", errs.ErrValidation)
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: cannot derive a slug from %q", errs.ErrValidation, name)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c := &model.Category{ID: id, Name: name, Slug: slug}
	if d := strings.TrimSpace(description); d != "" {
		c.Description = &d
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category %s: %w", slug, err)
	}
	return c, nil
}
