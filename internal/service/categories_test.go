package service

import (
	"context"
	"testing"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	repo := &memCategories{}
	s := NewCategoryService(repo)
	ctx := context.Background()
	u := newUser("a@x.com")

	_, err := s.Create(ctx, nil, "Go", "", "")
	require.ErrorIs(t, err, errs.ErrNoSession)
	_, err = s.Create(ctx, u, "  ", "", "")
	require.ErrorIs(t, err, errs.ErrValidation)

	c, err := s.Create(ctx, u, "Go Lang", "", " all things go ")
	require.NoError(t, err)
	require.Equal(t, "go-lang", c.Slug)
	require.Equal(t, "all things go", *c.Description)

	_, err = s.Create(ctx, u, "Go again", "go-lang", "")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	got, err := s.GetBySlug(ctx, "go-lang")
	require.NoError(t, err)
	require.Equal(t, c.ID, got.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
