package service

import (
	"context"
	"testing"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestCommentService(t *testing.T) {
	repo := &memComments{rows: map[uuid.UUID]model.Comment{}}
	s := NewCommentService(repo)
	ctx := context.Background()
	post := uuid.Must(uuid.NewV4())
	alice, bob := newUser("a@x.com"), newUser("b@x.com")

	_, err := s.Add(ctx, nil, post, "hi")
	require.ErrorIs(t, err, errs.ErrNoSession)
	_, err = s.Add(ctx, alice, post, "   ")
	require.ErrorIs(t, err, errs.ErrValidation)

	c, err := s.Add(ctx, alice, post, "  nice post ")
	require.NoError(t, err)
	require.Equal(t, "nice post", c.Content)
	require.Equal(t, model.CommentApproved, c.Status)

	pendingID := uuid.Must(uuid.NewV4())
	repo.rows[pendingID] = model.Comment{ID: pendingID, PostID: post, AuthorID: bob.ID, Status: "pending"}

	list, err := s.List(ctx, post)
	require.NoError(t, err)
	require.Len(t, list, 1, "only approved comments are listed")

	require.ErrorIs(t, s.Delete(ctx, bob, c.ID), errs.ErrForbidden)
	require.ErrorIs(t, s.Delete(ctx, alice, uuid.Must(uuid.NewV4())), errs.ErrForbidden)
	require.Zero(t, repo.deletes)
	require.NoError(t, s.Delete(ctx, alice, c.ID))
	require.Equal(t, 1, repo.deletes)
}
