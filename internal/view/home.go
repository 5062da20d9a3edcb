package view

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PostLister is the feed source of the home screen.
type PostLister interface {
	ListPublished(ctx context.Context) ([]model.Post, error)
}

// CategoryLister is the sidebar source of the home screen.
type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

// HomeData is what the home screen shows. Categories is nil when its fetch failed.
type HomeData struct {
	Posts      []model.Post
	Categories []model.Category
}

// LoadHome fetches posts and categories concurrently. Each fetch fails on its own:
// a category error is logged and leaves Categories nil, a post error is returned.
func LoadHome(ctx context.Context, posts PostLister, categories CategoryLister, log *zap.Logger) (HomeData, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		data    HomeData
		postErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		data.Posts, postErr = posts.ListPublished(ctx)
		return nil
	})
	g.Go(func() error {
		cs, err := categories.List(ctx)
		if err != nil {
			log.Warn("categories fetch failed", zap.Error(err))
			return nil
		}
		if cs == nil {
			cs = []model.Category{}
		}
		data.Categories = cs
		return nil
	})
	_ = g.Wait()
	return data, postErr
}
