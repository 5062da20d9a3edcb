package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/and161185/inkwell/internal/auth"
	"github.com/and161185/inkwell/internal/config"
	"github.com/and161185/inkwell/internal/limiter"
	"github.com/and161185/inkwell/internal/repository/postgres"
	"github.com/and161185/inkwell/internal/service"
	"github.com/and161185/inkwell/internal/session"
	"github.com/and161185/inkwell/internal/view"
	"go.uber.org/zap"
)

// Sign-in throttling: five failures within 15 minutes lock the (email, host) pair for 15 minutes.
const (
	limiterWindow   = 15 * time.Minute
	limiterMaxFails = 5
	limiterBlockFor = 15 * time.Minute
)

// app is everything one command needs. The session manager is created once here
// and passed to handlers explicitly.
type app struct {
	log     *zap.Logger
	in      io.Reader
	out     io.Writer
	screens *view.Screens

	session    *session.Manager
	posts      service.PostService
	comments   service.CommentService
	profiles   service.ProfileService
	categories service.CategoryService

	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger, in io.Reader, out io.Writer) (*app, error) {
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	revoked := auth.NewRevocations(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	host, _ := os.Hostname()
	provider := auth.NewClient(
		postgres.NewIdentityRepo(db),
		auth.NewTokens([]byte(cfg.JWTKey), cfg.AccessTTL, cfg.RefreshTTL),
		auth.NewFileStore(cfg.ConfigDir),
		revoked,
		limiter.NewPG(db.Pool, limiterWindow, limiterMaxFails, limiterBlockFor),
		host,
		log.Named("auth"),
	)

	profileRepo := postgres.NewProfileRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)
	mgr := session.New(provider, profileRepo, log.Named("session"))

	a := &app{
		log:        log,
		in:         in,
		out:        out,
		screens:    newScreens(out),
		session:    mgr,
		posts:      service.NewPostService(postgres.NewPostRepo(db), categoryRepo, log.Named("posts")),
		comments:   service.NewCommentService(postgres.NewCommentRepo(db)),
		profiles:   service.NewProfileService(profileRepo, provider, log.Named("profiles")),
		categories: service.NewCategoryService(categoryRepo),
	}
	a.closers = []func(){db.Close, func() { _ = revoked.Close() }, mgr.Close}

	// a failed lookup leaves the user signed out; the manager logs it
	_ = mgr.Start(ctx)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newScreens(out io.Writer) *view.Screens {
	r := view.NewRenderer(out, 0, false)
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := termSize(f); err == nil && w > 20 {
			width = min(w, 100)
		}
	}
	return view.NewScreens(out, r, view.DefaultTheme, width)
}
