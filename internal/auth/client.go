package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/inkwell/internal/crypto"
	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/limiter"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// Client implements Provider against auth_users with a locally persisted session.
type Client struct {
	ids     repository.IdentityRepository
	tokens  *Tokens
	store   SessionStore
	revoked *Revocations
	lim     limiter.Limiter
	client  []byte
	log     *zap.Logger
	hub     Hub
}

var _ Provider = (*Client)(nil)

// NewClient constructs the provider. clientName identifies this machine to the sign-in limiter.
func NewClient(ids repository.IdentityRepository, tokens *Tokens, store SessionStore,
	revoked *Revocations, lim limiter.Limiter, clientName string, log *zap.Logger) *Client {
	if lim == nil {
		lim = limiter.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		ids:     ids,
		tokens:  tokens,
		store:   store,
		revoked: revoked,
		lim:     lim,
		client:  limiter.ClientFingerprint(clientName),
		log:     log,
	}
}

// Subscribe registers l for auth events.
func (c *Client) Subscribe(l Listener) func() { return c.hub.Subscribe(l) }

// SignUp validates input, hashes the password and creates the account.
func (c *Client) SignUp(ctx context.Context, email, password string, meta model.UserMetadata) (*model.SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	id := &model.Identity{
		ID:           uid,
		Email:        email,
		PasswordHash: hash,
		Metadata: model.UserMetadata{
			Username: strings.TrimSpace(meta.Username),
			FullName: strings.TrimSpace(meta.FullName),
		},
	}
	if err := c.ids.Create(ctx, id); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, fmt.Errorf("email %s: %w", email, err)
		}
		return nil, err
	}
	u := id.User()
	return &u, nil
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", errs.ErrValidation)
	}
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		return fmt.Errorf("%w: invalid email %q", errs.ErrValidation, email)
	}
	if len([]rune(password)) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", errs.ErrValidation, MinPasswordLen)
	}
	return nil
}

// SignIn authenticates with rate limiting by (email, client).
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", errs.ErrValidation)
	}

	allowed, retry, err := c.lim.Allow(ctx, email, c.client)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: retry in %s", errs.ErrRateLimited, retry.Round(time.Second))
	}

	id, err := c.ids.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	ok := false
	if err == nil {
		if ok, err = pkgcrypto.VerifyPassword(password, id.PasswordHash); err != nil {
			c.log.Warn("stored password hash unreadable", zap.String("user_id", id.ID.String()), zap.Error(err))
		}
	}
	if !ok {
		if blocked, _, ferr := c.lim.Failure(ctx, email, c.client); ferr == nil && blocked {
			return nil, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return nil, fmt.Errorf("%w: invalid login credentials", errs.ErrUnauthorized)
	}

	if err := c.lim.Success(ctx, email, c.client); err != nil {
		c.log.Debug("limiter reset failed", zap.Error(err))
	}
	if err := c.ids.TouchSignIn(ctx, id.ID); err != nil {
		c.log.Debug("touch sign-in failed", zap.String("user_id", id.ID.String()), zap.Error(err))
	}

	sess, err := c.tokens.Issue(id.User())
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.hub.Publish(model.EventSignedIn, sess)
	return sess, nil
}

// CurrentUser resolves the stored session, refreshing it when the access token expired.
func (c *Client) CurrentUser(ctx context.Context) (*model.SessionUser, error) {
	sess, err := c.store.Load()
	if err != nil {
		c.log.Warn("unreadable session discarded", zap.Error(err))
		return nil, c.store.Clear()
	}
	if sess == nil {
		return nil, nil
	}

	claims, err := c.tokens.Parse(sess.AccessToken, typAccess)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		refreshed, rerr := c.Refresh(ctx)
		if errors.Is(rerr, errs.ErrUnauthorized) {
			return nil, nil
		}
		if rerr != nil {
			return nil, rerr
		}
		return &refreshed.User, nil
	default:
		c.log.Debug("invalid access token", zap.Error(err))
		return nil, c.store.Clear()
	}

	if c.revoked.IsRevoked(ctx, claims.ID) {
		return nil, c.store.Clear()
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, c.store.Clear()
	}
	id, err := c.ids.GetByID(ctx, uid)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, c.store.Clear()
	}
	if err != nil {
		return nil, err
	}
	u := id.User()
	return &u, nil
}

// Refresh rotates the token pair. ErrUnauthorized means the session is gone.
func (c *Client) Refresh(ctx context.Context) (*model.Session, error) {
	sess, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.RefreshToken == "" {
		return nil, errs.ErrNoSession
	}
	claims, err := c.tokens.Parse(sess.RefreshToken, typRefresh)
	if err != nil || c.revoked.IsRevoked(ctx, claims.ID) {
		_ = c.store.Clear()
		return nil, fmt.Errorf("%w: refresh token rejected", errs.ErrUnauthorized)
	}
	uid, err := claims.UserID()
	if err != nil {
		_ = c.store.Clear()
		return nil, fmt.Errorf("%w: refresh token rejected", errs.ErrUnauthorized)
	}
	id, err := c.ids.GetByID(ctx, uid)
	if errors.Is(err, errs.ErrNotFound) {
		_ = c.store.Clear()
		return nil, fmt.Errorf("%w: account removed", errs.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	next, err := c.tokens.Issue(id.User())
	if err != nil {
		return nil, err
	}
	if err := c.revoked.Revoke(ctx, claims.ID, claims.remaining(c.tokens.now())); err != nil {
		c.log.Debug("revoke rotated refresh token failed", zap.Error(err))
	}
	if err := c.store.Save(next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.hub.Publish(model.EventTokenRefreshed, next)
	return next, nil
}

// UpdateUser replaces the signed-in user's metadata and republishes the session.
func (c *Client) UpdateUser(ctx context.Context, meta model.UserMetadata) (*model.SessionUser, error) {
	sess, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errs.ErrNoSession
	}
	meta.Username = strings.TrimSpace(meta.Username)
	meta.FullName = strings.TrimSpace(meta.FullName)
	if err := c.ids.UpdateMetadata(ctx, sess.User.ID, meta); err != nil {
		return nil, err
	}
	sess.User.Metadata = meta
	if err := c.store.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.hub.Publish(model.EventUserUpdated, sess)
	u := sess.User
	return &u, nil
}

// SignOut revokes both tokens, clears the stored session and publishes SIGNED_OUT.
func (c *Client) SignOut(ctx context.Context) error {
	sess, err := c.store.Load()
	if err != nil {
		c.log.Warn("unreadable session discarded", zap.Error(err))
	}
	if sess != nil {
		now := c.tokens.now()
		for _, t := range []struct{ raw, typ string }{
			{sess.AccessToken, typAccess},
			{sess.RefreshToken, typRefresh},
		} {
			claims, perr := c.tokens.ParseUnverifiedExpiry(t.raw, t.typ)
			if perr != nil {
				continue
			}
			if rerr := c.revoked.Revoke(ctx, claims.ID, claims.remaining(now)); rerr != nil {
				c.log.Warn("token revocation failed", zap.String("typ", t.typ), zap.Error(rerr))
			}
		}
	}
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.hub.Publish(model.EventSignedOut, nil)
	return nil
}
