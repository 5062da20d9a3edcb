package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	typAccess  = "access"
	typRefresh = "refresh"
)

// Claims are the JWT claims of both token kinds.
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens constructs a token issuer.
func NewTokens(key []byte, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue creates an access/refresh pair for u.
func (t *Tokens) Issue(u model.SessionUser) (*model.Session, error) {
	now := t.now()
	access, exp, err := t.sign(u, typAccess, now, t.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := t.sign(u, typRefresh, now, t.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &model.Session{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp, User: u}, nil
}

func (t *Tokens) sign(u model.SessionUser, typ string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := now.Add(ttl)
	claims := Claims{
		Email: u.Email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	return signed, exp, err
}

// Parse verifies raw and checks its kind. Expired tokens fail with jwt.ErrTokenExpired.
func (t *Tokens) Parse(raw, typ string) (*Claims, error) {
	return t.parse(raw, typ, jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	))
}

// ParseUnverifiedExpiry verifies the signature of raw but ignores its expiry.
func (t *Tokens) ParseUnverifiedExpiry(raw, typ string) (*Claims, error) {
	return t.parse(raw, typ, jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	))
}

func (t *Tokens) parse(raw, typ string, p *jwt.Parser) (*Claims, error) {
	var c Claims
	if _, err := p.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return t.key, nil }); err != nil {
		return nil, err
	}
	if c.Type != typ {
		return nil, fmt.Errorf("token type %q, want %q", c.Type, typ)
	}
	if c.ID == "" {
		return nil, errors.New("token without id")
	}
	return &c, nil
}

// UserID extracts the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.FromString(c.Subject)
}

// remaining is how long c stays valid, zero when already expired.
func (c *Claims) remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
