package service

import (
	"context"
	"errors"
	"strings"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"go.uber.org/zap"
)

// IdentityUpdater keeps the provider-side user metadata in step with the profile.
type IdentityUpdater interface {
	UpdateUser(ctx context.Context, meta model.UserMetadata) (*model.SessionUser, error)
}

// ProfileService defines profile reading and editing.
type ProfileService interface {
	// Get returns the user's profile, or nil when none exists yet.
	Get(ctx context.Context, user *model.SessionUser) (*model.Profile, error)
	// Update applies patch to the user's profile.
	Update(ctx context.Context, user *model.SessionUser, patch model.ProfilePatch) (*model.Profile, error)
}

type ProfileServiceImpl struct {
	profiles repository.ProfileRepository
	identity IdentityUpdater
	log      *zap.Logger
}

// NewProfileService constructs ProfileService. identity may be nil.
func NewProfileService(profiles repository.ProfileRepository, identity IdentityUpdater, log *zap.Logger) *ProfileServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileServiceImpl{profiles: profiles, identity: identity, log: log}
}

// Get treats a missing row as an empty profile.
func (s *ProfileServiceImpl) Get(ctx context.Context, user *model.SessionUser) (*model.Profile, error) {
	if user == nil {
		return nil, errs.ErrNoSession
	}
	p, err := s.profiles.GetByID(ctx, user.ID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Update writes the patch; name changes are mirrored to the identity best-effort.
func (s *ProfileServiceImpl) Update(ctx context.Context, user *model.SessionUser, patch model.ProfilePatch) (*model.Profile, error) {
	if user == nil {
		return nil, errs.ErrNoSession
	}
	trim(patch.FullName)
	trim(patch.Username)
	trim(patch.AvatarURL)
	trim(patch.Bio)

	p, err := s.profiles.Update(ctx, user.ID, patch)
	if err != nil {
		return nil, err
	}
	if s.identity != nil && (patch.Username != nil || patch.FullName != nil) {
		meta := model.UserMetadata{Username: value(p.Username), FullName: value(p.FullName)}
		if _, err := s.identity.UpdateUser(ctx, meta); err != nil {
			s.log.Warn("identity metadata not updated", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	return p, nil
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
