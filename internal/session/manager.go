// Package session tracks the signed-in user for the lifetime of the process
// and keeps a profile row in place for every user it sees.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/and161185/inkwell/internal/auth"
	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// State is a snapshot of the tracked session.
type State struct {
	User    *model.SessionUser
	Loading bool
}

// Manager owns the tracked user and the loading flag. It is the only writer of both.
type Manager struct {
	provider auth.Provider
	profiles repository.ProfileRepository
	log      *zap.Logger
	timeout  time.Duration

	mu       sync.RWMutex
	user     *model.SessionUser
	loading  bool
	closed   bool
	dispose  func()
	watchers map[int]func(State)
	nextW    int
}

// New constructs a manager in the loading state with no user.
func New(provider auth.Provider, profiles repository.ProfileRepository, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		provider: provider,
		profiles: profiles,
		log:      log,
		timeout:  10 * time.Second,
		loading:  true,
		watchers: map[int]func(State){},
	}
}

// Start resolves the current user, reconciles its profile and subscribes to auth events.
// Loading is cleared once the lookup returns, whatever its outcome; the lookup error is returned.
func (m *Manager) Start(ctx context.Context) error {
	u, err := m.provider.CurrentUser(ctx)
	if err != nil {
		m.log.Warn("current user lookup failed", zap.Error(err))
		u = nil
	}
	m.set(u)
	if u != nil {
		m.reconcile(ctx, *u)
	}

	dispose := m.provider.Subscribe(m.onAuthEvent)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		dispose()
		return err
	}
	m.dispose = dispose
	m.mu.Unlock()
	return err
}

func (m *Manager) onAuthEvent(event model.AuthEvent, sess *model.Session) {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return
	}

	var u *model.SessionUser
	if sess != nil {
		c := sess.User
		u = &c
	}
	m.log.Debug("auth event", zap.String("event", string(event)), zap.Bool("has_user", u != nil))
	m.set(u)
	if u != nil {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		m.reconcile(ctx, *u)
	}
}

// reconcile inserts a profile for u when none exists. Failures are logged only.
func (m *Manager) reconcile(ctx context.Context, u model.SessionUser) {
	log := m.log.With(zap.String("user_id", u.ID.String()))

	_, err := m.profiles.GetByID(ctx, u.ID)
	if err == nil {
		return
	}
	if !errors.Is(err, errs.ErrNotFound) {
		log.Error("profile lookup failed", zap.Error(err))
		return
	}

	if _, err := m.profiles.Create(ctx, &model.Profile{ID: u.ID, Email: u.Email}); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			if _, gerr := m.profiles.GetByID(ctx, u.ID); gerr == nil {
				log.Debug("profile created concurrently")
				return
			}
		}
		log.Error("profile create failed", zap.Error(err))
		return
	}
	log.Info("profile created", zap.String("email", u.Email))
	m.copyMetadata(ctx, log, u.ID, u.Metadata)
}

// copyMetadata fills the new profile from sign-up metadata. The profile row
// exists by then, so a taken username only loses the name.
func (m *Manager) copyMetadata(ctx context.Context, log *zap.Logger, id uuid.UUID, meta model.UserMetadata) {
	var patch model.ProfilePatch
	if meta.Username != "" {
		patch.Username = &meta.Username
	}
	if meta.FullName != "" {
		patch.FullName = &meta.FullName
	}
	if patch == (model.ProfilePatch{}) {
		return
	}
	if _, err := m.profiles.Update(ctx, id, patch); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) && patch.Username != nil {
			log.Warn("profile username taken", zap.String("username", meta.Username))
			patch.Username = nil
			if patch.FullName == nil {
				return
			}
			if _, err = m.profiles.Update(ctx, id, patch); err == nil {
				return
			}
		}
		log.Error("profile metadata copy failed", zap.Error(err))
	}
}

func (m *Manager) set(u *model.SessionUser) {
	m.mu.Lock()
	m.user = u
	m.loading = false
	st := m.stateLocked()
	ws := make([]func(State), 0, len(m.watchers))
	for i := 1; i <= m.nextW; i++ {
		if w, ok := m.watchers[i]; ok {
			ws = append(ws, w)
		}
	}
	m.mu.Unlock()

	for _, w := range ws {
		w(st)
	}
}

func (m *Manager) stateLocked() State {
	st := State{Loading: m.loading}
	if m.user != nil {
		c := *m.user
		st.User = &c
	}
	return st
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

// User returns the tracked user or nil.
func (m *Manager) User() *model.SessionUser { return m.State().User }

// Watch calls fn after every state change until the returned function is called.
func (m *Manager) Watch(fn func(State)) func() {
	m.mu.Lock()
	m.nextW++
	id := m.nextW
	m.watchers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}
}

// SignUp delegates to the provider.
func (m *Manager) SignUp(ctx context.Context, email, password string, meta model.UserMetadata) (*model.SessionUser, error) {
	return m.provider.SignUp(ctx, email, password, meta)
}

// SignIn delegates to the provider; the resulting event updates the tracked user.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	return m.provider.SignIn(ctx, email, password)
}

// SignOut delegates to the provider; the resulting event clears the tracked user.
func (m *Manager) SignOut(ctx context.Context) error {
	return m.provider.SignOut(ctx)
}

// Close disposes the auth subscription. Later events do not change state.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	dispose := m.dispose
	m.dispose = nil
	m.mu.Unlock()
	if dispose != nil {
		dispose()
	}
}
