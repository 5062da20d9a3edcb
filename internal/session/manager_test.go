package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/and161185/inkwell/internal/auth"
	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeProfiles struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]model.Profile
	getErr  error
	creErr  error
	racing  bool // Create stores the row, then reports a unique violation
	creates []model.Profile
	updates []model.ProfilePatch
}

var _ repository.ProfileRepository = (*fakeProfiles)(nil)

func newFakeProfiles() *fakeProfiles { return &fakeProfiles{rows: map[uuid.UUID]model.Profile{}} }

// usernameTaken mirrors the UNIQUE constraint on user_profiles.username.
func (f *fakeProfiles) usernameTaken(id uuid.UUID, name *string) bool {
	if name == nil {
		return false
	}
	for _, r := range f.rows {
		if r.ID != id && r.Username != nil && *r.Username == *name {
			return true
		}
	}
	return false
}

func (f *fakeProfiles) Create(_ context.Context, p *model.Profile) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, *p)
	if f.creErr != nil {
		return nil, f.creErr
	}
	if f.racing {
		f.rows[p.ID] = *p
		return nil, errs.ErrAlreadyExists
	}
	if _, ok := f.rows[p.ID]; ok {
		return nil, errs.ErrAlreadyExists
	}
	if f.usernameTaken(p.ID, p.Username) {
		return nil, errs.ErrAlreadyExists
	}
	f.rows[p.ID] = *p
	c := *p
	return &c, nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) Update(_ context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, patch)
	p, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if f.usernameTaken(id, patch.Username) {
		return nil, errs.ErrAlreadyExists
	}
	if patch.Username != nil {
		p.Username = patch.Username
	}
	if patch.FullName != nil {
		p.FullName = patch.FullName
	}
	f.rows[id] = p
	c := p
	return &c, nil
}

func (f *fakeProfiles) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

type fakeProvider struct {
	auth.Hub
	current    *model.SessionUser
	currentErr error
	gate       chan struct{}

	signIns int
}

var _ auth.Provider = (*fakeProvider)(nil)

func (p *fakeProvider) CurrentUser(context.Context) (*model.SessionUser, error) {
	if p.gate != nil {
		<-p.gate
	}
	return p.current, p.currentErr
}
func (p *fakeProvider) SignUp(_ context.Context, email, _ string, meta model.UserMetadata) (*model.SessionUser, error) {
	return &model.SessionUser{ID: uuid.Must(uuid.NewV4()), Email: email, Metadata: meta}, nil
}
func (p *fakeProvider) SignIn(_ context.Context, email, _ string) (*model.Session, error) {
	p.signIns++
	s := &model.Session{User: model.SessionUser{ID: uuid.Must(uuid.NewV4()), Email: email}}
	p.Publish(model.EventSignedIn, s)
	return s, nil
}
func (p *fakeProvider) SignOut(context.Context) error {
	p.Publish(model.EventSignedOut, nil)
	return nil
}
func (p *fakeProvider) Refresh(context.Context) (*model.Session, error) { return nil, errs.ErrNoSession }
func (p *fakeProvider) UpdateUser(context.Context, model.UserMetadata) (*model.SessionUser, error) {
	return nil, errs.ErrNoSession
}

func user(email string) *model.SessionUser {
	return &model.SessionUser{ID: uuid.Must(uuid.NewV4()), Email: email}
}

func TestManager_NewIsLoading(t *testing.T) {
	m := New(&fakeProvider{}, newFakeProfiles(), nil)
	st := m.State()
	require.True(t, st.Loading)
	require.Nil(t, st.User)
}

func TestManager_Start_NoUser(t *testing.T) {
	prof := newFakeProfiles()
	p := &fakeProvider{}
	m := New(p, prof, nil)

	require.NoError(t, m.Start(context.Background()))
	st := m.State()
	require.False(t, st.Loading)
	require.Nil(t, st.User)
	require.Zero(t, prof.createCount())
	require.Equal(t, 1, p.Len())
}

func TestManager_Start_LookupErrorClearsLoading(t *testing.T) {
	boom := errors.New("network down")
	m := New(&fakeProvider{currentErr: boom}, newFakeProfiles(), nil)

	require.ErrorIs(t, m.Start(context.Background()), boom)
	require.False(t, m.State().Loading)
	require.Nil(t, m.User())
}

func TestManager_Start_LoadingUntilLookupReturns(t *testing.T) {
	p := &fakeProvider{gate: make(chan struct{}), current: user("a@x.com")}
	m := New(p, newFakeProfiles(), nil)

	done := make(chan error)
	go func() { done <- m.Start(context.Background()) }()

	require.True(t, m.State().Loading)
	close(p.gate)
	require.NoError(t, <-done)
	require.False(t, m.State().Loading)
	require.NotNil(t, m.User())
}

func TestManager_Start_ReconcilesMissingProfile(t *testing.T) {
	prof := newFakeProfiles()
	u := user("a@x.com")
	u.Metadata = model.UserMetadata{Username: "alice", FullName: "Alice A"}
	m := New(&fakeProvider{current: u}, prof, nil)

	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, 1, prof.createCount())
	got := prof.rows[u.ID]
	require.Equal(t, "a@x.com", got.Email)
	require.Equal(t, "alice", *got.Username)
	require.Equal(t, "Alice A", *got.FullName)
}

func TestManager_SignIn_InsertsExactlyOneProfile(t *testing.T) {
	prof := newFakeProfiles()
	p := &fakeProvider{}
	m := New(p, prof, nil)
	require.NoError(t, m.Start(context.Background()))

	sess, err := m.SignIn(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	require.Equal(t, 1, prof.createCount())
	require.Equal(t, sess.User.ID, prof.creates[0].ID)
	require.Equal(t, "a@x.com", prof.creates[0].Email)
	require.Equal(t, sess.User.ID, m.User().ID)
}

func TestManager_ExistingProfileNotInserted(t *testing.T) {
	prof := newFakeProfiles()
	p := &fakeProvider{}
	m := New(p, prof, nil)
	require.NoError(t, m.Start(context.Background()))

	s := &model.Session{User: *user("a@x.com")}
	prof.rows[s.User.ID] = model.Profile{ID: s.User.ID, Email: "a@x.com"}
	p.Publish(model.EventSignedIn, s)
	p.Publish(model.EventTokenRefreshed, s)

	require.Zero(t, prof.createCount())
	require.Equal(t, s.User.ID, m.User().ID)
}

func TestManager_SignOut_ClearsUser(t *testing.T) {
	p := &fakeProvider{current: user("a@x.com")}
	m := New(p, newFakeProfiles(), nil)
	require.NoError(t, m.Start(context.Background()))
	require.NotNil(t, m.User())

	require.NoError(t, m.SignOut(context.Background()))
	st := m.State()
	require.Nil(t, st.User)
	require.False(t, st.Loading)
}

func TestManager_ReconcileFailuresAreLoggedOnly(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prof := newFakeProfiles()
	p := &fakeProvider{}
	m := New(p, prof, zap.New(core))
	require.NoError(t, m.Start(context.Background()))

	prof.getErr = errors.New("select failed")
	p.Publish(model.EventSignedIn, &model.Session{User: *user("a@x.com")})
	require.Zero(t, prof.createCount(), "lookup error must not lead to insert")
	require.Equal(t, 1, logs.FilterMessage("profile lookup failed").Len())

	prof.getErr = nil
	prof.creErr = errors.New("insert failed")
	p.Publish(model.EventSignedIn, &model.Session{User: *user("b@x.com")})
	require.Equal(t, 1, prof.createCount(), "no retry")
	require.Equal(t, 1, logs.FilterMessage("profile create failed").Len())

	prof.creErr = nil
	prof.racing = true
	c := user("c@x.com")
	p.Publish(model.EventSignedIn, &model.Session{User: *c})
	entries := logs.FilterMessage("profile created concurrently").All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.DebugLevel, entries[0].Level)
	_, err := prof.GetByID(context.Background(), c.ID)
	require.NoError(t, err)

	require.NotNil(t, m.User())
}

func TestManager_UniqueViolationWithoutRowIsAnError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prof := newFakeProfiles()
	prof.creErr = errs.ErrAlreadyExists
	m := New(&fakeProvider{current: user("a@x.com")}, prof, zap.New(core))

	require.NoError(t, m.Start(context.Background()))
	require.Zero(t, logs.FilterMessage("profile created concurrently").Len())
	entries := logs.FilterMessage("profile create failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.ErrorLevel, entries[0].Level)
}

func TestManager_TakenUsernameStillCreatesProfile(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prof := newFakeProfiles()
	alice := "alice"
	owner := uuid.Must(uuid.NewV4())
	prof.rows[owner] = model.Profile{ID: owner, Email: "alice@x.com", Username: &alice}

	bob := user("bob@x.com")
	bob.Metadata = model.UserMetadata{Username: "alice", FullName: "Bob B"}
	m := New(&fakeProvider{current: bob}, prof, zap.New(core))
	require.NoError(t, m.Start(context.Background()))

	got, err := prof.GetByID(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Equal(t, "bob@x.com", got.Email)
	require.Nil(t, got.Username)
	require.Equal(t, "Bob B", *got.FullName)
	require.Equal(t, 1, prof.createCount())
	require.Equal(t, 1, logs.FilterMessage("profile username taken").Len())
	require.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestManager_SignUpWithTakenUsername_EndToEnd(t *testing.T) {
	ctx := context.Background()
	prof := newFakeProfiles()
	provider := auth.NewClient(
		&memIdentities{rows: map[string]model.Identity{}},
		auth.NewTokens([]byte("k"), time.Minute, time.Hour),
		&auth.MemoryStore{}, nil, nil, "test", nil,
	)
	m := New(provider, prof, nil)
	require.NoError(t, m.Start(ctx))
	defer m.Close()

	for _, email := range []string{"alice@x.com", "bob@x.com"} {
		su, err := m.SignUp(ctx, email, "secret1", model.UserMetadata{Username: "alice"})
		require.NoError(t, err)
		_, err = m.SignIn(ctx, email, "secret1")
		require.NoError(t, err)

		p, err := prof.GetByID(ctx, su.ID)
		require.NoError(t, err, email)
		require.Equal(t, email, p.Email)
		require.NoError(t, m.SignOut(ctx))
	}
}

func TestManager_WatchAndClose(t *testing.T) {
	p := &fakeProvider{}
	m := New(p, newFakeProfiles(), nil)

	var seen []State
	stop := m.Watch(func(s State) { seen = append(seen, s) })
	require.NoError(t, m.Start(context.Background()))
	require.Len(t, seen, 1)

	p.Publish(model.EventSignedIn, &model.Session{User: *user("a@x.com")})
	require.Len(t, seen, 2)
	require.NotNil(t, seen[1].User)

	stop()
	p.Publish(model.EventSignedOut, nil)
	require.Len(t, seen, 2)
	require.Nil(t, m.User())

	m.Close()
	require.Zero(t, p.Len())
	p.Publish(model.EventSignedIn, &model.Session{User: *user("b@x.com")})
	require.Nil(t, m.User())
	m.Close()
}

type memIdentities struct {
	mu   sync.Mutex
	rows map[string]model.Identity
}

var _ repository.IdentityRepository = (*memIdentities)(nil)

func (r *memIdentities) Create(_ context.Context, id *model.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id.Email]; ok {
		return errs.ErrAlreadyExists
	}
	r.rows[id.Email] = *id
	return nil
}
func (r *memIdentities) GetByID(_ context.Context, id uuid.UUID) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.rows {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (r *memIdentities) GetByEmail(_ context.Context, email string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.rows[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &it, nil
}
func (r *memIdentities) TouchSignIn(context.Context, uuid.UUID) error { return nil }
func (r *memIdentities) UpdateMetadata(context.Context, uuid.UUID, model.UserMetadata) error {
	return nil
}

func TestManager_SignUpThenSignIn_EndToEnd(t *testing.T) {
	ctx := context.Background()
	prof := newFakeProfiles()
	provider := auth.NewClient(
		&memIdentities{rows: map[string]model.Identity{}},
		auth.NewTokens([]byte("k"), time.Minute, time.Hour),
		&auth.MemoryStore{}, nil, nil, "test", nil,
	)
	m := New(provider, prof, nil)
	require.NoError(t, m.Start(ctx))
	defer m.Close()

	su, err := m.SignUp(ctx, "a@x.com", "secret1", model.UserMetadata{})
	require.NoError(t, err)
	require.Nil(t, m.User(), "sign-up alone does not sign in")

	_, err = m.SignIn(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	u := m.User()
	require.NotNil(t, u)
	require.Equal(t, su.ID, u.ID)
	p, err := prof.GetByID(ctx, su.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", p.Email)
	require.Equal(t, 1, prof.createCount())

	require.NoError(t, m.SignOut(ctx))
	require.Nil(t, m.User())
}
