package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/gofrs/uuid/v5"
)

type memPosts struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Post
	seq  int

	updates    int
	deletes    int
	incrErr    error
	lastFilter uuid.UUID
}

var _ repository.PostRepository = (*memPosts)(nil)

func newMemPosts() *memPosts { return &memPosts{rows: map[uuid.UUID]model.Post{}} }

func (m *memPosts) sorted(keep func(model.Post) bool, less func(a, b model.Post) bool) []model.Post {
	out := []model.Post{}
	for _, p := range m.rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byPublishedDesc(a, b model.Post) bool {
	if a.PublishedAt == nil || b.PublishedAt == nil {
		return a.PublishedAt != nil
	}
	return a.PublishedAt.After(*b.PublishedAt)
}

func (m *memPosts) ListPublished(context.Context) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(p model.Post) bool { return p.Status == model.StatusPublished }, byPublishedDesc), nil
}

func (m *memPosts) ListPublishedByCategory(_ context.Context, categoryID uuid.UUID) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = categoryID
	return m.sorted(func(p model.Post) bool {
		return p.Status == model.StatusPublished && p.CategoryID != nil && *p.CategoryID == categoryID
	}, byPublishedDesc), nil
}

func (m *memPosts) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(p model.Post) bool { return p.AuthorID == authorID },
		func(a, b model.Post) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (m *memPosts) GetByID(_ context.Context, id uuid.UUID) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func apply(p *model.Post, in model.PostInput) {
	p.Title, p.Slug, p.Excerpt, p.Content = in.Title, in.Slug, in.Excerpt, in.Content
	p.Status, p.CategoryID, p.PublishedAt = in.Status, in.CategoryID, in.PublishedAt
}

func (m *memPosts) Create(_ context.Context, id, authorID uuid.UUID, in model.PostInput) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p := model.Post{ID: id, AuthorID: authorID, CreatedAt: time.Unix(int64(m.seq), 0)}
	apply(&p, in)
	p.UpdatedAt = p.CreatedAt
	m.rows[id] = p
	return &p, nil
}

func (m *memPosts) Update(_ context.Context, id uuid.UUID, in model.PostInput) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	p, ok := m.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	apply(&p, in)
	m.rows[id] = p
	return &p, nil
}

func (m *memPosts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if _, ok := m.rows[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memPosts) IncrementViews(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	p := m.rows[id]
	p.ViewCount++
	m.rows[id] = p
	return p.ViewCount, nil
}

type memCategories struct {
	rows   []model.Category
	getErr error
}

var _ repository.CategoryRepository = (*memCategories)(nil)

func (m *memCategories) List(context.Context) ([]model.Category, error) {
	return append([]model.Category(nil), m.rows...), nil
}
func (m *memCategories) ListWithCounts(ctx context.Context) ([]model.Category, error) {
	return m.List(ctx)
}
func (m *memCategories) GetBySlug(_ context.Context, slug string) (*model.Category, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, c := range m.rows {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}
func (m *memCategories) Create(_ context.Context, c *model.Category) error {
	for _, x := range m.rows {
		if x.Slug == c.Slug {
			return errs.ErrAlreadyExists
		}
	}
	m.rows = append(m.rows, *c)
	return nil
}

type memComments struct {
	rows    map[uuid.UUID]model.Comment
	deletes int
}

var _ repository.CommentRepository = (*memComments)(nil)

func (m *memComments) ListApprovedByPost(_ context.Context, postID uuid.UUID) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range m.rows {
		if c.PostID == postID && c.Status == model.CommentApproved {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
func (m *memComments) GetByID(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &c, nil
}
func (m *memComments) Create(_ context.Context, c *model.Comment) (*model.Comment, error) {
	cp := *c
	cp.CreatedAt = time.Now()
	m.rows[c.ID] = cp
	return &cp, nil
}
func (m *memComments) Delete(_ context.Context, id uuid.UUID) error {
	m.deletes++
	delete(m.rows, id)
	return nil
}

type memProfiles struct {
	rows      map[uuid.UUID]model.Profile
	updateErr error
}

var _ repository.ProfileRepository = (*memProfiles)(nil)

func (m *memProfiles) Create(_ context.Context, p *model.Profile) (*model.Profile, error) {
	m.rows[p.ID] = *p
	return p, nil
}
func (m *memProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}
func (m *memProfiles) Update(_ context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.Profile, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	p, ok := m.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if patch.FullName != nil {
		p.FullName = patch.FullName
	}
	if patch.Username != nil {
		p.Username = patch.Username
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = patch.AvatarURL
	}
	if patch.Bio != nil {
		p.Bio = patch.Bio
	}
	m.rows[id] = p
	return &p, nil
}

type fakeIdentity struct {
	got []model.UserMetadata
	err error
}

func (f *fakeIdentity) UpdateUser(_ context.Context, meta model.UserMetadata) (*model.SessionUser, error) {
	f.got = append(f.got, meta)
	if f.err != nil {
		return nil, f.err
	}
	return &model.SessionUser{Metadata: meta}, nil
}

var errBoom = errors.New("boom")

func newUser(email string) *model.SessionUser {
	return &model.SessionUser{ID: uuid.Must(uuid.NewV4()), Email: email}
}
