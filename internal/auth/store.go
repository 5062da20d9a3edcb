package auth

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/and161185/inkwell/internal/model"
	"github.com/gofrs/uuid/v5"
)

// SessionStore persists the single local session between runs.
type SessionStore interface {
	// Load returns the stored session or nil when none is stored.
	Load() (*model.Session, error)
	// Save replaces the stored session.
	Save(s *model.Session) error
	// Clear forgets the stored session.
	Clear() error
}

type sessionFile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
}

// FileStore keeps the session as JSON in a 0600 file.
type FileStore struct{ path string }

// NewFileStore stores the session in dir/session.json.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "session.json")}
}

// Path returns the session file location.
func (f *FileStore) Path() string { return f.path }

// Load reads the session file.
func (f *FileStore) Load() (*model.Session, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sf sessionFile
	if err := json.Unmarshal(b, &sf); err != nil {
		return nil, err
	}
	if sf.AccessToken == "" {
		return nil, nil
	}
	id, err := uuid.FromString(sf.UserID)
	if err != nil {
		return nil, err
	}
	return &model.Session{
		AccessToken:  sf.AccessToken,
		RefreshToken: sf.RefreshToken,
		ExpiresAt:    sf.ExpiresAt,
		User: model.SessionUser{
			ID:       id,
			Email:    sf.Email,
			Metadata: model.UserMetadata{Username: sf.Username, FullName: sf.FullName},
		},
	}, nil
}

// Save writes the session file, creating its directory.
func (f *FileStore) Save(s *model.Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sessionFile{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
		UserID:       s.User.ID.String(),
		Email:        s.User.Email,
		Username:     s.User.Metadata.Username,
		FullName:     s.User.Metadata.FullName,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}

// Clear removes the session file. A missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	sess *model.Session
}

// Load returns a copy of the held session.
func (m *MemoryStore) Load() (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	c := *m.sess
	return &c, nil
}

// Save holds a copy of s.
func (m *MemoryStore) Save(s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	m.sess = &c
	return nil
}

// Clear drops the held session.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
