package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/and161185/inkwell/internal/model"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoadClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inkwell")
	st := NewFileStore(dir)
	require.Equal(t, filepath.Join(dir, "session.json"), st.Path())

	got, err := st.Load()
	require.NoError(t, err)
	require.Nil(t, got)

	u := testUser()
	u.Metadata = model.UserMetadata{Username: "alice", FullName: "Alice A"}
	s := &model.Session{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Minute).Truncate(time.Second), User: u}
	require.NoError(t, st.Save(s))

	fi, err := os.Stat(st.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	got, err = st.Load()
	require.NoError(t, err)
	require.Equal(t, s.AccessToken, got.AccessToken)
	require.Equal(t, s.RefreshToken, got.RefreshToken)
	require.True(t, s.ExpiresAt.Equal(got.ExpiresAt))
	require.Equal(t, u, got.User)

	require.NoError(t, st.Clear())
	require.NoError(t, st.Clear())
	got, err = st.Load()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir)
	require.NoError(t, os.WriteFile(st.Path(), []byte("{"), 0o600))
	_, err := st.Load()
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	var m MemoryStore
	got, err := m.Load()
	require.NoError(t, err)
	require.Nil(t, got)

	s := &model.Session{AccessToken: "a"}
	require.NoError(t, m.Save(s))
	s.AccessToken = "mutated"
	got, _ = m.Load()
	require.Equal(t, "a", got.AccessToken)

	require.NoError(t, m.Clear())
	got, _ = m.Load()
	require.Nil(t, got)
}
