package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the behavior every KeyValueStorage must share.
func exerciseStorage(t *testing.T, s KeyValueStorage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "user")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "user", `{"id":"1","name":"Admin User"}`))
	v, err := s.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1","name":"Admin User"}`, v)

	require.NoError(t, s.Set(ctx, "user", `{"id":"2"}`))
	v, err = s.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"2"}`, v)

	require.NoError(t, s.Set(ctx, "isAuthenticated", "true"))
	require.NoError(t, s.Remove(ctx, "user"))
	_, err = s.Get(ctx, "user")
	assert.ErrorIs(t, err, ErrNotFound)

	v, err = s.Get(ctx, "isAuthenticated")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	// Removing a missing key is a no-op
	assert.NoError(t, s.Remove(ctx, "does-not-exist"))
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	exerciseStorage(t, s)
}

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	defer s.Close()
	exerciseStorage(t, s)
}

func TestLocalStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewLocalStorage(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "token", "abc"))

	second, err := NewLocalStorage(dir)
	require.NoError(t, err)
	v, err := second.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestLocalStorage_CorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, localFileName), []byte("{not json"), 0600))

	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = s.Get(ctx, "token")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStorage(t, s)
}
