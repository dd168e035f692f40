package kv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "board.db")

	store, err := Open(path, "")
	require.NoError(t, err)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put("todolist_admin_auth", []byte("true")))
	require.NoError(t, store.Close())

	store, err = Open(path, "")
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.Get("todolist_admin_auth")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", string(v))
}

func TestStore_Delete(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "board.db"), "prefs")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put("k", []byte("v")))
	require.NoError(t, store.Delete("k"))
	require.NoError(t, store.Delete("k"))

	_, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_NilIsNotOpen(t *testing.T) {
	var store *Store
	assert.Error(t, store.Put("k", nil))
	assert.NoError(t, store.Close())
}
