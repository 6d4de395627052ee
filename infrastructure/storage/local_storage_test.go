package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/pkg/utils"
)

func TestLocalStorage_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(LocalStorageConfig{BasePath: dir, BaseURL: "http://localhost:3000/exports/"})
	require.NoError(t, err)
	assert.Equal(t, "local", store.Provider())

	url, err := store.Put(context.Background(), "/snapshots//20250101T000000Z/users.json", strings.NewReader(`[]`), 2, "application/json")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/exports/snapshots/20250101T000000Z/users.json", url)

	data, err := os.ReadFile(filepath.Join(dir, "snapshots", "20250101T000000Z", "users.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	// overwrite replaces the object
	_, err = store.Put(context.Background(), "snapshots/20250101T000000Z/users.json", strings.NewReader(`[1]`), -1, "application/json")
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, "snapshots", "20250101T000000Z", "users.json"))
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(data))
}

func TestLocalStorage_RejectsUnsafeKeys(t *testing.T) {
	store, err := NewLocalStorage(LocalStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.json", strings.NewReader("x"), 1, "application/json")
	assert.ErrorIs(t, err, utils.ErrUnsafePath)

	_, err = store.Put(context.Background(), "", strings.NewReader("x"), 1, "application/json")
	assert.ErrorIs(t, err, utils.ErrEmptyPath)
}

func TestLocalStorage_URLWithoutBase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(LocalStorageConfig{BasePath: dir})
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "a/b.json", strings.NewReader("{}"), 2, "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "a/b.json")), url)
}
