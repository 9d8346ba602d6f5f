package selection_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruminaider/confcascade/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]selection.Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := selection.OpenSQLite(filepath.Join(dir, "db", "selections.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]selection.Store{
		"memory": selection.NewMemoryStore(),
		"file":   selection.NewFileStore(filepath.Join(dir, "nested", "selections.yaml")),
		"sqlite": sqlite,
	}
}

func TestStores(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(selection.OrgNamespace, "ws")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(selection.OrgNamespace, "ws", "acme"))
			require.NoError(t, s.Set(selection.ProfileNamespace, "ws", "p1:::p2"))

			v, ok, err := s.Get(selection.OrgNamespace, "ws")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "acme", v)

			// Namespaces are independent.
			v, _, err = s.Get(selection.ProfileNamespace, "ws")
			require.NoError(t, err)
			assert.Equal(t, "p1:::p2", v)

			require.NoError(t, s.Set(selection.OrgNamespace, "ws", "personal"))
			v, _, err = s.Get(selection.OrgNamespace, "ws")
			require.NoError(t, err)
			assert.Equal(t, "personal", v)

			// Empty values are stored, not treated as missing.
			require.NoError(t, s.Set(selection.ProfileNamespace, "empty", ""))
			v, ok, err = s.Get(selection.ProfileNamespace, "empty")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selections.yaml")
	require.NoError(t, selection.NewFileStore(path).Set(selection.OrgNamespace, "/a&/b", "acme"))

	v, ok, err := selection.NewFileStore(path).Get(selection.OrgNamespace, "/a&/b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "acme", v)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selections.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0644))

	_, _, err := selection.NewFileStore(path).Get(selection.OrgNamespace, "ws")
	assert.Error(t, err)
}

func TestSQLiteStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selections.db")
	s, err := selection.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(selection.OrgNamespace, "ws", "acme"))
	require.NoError(t, s.Close())

	s, err = selection.OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(selection.OrgNamespace, "ws")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "acme", v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := selection.Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &selection.MemoryStore{}, s)

	s, err = selection.Open("", filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)
	assert.IsType(t, &selection.FileStore{}, s)

	s, err = selection.Open("SQLite", filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.IsType(t, &selection.SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = selection.Open("etcd", "")
	assert.True(t, errors.Is(err, selection.ErrUnknownBackend))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "/a&/b", selection.WorkspaceID([]string{"/a", "/b"}))
	assert.Equal(t, "/a&/b:::acme", selection.ProfileKey("/a&/b", "acme"))
}
