package legacy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goblimey/go-tools/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(map[string]string{KeyMembers: "[]"})

	v, ok, err := store.Get(KeyMembers)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	_, ok, err = store.Get(KeyFriends)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyFriends, `[{"a":1}]`))
	v, ok, _ = store.Get(KeyFriends)
	assert.True(t, ok)
	assert.Equal(t, `[{"a":1}]`, v)

	require.NoError(t, store.Delete(KeyMembers))
	require.NoError(t, store.Delete("missing"))
	_, ok, _ = store.Get(KeyMembers)
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	dir, err := testsupport.CreateWorkingDirectory()
	require.NoError(t, err)
	defer testsupport.RemoveWorkingDirectory(dir)

	path := filepath.Join(dir, "legacy.json")
	store := NewFileStore(path)
	assert.Equal(t, path, store.Path())

	// A missing file is an empty store.
	_, ok, err := store.Get(KeyMembers)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyMembers, `[{"nombre":"Ann"}]`))
	require.NoError(t, store.Set(KeyEvents, `[]`))

	// A second store on the same file sees the values.
	other := NewFileStore(path)
	v, ok, err := other.Get(KeyMembers)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"nombre":"Ann"}]`, v)

	require.NoError(t, other.Delete(KeyMembers))
	_, ok, err = store.Get(KeyMembers)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = store.Get(KeyEvents)
	assert.True(t, ok)

	// No temporary files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreBadContents(t *testing.T) {
	dir, err := testsupport.CreateWorkingDirectory()
	require.NoError(t, err)
	defer testsupport.RemoveWorkingDirectory(dir)

	path := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	store := NewFileStore(path)
	_, _, err = store.Get(KeyMembers)
	assert.Error(t, err)
}

func TestFileStoreEmptyFile(t *testing.T) {
	dir, err := testsupport.CreateWorkingDirectory()
	require.NoError(t, err)
	defer testsupport.RemoveWorkingDirectory(dir)

	path := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	store := NewFileStore(path)
	_, ok, err := store.Get(KeyMembers)
	require.NoError(t, err)
	assert.False(t, ok)
}
