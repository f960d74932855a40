package registry

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dir, err := os.MkdirTemp("", "registry_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	r, err := Open(Config{
		BaseDir:       dir,
		MaxDatasets:   10,
		IdleTimeout:   50 * time.Millisecond,
		EvictInterval: 10 * time.Millisecond,
		DefaultOrder:  4,
	})
	require.NoError(t, err)
	return r
}

func TestCreateResolveSearch(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("widgets", 4))

	n, err := r.BulkInsert("widgets", []KeyLine{{1, "one"}, {2, "two"}, {3, "three"}})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	line, ok, err := r.Search("widgets", 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", line)
}

func TestCreateDuplicateRejected(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("widgets", 4))

	err := r.Create("widgets", 4)
	require.Error(t, err)
}

func TestCreateRejectsSmallOrder(t *testing.T) {
	r := newTestRegistry(t)
	require.Error(t, r.Create("widgets", 2))
}

func TestDeleteRemovesDataset(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("widgets", 4))
	require.NoError(t, r.Delete("widgets"))

	_, err := r.Search("widgets", 1)
	require.Error(t, err)
}

func TestDeleteUnknownNotFound(t *testing.T) {
	r := newTestRegistry(t)
	require.Error(t, r.Delete("ghost"))
}

func TestCapacityExceeded(t *testing.T) {
	dir, err := os.MkdirTemp("", "registry_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	r, err := Open(Config{BaseDir: dir, MaxDatasets: 1, DefaultOrder: 4})
	require.NoError(t, err)

	require.NoError(t, r.Create("a", 4))
	require.Error(t, r.Create("b", 4))
}

func TestResolveReloadsAfterEviction(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("widgets", 4))
	_, err := r.BulkInsert("widgets", []KeyLine{{1, "one"}})
	require.NoError(t, err)

	r.evictIdle() // loaded but refCount 0 and lastAccessed well within timeout: no-op
	line, ok, err := r.Search("widgets", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", line)

	// Force staleness directly to exercise the evictor's unload path.
	r.mu.Lock()
	r.entries["widgets"].lastAccessed = time.Now().Add(-time.Hour)
	r.mu.Unlock()
	r.evictIdle()

	r.mu.Lock()
	loaded := r.entries["widgets"].loaded
	r.mu.Unlock()
	require.False(t, loaded)

	// resolve() transparently reloads from disk.
	line, ok, err = r.Search("widgets", 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", line)
}

func TestEvictorDoesNotUnloadHeldHandle(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("widgets", 4))

	h, err := r.Resolve("widgets")
	require.NoError(t, err)

	r.mu.Lock()
	r.entries["widgets"].lastAccessed = time.Now().Add(-time.Hour)
	r.mu.Unlock()
	r.evictIdle()

	r.mu.Lock()
	loaded := r.entries["widgets"].loaded
	r.mu.Unlock()
	require.True(t, loaded, "evictor must not unload a tree with an outstanding handle")

	h.Release()
}

func TestRangeAndDeleteKey(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Create("widgets", 4))
	_, err := r.BulkInsert("widgets", []KeyLine{{1, "a"}, {2, "b"}, {3, "c"}})
	require.NoError(t, err)

	entries, err := r.Range("widgets", 1, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, r.DeleteKey("widgets", 2))
	_, ok, err := r.Search("widgets", 2)
	require.NoError(t, err)
	require.False(t, ok)
}
