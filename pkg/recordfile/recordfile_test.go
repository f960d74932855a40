package recordfile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "recordfile_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return New(dir)
}

func TestCreateFileAndIsEmpty(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateFile("leaf1"))

	empty, err := s.IsEmpty("leaf1")
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestWriteLineUpsertAndSortedOrder(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFile("leaf1"))

	require.NoError(t, s.WriteLine("leaf1", 5, "five"))
	require.NoError(t, s.WriteLine("leaf1", 1, "one"))
	require.NoError(t, s.WriteLine("leaf1", 3, "three"))
	require.NoError(t, s.WriteLine("leaf1", 3, "THREE")) // upsert replaces

	entries, err := s.ReadAll("leaf1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []Entry{
		{Key: 1, Line: "one"},
		{Key: 3, Line: "THREE"},
		{Key: 5, Line: "five"},
	}, entries)
}

func TestReadLineNotFound(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFile("leaf1"))
	require.NoError(t, s.WriteLine("leaf1", 1, "one"))

	_, ok, err := s.ReadLine("leaf1", 99)
	require.NoError(t, err)
	assert.False(t, ok)

	line, ok, err := s.ReadLine("leaf1", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "one", line)
}

func TestDeleteLinesRemovesFileWhenEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFile("leaf1"))
	require.NoError(t, s.WriteLine("leaf1", 1, "one"))

	require.NoError(t, s.DeleteLines("leaf1", []int32{1}))

	empty, err := s.IsEmpty("leaf1")
	require.NoError(t, err)
	assert.True(t, empty)

	_, err = os.Stat(s.path("leaf1"))
	assert.True(t, os.IsNotExist(err))
}

func TestMoveLines(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFile("src"))
	require.NoError(t, s.CreateFile("dst"))
	require.NoError(t, s.WriteLine("src", 1, "one"))
	require.NoError(t, s.WriteLine("src", 2, "two"))
	require.NoError(t, s.WriteLine("src", 3, "three"))

	require.NoError(t, s.MoveLines("src", "dst", []int32{2, 3}))

	srcEntries, err := s.ReadAll("src")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Key: 1, Line: "one"}}, srcEntries)

	dstEntries, err := s.ReadAll("dst")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Key: 2, Line: "two"}, {Key: 3, Line: "three"}}, dstEntries)
}

func TestMergeFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFile("taker"))
	require.NoError(t, s.CreateFile("giver"))
	require.NoError(t, s.WriteLine("taker", 1, "one"))
	require.NoError(t, s.WriteLine("giver", 2, "two"))
	require.NoError(t, s.WriteLine("giver", 3, "three"))

	require.NoError(t, s.MergeFiles("taker", "giver"))

	takerEntries, err := s.ReadAll("taker")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Key: 1, Line: "one"},
		{Key: 2, Line: "two"},
		{Key: 3, Line: "three"},
	}, takerEntries)

	_, err = os.Stat(s.path("giver"))
	assert.True(t, os.IsNotExist(err))
}

func TestVerify(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateFile("leaf1"))
	require.NoError(t, s.WriteLine("leaf1", 1, "one"))
	require.NoError(t, s.WriteLine("leaf1", 2, "two"))

	assert.NoError(t, s.Verify("leaf1", []int32{1, 2}))
	assert.Error(t, s.Verify("leaf1", []int32{1, 99}))
}
