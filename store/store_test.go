package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertGetDeleteStatusLifecycle(t *testing.T) {
	s, err := Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, StatusNone, s.GetDataStatus("/a"))

	require.NoError(t, s.InsertData("/a", []byte("hello")))
	require.Equal(t, StatusInserted, s.GetDataStatus("/a"))
	v, ok := s.Get("/a")
	require.True(t, ok)
	require.Equal(t, []byte("hello"), v)

	require.NoError(t, s.DeleteData("/a"))
	require.Equal(t, StatusDeleted, s.GetDataStatus("/a"))
	_, ok = s.Get("/a")
	require.False(t, ok)
}

func TestSeedMarksExisted(t *testing.T) {
	s, err := Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Seed("/b", []byte("preloaded")))
	require.Equal(t, StatusExisted, s.GetDataStatus("/b"))
}

func TestDataEnumeration(t *testing.T) {
	s, err := Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.InsertData("/a", []byte("1")))
	require.NoError(t, s.InsertData("/b", []byte("2")))
	require.NoError(t, s.DeleteData("/b"))

	seen := map[string]Status{}
	s.DataEnumeration(func(name string, status Status) { seen[name] = status })

	require.Equal(t, StatusInserted, seen["/a"])
	require.Equal(t, StatusDeleted, seen["/b"])
}

func TestHotCacheHitsMisses(t *testing.T) {
	s, err := Open(t.TempDir(), 1<<20)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.InsertData("/a", []byte("hello")))
	_, _ = s.Get("/a")
	_, _ = s.Get("/a")

	hits, _ := s.Efficiency()
	require.GreaterOrEqual(t, hits, 1)
}
