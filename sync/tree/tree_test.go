package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootDigestOrderIndependent(t *testing.T) {
	a := New()
	require.NoError(t, a.Update("/repo/0", 1))
	require.NoError(t, a.Update("/repo/1", 1))
	require.NoError(t, a.Update("/repo/0", 2))

	b := New()
	require.NoError(t, b.Update("/repo/1", 1))
	require.NoError(t, b.Update("/repo/0", 1))
	require.NoError(t, b.Update("/repo/0", 2))

	require.Equal(t, a.RootDigest(), b.RootDigest())
}

func TestUpdateRejectsNonInitialSeqForNewCreator(t *testing.T) {
	tr := New()
	require.Error(t, tr.Update("/repo/9", 5))
}

func TestUpdateForSnapshotMarksBoundary(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Update("/repo/0", 1))
	require.NoError(t, tr.Update("/repo/0", 2))
	before := tr.RootDigest()

	tr.UpdateForSnapshot()

	n, ok := tr.Lookup("/repo/0")
	require.True(t, ok)
	require.Equal(t, uint64(2), n.First)
	require.Equal(t, uint64(2), n.Last)
	require.Equal(t, before, tr.RootDigest(), "UpdateForSnapshot must not change the digest")
}

func TestAddNodeThenUpdate(t *testing.T) {
	tr := New()
	tr.AddNode("/repo/2")
	n, ok := tr.Lookup("/repo/2")
	require.True(t, ok)
	require.Equal(t, uint64(0), n.Last)

	require.NoError(t, tr.Update("/repo/2", 1))
	n, _ = tr.Lookup("/repo/2")
	require.Equal(t, uint64(1), n.Last)
}

func TestInitialDigestMatchesEmptyTree(t *testing.T) {
	require.Equal(t, New().RootDigest(), InitialDigest())
}
