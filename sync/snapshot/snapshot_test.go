package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WeiqiJust/NDN-Repo/store"
	"github.com/WeiqiJust/NDN-Repo/sync/tree"
)

func TestBuildFlattensStoreAndTree(t *testing.T) {
	st, err := store.Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.InsertData("/a", []byte("1")))
	require.NoError(t, st.InsertData("/b", []byte("2")))
	require.NoError(t, st.DeleteData("/b"))

	tr := tree.New()
	require.NoError(t, tr.Update("/repo/0", 1))
	require.NoError(t, tr.Update("/repo/0", 2))

	b := NewBuilder()
	msg := b.Build(st, tr, "/repo/0")

	require.Len(t, msg.Snap.Data, 2)
	require.Len(t, msg.Snap.Tree, 1)
	require.Equal(t, uint64(2), msg.Snap.Tree[0].Last)
	require.Equal(t, "/repo/0", msg.Snap.SnapshotCreator)
	require.Equal(t, uint64(1), msg.Snap.SnapshotSeq)

	node, ok := tr.Lookup("/repo/0")
	require.True(t, ok)
	require.Equal(t, uint64(2), node.First, "UpdateForSnapshot should advance first to last")
}

func TestBuildAdvancesSeqEachCall(t *testing.T) {
	st, err := store.Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer st.Close()
	tr := tree.New()

	b := NewBuilder()
	first := b.Build(st, tr, "/repo/0")
	second := b.Build(st, tr, "/repo/0")
	require.Less(t, first.Snap.SnapshotSeq, second.Snap.SnapshotSeq)
}

func TestCachedReflectsLastBuild(t *testing.T) {
	st, err := store.Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer st.Close()
	tr := tree.New()

	b := NewBuilder()
	_, _, ok := b.Cached()
	require.False(t, ok)

	built := b.Build(st, tr, "/repo/0")
	msg, raw, ok := b.Cached()
	require.True(t, ok)
	require.Equal(t, built, msg)
	require.NotEmpty(t, raw)
}

func TestDedupCanonicalizesCreatorName(t *testing.T) {
	d := NewDedup()
	require.False(t, d.SeenOrRecord(Identity{Creator: "/repo/0", Seq: 1}))
	require.True(t, d.SeenOrRecord(Identity{Creator: "/repo/0/", Seq: 1}))
	require.False(t, d.SeenOrRecord(Identity{Creator: "/repo/0", Seq: 2}))
}

func TestDedupForgetAllowsReplay(t *testing.T) {
	d := NewDedup()
	id := Identity{Creator: "/repo/0", Seq: 1}
	require.False(t, d.SeenOrRecord(id))
	d.Forget(id)
	require.False(t, d.SeenOrRecord(id))
}
