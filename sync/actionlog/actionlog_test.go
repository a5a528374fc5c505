package actionlog

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WeiqiJust/NDN-Repo/sync/action"
)

func digest(b byte) [32]byte {
	return sha256.Sum256([]byte{b})
}

func TestAppendAndLookups(t *testing.T) {
	l := New([32]byte{})
	require.Equal(t, 1, l.Len())

	e1 := action.Entry{Creator: "/repo/0", Seq: 1, Kind: action.Insertion, DataName: "/example/data/1"}
	d1 := digest(1)
	l.Append(d1, e1)

	idx, ok := l.LookupDigest(d1)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	rec, ok := l.LookupName(e1.Name())
	require.True(t, ok)
	require.Equal(t, e1, rec.Entry)

	_, ok = l.LookupDigest(digest(99))
	require.False(t, ok)

	rec, ok = l.LookupCreatorSeq("/repo/0", 1)
	require.True(t, ok)
	require.Equal(t, e1, rec.Entry)
	_, ok = l.LookupCreatorSeq("/repo/0", 2)
	require.False(t, ok)
}

func TestAfterReturnsSuffix(t *testing.T) {
	l := New([32]byte{})
	e1 := action.Entry{Creator: "/repo/0", Seq: 1, Kind: action.Insertion, DataName: "/a"}
	e2 := action.Entry{Creator: "/repo/0", Seq: 2, Kind: action.Insertion, DataName: "/b"}
	l.Append(digest(1), e1)
	l.Append(digest(2), e2)

	after := l.After(0)
	require.Len(t, after, 2)
	require.Equal(t, e1, after[0].Entry)
	require.Equal(t, e2, after[1].Entry)

	require.Empty(t, l.After(2))
}

func TestReinitializeClearsToSentinel(t *testing.T) {
	l := New([32]byte{})
	l.Append(digest(1), action.Entry{Creator: "/repo/0", Seq: 1, Kind: action.Insertion, DataName: "/a"})
	require.Equal(t, 2, l.Len())

	newDigest := digest(7)
	l.Reinitialize(newDigest)
	require.Equal(t, 1, l.Len())
	idx, ok := l.LookupDigest(newDigest)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}
