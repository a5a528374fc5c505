package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/WeiqiJust/NDN-Repo/sync/action"
	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
)

func TestActionListRoundTrip(t *testing.T) {
	orig := NewActionList(
		action.Entry{Creator: "/repo/0", Seq: 1, Kind: action.Insertion, DataName: "/example/data/1", Version: 1},
		action.Entry{Creator: "/repo/0", Seq: 2, Kind: action.Deletion, DataName: "/example/data/1", Version: 2},
	)
	raw := Encode(orig)
	decoded, err := Decode(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(orig, decoded); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestActionNameListRoundTrip(t *testing.T) {
	orig := NewActionNameList(
		ActionNamePair{Creator: "/repo/0", Seq: 5},
		ActionNamePair{Creator: "/repo/1", Seq: 2},
	)
	raw := Encode(orig)
	decoded, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, orig, decoded)
}

func TestSnapshotRoundTrip(t *testing.T) {
	orig := NewSnapshot(Snapshot{
		Data: []DataStatusPair{
			{DataName: "/example/data/1", Status: StatusInserted},
			{DataName: "/example/data/2", Status: StatusDeleted},
		},
		Tree: []TreeEntry{
			{Creator: "/repo/0", Last: 3},
			{Creator: "/repo/1", Last: 1},
		},
		SnapshotCreator: "/repo/0",
		SnapshotSeq:     4,
	})
	raw := Encode(orig)
	decoded, err := Decode(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(orig, decoded); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTruncatedIsDecodeError(t *testing.T) {
	_, err := Decode([]byte{byte(TypeActionList), 0xFF})
	require.Error(t, err)
	_, isDecodeErr := err.(*syncerr.DecodeError)
	require.True(t, isDecodeErr)
}

func TestDecodeEmptyIsDecodeError(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)
	_, isDecodeErr := err.(*syncerr.DecodeError)
	require.True(t, isDecodeErr)
}

func TestDecodeUnsupportedType(t *testing.T) {
	_, err := Decode([]byte{0xEE})
	require.Error(t, err)
}
