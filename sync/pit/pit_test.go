package pit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func d(b byte) [32]byte {
	var out [32]byte
	out[0] = b
	return out
}

func TestInsertReplaceRemove(t *testing.T) {
	tb := New()
	require.False(t, tb.Insert(d(1), "/sync/1", false))
	require.True(t, tb.Insert(d(1), "/sync/1b", false), "same digest must replace")
	require.Equal(t, 1, tb.Len())

	e, ok := tb.Lookup(d(1))
	require.True(t, ok)
	require.Equal(t, "/sync/1b", e.InterestName)

	tb.Remove(d(1))
	require.Equal(t, 0, tb.Len())
	tb.Remove(d(1)) // idempotent: removing an absent digest must not panic
}

func TestPopOldestFirst(t *testing.T) {
	tb := New()
	tb.Insert(d(1), "a", false)
	time.Sleep(time.Millisecond)
	tb.Insert(d(2), "b", false)

	e, ok := tb.Pop()
	require.True(t, ok)
	require.Equal(t, d(1), e.Digest)

	e, ok = tb.Pop()
	require.True(t, ok)
	require.Equal(t, d(2), e.Digest)

	_, ok = tb.Pop()
	require.False(t, ok)
}

func TestSweepEvictsOnlyStale(t *testing.T) {
	tb := New()
	tb.Insert(d(1), "a", false)
	time.Sleep(20 * time.Millisecond)
	tb.Insert(d(2), "b", false)

	removed := tb.Sweep(time.Now(), 10*time.Millisecond)
	require.Len(t, removed, 1)
	require.Equal(t, d(1), removed[0].Digest)
	require.Equal(t, 1, tb.Len())
}
