package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/store"
	"github.com/WeiqiJust/NDN-Repo/sync/action"
)

func newTestPeer(t *testing.T, net *face.Network, creator string) (*Engine, face.Face, store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := net.NewFace(true)
	e := New(Config{
		SyncPrefix:  "/example/repo",
		CreatorName: creator,
		Face:        f,
		Store:       st,
		Params:      params.DefaultConfig(),
	})
	require.NoError(t, e.Start())
	t.Cleanup(e.Stop)
	return e, f, st
}

func TestInsertActionAdvancesTreeAndLog(t *testing.T) {
	net := face.NewNetwork()
	e, _, st := newTestPeer(t, net, "/repo/0")

	require.NoError(t, st.InsertData("/example/data/1", []byte("hello")))
	entry, err := e.InsertAction(action.Insertion, "/example/data/1")
	require.NoError(t, err)
	require.Equal(t, uint64(1), entry.Seq)
	require.Equal(t, uint64(1), e.SeqOf("/repo/0"))

	entry2, err := e.InsertAction(action.Insertion, "/example/data/2")
	require.NoError(t, err)
	require.Equal(t, uint64(2), entry2.Seq)
}

// TestTwoPeerConvergence exercises spec.md §8's S1 scenario. Compressing
// its timescale isn't possible without overriding the real wire
// constants, so this polls for up to the scenario's own 15 s bound
// instead of faking the clock.
func TestTwoPeerConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real-time convergence test in -short mode")
	}
	net := face.NewNetwork()
	e0, _, st0 := newTestPeer(t, net, "/repo/0")
	e1, _, st1 := newTestPeer(t, net, "/repo/1")

	require.NoError(t, st0.InsertData("/example/data/1", []byte("from p0")))
	_, err := e0.InsertAction(action.Insertion, "/example/data/1")
	require.NoError(t, err)

	require.NoError(t, st1.InsertData("/example/data/2", []byte("from p1")))
	_, err = e1.InsertAction(action.Insertion, "/example/data/2")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return e0.SeqOf("/repo/0") == 1 && e0.SeqOf("/repo/1") == 1 &&
			e1.SeqOf("/repo/0") == 1 && e1.SeqOf("/repo/1") == 1
	}, 15*time.Second, 100*time.Millisecond)
}

func TestFetchExhaustionReportsError(t *testing.T) {
	net := face.NewNetwork()
	st, err := store.Open(t.TempDir(), 0)
	require.NoError(t, err)
	defer st.Close()

	f := net.NewFace(true)
	cfg := params.DefaultConfig()
	cfg.DefaultInterestLifetime = 10 * time.Millisecond
	e := New(Config{
		SyncPrefix:  "/example/repo",
		CreatorName: "/repo/0",
		Face:        f,
		Store:       st,
		Params:      cfg,
	})
	errs := make(chan error, 8)
	e.OnError(func(err error) { errs <- err })
	require.NoError(t, e.Start())
	defer e.Stop()

	// No peer answers, so every fetch for this (creator, seq) times out.
	e.submit(func() { e.prepareFetchForSync("/repo/9", 1) })

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a fetch-exhausted error")
	}
}
