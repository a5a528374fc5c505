package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/WeiqiJust/NDN-Repo/auth"
	"github.com/WeiqiJust/NDN-Repo/auth/ecdh"
	"github.com/WeiqiJust/NDN-Repo/auth/ed25519"
	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/store"
	"github.com/WeiqiJust/NDN-Repo/sync/engine"
)

func newTestHandler(t *testing.T, net *face.Network, validator *ed25519.KeyPair) (*Handler, face.Face) {
	t.Helper()
	f := net.NewFace(true)
	var v auth.Validator
	if validator != nil {
		v = validator
	}
	h := New(Config{
		CommandPrefix: "/example/repo/command",
		BaseCreator:   "/repo/0",
		Face:          f,
		Validator:     v,
		NewEngine: func(creator string) (*engine.Engine, error) {
			st, err := store.Open(t.TempDir(), 0)
			if err != nil {
				return nil, err
			}
			t.Cleanup(func() { st.Close() })
			return engine.New(engine.Config{
				SyncPrefix:  "/example/repo",
				CreatorName: creator,
				Face:        f,
				Store:       st,
				Params:      params.DefaultConfig(),
			}), nil
		},
	})
	h.Listen()
	return h, f
}

func TestStartCheckStopLifecycle(t *testing.T) {
	net := face.NewNetwork()
	h, _ := newTestHandler(t, net, nil)

	clientFace := net.NewFace(true)
	client := &Client{CommandPrefix: "/example/repo/command", Face: clientFace, Lifetime: time.Second}

	status, err := client.Send(Check, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusStoppedOrAcked, status)

	status, err = client.Send(Start, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusStarted, status)
	require.NotNil(t, h.Engine())

	status, err = client.Send(Check, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusRunning, status)

	status, err = client.Send(Stop, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusStoppedOrAcked, status)
	require.Nil(t, h.Engine())
}

func TestCommandSurfaceAcceptsNegotiatedECDHSession(t *testing.T) {
	net := face.NewNetwork()
	daemonKey, err := ecdh.GenerateKeyPair()
	require.NoError(t, err)

	f := net.NewFace(true)
	h := New(Config{
		CommandPrefix: "/example/repo/command",
		BaseCreator:   "/repo/0",
		Face:          f,
		ECDHKey:       daemonKey,
		NewEngine: func(creator string) (*engine.Engine, error) {
			st, err := store.Open(t.TempDir(), 0)
			if err != nil {
				return nil, err
			}
			t.Cleanup(func() { st.Close() })
			return engine.New(engine.Config{
				SyncPrefix:  "/example/repo",
				CreatorName: creator,
				Face:        f,
				Store:       st,
				Params:      params.DefaultConfig(),
			}), nil
		},
	})
	h.Listen()

	clientFace := net.NewFace(true)
	client := &Client{
		CommandPrefix: "/example/repo/command",
		Face:          clientFace,
		DaemonPublic:  daemonKey.Public,
		Lifetime:      time.Second,
	}

	status, err := client.Send(Start, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusStarted, status)
	require.NotNil(t, h.Engine())
}

func TestCommandSurfaceRejectsWrongECDHPeer(t *testing.T) {
	net := face.NewNetwork()
	daemonKey, err := ecdh.GenerateKeyPair()
	require.NoError(t, err)
	impostorKey, err := ecdh.GenerateKeyPair()
	require.NoError(t, err)

	f := net.NewFace(true)
	h := New(Config{
		CommandPrefix: "/example/repo/command",
		BaseCreator:   "/repo/0",
		Face:          f,
		ECDHKey:       daemonKey,
		NewEngine: func(creator string) (*engine.Engine, error) {
			st, err := store.Open(t.TempDir(), 0)
			if err != nil {
				return nil, err
			}
			t.Cleanup(func() { st.Close() })
			return engine.New(engine.Config{SyncPrefix: "/example/repo", CreatorName: creator, Face: f, Store: st, Params: params.DefaultConfig()}), nil
		},
	})
	h.Listen()

	clientFace := net.NewFace(true)
	// The client negotiates against the impostor's public key instead of
	// the daemon's, so the derived shared secret won't match what the
	// daemon derives from the client's real public key.
	client := &Client{CommandPrefix: "/example/repo/command", Face: clientFace, DaemonPublic: impostorKey.Public, Lifetime: time.Second}

	status, err := client.Send(Start, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusValidationFailed, status)
	require.Nil(t, h.Engine())
}

func TestStartWithOverrideCreatorProducesDistinctEngine(t *testing.T) {
	net := face.NewNetwork()
	h, _ := newTestHandler(t, net, nil)
	clientFace := net.NewFace(true)
	client := &Client{CommandPrefix: "/example/repo/command", Face: clientFace, Lifetime: time.Second}

	status, err := client.Send(Start, Params{OverrideCreator: true})
	require.NoError(t, err)
	require.Equal(t, StatusStarted, status)
	require.NotEqual(t, "/repo/0", h.Engine().CreatorName())
}

func TestCommandSignatureValidationRejectsUnsigned(t *testing.T) {
	net := face.NewNetwork()
	key, err := ed25519.Generate()
	require.NoError(t, err)
	h, _ := newTestHandler(t, net, key)

	clientFace := net.NewFace(true)
	client := &Client{CommandPrefix: "/example/repo/command", Face: clientFace, Lifetime: time.Second}

	status, err := client.Send(Start, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusValidationFailed, status)
	require.Nil(t, h.Engine())
}

func TestCommandSignatureValidationAcceptsSigned(t *testing.T) {
	net := face.NewNetwork()
	key, err := ed25519.Generate()
	require.NoError(t, err)
	h, _ := newTestHandler(t, net, key)

	clientFace := net.NewFace(true)
	client := &Client{CommandPrefix: "/example/repo/command", Face: clientFace, Signer: key, Lifetime: time.Second}

	status, err := client.Send(Start, Params{})
	require.NoError(t, err)
	require.Equal(t, StatusStarted, status)
	require.NotNil(t, h.Engine())
}
