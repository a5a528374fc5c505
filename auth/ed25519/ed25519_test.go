package ed25519

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WeiqiJust/NDN-Repo/auth"
)

func TestSignValidateRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	msg := []byte("/repo/sync/data/1")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)
	require.True(t, kp.Validate(msg, sig))
	require.False(t, kp.Validate([]byte("tampered"), sig))
}

func TestRegistryValidatesKnownCreatorOnly(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)
	reg := NewRegistry()
	reg.Register("/repo/0", kp.Public)

	msg := []byte("payload")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)

	require.True(t, reg.Validate("/repo/0", msg, sig))
	require.False(t, reg.Validate("/repo/1", msg, sig))
}

func TestPeerValidatorCannotSign(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)
	pv := PeerValidator{Public: kp.Public}
	_, isSigner := interface{}(pv).(auth.Signer)
	require.False(t, isSigner)

	msg := []byte("payload")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)
	require.True(t, pv.Validate(msg, sig))
}
