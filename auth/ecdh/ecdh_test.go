package ecdh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNegotiatedSessionsAgreeOnSharedSecret(t *testing.T) {
	alice, err := GenerateKeyPair()
	require.NoError(t, err)
	bob, err := GenerateKeyPair()
	require.NoError(t, err)

	aliceSession, err := alice.Negotiate(bob.Public)
	require.NoError(t, err)
	bobSession, err := bob.Negotiate(alice.Public)
	require.NoError(t, err)

	msg := []byte("start /repo/0")
	sig, err := aliceSession.Sign(msg)
	require.NoError(t, err)
	require.True(t, bobSession.Validate(msg, sig))
}

func TestTamperedSignatureFailsValidation(t *testing.T) {
	alice, err := GenerateKeyPair()
	require.NoError(t, err)
	bob, err := GenerateKeyPair()
	require.NoError(t, err)

	aliceSession, err := alice.Negotiate(bob.Public)
	require.NoError(t, err)
	bobSession, err := bob.Negotiate(alice.Public)
	require.NoError(t, err)

	sig, err := aliceSession.Sign([]byte("start /repo/0"))
	require.NoError(t, err)
	require.False(t, bobSession.Validate([]byte("stop /repo/0"), sig))
}

func TestMalformedPeerPublicKeyErrors(t *testing.T) {
	alice, err := GenerateKeyPair()
	require.NoError(t, err)
	_, err = alice.Negotiate([]byte{0x01, 0x02})
	require.Error(t, err)
}
