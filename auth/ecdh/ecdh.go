// Package ecdh is the auth.SignerValidator used for command Interests
// (spec.md §4.6): the command issuer and the daemon agree on a shared
// secret via Curve25519 ECDH, stretch it with HKDF-SHA256 into an HMAC
// key, and authenticate each command's parameter block with that HMAC.
// This is deliberately a different scheme from auth/ed25519's per-peer
// signatures: command traffic is a point-to-point operator channel, not
// a broadcast one, so a shared secret is the natural fit.
package ecdh

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	gecdh "github.com/wsddn/go-ecdh"

	"github.com/WeiqiJust/NDN-Repo/auth"
)

const hkdfInfo = "NDN-Repo command-auth v1"

// Session is a negotiated shared-secret HMAC signer/validator for one
// operator<->daemon command channel.
type Session struct {
	hmacKey []byte
}

var curve = gecdh.NewCurve25519ECDH()

// KeyPair is one side's ephemeral ECDH keypair, prior to negotiation.
type KeyPair struct {
	private interface{}
	Public  []byte
}

// GenerateKeyPair creates a fresh ephemeral Curve25519 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, pub, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("ecdh: generate key: %w", err)
	}
	return &KeyPair{private: priv, Public: curve.Marshal(pub)}, nil
}

// Negotiate derives a Session from this side's private key and the
// peer's marshaled public key.
func (k *KeyPair) Negotiate(peerPublic []byte) (*Session, error) {
	peerPub, ok := curve.Unmarshal(peerPublic)
	if !ok {
		return nil, fmt.Errorf("ecdh: malformed peer public key")
	}
	secret, err := curve.GenerateSharedSecret(k.private, peerPub)
	if err != nil {
		return nil, fmt.Errorf("ecdh: shared secret: %w", err)
	}
	key := make([]byte, sha256.Size)
	kdf := hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("ecdh: hkdf expand: %w", err)
	}
	return &Session{hmacKey: key}, nil
}

func (s *Session) Sign(msg []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, s.hmacKey)
	mac.Write(msg)
	return mac.Sum(nil), nil
}

func (s *Session) Validate(msg, sig []byte) bool {
	mac := hmac.New(sha256.New, s.hmacKey)
	mac.Write(msg)
	expected := mac.Sum(nil)
	return hmac.Equal(expected, sig)
}

var _ auth.SignerValidator = (*Session)(nil)
