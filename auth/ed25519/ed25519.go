// Package ed25519 is the default auth.SignerValidator for sync, fetch,
// and recovery traffic (spec.md §6): every peer signs its SyncMessage
// Data with its own ed25519 key, and validates incoming Data against the
// sender's known public key. Standard-library crypto/ed25519 is used
// directly — the domain stack has no ed25519 library of its own to
// exercise here, and the stdlib implementation is the ecosystem's own
// idiomatic choice for this primitive.
package ed25519

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"

	"github.com/WeiqiJust/NDN-Repo/auth"
)

// KeyPair signs with a private key and validates against its own public
// half — the common case of a peer validating its own echoed state.
type KeyPair struct {
	Public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// Generate creates a fresh random keypair.
func Generate() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{Public: pub, private: priv}, nil
}

func (k *KeyPair) Sign(msg []byte) ([]byte, error) {
	if k.private == nil {
		return nil, errors.New("ed25519: signer has no private key")
	}
	return ed25519.Sign(k.private, msg), nil
}

func (k *KeyPair) Validate(msg, sig []byte) bool {
	return ed25519.Verify(k.Public, msg, sig)
}

var _ auth.SignerValidator = (*KeyPair)(nil)

// PeerValidator validates Data signed by a known remote public key; it
// never signs (a peer cannot forge another peer's signature).
type PeerValidator struct {
	Public ed25519.PublicKey
}

func (p PeerValidator) Validate(msg, sig []byte) bool {
	return ed25519.Verify(p.Public, msg, sig)
}

var _ auth.Validator = PeerValidator{}

// Registry maps a creator name to the public key that signs its Data,
// so a single process can validate Data from any known peer.
type Registry struct {
	keys map[string]ed25519.PublicKey
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{keys: make(map[string]ed25519.PublicKey)}
}

// Register records pub as the signing key for creator.
func (r *Registry) Register(creator string, pub ed25519.PublicKey) {
	r.keys[creator] = pub
}

// Validate checks sig over msg against creator's registered key. An
// unknown creator never validates.
func (r *Registry) Validate(creator string, msg, sig []byte) bool {
	pub, ok := r.keys[creator]
	if !ok {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
