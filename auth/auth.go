// Package auth defines the cryptographic signer/validator collaborator
// (spec.md §6): every Data packet and command parameter block crossing
// the wire is signed by its producer and checked by its consumer. The
// sync engine and command surface depend only on these two narrow
// interfaces; concrete key material and algorithms live in the auth/ed25519
// and auth/ecdh subpackages.
package auth

// Signer produces a detached signature over an arbitrary byte string.
type Signer interface {
	Sign(msg []byte) (sig []byte, err error)
}

// Validator checks a detached signature over an arbitrary byte string.
type Validator interface {
	Validate(msg, sig []byte) bool
}

// SignerValidator is satisfied by any reference implementation that can
// act as both sides of a single keypair or shared secret.
type SignerValidator interface {
	Signer
	Validator
}
