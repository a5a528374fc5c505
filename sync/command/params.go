package command

import (
	"fmt"

	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
)

// clientPublicSize is the marshaled size of a Curve25519 ECDH public
// key, per auth/ecdh.
const clientPublicSize = 32

// Params is the optional parameter block carried by a start command
// (spec.md §4.8): "may override the peer's creator name, appending a
// random 64-bit suffix for uniqueness." Check and stop commands carry
// an empty Params.
//
// ClientPublic is set when the issuer authenticates over auth/ecdh
// instead of a fixed shared key: a fresh Curve25519 public key travels
// with every command Interest so the daemon's long-lived ECDH key can
// negotiate a one-off session per request without either side needing
// to persist the other's key across process restarts.
type Params struct {
	OverrideCreator bool
	ClientPublic    []byte
}

// EncodeParams serializes p as a flag byte optionally followed by a
// 32-byte ECDH public key.
func EncodeParams(p Params) []byte {
	flag := byte(0)
	if p.OverrideCreator {
		flag = 1
	}
	if len(p.ClientPublic) == 0 {
		return []byte{flag}
	}
	return append([]byte{flag}, p.ClientPublic...)
}

// DecodeParams parses raw into a Params. An empty raw decodes to the
// zero value, so check/stop Interests carrying no body still decode
// cleanly.
func DecodeParams(raw []byte) (Params, error) {
	if len(raw) == 0 {
		return Params{}, nil
	}
	switch len(raw) {
	case 1:
		if raw[0] > 1 {
			break
		}
		return Params{OverrideCreator: raw[0] == 1}, nil
	case 1 + clientPublicSize:
		if raw[0] > 1 {
			break
		}
		pub := make([]byte, clientPublicSize)
		copy(pub, raw[1:])
		return Params{OverrideCreator: raw[0] == 1, ClientPublic: pub}, nil
	}
	return Params{}, syncerr.NewDecodeError("command params", fmt.Errorf("malformed params block: %x", raw))
}
