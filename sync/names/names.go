// Package names builds and parses the hierarchical Interest names the
// sync protocol uses, per spec.md §4.7's naming conventions:
//
//	sync:     <syncPrefix>/sync/<rootDigest>
//	fetch:    <syncPrefix>/fetch/<creator>/<seq>
//	recovery: <syncPrefix>/recovery/<digest>
//	command:  <commandPrefix>/sync/{start,check,stop}
package names

import (
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	compSync     = "sync"
	compFetch    = "fetch"
	compRecovery = "recovery"
)

// Join concatenates name components into a single slash-separated name,
// without a trailing slash, e.g. Join("/example/repo", "sync", "ab12").
func Join(components ...string) string {
	var b strings.Builder
	for _, c := range components {
		c = strings.Trim(c, "/")
		if c == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(c)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// SyncInterest builds <syncPrefix>/sync/<digestHex>.
func SyncInterest(syncPrefix string, digest []byte) string {
	return Join(syncPrefix, compSync, hex.EncodeToString(digest))
}

// FetchInterest builds <syncPrefix>/fetch/<creator>/<seq>.
func FetchInterest(syncPrefix, creator string, seq uint64) string {
	return Join(syncPrefix, compFetch, strings.Trim(creator, "/"), strconv.FormatUint(seq, 10))
}

// RecoveryInterest builds <syncPrefix>/recovery/<digestHex>.
func RecoveryInterest(syncPrefix string, digest []byte) string {
	return Join(syncPrefix, compRecovery, hex.EncodeToString(digest))
}

// CommandInterest builds <commandPrefix>/sync/<verb>/<paramsHex>/<sigHex>.
// Signed-Interest conventions (spec.md §4.8: "each command is validated
// by a configured validator") carry the parameter block and its
// signature as trailing name components, the way a fetch Interest
// carries (creator, seq) rather than a body.
func CommandInterest(commandPrefix, verb string, params, sig []byte) string {
	return Join(commandPrefix, compSync, verb, hex.EncodeToString(params), hex.EncodeToString(sig))
}

// ParseCommand extracts (verb, paramsRaw, sig) from a command Interest
// name. ok is false if the name doesn't match <commandPrefix>/sync/<verb>/<paramsHex>/<sigHex>.
// An unsigned command has no <sigHex> component (Join drops the empty
// one) and parses with an empty sig.
func ParseCommand(commandPrefix, name string) (verb string, paramsRaw, sig []byte, ok bool) {
	prefixParts := splitNonEmpty(commandPrefix)
	parts := splitNonEmpty(name)
	if len(parts) != len(prefixParts)+4 && len(parts) != len(prefixParts)+3 {
		return "", nil, nil, false
	}
	for i, p := range prefixParts {
		if parts[i] != p {
			return "", nil, nil, false
		}
	}
	rest := parts[len(prefixParts):]
	if rest[0] != compSync {
		return "", nil, nil, false
	}
	paramsRaw, err := hex.DecodeString(rest[2])
	if err != nil {
		return "", nil, nil, false
	}
	if len(rest) == 4 {
		sig, err = hex.DecodeString(rest[3])
		if err != nil {
			return "", nil, nil, false
		}
	}
	return rest[1], paramsRaw, sig, true
}

// ParseSyncOrRecovery extracts the digest bytes from a sync or recovery
// Interest name, given the expected middle component ("sync" or
// "recovery"). ok is false if the name doesn't match that shape.
func ParseSyncOrRecovery(name, kind string) (digest []byte, ok bool) {
	parts := splitNonEmpty(name)
	if len(parts) < 2 {
		return nil, false
	}
	if parts[len(parts)-2] != kind {
		return nil, false
	}
	d, err := hex.DecodeString(parts[len(parts)-1])
	if err != nil {
		return nil, false
	}
	return d, true
}

// ParseFetch extracts (creator, seq) from a fetch Interest name. creator
// is returned with a leading slash restored.
func ParseFetch(syncPrefix, name string) (creator string, seq uint64, ok bool) {
	prefixParts := splitNonEmpty(syncPrefix)
	parts := splitNonEmpty(name)
	if len(parts) < len(prefixParts)+3 {
		return "", 0, false
	}
	rest := parts[len(prefixParts):]
	if rest[0] != compFetch {
		return "", 0, false
	}
	seqPart := rest[len(rest)-1]
	creatorParts := rest[1 : len(rest)-1]
	n, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return "/" + strings.Join(creatorParts, "/"), n, true
}

func splitNonEmpty(name string) []string {
	raw := strings.Split(name, "/")
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
