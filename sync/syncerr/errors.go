// Package syncerr defines the error kinds the sync subsystem's handlers
// can return, per spec.md §7. Each kind is a distinct type so callers can
// discriminate with errors.As without string matching, in the teacher's
// sentinel-plus-wrapped-context style (ethdb/relaydb.errMemorydbClosed,
// core/state/snapshot.ErrSnapshotStale).
package syncerr

import "fmt"

// ProtocolViolation means the other side (or our own applied state) did
// something the protocol does not allow, e.g. a fetch response sequence
// number beyond any known final. Propagates out of handlers.
type ProtocolViolation struct {
	Reason string
}

func (e *ProtocolViolation) Error() string { return "protocol violation: " + e.Reason }

// NewProtocolViolation builds a ProtocolViolation with a formatted reason.
func NewProtocolViolation(format string, args ...interface{}) *ProtocolViolation {
	return &ProtocolViolation{Reason: fmt.Sprintf(format, args...)}
}

// DecodeError wraps a SyncMessage or command-parameter decoding failure.
// Recoverable: the caller drops the current item and continues.
type DecodeError struct {
	Context string
	Err     error
}

func (e *DecodeError) Error() string { return "decode error (" + e.Context + "): " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError wraps err with a description of what was being decoded.
func NewDecodeError(context string, err error) *DecodeError {
	return &DecodeError{Context: context, Err: err}
}

// ValidationError means an Interest's or Data's signature failed
// validation. For commands this becomes a 401 reply; for data it is a
// silent drop.
type ValidationError struct {
	Name string
}

func (e *ValidationError) Error() string { return "validation failed for " + e.Name }

// FetchExhausted means a single (creator, seq) fetch hit spec.md's
// retrytimes cap without an answer. Fatal for that one action; the
// engine keeps running.
type FetchExhausted struct {
	Creator string
	Seq     uint64
}

func (e *FetchExhausted) Error() string {
	return fmt.Sprintf("fetch exhausted for creator=%s seq=%d", e.Creator, e.Seq)
}

// StorageError wraps a TreeStore open/prepare/bind failure. Fatal for
// startup.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage error during " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// DigestError means a digest could not be extracted from an Interest
// name. Aborts only the current handler invocation.
type DigestError struct {
	Name string
}

func (e *DigestError) Error() string { return "could not extract digest from name " + e.Name }
