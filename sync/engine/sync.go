package engine

import (
	"time"

	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/sync/names"
	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
	"github.com/WeiqiJust/NDN-Repo/sync/wire"
)

// scheduleOutgoingSync cancels any pending outgoing sync Interest timer
// and schedules the next expression after delay. Call with
// SyncInterestReexpress+jitter for the steady-state cadence, or a fixed
// delay for the very first expression.
func (e *Engine) scheduleOutgoingSync(delay time.Duration) {
	if e.outgoingSyncTimer != nil {
		e.outgoingSyncTimer.Stop()
	}
	e.outgoingSyncTimer = time.AfterFunc(delay, func() {
		e.submit(e.expressOutgoingSync)
	})
}

// rescheduleOutgoingSync restarts the periodic timer at the standard
// cadence — called whenever (a) an outstanding sync Interest is
// answered, (b) insertAction changes the local digest, or (c) a sync
// response arrives (spec.md §4.7 "outgoing sync loop").
func (e *Engine) rescheduleOutgoingSync() {
	e.scheduleOutgoingSync(e.cfg.Params.SyncInterestReexpress + e.jitter(params.JitterMin, params.JitterMax))
}

func (e *Engine) expressOutgoingSync() {
	digest := e.tree.RootDigest()
	name := names.SyncInterest(e.cfg.SyncPrefix, digest[:])
	e.cfg.Face.ExpressInterest(
		face.Interest{Name: name, MustBeFresh: true, Lifetime: e.cfg.Params.DefaultInterestLifetime},
		func(d face.Data) {
			e.submit(func() { e.onSyncData(d) })
		},
		func() {
			e.submit(func() { e.rescheduleOutgoingSync() })
		},
	)
	e.rescheduleOutgoingSync()
}

func (e *Engine) onSyncData(d face.Data) {
	if !e.validateSyncData(d) {
		return
	}
	msg, err := wire.Decode(d.Content)
	if err != nil {
		e.cfg.Logger.Debug("sync response decode failed", "err", err)
		return
	}
	if msg.Type != wire.TypeActionNameList {
		return
	}
	for _, p := range msg.Names {
		e.prepareFetchForSync(p.Creator, p.Seq)
	}
	e.rescheduleOutgoingSync()
}

// validateSyncData checks a sync-protocol Data's signature, when a
// Validator is configured. Data carrying no signature is rejected if a
// Validator is present — spec.md §6: sync response Data is "signed by
// the peer's key".
func (e *Engine) validateSyncData(d face.Data) bool {
	if e.cfg.Validator == nil {
		return true
	}
	if !e.cfg.Validator.Validate(d.Content, d.Sig) {
		e.cfg.Logger.Debug("sync data failed validation", "name", d.Name)
		e.errf(&syncerr.ValidationError{Name: d.Name})
		return false
	}
	return true
}

func (e *Engine) signReply(raw []byte) []byte {
	if e.cfg.Signer == nil {
		return nil
	}
	sig, err := e.cfg.Signer.Sign(raw)
	if err != nil {
		e.cfg.Logger.Error("signing reply failed", "err", err)
		return nil
	}
	return sig
}

// onInterest classifies an incoming Interest under the sync prefix into
// sync / fetch / recovery and dispatches to the matching handler.
func (e *Engine) onInterest(interest face.Interest, reply face.ReplyFunc) {
	if digest, ok := names.ParseSyncOrRecovery(interest.Name, "sync"); ok {
		e.submit(func() { e.onSyncInterest(interest.Name, digest, reply) })
		return
	}
	if digest, ok := names.ParseSyncOrRecovery(interest.Name, "recovery"); ok {
		e.submit(func() { e.onRecoveryInterest(digest, reply) })
		return
	}
	if creator, seq, ok := names.ParseFetch(e.cfg.SyncPrefix, interest.Name); ok {
		e.submit(func() { e.onFetchInterest(creator, seq, reply) })
		return
	}
	// Interest landed under our prefix but matches none of sync, fetch,
	// or recovery's naming conventions — no digest or (creator, seq)
	// could be extracted from it.
	e.submit(func() { e.errf(&syncerr.DigestError{Name: interest.Name}) })
}
