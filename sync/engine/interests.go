package engine

import (
	"bytes"
	"time"

	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/sync/tree"
	"github.com/WeiqiJust/NDN-Repo/sync/wire"
)

// onSyncInterest implements spec.md §4.7's incoming-sync-Interest
// handling. Must run on the engine loop.
func (e *Engine) onSyncInterest(interestName string, peerDigest []byte, reply face.ReplyFunc) {
	local := e.tree.RootDigest()
	matches := bytes.Equal(peerDigest, local[:])

	if !matches {
		e.cancelQuiescence()
		e.synchronized = false
	}

	var digestKey [32]byte
	copy(digestKey[:], peerDigest)

	switch {
	case matches:
		e.pit.Insert(digestKey, interestName, false)
		e.replyFuncs[digestKey] = reply
		if !e.synchronized {
			e.synchronized = true
			e.scheduleQuiescence()
		}

	default:
		if idx, ok := e.log.LookupDigest(digestKey); ok {
			reply(e.buildActionNameReply(idx))
			e.rescheduleOutgoingSync()
			return
		}
		// Unknown digest: queue for delayed re-processing.
		e.pit.Insert(digestKey, interestName, true)
		e.replyFuncs[digestKey] = reply
		if t, ok := e.unknownTimers[digestKey]; ok {
			t.Stop()
		}
		wait := e.jitter(params.SyncProcessingWaitMin, params.SyncProcessingWaitMax)
		e.unknownTimers[digestKey] = time.AfterFunc(wait, func() {
			e.submit(func() { e.reprocessUnknownDigest(digestKey) })
		})
	}
}

func (e *Engine) reprocessUnknownDigest(digest [32]byte) {
	delete(e.unknownTimers, digest)
	if _, ok := e.log.LookupDigest(digest); ok {
		// Became known in the meantime, so no recovery is needed. The
		// entry stays in the PIT marked unknown, which
		// releasePendingSyncResponses skips, until the sweep evicts it.
		return
	}
	local := e.tree.RootDigest()
	if bytes.Equal(digest[:], local[:]) {
		return
	}
	e.pit.Remove(digest)
	delete(e.replyFuncs, digest)
	e.startRecovery()
}

// buildActionNameReply returns the wire Message listing every log entry
// strictly after idx, as (creator, seq) pairs.
func (e *Engine) buildActionNameReply(idx int) face.Data {
	records := e.log.After(idx)
	pairs := make([]wire.ActionNamePair, len(records))
	for i, r := range records {
		pairs[i] = wire.ActionNamePair{Creator: r.Entry.Creator, Seq: r.Entry.Seq}
	}
	raw := wire.Encode(wire.NewActionNameList(pairs...))
	return face.Data{Content: raw, Sig: e.signReply(raw)}
}

// onFetchInterest implements spec.md §4.7's incoming-fetch-Interest
// handling.
func (e *Engine) onFetchInterest(creator string, seq uint64, reply face.ReplyFunc) {
	if node, ok := e.tree.Lookup(creator); ok && node.First != 0 && seq <= node.First {
		if _, raw, ok := e.snapBuilder.Cached(); ok {
			reply(face.Data{Content: raw, Sig: e.signReply(raw)})
		}
		return
	}
	if rec, ok := e.log.LookupCreatorSeq(creator, seq); ok {
		raw := wire.Encode(wire.NewActionList(rec.Entry))
		reply(face.Data{Content: raw, Sig: e.signReply(raw)})
		return
	}
	// Unknown: drop, the peer will time out and retry.
}

// onRecoveryInterest implements spec.md §4.7's incoming-recovery-
// Interest handling.
func (e *Engine) onRecoveryInterest(peerDigest []byte, reply face.ReplyFunc) {
	e.cancelQuiescence()
	e.synchronized = false

	var digestKey [32]byte
	copy(digestKey[:], peerDigest)
	if _, ok := e.log.LookupDigest(digestKey); !ok {
		return
	}
	var pairs []wire.ActionNamePair
	e.tree.Enumerate(func(n tree.Node) {
		pairs = append(pairs, wire.ActionNamePair{Creator: n.Creator, Seq: n.Last})
	})
	raw := wire.Encode(wire.NewActionNameList(pairs...))
	reply(face.Data{Content: raw, Sig: e.signReply(raw)})
}
