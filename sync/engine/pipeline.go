package engine

import (
	"sort"

	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/sync/action"
	"github.com/WeiqiJust/NDN-Repo/sync/names"
	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
	"github.com/WeiqiJust/NDN-Repo/sync/wire"
)

func (e *Engine) pipelineFor(creator string) *PipelineState {
	p, ok := e.pipelines[creator]
	if !ok {
		p = &PipelineState{}
		e.pipelines[creator] = p
	}
	return p
}

// prepareFetchForSync implements spec.md §4.7's sync-response handling
// for one (creator, seq) pair.
func (e *Engine) prepareFetchForSync(creator string, seq uint64) {
	p := e.pipelineFor(creator)
	p.Final = seq

	if _, known := e.tree.Lookup(creator); !known {
		e.tree.AddNode(creator)
		p.Current = 0
		p.Sending = minU64(uint64(e.cfg.Params.Pipeline), seq)
		for s := uint64(1); s <= p.Sending; s++ {
			e.dispatchFetch(creator, s)
		}
		return
	}

	node, _ := e.tree.Lookup(creator)
	if node.Last >= seq || p.Sending >= seq {
		return
	}
	target := minU64(p.Sending+uint64(e.cfg.Params.Pipeline), seq)
	for s := p.Sending + 1; s <= target; s++ {
		e.dispatchFetch(creator, s)
	}
	p.Sending = target
}

// prepareFetchForRecovery is spec.md §4.7's recovery-response handling,
// identical in shape to prepareFetchForSync. (Open question, recorded in
// DESIGN.md: the source text's "sending treated as last+pipeline rather
// than cumulative" is not literally reproducible without the original
// source; this implementation keeps the cumulative windowing formula for
// both paths, which satisfies the same pipeline-width invariant.)
func (e *Engine) prepareFetchForRecovery(creator string, last uint64) {
	e.prepareFetchForSync(creator, last)
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// dispatchFetch expresses a FETCH Interest for (creator, seq).
func (e *Engine) dispatchFetch(creator string, seq uint64) {
	name := names.FetchInterest(e.cfg.SyncPrefix, creator, seq)
	e.cfg.Face.ExpressInterest(
		face.Interest{Name: name, MustBeFresh: true, Lifetime: e.cfg.Params.DefaultInterestLifetime},
		func(d face.Data) {
			e.submit(func() { e.onFetchData(creator, seq, d) })
		},
		func() {
			e.submit(func() { e.onFetchTimeout(creator, seq) })
		},
	)
}

func (e *Engine) onFetchTimeout(creator string, seq uint64) {
	key := fetchKey(creator, seq)
	e.retryCounts[key]++
	if e.retryCounts[key] >= e.cfg.Params.RetryTimes {
		delete(e.retryCounts, key)
		e.errf(&syncerr.FetchExhausted{Creator: creator, Seq: seq})
		return
	}
	e.dispatchFetch(creator, seq)
}

func (e *Engine) onFetchData(creator string, seq uint64, d face.Data) {
	if !e.validateSyncData(d) {
		return
	}
	msg, err := wire.Decode(d.Content)
	if err != nil {
		e.cfg.Logger.Debug("fetch response decode failed", "err", err)
		return
	}
	delete(e.retryCounts, fetchKey(creator, seq))

	switch msg.Type {
	case wire.TypeSnapshot:
		e.onSnapshotResponse(msg.Snap)
	case wire.TypeActionList:
		if len(msg.Actions) != 1 {
			e.errf(syncerr.NewProtocolViolation("fetch response for %s/%d carried %d actions", creator, seq, len(msg.Actions)))
			return
		}
		e.actionControl(msg.Actions[0])
	default:
		e.errf(syncerr.NewProtocolViolation("unsupported fetch response type %d", msg.Type))
	}
}

// actionControl implements spec.md §4.7's fetch-response handling.
func (e *Engine) actionControl(a action.Entry) {
	p := e.pipelineFor(a.Creator)

	if a.Seq > p.Final {
		e.errf(syncerr.NewProtocolViolation("unrecognized sequence number %d for creator %s (final=%d)", a.Seq, a.Creator, p.Final))
		return
	}

	switch {
	case a.Seq == p.Current+1:
		if err := e.applyFetchedAction(a); err != nil {
			e.errf(err)
			return
		}
		p.Current = a.Seq

		pending := e.pendingAct[a.Creator]
		for len(pending) > 0 && pending[0].Seq == p.Current+1 {
			next := pending[0]
			pending = pending[1:]
			if err := e.applyFetchedAction(next); err != nil {
				e.errf(err)
				break
			}
			p.Current = next.Seq
		}
		e.pendingAct[a.Creator] = pending

		if p.Current+uint64(e.cfg.Params.Pipeline) <= p.Final {
			next := a.Seq + uint64(e.cfg.Params.Pipeline)
			e.dispatchFetch(a.Creator, next)
			p.Sending = next
		}

	case a.Seq > p.Current+1:
		pending := e.pendingAct[a.Creator]
		pending = insertSorted(pending, a)
		e.pendingAct[a.Creator] = pending
		for s := p.Current + 1; s < pending[0].Seq; s++ {
			e.dispatchFetch(a.Creator, s)
		}
		p.Sending = pending[0].Seq - 1

	default:
		// duplicate or stale: ignore
	}
}

func insertSorted(pending []action.Entry, a action.Entry) []action.Entry {
	for _, p := range pending {
		if p.Seq == a.Seq {
			return pending // already buffered
		}
	}
	idx := sort.Search(len(pending), func(i int) bool { return pending[i].Seq >= a.Seq })
	pending = append(pending, action.Entry{})
	copy(pending[idx+1:], pending[idx:])
	pending[idx] = a
	return pending
}

// applyFetchedAction applies a remote action fetched via the pipeline:
// tree + log update, then the store-side effect.
func (e *Engine) applyFetchedAction(a action.Entry) error {
	if err := e.tree.ApplyEntry(a); err != nil {
		return syncerr.NewProtocolViolation("apply %s: %v", a.Name(), err)
	}
	postDigest := e.tree.RootDigest()
	e.log.Append(postDigest, a)
	if e.cfg.TreeStore != nil {
		if err := e.cfg.TreeStore.Upsert(a.Creator, a.Seq); err != nil {
			e.cfg.Logger.Error("tree store persist failed", "err", err)
		}
	}
	e.releasePendingSyncResponses()

	switch a.Kind {
	case action.Insertion:
		e.fetchDataObject(a.DataName)
	case action.Deletion:
		if err := e.cfg.Store.DeleteData(a.DataName); err != nil {
			e.cfg.Logger.Error("delete data failed", "name", a.DataName, "err", err)
		}
	default:
		return syncerr.NewProtocolViolation("unknown action kind %v for %s", a.Kind, a.Name())
	}
	return nil
}

// fetchDataObject expresses a plain data Interest for name and inserts
// the response into the external store on arrival.
func (e *Engine) fetchDataObject(name string) {
	e.cfg.Face.ExpressInterest(
		face.Interest{Name: name, Lifetime: e.cfg.Params.DefaultInterestLifetime},
		func(d face.Data) {
			e.submit(func() {
				if err := e.cfg.Store.InsertData(name, d.Content); err != nil {
					e.cfg.Logger.Error("insert fetched data failed", "name", name, "err", err)
				}
			})
		},
		func() {
			e.cfg.Logger.Debug("data fetch timed out", "name", name)
		},
	)
}

// releasePendingSyncResponses answers every PIT entry whose held digest
// is now found in the ActionLog — spec.md §2's "releases pending sync
// responses from C4", triggered whenever the log advances.
func (e *Engine) releasePendingSyncResponses() {
	for digest, reply := range e.replyFuncs {
		idx, ok := e.log.LookupDigest(digest)
		if !ok {
			continue
		}
		entry, hasEntry := e.pit.Lookup(digest)
		if hasEntry && entry.IsUnknown {
			continue
		}
		reply(e.buildActionNameReply(idx))
		e.pit.Remove(digest)
		delete(e.replyFuncs, digest)
	}
}
