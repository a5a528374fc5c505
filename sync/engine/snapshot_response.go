package engine

import (
	"time"

	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/store"
	"github.com/WeiqiJust/NDN-Repo/sync/snapshot"
	"github.com/WeiqiJust/NDN-Repo/sync/wire"
)

// onSnapshotResponse implements spec.md §4.7's snapshot-response
// handling: a SNAPSHOT received as the answer to a fetch Interest (the
// requested action was truncated out of the ActionLog).
func (e *Engine) onSnapshotResponse(snap *wire.Snapshot) {
	if snap == nil {
		return
	}
	id := snapshot.Identity{Creator: snap.SnapshotCreator, Seq: snap.SnapshotSeq}
	if e.snapDedup.SeenOrRecord(id) {
		return
	}
	time.AfterFunc(params.SnapshotDedupTTL, func() {
		e.submit(func() { e.snapDedup.Forget(id) })
	})

	for _, dp := range snap.Data {
		local := e.cfg.Store.GetDataStatus(dp.DataName)
		switch {
		case dp.Status == wire.StatusExisted && local == store.StatusNone:
			e.fetchDataObject(dp.DataName)
		case dp.Status == wire.StatusDeleted && local == store.StatusExisted:
			if err := e.cfg.Store.DeleteData(dp.DataName); err != nil {
				e.cfg.Logger.Error("snapshot-driven delete failed", "name", dp.DataName, "err", err)
			}
		case dp.Status == wire.StatusInserted && (local == store.StatusNone || local == store.StatusDeleted):
			e.fetchDataObject(dp.DataName)
		}
	}

	for _, te := range snap.Tree {
		e.tree.AbsorbSnapshot(te.Creator, te.Last)
		p := e.pipelineFor(te.Creator)
		p.Current = te.Last
		p.Sending = te.Last
		if te.Last > p.Final {
			p.Final = te.Last
		}
		if e.cfg.TreeStore != nil {
			if err := e.cfg.TreeStore.Upsert(te.Creator, te.Last); err != nil {
				e.cfg.Logger.Error("tree store persist failed", "err", err)
			}
		}
	}
}
