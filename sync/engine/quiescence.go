package engine

import (
	"time"

	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/sync/action"
)

// scheduleQuiescence arms the removeActions timer (spec.md §4.7:
// "triggered 5 s after the synchronized flag becomes true with no
// contradicting sync Interest").
func (e *Engine) scheduleQuiescence() {
	e.cancelQuiescence()
	e.quiescenceTimer = time.AfterFunc(params.QuiescenceToSnapshotDelay, func() {
		e.submit(e.removeActions)
	})
}

func (e *Engine) cancelQuiescence() {
	if e.quiescenceTimer != nil {
		e.quiescenceTimer.Stop()
		e.quiescenceTimer = nil
	}
}

// removeActions truncates the ActionLog to a fresh sentinel and rebuilds
// the cached snapshot — spec.md §4.7's quiescence/truncation handling.
// The tree is never cleared, only the log and its retry/pending state.
func (e *Engine) removeActions() {
	newDigest := e.tree.RootDigest()
	e.log.Reinitialize(newDigest)
	e.retryCounts = make(map[string]int)
	e.pendingAct = make(map[string][]action.Entry)
	e.createSnapshot()
}

func (e *Engine) createSnapshot() {
	e.snapBuilder.Build(e.cfg.Store, e.tree, e.cfg.CreatorName)
}
