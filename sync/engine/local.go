package engine

import (
	"github.com/WeiqiJust/NDN-Repo/sync/action"
	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
)

// InsertAction is the local-mutation entrypoint (spec.md §2: "local
// mutations enter C7 via insertAction"). Callers — the filesystem-watch
// handle or direct test code — must have already
// written dataName's content into the external store (for Insertion) or
// deleted it (for Deletion) before calling this; InsertAction only
// stamps the sequence and propagates the fact, it never itself touches
// the store for the local creator's own actions.
func (e *Engine) InsertAction(kind action.Kind, dataName string) (entry action.Entry, err error) {
	ran := e.submitAndWait(func() {
		entry, err = e.insertActionLocked(kind, dataName)
	})
	if !ran {
		return action.Entry{}, &syncerr.ProtocolViolation{Reason: "engine stopped"}
	}
	return entry, err
}

func (e *Engine) insertActionLocked(kind action.Kind, dataName string) (action.Entry, error) {
	creator := e.cfg.CreatorName
	seq := uint64(1)
	if n, ok := e.tree.Lookup(creator); ok {
		seq = n.Last + 1
	}
	e.versionCtr[dataName]++
	entry := action.Entry{
		Creator:  creator,
		Seq:      seq,
		Kind:     kind,
		DataName: dataName,
		Version:  e.versionCtr[dataName],
	}

	if err := e.tree.Update(creator, seq); err != nil {
		return action.Entry{}, &syncerr.ProtocolViolation{Reason: err.Error()}
	}
	postDigest := e.tree.RootDigest()
	e.log.Append(postDigest, entry)
	if e.cfg.TreeStore != nil {
		if err := e.cfg.TreeStore.Upsert(creator, seq); err != nil {
			e.cfg.Logger.Error("tree store persist failed", "err", err)
		}
	}

	p := e.pipelineFor(creator)
	p.Current, p.Sending, p.Final = seq, seq, seq

	e.releasePendingSyncResponses()
	e.rescheduleOutgoingSync()

	return entry, nil
}
