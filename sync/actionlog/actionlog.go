// Package actionlog implements the ActionLog (spec.md §3 / §4.3): an
// ordered sequence of (postDigest, ActionEntry) pairs, append-only until
// bulk-cleared by a snapshot, searchable by digest and by entry name.
//
// The teacher notes both lookups as "currently linear scans in source"
// and explicitly permits any structure preserving insertion order with
// those two lookups; we keep the linear scan for entry-name lookup
// (ActionLog is cleared every few seconds by quiescence, so it never
// grows large) but index postDigest with a map for O(1) sync-interest
// and recovery-interest digest matching, which is the hot path.
package actionlog

import (
	"encoding/hex"

	"github.com/WeiqiJust/NDN-Repo/sync/action"
)

// Record is one logged (postDigest, ActionEntry) pair.
type Record struct {
	PostDigest [32]byte
	Entry      action.Entry
}

// Log is the ActionLog. Not safe for concurrent use (see sync/tree's
// doc comment on the single-threaded event loop assumption).
type Log struct {
	records    []Record
	byDigest   map[[32]byte]int // digest -> index into records
	sentinel   [32]byte
}

// sentinelEntry is the rootEntry seeded at index 0, recognizable as the
// digest of the empty state.
var sentinelEntry = action.Entry{Creator: "", Seq: 0, Kind: action.Others, DataName: "", Version: 0}

// New returns a Log seeded with the sentinel (initialDigest, rootEntry).
func New(initialDigest [32]byte) *Log {
	l := &Log{
		byDigest: make(map[[32]byte]int),
		sentinel: initialDigest,
	}
	l.reset()
	return l
}

func (l *Log) reset() {
	l.records = []Record{{PostDigest: l.sentinel, Entry: sentinelEntry}}
	l.byDigest = map[[32]byte]int{l.sentinel: 0}
}

// Append adds a new (postDigest, entry) pair to the end of the log.
func (l *Log) Append(postDigest [32]byte, entry action.Entry) {
	l.records = append(l.records, Record{PostDigest: postDigest, Entry: entry})
	l.byDigest[postDigest] = len(l.records) - 1
}

// LookupDigest returns the index of the record whose postDigest equals
// digest, if any is present.
func (l *Log) LookupDigest(digest [32]byte) (int, bool) {
	idx, ok := l.byDigest[digest]
	return idx, ok
}

// LookupName returns the record whose entry name equals name, if present.
func (l *Log) LookupName(name string) (Record, bool) {
	for _, r := range l.records {
		if r.Entry.Name() == name {
			return r, true
		}
	}
	return Record{}, false
}

// LookupCreatorSeq returns the record for (creator, seq), if present —
// used to answer a fetch Interest, whose name carries only creator and
// seq (not the full entryName, which also encodes kind/dataName/version).
func (l *Log) LookupCreatorSeq(creator string, seq uint64) (Record, bool) {
	for _, r := range l.records {
		if r.Entry.Creator == creator && r.Entry.Seq == seq {
			return r, true
		}
	}
	return Record{}, false
}

// After returns every record strictly after the record at idx, in log
// order — used to answer a sync Interest whose digest we recognize.
func (l *Log) After(idx int) []Record {
	if idx+1 >= len(l.records) {
		return nil
	}
	out := make([]Record, len(l.records)-idx-1)
	copy(out, l.records[idx+1:])
	return out
}

// Tail returns the most recently appended record, or the sentinel if
// nothing has been appended yet.
func (l *Log) Tail() Record {
	return l.records[len(l.records)-1]
}

// Len returns the number of records, including the sentinel.
func (l *Log) Len() int { return len(l.records) }

// Reinitialize clears the log back to a single sentinel at newDigest —
// the effect createSnapshot has on quiescence (spec.md §4.7
// removeActions).
func (l *Log) Reinitialize(newDigest [32]byte) {
	l.sentinel = newDigest
	l.reset()
}

// DigestHex is a small formatting helper shared by callers that need to
// put a digest into an Interest name or a log line.
func DigestHex(d [32]byte) string { return hex.EncodeToString(d[:]) }
