// Package pit implements the PendingInterestTable (spec.md §3 / §4.4):
// a bounded-lifetime table of unanswered sync Interests, keyed by
// digest, with a secondary arrival-time ordering for the periodic sweep.
//
// This is the "multi-index container" spec.md §9 calls out: the
// teacher's own multi-index analogue is hashicorp/golang-lru's internal
// pairing of a hash map with a doubly linked list for recency order. PIT
// borrows that shape — map[digest]*list.Element plus a container/list —
// but orders by arrival time rather than access time, and evicts by age
// rather than by capacity.
package pit

import (
	"container/list"
	"time"
)

// Entry is one pending sync Interest (spec.md's PIT entry).
type Entry struct {
	Digest      [32]byte
	InterestName string
	ArrivalTime time.Time
	IsUnknown   bool
}

// Table is the PIT. Not safe for concurrent use.
type Table struct {
	byDigest map[[32]byte]*list.Element // -> *Entry wrapped in list.Element.Value
	order    *list.List                 // front = oldest arrival
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		byDigest: make(map[[32]byte]*list.Element),
		order:    list.New(),
	}
}

// Insert adds or replaces the entry for digest. If an entry with the
// same digest already existed, it is removed first and replaced=true is
// returned (spec.md: "replaces an existing entry with the same digest").
func (t *Table) Insert(digest [32]byte, interestName string, isUnknown bool) (replaced bool) {
	if el, ok := t.byDigest[digest]; ok {
		t.order.Remove(el)
		delete(t.byDigest, digest)
		replaced = true
	}
	e := &Entry{Digest: digest, InterestName: interestName, ArrivalTime: time.Now(), IsUnknown: isUnknown}
	el := t.order.PushBack(e)
	t.byDigest[digest] = el
	return replaced
}

// Remove deletes the entry for digest, if present. Idempotent.
func (t *Table) Remove(digest [32]byte) {
	el, ok := t.byDigest[digest]
	if !ok {
		return
	}
	t.order.Remove(el)
	delete(t.byDigest, digest)
}

// Lookup returns the entry for digest, if present.
func (t *Table) Lookup(digest [32]byte) (Entry, bool) {
	el, ok := t.byDigest[digest]
	if !ok {
		return Entry{}, false
	}
	return *el.Value.(*Entry), true
}

// Pop returns and removes the oldest-arrived entry. ok is false if the
// table is empty.
func (t *Table) Pop() (Entry, bool) {
	front := t.order.Front()
	if front == nil {
		return Entry{}, false
	}
	e := front.Value.(*Entry)
	t.order.Remove(front)
	delete(t.byDigest, e.Digest)
	return *e, true
}

// Len returns the number of pending entries.
func (t *Table) Len() int { return t.order.Len() }

// Sweep removes every entry older than lifetime, as of now. It returns
// the removed entries, e.g. for logging.
func (t *Table) Sweep(now time.Time, lifetime time.Duration) []Entry {
	var removed []Entry
	for {
		front := t.order.Front()
		if front == nil {
			break
		}
		e := front.Value.(*Entry)
		if now.Sub(e.ArrivalTime) < lifetime {
			break // order is arrival-ordered, so nothing after this is stale either
		}
		t.order.Remove(front)
		delete(t.byDigest, e.Digest)
		removed = append(removed, *e)
	}
	return removed
}
