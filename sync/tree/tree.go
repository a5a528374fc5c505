// Package tree implements the SyncTree (spec.md §4.2): an in-memory
// digest tree over {creator -> (first, last)} whose root digest is a
// pure function of the {(creator, last)} set.
//
// The teacher's trie package builds a deterministic hash incrementally
// from keys inserted in sorted order (trie.StackTrie) and orders key
// bits canonically before comparing them (trie.binaryKey). SyncTree
// borrows both ideas — canonical key ordering, incremental-looking
// construction — but the domain model here is a flat multiset of leaves
// rather than a Merkle-Patricia trie, so the construction collapses to:
// sort creators, concatenate each leaf digest, hash once.
package tree

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/WeiqiJust/NDN-Repo/sync/action"
)

// Node is one creator's position in the tree.
type Node struct {
	Creator string
	First   uint64 // last seq already absorbed into the last snapshot
	Last    uint64 // highest seq applied
}

// LeafDigest returns SHA-256(creator || last) as the node's leaf digest.
func LeafDigest(creator string, last uint64) [32]byte {
	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], last)
	h := sha256.New()
	h.Write([]byte(creator))
	h.Write(seqBuf[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Tree is the SyncTree. It is not safe for concurrent use: per spec.md
// §5, all engine state (of which the Tree is a part) is mutated only
// from the engine's single-threaded event loop.
type Tree struct {
	nodes map[string]*Node
	root  [32]byte
}

// New returns an empty Tree, whose root digest is the digest of the
// empty leaf set.
func New() *Tree {
	t := &Tree{nodes: make(map[string]*Node)}
	t.recompute()
	return t
}

// Update absorbs an applied action: if creator is new, the node is
// inserted with first=0, last=seq (seq is expected to be 1 — the first
// action a creator ever produces). If creator is known, last is raised
// to max(last, seq). The root digest is refreshed either way.
func (t *Tree) Update(creator string, seq uint64) error {
	n, ok := t.nodes[creator]
	if !ok {
		if seq != 1 {
			return errNotFirstSeq(creator, seq)
		}
		t.nodes[creator] = &Node{Creator: creator, First: 0, Last: seq}
		t.recompute()
		return nil
	}
	if seq > n.Last {
		n.Last = seq
		t.recompute()
	}
	return nil
}

// AddNode inserts an empty node (last=0) for a creator observed only
// through a sync/recovery response, not yet through an applied action.
// A no-op if the creator is already known.
func (t *Tree) AddNode(creator string) {
	if _, ok := t.nodes[creator]; ok {
		return
	}
	t.nodes[creator] = &Node{Creator: creator}
	t.recompute()
}

// Restore directly sets a node's last-applied seq from persisted state
// at startup, bypassing Update's seq==1-for-new-creator assertion (the
// TreeStore may well have recorded a creator at a seq far past 1).
// Replaying a creator already present in the in-memory tree only raises
// its Last when the stored seq is higher. Startup replay covers every
// row the store has, including those the tree does not yet know about —
// not, as original_source's readNodeFromDatabase did, only rows the
// tree already has.
func (t *Tree) Restore(creator string, last uint64) {
	if n, ok := t.nodes[creator]; ok {
		if last > n.Last {
			n.Last = last
			t.recompute()
		}
		return
	}
	t.nodes[creator] = &Node{Creator: creator, First: last, Last: last}
	t.recompute()
}

// AbsorbSnapshot applies a SNAPSHOT's (creator, last) row (spec.md
// §4.7 "updateSyncTree"): unlike Restore, which only ever raises Last,
// AbsorbSnapshot also raises First to the same bound, since a snapshot
// row represents state already truncated out of the ActionLog — there
// is nothing before it left to fetch.
func (t *Tree) AbsorbSnapshot(creator string, last uint64) {
	n, ok := t.nodes[creator]
	if !ok {
		t.nodes[creator] = &Node{Creator: creator, First: last, Last: last}
		t.recompute()
		return
	}
	changed := false
	if last > n.Last {
		n.Last = last
		changed = true
	}
	if last > n.First {
		n.First = last
	}
	if changed {
		t.recompute()
	}
}

// UpdateForSnapshot marks first := last for every node, recording the
// boundary a just-built snapshot covers.
func (t *Tree) UpdateForSnapshot() {
	for _, n := range t.nodes {
		n.First = n.Last
	}
	// first never participates in the digest, so no recompute needed.
}

// Lookup returns the node for creator, if known.
func (t *Tree) Lookup(creator string) (Node, bool) {
	n, ok := t.nodes[creator]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Enumerate visits every node in canonical (lexicographic-by-creator)
// order — the order RootDigest derives from, and what spec.md calls
// begin()/end().
func (t *Tree) Enumerate(f func(Node)) {
	for _, n := range t.sortedNodes() {
		f(*n)
	}
}

// RootDigest returns SHA-256 over the concatenation of every node's leaf
// digest, iterated in canonical creator order. It is a pure function of
// {(creator, last)} regardless of the order Update/AddNode were called.
func (t *Tree) RootDigest() [32]byte {
	return t.root
}

// ApplyEntry is a convenience wrapper around Update for an action.Entry.
func (t *Tree) ApplyEntry(e action.Entry) error {
	return t.Update(e.Creator, e.Seq)
}

func (t *Tree) sortedNodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Creator < out[j].Creator })
	return out
}

func (t *Tree) recompute() {
	h := sha256.New()
	for _, n := range t.sortedNodes() {
		d := LeafDigest(n.Creator, n.Last)
		h.Write(d[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	t.root = out
}

// InitialDigest is the root digest of an empty tree, used to seed the
// ActionLog's sentinel entry.
func InitialDigest() [32]byte {
	return New().RootDigest()
}

func errNotFirstSeq(creator string, seq uint64) error {
	return &notFirstSeqError{creator: creator, seq: seq}
}

type notFirstSeqError struct {
	creator string
	seq     uint64
}

func (e *notFirstSeqError) Error() string {
	return "tree: creator " + e.creator + " observed for the first time at non-initial seq"
}
