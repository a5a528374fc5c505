// Package wire implements the SyncMessage codec (spec.md §4.5): a single
// wire message type carrying one of an ACTION list, an ACTION-name list,
// or a SNAPSHOT.
//
// The teacher encodes everything with rlp — recursive length-prefixed
// lists of byte strings (see rlp/count.go's doc comment on the encoding
// rules). SyncMessage borrows that shape (every field is length-prefixed,
// lists are length-prefixed sequences of elements) but is written by
// hand against our three fixed variants rather than through rlp's
// reflection-based encoder, since the wire schema here is small and
// fixed rather than open-ended like Ethereum's RLP-encoded types.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/WeiqiJust/NDN-Repo/sync/action"
	"github.com/WeiqiJust/NDN-Repo/sync/syncerr"
)

// Type tags which payload a Message carries.
type Type uint8

const (
	TypeActionList Type = iota
	TypeActionNameList
	TypeSnapshot
)

// ActionNamePair is a (creator, seq) pair, as used in sync/recovery
// responses.
type ActionNamePair struct {
	Creator string
	Seq     uint64
}

// DataStatus mirrors the external store's getDataStatus result.
type DataStatus uint8

const (
	StatusNone DataStatus = iota
	StatusExisted
	StatusDeleted
	StatusInserted
)

// DataStatusPair is one row of a SNAPSHOT's store enumeration.
type DataStatusPair struct {
	DataName string
	Status   DataStatus
}

// TreeEntry is one row of a SNAPSHOT's tree enumeration.
type TreeEntry struct {
	Creator string
	Last    uint64
}

// Snapshot is the SNAPSHOT payload: store enumeration, tree enumeration,
// and the snapshot's own (creator, seq) identity.
type Snapshot struct {
	Data             []DataStatusPair
	Tree             []TreeEntry
	SnapshotCreator  string
	SnapshotSeq      uint64
}

// Message is the single wire type a Data packet carries in reply to a
// sync, fetch, or recovery Interest. Exactly one of Actions, Names, or
// Snap is meaningful, selected by Type.
type Message struct {
	Type    Type
	Actions []action.Entry
	Names   []ActionNamePair
	Snap    *Snapshot
}

// NewActionList wraps entries as an ACTION list message.
func NewActionList(entries ...action.Entry) Message {
	return Message{Type: TypeActionList, Actions: entries}
}

// NewActionNameList wraps pairs as an ACTION-name list message.
func NewActionNameList(pairs ...ActionNamePair) Message {
	return Message{Type: TypeActionNameList, Names: pairs}
}

// NewSnapshot wraps snap as a SNAPSHOT message.
func NewSnapshot(snap Snapshot) Message {
	return Message{Type: TypeSnapshot, Snap: &snap}
}

// ---- encoding primitives: length-prefixed strings/varints, recursively
// composed, in rlp's spirit. ----

type encoder struct{ buf []byte }

func (e *encoder) putUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	e.buf = append(e.buf, tmp[:n]...)
}

func (e *encoder) putString(s string) {
	e.putUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("truncated varint at offset %d", d.pos)
	}
	d.pos += n
	return v, nil
}

func (d *decoder) string() (string, error) {
	n, err := d.uvarint()
	if err != nil {
		return "", err
	}
	if uint64(d.pos)+n > uint64(len(d.buf)) {
		return "", fmt.Errorf("truncated string at offset %d (need %d, have %d)", d.pos, n, len(d.buf)-d.pos)
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

// Encode serializes m into a byte slice.
func Encode(m Message) []byte {
	e := &encoder{}
	e.buf = append(e.buf, byte(m.Type))
	switch m.Type {
	case TypeActionList:
		e.putUvarint(uint64(len(m.Actions)))
		for _, a := range m.Actions {
			e.putString(a.Creator)
			e.putUvarint(a.Seq)
			e.buf = append(e.buf, byte(a.Kind))
			e.putString(a.DataName)
			e.putUvarint(a.Version)
		}
	case TypeActionNameList:
		e.putUvarint(uint64(len(m.Names)))
		for _, p := range m.Names {
			e.putString(p.Creator)
			e.putUvarint(p.Seq)
		}
	case TypeSnapshot:
		snap := m.Snap
		if snap == nil {
			snap = &Snapshot{}
		}
		e.putUvarint(uint64(len(snap.Data)))
		for _, d := range snap.Data {
			e.putString(d.DataName)
			e.buf = append(e.buf, byte(d.Status))
		}
		e.putUvarint(uint64(len(snap.Tree)))
		for _, te := range snap.Tree {
			e.putString(te.Creator)
			e.putUvarint(te.Last)
		}
		e.putString(snap.SnapshotCreator)
		e.putUvarint(snap.SnapshotSeq)
	}
	return e.buf
}

// Decode parses raw into a Message. Decode failures are reported as
// *syncerr.DecodeError, never a panic — a malformed Data item must abort
// only the current handler, per spec.md §7.
func Decode(raw []byte) (Message, error) {
	if len(raw) == 0 {
		return Message{}, syncerr.NewDecodeError("message", fmt.Errorf("empty wire payload"))
	}
	d := &decoder{buf: raw, pos: 1}
	m := Message{Type: Type(raw[0])}

	wrap := func(err error) (Message, error) {
		return Message{}, syncerr.NewDecodeError("message", err)
	}

	switch m.Type {
	case TypeActionList:
		n, err := d.uvarint()
		if err != nil {
			return wrap(err)
		}
		m.Actions = make([]action.Entry, 0, n)
		for i := uint64(0); i < n; i++ {
			var a action.Entry
			if a.Creator, err = d.string(); err != nil {
				return wrap(err)
			}
			if a.Seq, err = d.uvarint(); err != nil {
				return wrap(err)
			}
			if d.pos >= len(d.buf) {
				return wrap(fmt.Errorf("truncated action kind"))
			}
			a.Kind = action.Kind(d.buf[d.pos])
			d.pos++
			if a.DataName, err = d.string(); err != nil {
				return wrap(err)
			}
			if a.Version, err = d.uvarint(); err != nil {
				return wrap(err)
			}
			m.Actions = append(m.Actions, a)
		}
	case TypeActionNameList:
		n, err := d.uvarint()
		if err != nil {
			return wrap(err)
		}
		m.Names = make([]ActionNamePair, 0, n)
		for i := uint64(0); i < n; i++ {
			var p ActionNamePair
			if p.Creator, err = d.string(); err != nil {
				return wrap(err)
			}
			if p.Seq, err = d.uvarint(); err != nil {
				return wrap(err)
			}
			m.Names = append(m.Names, p)
		}
	case TypeSnapshot:
		snap := &Snapshot{}
		n, err := d.uvarint()
		if err != nil {
			return wrap(err)
		}
		snap.Data = make([]DataStatusPair, 0, n)
		for i := uint64(0); i < n; i++ {
			var dp DataStatusPair
			if dp.DataName, err = d.string(); err != nil {
				return wrap(err)
			}
			if d.pos >= len(d.buf) {
				return wrap(fmt.Errorf("truncated data status"))
			}
			dp.Status = DataStatus(d.buf[d.pos])
			d.pos++
			snap.Data = append(snap.Data, dp)
		}
		n, err = d.uvarint()
		if err != nil {
			return wrap(err)
		}
		snap.Tree = make([]TreeEntry, 0, n)
		for i := uint64(0); i < n; i++ {
			var te TreeEntry
			if te.Creator, err = d.string(); err != nil {
				return wrap(err)
			}
			if te.Last, err = d.uvarint(); err != nil {
				return wrap(err)
			}
			snap.Tree = append(snap.Tree, te)
		}
		if snap.SnapshotCreator, err = d.string(); err != nil {
			return wrap(err)
		}
		if snap.SnapshotSeq, err = d.uvarint(); err != nil {
			return wrap(err)
		}
		m.Snap = snap
	default:
		return wrap(fmt.Errorf("unsupported message type %d", m.Type))
	}
	return m, nil
}

// CountBytes returns len(Encode(m)), mirroring rlp.CountBytes's role as a
// pre-send size check. It encodes m once to measure it.
func CountBytes(m Message) int {
	return len(Encode(m))
}
