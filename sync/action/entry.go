// Package action defines ActionEntry, the atomic unit of replication
// (spec.md §3), and its canonical entryName encoding used for both PIT
// and ActionLog lookups.
package action

import (
	"fmt"

	"github.com/WeiqiJust/NDN-Repo/sync/names"
)

// Kind tags what an Entry does to the referenced data object.
type Kind uint8

const (
	Insertion Kind = iota
	Deletion
	Others
)

func (k Kind) String() string {
	switch k {
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	default:
		return "others"
	}
}

// Entry is one replicated log record.
type Entry struct {
	Creator  string // peer identity, hierarchical name
	Seq      uint64 // monotonically increasing within Creator, starting at 1
	Kind     Kind
	DataName string // name of the referenced data object (Insertion/Deletion)
	Version  uint64 // per-(DataName, Kind) counter, informational
}

// Name returns the canonical encoding used for lookups and signatures:
// <creator>/<seq>/<kind>/<dataName>/<version>.
func (e Entry) Name() string {
	return names.Join(e.Creator, fmt.Sprintf("%d", e.Seq), e.Kind.String(), e.DataName, fmt.Sprintf("%d", e.Version))
}
