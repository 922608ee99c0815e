package index

import (
	"slices"

	"towncore/pkg/domain"
)

// State reports whether an ordering has unsorted pending entries.
type State int

const (
	// Clean orderings are fully sorted.
	Clean State = iota
	// Dirty orderings carry an unsorted suffix of pending entries.
	Dirty
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// OrderingStats describes the shape of one ordering.
type OrderingStats struct {
	Len     int   `json:"len"`
	Pending int   `json:"pending"`
	State   State `json:"state"`
	Sorts   int   `json:"sorts"`
	Merges  int   `json:"merges"`
}

// ordering keeps ids as a sorted prefix followed by pending entries in
// insertion order. The last pending ids of the slice are the suffix.
type ordering struct {
	ids     []domain.TownID
	pending int
	cmp     func(a, b domain.TownID) int
	sorts   int
	merges  int
}

func newOrdering(cmp func(a, b domain.TownID) int) *ordering {
	return &ordering{cmp: cmp}
}

func (o *ordering) state() State {
	if o.pending == 0 {
		return Clean
	}
	return Dirty
}

func (o *ordering) stats() OrderingStats {
	return OrderingStats{
		Len:     len(o.ids),
		Pending: o.pending,
		State:   o.state(),
		Sorts:   o.sorts,
		Merges:  o.merges,
	}
}

func (o *ordering) prefixLen() int {
	return len(o.ids) - o.pending
}

func (o *ordering) append(id domain.TownID) {
	o.ids = append(o.ids, id)
	o.pending++
}

// materialize sorts the pending suffix and merges it into the prefix. Equal
// keys keep prefix entries first, then suffix entries in insertion order.
func (o *ordering) materialize() {
	if o.pending == 0 {
		return
	}
	split := o.prefixLen()
	slices.SortStableFunc(o.ids[split:], o.cmp)
	o.sorts++
	if split > 0 {
		merged := make([]domain.TownID, 0, len(o.ids))
		i, j := 0, split
		for i < split && j < len(o.ids) {
			if o.cmp(o.ids[j], o.ids[i]) < 0 {
				merged = append(merged, o.ids[j])
				j++
				continue
			}
			merged = append(merged, o.ids[i])
			i++
		}
		merged = append(merged, o.ids[i:split]...)
		merged = append(merged, o.ids[j:]...)
		o.ids = merged
		o.merges++
	}
	o.pending = 0
}

// locate finds id in the sorted prefix. The key of id must still be the one
// the prefix was sorted with.
func (o *ordering) locate(id domain.TownID) int {
	prefix := o.ids[:o.prefixLen()]
	i, _ := slices.BinarySearchFunc(prefix, id, o.cmp)
	for ; i < len(prefix) && o.cmp(prefix[i], id) == 0; i++ {
		if prefix[i] == id {
			return i
		}
	}
	return slices.Index(prefix, id)
}

// remove materializes the ordering and erases the exact id, not merely the
// first entry sharing its key.
func (o *ordering) remove(id domain.TownID) bool {
	o.materialize()
	i := o.locate(id)
	if i < 0 {
		return false
	}
	o.ids = slices.Delete(o.ids, i, i+1)
	return true
}

// reposition moves the prefix entry at i to the position its current key
// sorts to, after any entries with an equal key.
func (o *ordering) reposition(i int) {
	p := o.prefixLen()
	id := o.ids[i]
	copy(o.ids[i:p-1], o.ids[i+1:p])
	prefix := o.ids[:p-1]
	j, found := slices.BinarySearchFunc(prefix, id, o.cmp)
	for found && j < len(prefix) && o.cmp(prefix[j], id) == 0 {
		j++
	}
	copy(o.ids[j+1:p], o.ids[j:p-1])
	o.ids[j] = id
}

func (o *ordering) at(i int) domain.TownID {
	return o.ids[i]
}

func (o *ordering) clear() {
	o.ids = nil
	o.pending = 0
}
