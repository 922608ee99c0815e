// Package index maintains the two lazily sorted orderings of registered towns:
// by name and by distance from the origin. Appends are O(1) and land in a
// pending suffix; the suffix is sorted and merged into the sorted prefix only
// when a query needs the full order.
package index

import (
	"cmp"
	"slices"
	"strings"

	"towncore/pkg/domain"
)

// Attributes resolves the sort keys of a town. Keys are read on every
// comparison, so the index never caches names or distances.
type Attributes interface {
	Name(id domain.TownID) string
	Distance(id domain.TownID) int
}

// Stats captures both orderings.
type Stats struct {
	ByName     OrderingStats `json:"by_name"`
	ByDistance OrderingStats `json:"by_distance"`
}

// Dual holds the name and distance orderings over the same id set.
type Dual struct {
	attrs      Attributes
	byName     *ordering
	byDistance *ordering
}

// NewDual constructs an empty index reading keys from attrs.
func NewDual(attrs Attributes) *Dual {
	d := &Dual{attrs: attrs}
	d.byName = newOrdering(func(a, b domain.TownID) int {
		return strings.Compare(attrs.Name(a), attrs.Name(b))
	})
	d.byDistance = newOrdering(func(a, b domain.TownID) int {
		return cmp.Compare(attrs.Distance(a), attrs.Distance(b))
	})
	return d
}

// Len returns the number of indexed ids.
func (d *Dual) Len() int {
	return len(d.byName.ids)
}

// Append adds a new id to the pending suffix of both orderings.
func (d *Dual) Append(id domain.TownID) {
	d.byName.append(id)
	d.byDistance.append(id)
}

// Materialize brings both orderings to the Clean state.
func (d *Dual) Materialize() {
	d.byName.materialize()
	d.byDistance.materialize()
}

// Remove erases id from both orderings. The record of id must still be
// resolvable through Attributes.
func (d *Dual) Remove(id domain.TownID) bool {
	okName := d.byName.remove(id)
	okDistance := d.byDistance.remove(id)
	return okName && okDistance
}

// Rename runs apply, which changes the stored name of id, and keeps the name
// ordering sorted. An id still pending needs no repositioning.
func (d *Dual) Rename(id domain.TownID, apply func()) {
	i := d.byName.locate(id)
	apply()
	if i >= 0 {
		d.byName.reposition(i)
	}
}

// ByName returns a copy of the name ordering.
func (d *Dual) ByName() []domain.TownID {
	d.byName.materialize()
	return slices.Clone(d.byName.ids)
}

// ByDistance returns a copy of the distance ordering.
func (d *Dual) ByDistance() []domain.TownID {
	d.byDistance.materialize()
	return slices.Clone(d.byDistance.ids)
}

// NthByDistance returns the id at zero-based position i of the distance ordering.
func (d *Dual) NthByDistance(i int) (domain.TownID, bool) {
	if i < 0 || i >= d.Len() {
		return domain.NoID, false
	}
	d.byDistance.materialize()
	return d.byDistance.at(i), true
}

// Nearest returns the id with the smallest distance; ties go to the entry that
// sorts first.
func (d *Dual) Nearest() (domain.TownID, bool) {
	return d.NthByDistance(0)
}

// Farthest returns the id with the largest distance.
func (d *Dual) Farthest() (domain.TownID, bool) {
	return d.NthByDistance(d.Len() - 1)
}

// FindByName returns every id whose name equals name, sorted by id.
func (d *Dual) FindByName(name string) []domain.TownID {
	d.byName.materialize()
	ids := d.byName.ids
	i, found := slices.BinarySearchFunc(ids, name, func(id domain.TownID, target string) int {
		return strings.Compare(d.attrs.Name(id), target)
	})
	if !found {
		return []domain.TownID{}
	}
	j := i
	for j < len(ids) && d.attrs.Name(ids[j]) == name {
		j++
	}
	out := slices.Clone(ids[i:j])
	slices.Sort(out)
	return out
}

// Clear drops every id.
func (d *Dual) Clear() {
	d.byName.clear()
	d.byDistance.clear()
}

// Stats reports the current shape of both orderings.
func (d *Dual) Stats() Stats {
	return Stats{ByName: d.byName.stats(), ByDistance: d.byDistance.stats()}
}
