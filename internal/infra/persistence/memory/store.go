// Package memory provides the in-memory town store that owns every town record
// held by a registry. Records are keyed by identity; the index and hierarchy
// layers keep only TownID references and resolve them through the store.
package memory

import (
	"slices"

	"towncore/pkg/domain"
)

// Town aliases domain.Town for store operations.
type Town = domain.Town

// TownID aliases domain.TownID.
type TownID = domain.TownID

// Store is a map-backed arena of town records. It performs no locking; the
// owning registry is expected to serialize access.
type Store struct {
	towns map[TownID]*Town
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{towns: make(map[TownID]*Town)}
}

func cloneTown(t Town) Town {
	return t.Clone()
}

// Insert stores a copy of t. It returns false and leaves the store untouched
// when the id is already present.
func (s *Store) Insert(t Town) bool {
	if _, exists := s.towns[t.ID]; exists {
		return false
	}
	rec := cloneTown(t)
	if rec.Master == "" {
		rec.Master = domain.NoID
	}
	s.towns[t.ID] = &rec
	return true
}

// Get returns a copy of the town record.
func (s *Store) Get(id TownID) (Town, bool) {
	rec, ok := s.towns[id]
	if !ok {
		return Town{}, false
	}
	return cloneTown(*rec), true
}

// Contains reports whether id is stored.
func (s *Store) Contains(id TownID) bool {
	_, ok := s.towns[id]
	return ok
}

// UpdateName renames a stored town.
func (s *Store) UpdateName(id TownID, name string) bool {
	rec, ok := s.towns[id]
	if !ok {
		return false
	}
	rec.Name = name
	return true
}

// Remove deletes the record. Hierarchy edges pointing at it must already be
// detached by the caller.
func (s *Store) Remove(id TownID) bool {
	if _, ok := s.towns[id]; !ok {
		return false
	}
	delete(s.towns, id)
	return true
}

// Len returns the number of stored towns.
func (s *Store) Len() int {
	return len(s.towns)
}

// Clear drops every record.
func (s *Store) Clear() {
	clear(s.towns)
}

// IDs returns every stored id in map order.
func (s *Store) IDs() []TownID {
	out := make([]TownID, 0, len(s.towns))
	for id := range s.towns {
		out = append(out, id)
	}
	return out
}

// Range calls fn with each record until fn returns false. The record must not
// be mutated or retained.
func (s *Store) Range(fn func(t *Town) bool) {
	for _, rec := range s.towns {
		if !fn(rec) {
			return
		}
	}
}

// Name returns the current name of id, or "" when unknown.
func (s *Store) Name(id TownID) string {
	if rec, ok := s.towns[id]; ok {
		return rec.Name
	}
	return ""
}

// Distance returns the immutable origin distance of id, or domain.NoValue.
func (s *Store) Distance(id TownID) int {
	if rec, ok := s.towns[id]; ok {
		return rec.Distance
	}
	return domain.NoValue
}

// Tax returns the own tax of id, or domain.NoValue.
func (s *Store) Tax(id TownID) int {
	if rec, ok := s.towns[id]; ok {
		return rec.Tax
	}
	return domain.NoValue
}

// Master returns the master of id (domain.NoID for a root) and whether id is known.
func (s *Store) Master(id TownID) (TownID, bool) {
	rec, ok := s.towns[id]
	if !ok {
		return domain.NoID, false
	}
	return rec.Master, true
}

// SetMaster overwrites the back-reference of id.
func (s *Store) SetMaster(id, master TownID) {
	if rec, ok := s.towns[id]; ok {
		rec.Master = master
	}
}

// Vassals returns the live vassal collection of id. Callers must not modify it.
func (s *Store) Vassals(id TownID) []TownID {
	if rec, ok := s.towns[id]; ok {
		return rec.Vassals
	}
	return nil
}

// AppendVassal adds vassal to the end of master's collection unless already present.
func (s *Store) AppendVassal(master, vassal TownID) {
	rec, ok := s.towns[master]
	if !ok || slices.Contains(rec.Vassals, vassal) {
		return
	}
	rec.Vassals = append(rec.Vassals, vassal)
}

// DetachVassal removes vassal from master's collection, keeping the order of
// the remaining entries.
func (s *Store) DetachVassal(master, vassal TownID) bool {
	rec, ok := s.towns[master]
	if !ok {
		return false
	}
	i := slices.Index(rec.Vassals, vassal)
	if i < 0 {
		return false
	}
	rec.Vassals = slices.Delete(rec.Vassals, i, i+1)
	return true
}

// ClearVassals empties the collection of id.
func (s *Store) ClearVassals(id TownID) {
	if rec, ok := s.towns[id]; ok {
		rec.Vassals = nil
	}
}

// SortVassals sorts the collection of id ascending by identity, in place.
func (s *Store) SortVassals(id TownID) {
	if rec, ok := s.towns[id]; ok && len(rec.Vassals) > 1 {
		slices.Sort(rec.Vassals)
	}
}
