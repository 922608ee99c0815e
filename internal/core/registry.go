package core

import (
	"cmp"
	"slices"

	"towncore/internal/hierarchy"
	"towncore/internal/index"
	"towncore/internal/infra/persistence/memory"
	"towncore/pkg/domain"
)

var (
	_ index.Attributes = (*memory.Store)(nil)
	_ hierarchy.Tree   = (*memory.Store)(nil)
)

// Registry composes the town store, the lazy dual index and the hierarchy
// overlay. It is single threaded and never logs; failing calls return a
// sentinel and leave all state untouched. Service wraps it for concurrent and
// observed use.
type Registry struct {
	store     *memory.Store
	index     *index.Dual
	hierarchy *hierarchy.Manager
	minID     domain.TownID
	maxID     domain.TownID
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	store := memory.NewStore()
	return &Registry{
		store:     store,
		index:     index.NewDual(store),
		hierarchy: hierarchy.NewManager(store),
		minID:     domain.NoID,
		maxID:     domain.NoID,
	}
}

// Len returns the number of registered towns.
func (r *Registry) Len() int {
	return r.store.Len()
}

// Clear removes every town.
func (r *Registry) Clear() {
	r.store.Clear()
	r.index.Clear()
	r.minID = domain.NoID
	r.maxID = domain.NoID
}

// Register adds a root town. It returns false when id is already registered
// or is one of the sentinel ids, when tax is negative, or when a coordinate
// lies outside ±domain.MaxCoord.
func (r *Registry) Register(id domain.TownID, name string, x, y, tax int) bool {
	if id == domain.NoID || id == "" || tax < 0 || !domain.InRange(x, y) {
		return false
	}
	town := domain.NewTown(id, name, x, y, tax)
	if !r.store.Insert(town) {
		return false
	}
	r.index.Append(id)
	if r.minID == domain.NoID || town.Distance < r.store.Distance(r.minID) {
		r.minID = id
	}
	if r.maxID == domain.NoID || town.Distance > r.store.Distance(r.maxID) {
		r.maxID = id
	}
	return true
}

// Rename changes the name of id.
func (r *Registry) Rename(id domain.TownID, name string) bool {
	if !r.store.Contains(id) {
		return false
	}
	r.index.Rename(id, func() { r.store.UpdateName(id, name) })
	return true
}

// Remove unregisters id. Its vassals are re-parented to its master, or become
// roots when it had none.
func (r *Registry) Remove(id domain.TownID) bool {
	if !r.store.Contains(id) {
		return false
	}
	r.hierarchy.Detach(id)
	r.index.Remove(id)
	r.store.Remove(id)
	if id == r.minID {
		r.minID, _ = r.index.Nearest()
	}
	if id == r.maxID {
		r.maxID, _ = r.index.Farthest()
	}
	return true
}

// Town returns a copy of the record of id.
func (r *Registry) Town(id domain.TownID) (domain.Town, bool) {
	return r.store.Get(id)
}

// Name returns the name of id, or domain.NoName.
func (r *Registry) Name(id domain.TownID) string {
	if !r.store.Contains(id) {
		return domain.NoName
	}
	return r.store.Name(id)
}

// Coordinates returns the position of id, or domain.NoCoord.
func (r *Registry) Coordinates(id domain.TownID) domain.Coord {
	town, ok := r.store.Get(id)
	if !ok {
		return domain.NoCoord
	}
	return town.Coord()
}

// Tax returns the own tax of id, or domain.NoValue.
func (r *Registry) Tax(id domain.TownID) int {
	return r.store.Tax(id)
}

// AllTowns returns every registered id in no particular order.
func (r *Registry) AllTowns() []domain.TownID {
	return r.store.IDs()
}

// AllByName returns every id ordered by name. Equal names keep the order in
// which they entered the ordering.
func (r *Registry) AllByName() []domain.TownID {
	return r.index.ByName()
}

// AllByDistance returns every id ordered by distance from the origin.
func (r *Registry) AllByDistance() []domain.TownID {
	return r.index.ByDistance()
}

// FindByName returns the ids named name, sorted by id. The result is empty,
// not nil, when nothing matches.
func (r *Registry) FindByName(name string) []domain.TownID {
	return r.index.FindByName(name)
}

// MinDistance returns the town closest to the origin, or domain.NoID.
func (r *Registry) MinDistance() domain.TownID {
	return r.minID
}

// MaxDistance returns the town farthest from the origin, or domain.NoID.
func (r *Registry) MaxDistance() domain.TownID {
	return r.maxID
}

// NthDistance returns the n-th town (1-based) in distance order, or
// domain.NoID when n is zero or exceeds Len.
func (r *Registry) NthDistance(n uint) domain.TownID {
	if n == 0 || n > uint(r.Len()) {
		return domain.NoID
	}
	id, _ := r.index.NthByDistance(int(n - 1))
	return id
}

// Link makes vassal a direct vassal of master.
func (r *Registry) Link(vassal, master domain.TownID) bool {
	return r.hierarchy.Link(vassal, master)
}

// Vassals returns the direct vassals of id sorted by id, or nil when unknown.
func (r *Registry) Vassals(id domain.TownID) []domain.TownID {
	return r.hierarchy.Vassals(id)
}

// AncestorPath returns id followed by its masters up to the root.
func (r *Registry) AncestorPath(id domain.TownID) []domain.TownID {
	return r.hierarchy.AncestorPath(id)
}

// DeepestDescendantPath returns the longest downward path starting at id.
func (r *Registry) DeepestDescendantPath(id domain.TownID) []domain.TownID {
	return r.hierarchy.DeepestDescendantPath(id)
}

// RetainedTax returns the tax id keeps after collection, or domain.NoValue.
func (r *Registry) RetainedTax(id domain.TownID) int {
	total, _ := r.hierarchy.RetainedTax(id)
	return total
}

// DistanceFromPoint returns every id ordered by Manhattan distance from (x, y),
// breaking ties by id. The canonical orderings are not touched. A point
// outside ±domain.MaxCoord yields nil.
func (r *Registry) DistanceFromPoint(x, y int) []domain.TownID {
	if !domain.InRange(x, y) {
		return nil
	}
	type scratch struct {
		id       domain.TownID
		distance int
	}
	origin := domain.Coord{X: x, Y: y}
	rows := make([]scratch, 0, r.store.Len())
	r.store.Range(func(t *domain.Town) bool {
		rows = append(rows, scratch{id: t.ID, distance: domain.ManhattanBetween(t.Coord(), origin)})
		return true
	})
	slices.SortFunc(rows, func(a, b scratch) int {
		return cmp.Or(cmp.Compare(a.distance, b.distance), cmp.Compare(a.id, b.id))
	})
	out := make([]domain.TownID, len(rows))
	for i, row := range rows {
		out[i] = row.id
	}
	return out
}

// IndexStats reports the lazy index state of both orderings.
func (r *Registry) IndexStats() index.Stats {
	return r.index.Stats()
}
