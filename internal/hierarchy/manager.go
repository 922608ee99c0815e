// Package hierarchy maintains the single-parent master/vassal overlay on top of
// the town store. Edges are identity keyed and live on the stored records;
// the manager only reads and rewrites them through Tree.
package hierarchy

import (
	"slices"

	"towncore/pkg/domain"
)

// Tree exposes the edge storage the manager operates on.
type Tree interface {
	Contains(id domain.TownID) bool
	Tax(id domain.TownID) int
	Master(id domain.TownID) (domain.TownID, bool)
	SetMaster(id, master domain.TownID)
	Vassals(id domain.TownID) []domain.TownID
	AppendVassal(master, vassal domain.TownID)
	DetachVassal(master, vassal domain.TownID) bool
	ClearVassals(id domain.TownID)
	SortVassals(id domain.TownID)
}

// Manager implements link, unlink and path queries over a Tree.
type Manager struct {
	tree Tree
}

// NewManager constructs a manager over tree.
func NewManager(tree Tree) *Manager {
	return &Manager{tree: tree}
}

func isRoot(master domain.TownID) bool {
	return master == domain.NoID || master == ""
}

// Link makes vassal a direct vassal of master. It fails when either id is
// unknown, vassal already has a master, the ids are equal, or master lies in
// the subtree of vassal.
func (m *Manager) Link(vassal, master domain.TownID) bool {
	if vassal == master || !m.tree.Contains(master) {
		return false
	}
	current, ok := m.tree.Master(vassal)
	if !ok || !isRoot(current) {
		return false
	}
	if m.isAncestor(vassal, master) {
		return false
	}
	m.tree.AppendVassal(master, vassal)
	m.tree.SetMaster(vassal, master)
	return true
}

// isAncestor reports whether candidate appears on the master chain of id.
func (m *Manager) isAncestor(candidate, id domain.TownID) bool {
	for cur := id; ; {
		master, ok := m.tree.Master(cur)
		if !ok || isRoot(master) {
			return false
		}
		if master == candidate {
			return true
		}
		cur = master
	}
}

// Detach cuts id out of the hierarchy. Its vassals move to its master, in
// collection order, or become roots when id has no master.
func (m *Manager) Detach(id domain.TownID) bool {
	master, ok := m.tree.Master(id)
	if !ok {
		return false
	}
	vassals := slices.Clone(m.tree.Vassals(id))
	if !isRoot(master) {
		m.tree.DetachVassal(master, id)
	}
	for _, v := range vassals {
		if isRoot(master) {
			m.tree.SetMaster(v, domain.NoID)
			continue
		}
		m.tree.SetMaster(v, master)
		m.tree.AppendVassal(master, v)
	}
	m.tree.ClearVassals(id)
	m.tree.SetMaster(id, domain.NoID)
	return true
}

// AncestorPath returns id followed by its master chain up to the root, or nil
// when id is unknown.
func (m *Manager) AncestorPath(id domain.TownID) []domain.TownID {
	if !m.tree.Contains(id) {
		return nil
	}
	path := []domain.TownID{id}
	for cur := id; ; {
		master, _ := m.tree.Master(cur)
		if isRoot(master) {
			return path
		}
		path = append(path, master)
		cur = master
	}
}

type frame struct {
	id   domain.TownID
	next int
}

// postOrder visits every node of the subtree rooted at id after all of its
// vassals, without recursion.
func (m *Manager) postOrder(id domain.TownID, visit func(id domain.TownID, vassals []domain.TownID)) {
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		vassals := m.tree.Vassals(top.id)
		if top.next < len(vassals) {
			child := vassals[top.next]
			top.next++
			stack = append(stack, frame{id: child})
			continue
		}
		visit(top.id, vassals)
		stack = stack[:len(stack)-1]
	}
}

// DeepestDescendantPath returns the longest downward path starting at id. On
// equal depth the vassal earliest in collection order wins. It returns nil
// when id is unknown.
func (m *Manager) DeepestDescendantPath(id domain.TownID) []domain.TownID {
	if !m.tree.Contains(id) {
		return nil
	}
	depth := make(map[domain.TownID]int)
	next := make(map[domain.TownID]domain.TownID)
	m.postOrder(id, func(node domain.TownID, vassals []domain.TownID) {
		best, pick := 1, domain.NoID
		for _, v := range vassals {
			if depth[v]+1 > best {
				best, pick = depth[v]+1, v
			}
		}
		depth[node] = best
		next[node] = pick
	})
	path := make([]domain.TownID, 0, depth[id])
	for cur := id; cur != domain.NoID; cur = next[cur] {
		path = append(path, cur)
	}
	return path
}

// RetainedTax returns the tax id keeps after collecting from its subtree. Each
// town collects its own tax plus a tenth (rounded down) of what every direct
// vassal collected, and forwards a tenth of its own collection to its master.
func (m *Manager) RetainedTax(id domain.TownID) (int, bool) {
	master, ok := m.tree.Master(id)
	if !ok {
		return domain.NoValue, false
	}
	collected := make(map[domain.TownID]int)
	m.postOrder(id, func(node domain.TownID, vassals []domain.TownID) {
		total := m.tree.Tax(node)
		for _, v := range vassals {
			total += collected[v] / 10
		}
		collected[node] = total
	})
	total := collected[id]
	if isRoot(master) {
		return total, true
	}
	return total - total/10, true
}

// Vassals sorts the collection of id by identity and returns a copy. Unknown
// ids yield nil.
func (m *Manager) Vassals(id domain.TownID) []domain.TownID {
	if !m.tree.Contains(id) {
		return nil
	}
	m.tree.SortVassals(id)
	return append([]domain.TownID{}, m.tree.Vassals(id)...)
}
