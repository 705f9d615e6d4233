package genealogy

import (
	"cmp"
	"maps"
	"slices"
)

// node is one strain record. Edges hold identifiers, never pointers: the
// genealogy's id → node map is the only owner of a node.
type node[ID cmp.Ordered, V any] struct {
	id       ID
	virus    V
	parents  map[ID]struct{}
	children map[ID]struct{}
}

func newNode[ID cmp.Ordered, V any](id ID, virus V) *node[ID, V] {
	return &node[ID, V]{
		id:       id,
		virus:    virus,
		parents:  make(map[ID]struct{}),
		children: make(map[ID]struct{}),
	}
}

// clone copies the edge sets. The payload is shared; it is never mutated by
// the genealogy.
func (n *node[ID, V]) clone() *node[ID, V] {
	return &node[ID, V]{
		id:       n.id,
		virus:    n.virus,
		parents:  maps.Clone(n.parents),
		children: maps.Clone(n.children),
	}
}

func (n *node[ID, V]) parentIDs() []ID {
	return sortedIDs(n.parents)
}

func (n *node[ID, V]) childIDs() []ID {
	return sortedIDs(n.children)
}

// sortedIDs never returns nil so empty edge sets serialize as [].
func sortedIDs[ID cmp.Ordered](set map[ID]struct{}) []ID {
	ids := slices.AppendSeq(make([]ID, 0, len(set)), maps.Keys(set))
	slices.Sort(ids)
	return ids
}
