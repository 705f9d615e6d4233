package genealogy

import (
	"cmp"
	"fmt"
)

// Snapshot is a detached, ordered copy of the genealogy's structure.
// Two genealogies with equal snapshots hold the same strains and edges.
type Snapshot[ID cmp.Ordered] struct {
	Stem  ID                 `json:"stem" yaml:"stem"`
	Nodes []NodeSnapshot[ID] `json:"nodes" yaml:"nodes"`
}

// NodeSnapshot is one strain with its sorted edges.
type NodeSnapshot[ID cmp.Ordered] struct {
	ID       ID   `json:"id" yaml:"id"`
	Parents  []ID `json:"parents" yaml:"parents"`
	Children []ID `json:"children" yaml:"children"`
}

// Snapshot copies the current structure, strains sorted by id.
func (g *Genealogy[ID, V]) Snapshot() Snapshot[ID] {
	ids := g.IDs()
	s := Snapshot[ID]{
		Stem:  g.stemID,
		Nodes: make([]NodeSnapshot[ID], 0, len(ids)),
	}
	for _, id := range ids {
		n := g.nodes[id]
		s.Nodes = append(s.Nodes, NodeSnapshot[ID]{
			ID:       id,
			Parents:  n.parentIDs(),
			Children: n.childIDs(),
		})
	}
	return s
}

// Validate checks the structural invariants: the stem is present, every
// other strain has at least one parent, every edge is recorded on both
// ends and points at a present strain. Acyclicity is not checked.
func (g *Genealogy[ID, V]) Validate() error {
	var violations []string

	if !g.Exists(g.stemID) {
		violations = append(violations, fmt.Sprintf("stem %v missing", g.stemID))
	}

	for _, id := range g.IDs() {
		n := g.nodes[id]
		if n.id != id {
			violations = append(violations, fmt.Sprintf("%v stored under %v", n.id, id))
		}
		if id != g.stemID && len(n.parents) == 0 {
			violations = append(violations, fmt.Sprintf("%v has no parents", id))
		}
		for _, pid := range n.parentIDs() {
			p, ok := g.nodes[pid]
			if !ok {
				violations = append(violations, fmt.Sprintf("%v has missing parent %v", id, pid))
				continue
			}
			if _, ok := p.children[id]; !ok {
				violations = append(violations, fmt.Sprintf("%v lists parent %v without back edge", id, pid))
			}
		}
		for _, cid := range n.childIDs() {
			c, ok := g.nodes[cid]
			if !ok {
				violations = append(violations, fmt.Sprintf("%v has missing child %v", id, cid))
				continue
			}
			if _, ok := c.parents[id]; !ok {
				violations = append(violations, fmt.Sprintf("%v lists child %v without back edge", id, cid))
			}
		}
	}

	if len(violations) > 0 {
		return &InvariantError{Violations: violations}
	}
	return nil
}
