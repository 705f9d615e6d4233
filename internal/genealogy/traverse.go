package genealogy

import "slices"

// Ancestors returns every strain id descends from, directly or not, in
// ascending order. The stem's ancestors are empty unless edges were
// connected into it.
func (g *Genealogy[ID, V]) Ancestors(id ID) ([]ID, error) {
	if !g.Exists(id) {
		return nil, notFound("ancestors", id)
	}
	return g.reach(id, func(n *node[ID, V]) map[ID]struct{} { return n.parents }), nil
}

// Descendants returns every strain descending from id in ascending order.
func (g *Genealogy[ID, V]) Descendants(id ID) ([]ID, error) {
	if !g.Exists(id) {
		return nil, notFound("descendants", id)
	}
	return g.reach(id, func(n *node[ID, V]) map[ID]struct{} { return n.children }), nil
}

// IsAncestor reports whether ancestorID is reachable from id through parent
// edges.
func (g *Genealogy[ID, V]) IsAncestor(ancestorID, id ID) (bool, error) {
	if !g.Exists(ancestorID) {
		return false, notFound("is-ancestor", ancestorID)
	}
	ancestors, err := g.Ancestors(id)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(ancestors, ancestorID)
	return found, nil
}

// reach walks breadth-first from start along next and returns the visited
// ids, start excluded. The visited set keeps the walk finite even if a
// caller has introduced a cycle.
func (g *Genealogy[ID, V]) reach(start ID, next func(*node[ID, V]) map[ID]struct{}) []ID {
	seen := map[ID]struct{}{start: {}}
	out := []ID{}
	q := newFIFO(start)

	for q.len() > 0 {
		id, _ := q.pop()
		for nid := range next(g.nodes[id]) {
			if _, ok := seen[nid]; ok {
				continue
			}
			seen[nid] = struct{}{}
			out = append(out, nid)
			q.push(nid)
		}
	}

	slices.Sort(out)
	return out
}
