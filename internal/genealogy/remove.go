package genealogy

import (
	"cmp"
	"maps"
	"slices"
)

// Remove deletes strain id and every descendant left without a parent.
//
// The cut is breadth-first: each dequeued strain is detached from its
// parents and from its children, and any child whose last parent was just
// detached is queued next. The stem is never queued. A strain that keeps
// another parent survives.
//
// Returns a NOT_FOUND error if id is absent and a REMOVE_STEM error if id is
// the stem. The cascade runs on a working copy of the node map (nodes are
// cloned on first write) and is committed with a single swap, so the live
// genealogy never observes a half-applied removal.
func (g *Genealogy[ID, V]) Remove(id ID) error {
	if !g.Exists(id) {
		return notFound("remove", id)
	}
	if id == g.stemID {
		return &Error{Code: ErrCodeRemoveStem, Op: "remove", ID: fmtID(id)}
	}

	c := newCascade(g.nodes)
	removed := c.run(id, g.stemID)
	g.nodes = c.working

	g.logger.Debug("strain removed", "id", id, "cascade", removed)
	return nil
}

// cascade is the working state of one removal.
type cascade[ID cmp.Ordered, V any] struct {
	working map[ID]*node[ID, V]
	// owned records nodes already cloned into working; only those may be
	// mutated.
	owned map[ID]struct{}
}

func newCascade[ID cmp.Ordered, V any](nodes map[ID]*node[ID, V]) *cascade[ID, V] {
	return &cascade[ID, V]{
		working: maps.Clone(nodes),
		owned:   make(map[ID]struct{}),
	}
}

// own returns a private, mutable copy of the node for id in the working map,
// or nil if id is no longer present.
func (c *cascade[ID, V]) own(id ID) *node[ID, V] {
	n, ok := c.working[id]
	if !ok {
		return nil
	}
	if _, ok := c.owned[id]; ok {
		return n
	}
	n = n.clone()
	c.working[id] = n
	c.owned[id] = struct{}{}
	return n
}

// run performs the breadth-first cut starting at start and returns the
// removed identifiers in removal order.
func (c *cascade[ID, V]) run(start, stem ID) []ID {
	var removed []ID
	q := newFIFO(start)

	for q.len() > 0 {
		id, _ := q.pop()
		n, ok := c.working[id]
		if !ok {
			continue
		}

		for pid := range n.parents {
			if parent := c.own(pid); parent != nil {
				delete(parent.children, id)
			}
		}

		// Sorted so the cascade order is reproducible.
		for _, cid := range slices.Sorted(maps.Keys(n.children)) {
			child := c.own(cid)
			if child == nil {
				continue
			}
			delete(child.parents, id)
			if len(child.parents) == 0 && cid != stem {
				q.push(cid)
			}
		}

		delete(c.working, id)
		removed = append(removed, id)
	}

	return removed
}
