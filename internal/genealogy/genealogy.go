package genealogy

import (
	"cmp"
	"io"
	"log/slog"
	"maps"
	"slices"
)

// Virus is the payload contract: a value built from an identifier that can
// report that identifier back.
type Virus[ID cmp.Ordered] interface {
	ID() ID
}

// Option configures a Genealogy.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger routes mutation logs to logger instead of slog.Default().
// A nil logger discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		o.logger = logger
	}
}

// noCopy makes `go vet` (copylocks) flag copies of the containing struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Genealogy is a lineage DAG of strains rooted at a fixed stem.
//
// It must not be copied after construction; always hold it by pointer.
// It is not safe for concurrent use.
type Genealogy[ID cmp.Ordered, V Virus[ID]] struct {
	noCopy noCopy

	stemID   ID
	newVirus func(ID) V
	nodes    map[ID]*node[ID, V]
	logger   *slog.Logger
}

// New creates a genealogy holding only the stem strain stemID.
// newVirus builds the payload for every strain from its identifier.
//
// Panics if newVirus is nil.
func New[ID cmp.Ordered, V Virus[ID]](stemID ID, newVirus func(ID) V, opts ...Option) *Genealogy[ID, V] {
	if newVirus == nil {
		panic("genealogy: nil virus constructor")
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Genealogy[ID, V]{
		stemID:   stemID,
		newVirus: newVirus,
		nodes:    make(map[ID]*node[ID, V]),
		logger:   o.logger,
	}
	g.nodes[stemID] = newNode(stemID, newVirus(stemID))
	return g
}

// StemID returns the identifier of the stem strain.
func (g *Genealogy[ID, V]) StemID() ID {
	return g.stemID
}

// Exists reports whether a strain with the given id is present.
func (g *Genealogy[ID, V]) Exists(id ID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Get returns the payload stored for id.
func (g *Genealogy[ID, V]) Get(id ID) (V, error) {
	n, ok := g.nodes[id]
	if !ok {
		var zero V
		return zero, notFound("get", id)
	}
	return n.virus, nil
}

// Len returns the number of strains, stem included.
func (g *Genealogy[ID, V]) Len() int {
	return len(g.nodes)
}

// IDs returns every strain identifier in ascending order.
func (g *Genealogy[ID, V]) IDs() []ID {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Parents returns the immediate parents of id in ascending order.
func (g *Genealogy[ID, V]) Parents(id ID) ([]ID, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("parents", id)
	}
	return n.parentIDs(), nil
}

// Children returns the immediate children of id in ascending order.
func (g *Genealogy[ID, V]) Children(id ID) ([]ID, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, notFound("children", id)
	}
	return n.childIDs(), nil
}

// Create adds strain id derived from parentID.
//
// Returns an ALREADY_EXISTS error if id is present and a NOT_FOUND error if
// parentID is absent. On error the genealogy is unchanged.
func (g *Genealogy[ID, V]) Create(id, parentID ID) error {
	return g.create("create", id, []ID{parentID})
}

// CreateFrom adds strain id derived from every strain in parentIDs.
//
// Returns an ALREADY_EXISTS error if id is present, and a NOT_FOUND error if
// parentIDs is empty or names an absent strain. All checks run before any
// mutation, so on error the genealogy is unchanged.
func (g *Genealogy[ID, V]) CreateFrom(id ID, parentIDs []ID) error {
	return g.create("create", id, parentIDs)
}

func (g *Genealogy[ID, V]) create(op string, id ID, parentIDs []ID) error {
	if g.Exists(id) {
		return &Error{Code: ErrCodeAlreadyExists, Op: op, ID: fmtID(id)}
	}
	if len(parentIDs) == 0 {
		return &Error{Code: ErrCodeNotFound, Op: op, ID: fmtID(id)}
	}
	for _, pid := range parentIDs {
		if !g.Exists(pid) {
			return notFound(op, pid)
		}
	}

	n := newNode(id, g.newVirus(id))
	for _, pid := range parentIDs {
		n.parents[pid] = struct{}{}
		g.nodes[pid].children[id] = struct{}{}
	}
	g.nodes[id] = n

	g.logger.Debug("strain created", "id", id, "parents", n.parentIDs())
	return nil
}

// Connect adds an edge making parentID a parent of childID.
//
// Returns a NOT_FOUND error if either strain is absent. Connecting an
// existing edge again is a no-op. Cycles are not detected; the genealogy's
// behaviour once one exists is undefined.
func (g *Genealogy[ID, V]) Connect(childID, parentID ID) error {
	child, ok := g.nodes[childID]
	if !ok {
		return notFound("connect", childID)
	}
	parent, ok := g.nodes[parentID]
	if !ok {
		return notFound("connect", parentID)
	}

	child.parents[parentID] = struct{}{}
	parent.children[childID] = struct{}{}

	g.logger.Debug("strains connected", "child", childID, "parent", parentID)
	return nil
}
