// Package genealogy tracks the mutation lineage of virus strains as a
// directed acyclic graph rooted at a fixed stem strain.
//
// A Genealogy owns every strain in a single map keyed by identifier. Parent
// and child edges are stored as identifiers and resolved through that map,
// so the map is the only thing keeping a strain alive.
//
// # Invariants
//
//   - Every strain except the stem has at least one parent.
//   - Edges are mirrored: B is a child of A exactly when A is a parent of B.
//   - Identifiers never change; the stem can never be removed.
//
// The graph must stay acyclic. Connect does not check this and behaviour
// after a cycle is introduced is undefined.
//
// # Errors
//
// Failures are *Error values carrying an ErrorCode. Match them with
// errors.Is against ErrNotFound, ErrAlreadyExists and ErrRemoveStem, or with
// the IsNotFound/IsAlreadyExists/IsRemoveStem helpers. A failed call leaves
// the genealogy exactly as it was.
//
// # Concurrency
//
// A Genealogy is single-owner. Callers sharing one across goroutines must
// serialise access themselves.
//
// # Usage
//
//	g := genealogy.New(strain.ID("S0"), strain.New)
//	_ = g.Create("S1", "S0")
//	_ = g.CreateFrom("S2", []strain.ID{"S0", "S1"})
//	_ = g.Remove("S1") // S2 survives through S0
package genealogy
