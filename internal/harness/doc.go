// Package harness runs strain genealogy scenarios.
//
// A scenario names a stem, a list of steps applied in order to a fresh
// genealogy, and assertions checked against the final lineage. Every step
// is recorded in a trace; traces are serialized to canonical JSON and
// compared against golden files.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cascade
//	description: "removing A prunes B but keeps C"
//	stem: R
//	steps:
//	  - op: create
//	    id: A
//	    parents: [R]
//	  - op: create
//	    id: C
//	    parents: [A, R]
//	  - op: remove
//	    id: R
//	    expect_error: remove_stem
//	assertions:
//	  - type: parents
//	    id: C
//	    ids: [A, R]
//
// or CUE files with the same field names. Unknown fields are rejected in
// both formats.
//
// # Steps
//
//   - create: create id under parents (one or more)
//   - connect: add the edge parents[0] -> id
//   - remove: remove id and everything only reachable through it
//
// A step without expect_error must succeed. With expect_error set to
// not_found, already_exists or remove_stem, the step must fail with that
// kind. Mismatches fail the scenario but do not stop it.
//
// # Assertion Types
//
//   - exists / absent: id is or is not in the genealogy
//   - parents / children: immediate neighbours of id equal ids
//   - ancestors / descendants: every strain reachable from id through
//     parent (or child) edges equals ids
//   - count: the genealogy holds exactly count strains
//   - valid: the structural invariants hold
//
// # Deterministic Testing
//
// Trace steps are numbered by a testutil.Sequence starting at 1, removal
// sets are sorted, and canonical JSON fixes key order, so a scenario
// produces byte-identical traces on every run. Only Result.RunID varies.
package harness
