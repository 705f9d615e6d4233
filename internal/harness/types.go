package harness

import (
	"github.com/roach88/genealogy/internal/genealogy"
	"github.com/roach88/genealogy/internal/strain"
)

// OutcomeOK marks a step that succeeded. Failed steps carry the lower-case
// error code instead (not_found, already_exists, remove_stem).
const OutcomeOK = "ok"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Op      string   `json:"op"`
	ID      string   `json:"id"`
	Parents []string `json:"parents,omitempty"`
	Outcome string   `json:"outcome"`

	// Removed lists every strain a successful remove erased, sorted.
	Removed []string `json:"removed,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// RunID identifies this execution. It is not part of golden traces.
	RunID string `json:"run_id"`

	// Trace contains every step in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Final is the genealogy after the last step.
	Final genealogy.Snapshot[strain.ID] `json:"final"`

	// Digest is the domain-separated hash of Final's canonical form.
	Digest string `json:"digest"`

	// Fingerprints maps every surviving strain to its payload fingerprint.
	Fingerprints map[string]string `json:"fingerprints"`
}

// NewResult creates a passing result with an empty trace.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a step to the trace.
func (r *Result) AddEvent(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
