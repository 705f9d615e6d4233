package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/genealogy/internal/canonical"
	"github.com/roach88/genealogy/internal/genealogy"
	"github.com/roach88/genealogy/internal/strain"
	"github.com/roach88/genealogy/internal/testutil"
)

// DomainSnapshot is the hash domain for final-snapshot digests.
const DomainSnapshot = "genealogy/snapshot/v1"

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
	runIDs RunIDGenerator
}

// WithLogger sends step and genealogy logs to logger. Runs are silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRunIDGenerator replaces the default UUIDv7 run ids.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(c *runConfig) {
		if g != nil {
			c.runIDs = g
		}
	}
}

// Harness executes the steps of one scenario against its own genealogy.
type Harness struct {
	lineage *strain.Genealogy
	seq     *testutil.Sequence
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh genealogy rooted at its stem. Step
// expectation mismatches and failed assertions are collected in the
// result; the returned error is reserved for scenarios that cannot run at
// all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	stem, err := strain.ParseID(scenario.Stem)
	if err != nil {
		return nil, fmt.Errorf("stem: %w", err)
	}

	h := &Harness{
		lineage: strain.NewGenealogy(stem, genealogy.WithLogger(cfg.logger)),
		seq:     testutil.NewSequence(),
		logger:  cfg.logger,
	}

	result := NewResult(cfg.runIDs.Generate())
	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for _, msg := range EvaluateAssertions(h.lineage, result.Trace, scenario.Assertions) {
		result.AddError(msg)
	}

	result.Final = h.lineage.Snapshot()
	result.Digest, err = canonical.Digest(DomainSnapshot, SnapshotMap(result.Final))
	if err != nil {
		return nil, err
	}
	result.Fingerprints, err = fingerprints(h.lineage)
	if err != nil {
		return nil, err
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"run_id", result.RunID,
		"steps", len(result.Trace),
		"strains", h.lineage.Len(),
		"pass", result.Pass,
	)
	return result, nil
}

// executeStep applies one step, records it in the trace and checks the
// outcome against step.ExpectError.
func (h *Harness) executeStep(index int, step Step, result *Result) error {
	id, err := strain.ParseID(step.ID)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	parents, err := strain.ParseIDs(step.Parents)
	if err != nil {
		return fmt.Errorf("parents%w", err)
	}

	event := TraceEvent{
		Seq:     h.seq.Next(),
		Op:      step.Op,
		ID:      string(id),
		Parents: strain.Strings(parents),
	}

	var opErr error
	switch step.Op {
	case OpCreate:
		if len(parents) == 1 {
			opErr = h.lineage.Create(id, parents[0])
		} else {
			opErr = h.lineage.CreateFrom(id, parents)
		}
	case OpConnect:
		if len(parents) != 1 {
			return fmt.Errorf("connect takes exactly one parent, got %d", len(parents))
		}
		opErr = h.lineage.Connect(id, parents[0])
	case OpRemove:
		before := h.lineage.IDs()
		opErr = h.lineage.Remove(id)
		if opErr == nil {
			event.Removed = strain.Strings(removedSince(before, h.lineage))
		}
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	event.Outcome, err = Outcome(opErr)
	if err != nil {
		return err
	}
	result.AddEvent(event)

	expected := step.ExpectError
	if expected == "" {
		expected = OutcomeOK
	}
	if event.Outcome != expected {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: expected %s, got %s",
			index, step.Op, id, expected, event.Outcome))
	}

	h.logger.Debug("step executed",
		"seq", event.Seq,
		"op", event.Op,
		"id", event.ID,
		"outcome", event.Outcome,
	)
	return nil
}

// Outcome maps the error of a genealogy operation to its trace outcome.
// Errors that are not genealogy errors are returned unchanged.
func Outcome(err error) (string, error) {
	if err == nil {
		return OutcomeOK, nil
	}
	code := genealogy.CodeOf(err)
	if code == "" {
		return "", err
	}
	return strings.ToLower(string(code)), nil
}

// removedSince returns the ids in before that g no longer holds.
func removedSince(before []strain.ID, g *strain.Genealogy) []strain.ID {
	removed := make([]strain.ID, 0)
	for _, id := range before {
		if !g.Exists(id) {
			removed = append(removed, id)
		}
	}
	return removed
}

// fingerprints collects the payload fingerprint of every strain in g.
func fingerprints(g *strain.Genealogy) (map[string]string, error) {
	out := make(map[string]string, g.Len())
	for _, id := range g.IDs() {
		s, err := g.Get(id)
		if err != nil {
			return nil, err
		}
		out[string(id)] = s.Fingerprint()
	}
	return out, nil
}
