package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/genealogy/internal/canonical"
	"github.com/roach88/genealogy/internal/genealogy"
	"github.com/roach88/genealogy/internal/strain"
)

// GoldenSuffix is appended to a scenario's base name to find its golden file.
const GoldenSuffix = ".golden"

// ErrGoldenMismatch is returned by CheckGolden when a trace differs from
// its golden file.
var ErrGoldenMismatch = errors.New("trace does not match golden file")

// TraceSnapshot is the golden form of a run: the scenario name, the trace
// and the final lineage. The run id is left out so goldens stay stable.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Final        genealogy.Snapshot[strain.ID]
}

// toCanonicalMap converts the snapshot to the plain values canonical.Marshal
// accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":     event.Seq,
			"op":      event.Op,
			"id":      event.ID,
			"outcome": event.Outcome,
		}
		if len(event.Parents) > 0 {
			eventMap["parents"] = event.Parents
		}
		if len(event.Removed) > 0 {
			eventMap["removed"] = event.Removed
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"final":         SnapshotMap(s.Final),
	}
}

// SnapshotMap converts a genealogy snapshot to canonical values.
func SnapshotMap(s genealogy.Snapshot[strain.ID]) map[string]any {
	nodes := make([]any, len(s.Nodes))
	for i, n := range s.Nodes {
		nodes[i] = map[string]any{
			"id":       string(n.ID),
			"parents":  strain.Strings(n.Parents),
			"children": strain.Strings(n.Children),
		}
	}
	return map[string]any{
		"stem":  string(s.Stem),
		"nodes": nodes,
	}
}

// TraceJSON returns the canonical JSON compared against golden files.
func TraceJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Final:        result.Final,
	}
	return canonical.Marshal(snapshot.toCanonicalMap())
}

// GoldenPath returns the golden file that sits next to a scenario file:
// testdata/cascade.yaml -> testdata/cascade.golden.
func GoldenPath(scenarioPath string) string {
	return strings.TrimSuffix(scenarioPath, filepath.Ext(scenarioPath)) + GoldenSuffix
}

// CheckGolden compares data with the golden file at path. With update set,
// the file is (re)written instead. A missing golden file yields an error
// matching os.ErrNotExist.
func CheckGolden(path string, data []byte, update bool) error {
	if update {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !bytes.Equal(want, data) {
		return fmt.Errorf("%w: %s", ErrGoldenMismatch, path)
	}
	return nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) error {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := TraceJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(GoldenSuffix),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
