package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden files live in testdata/golden. Regenerate with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden(t *testing.T) {
	for _, file := range []string{"cascade.yaml", "diamond.cue", "ancestry.yaml"} {
		t.Run(file, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", file))
			require.NoError(t, err)

			require.NoError(t, RunWithGolden(t, scenario, fixedRunID()))
		})
	}
}

func TestTraceJSON_Shape(t *testing.T) {
	s, err := ParseYAML([]byte(minimalYAML))
	require.NoError(t, err)
	result, err := Run(s, fixedRunID())
	require.NoError(t, err)

	got, err := TraceJSON(s.Name, result)
	require.NoError(t, err)

	want := `{"final":{"nodes":[{"children":["S1"],"id":"S0","parents":[]},{"children":[],"id":"S1","parents":["S0"]}],"stem":"S0"},` +
		`"scenario_name":"minimal",` +
		`"trace":[{"id":"S1","op":"create","outcome":"ok","parents":["S0"],"seq":1}]}`
	assert.Equal(t, want, string(got))
}

func TestAssertGolden_ReusesResult(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "cascade.yaml"))
	require.NoError(t, err)
	result, err := Run(scenario, fixedRunID())
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, AssertGolden(t, "cascade", result))
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t, filepath.Join("testdata", "cascade.golden"), GoldenPath(filepath.Join("testdata", "cascade.yaml")))
	assert.Equal(t, "diamond.golden", GoldenPath("diamond.cue"))
}

func TestCheckGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.golden")

	err := CheckGolden(path, []byte("trace"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, CheckGolden(path, []byte("trace"), true))
	assert.NoError(t, CheckGolden(path, []byte("trace"), false))

	err = CheckGolden(path, []byte("other"), false)
	assert.ErrorIs(t, err, ErrGoldenMismatch)
}
