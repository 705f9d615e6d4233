package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/genealogy/internal/strain"
	"github.com/roach88/genealogy/internal/testutil"
)

func newRunOptions(format string) *RunOptions {
	return &RunOptions{
		RootOptions: &RootOptions{Format: format},
		RunIDs:      testutil.NewFixedRunIDGenerator("run-test"),
	}
}

func runFile(t *testing.T, opts *RunOptions, path string) (string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	err := runScenarioFile(opts, path, cmd)
	return out.String(), err
}

func TestRun_Text(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "cascade.yaml", cascadeYAML)

	out, err := runFile(t, newRunOptions("text"), path)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ cascade\n")
	assert.Contains(t, out, "Run:    run-test\n")
	assert.Contains(t, out, "Digest: ")
	assert.Contains(t, out, "Lineage:\n  R\n  └── C\n")
	assert.NotContains(t, out, "Trace:")
}

func TestRun_TextWithTrace(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "cascade.yaml", cascadeYAML)

	opts := newRunOptions("text")
	opts.Trace = true
	out, err := runFile(t, opts, path)
	require.NoError(t, err)

	assert.Contains(t, out, "Trace:\n")
	assert.Contains(t, out, "  [3] create C <- A,R => ok\n")
	assert.Contains(t, out, "  [4] remove R => remove_stem\n")
	assert.Contains(t, out, "  [5] remove A => ok (removed A,B)\n")
}

func TestRun_JSON(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "cascade.yaml", cascadeYAML)

	opts := newRunOptions("json")
	opts.Trace = true
	out, err := runFile(t, opts, path)
	require.NoError(t, err)

	var resp struct {
		Status  string    `json:"status"`
		TraceID string    `json:"trace_id"`
		Data    RunOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-test", resp.TraceID)
	assert.Equal(t, "cascade", resp.Data.Scenario)
	assert.True(t, resp.Data.Pass)
	assert.Len(t, resp.Data.Digest, 64)
	assert.Len(t, resp.Data.Trace, 5)
	assert.Equal(t, "R", string(resp.Data.Final.Stem))
	assert.Len(t, resp.Data.Final.Nodes, 2)
	assert.Equal(t, map[string]string{
		"C": strain.New("C").Fingerprint(),
		"R": strain.New("R").Fingerprint(),
	}, resp.Data.Fingerprints)
}

func TestRun_DigestIsStable(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "cascade.yaml", cascadeYAML)

	first, err := runFile(t, newRunOptions("json"), path)
	require.NoError(t, err)
	second, err := runFile(t, newRunOptions("json"), path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_FailingScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "failing.yaml", failingYAML)

	t.Run("text", func(t *testing.T) {
		out, err := runFile(t, newRunOptions("text"), path)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "✗ failing\n")
		assert.Contains(t, out, "Failures:\n")
		assert.Contains(t, out, "S9")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runFile(t, newRunOptions("json"), path)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
	})
}

func TestRun_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := runFile(t, newRunOptions("text"), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: scenario file not found")
	assert.True(t, Reported(err))
}

func TestRun_InvalidScenario(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "invalid.yaml", invalidYAML)

	out, err := runFile(t, newRunOptions("json"), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeLoadFailed, resp.Error.Code)
}

func TestRun_ThroughRootCommand(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "cascade.yaml", cascadeYAML)

	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ cascade")
}
