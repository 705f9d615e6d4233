package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
name: minimal
description: one strain under the stem
stem: S0
steps:
  - op: create
    id: S1
    parents: [S0]
`

func TestParseYAML_Minimal(t *testing.T) {
	s, err := ParseYAML([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "S0", s.Stem)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, Step{Op: OpCreate, ID: "S1", Parents: []string{"S0"}}, s.Steps[0])
	assert.Empty(t, s.Assertions)
}

func TestParseYAML_UnknownField(t *testing.T) {
	_, err := ParseYAML([]byte(minimalYAML + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "assertion")
}

func TestParseYAML_Count(t *testing.T) {
	s, err := ParseYAML([]byte(minimalYAML + `
assertions:
  - type: count
    count: 0
`))
	require.NoError(t, err)
	require.Len(t, s.Assertions, 1)
	require.NotNil(t, s.Assertions[0].Count)
	assert.Equal(t, 0, *s.Assertions[0].Count)
}

func TestValidate_Errors(t *testing.T) {
	count := 1
	valid := func() *Scenario {
		return &Scenario{
			Name:        "s",
			Description: "d",
			Stem:        "S0",
			Steps:       []Step{{Op: OpCreate, ID: "S1", Parents: []string{"S0"}}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Scenario)
		want   string
	}{
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"missing stem", func(s *Scenario) { s.Stem = "" }, "stem is required"},
		{"bad stem", func(s *Scenario) { s.Stem = "a\tb" }, "stem: strain id"},
		{"no steps", func(s *Scenario) { s.Steps = nil }, "steps must have at least 1 entries"},
		{"unknown op", func(s *Scenario) { s.Steps[0].Op = "delete" }, `steps[0].op must be one of [create connect remove], got "delete"`},
		{"missing step id", func(s *Scenario) { s.Steps[0].ID = "" }, "steps[0].id is required"},
		{"bad parent", func(s *Scenario) { s.Steps[0].Parents = []string{"S0", " "} }, "steps[0].parents[1]: strain id is empty"},
		{"unknown expect_error", func(s *Scenario) { s.Steps[0].ExpectError = "boom" }, "steps[0].expect_error must be one of"},
		{"create without parents", func(s *Scenario) { s.Steps[0].Parents = nil }, "steps[0]: create needs at least one parent"},
		{
			"connect arity",
			func(s *Scenario) { s.Steps = append(s.Steps, Step{Op: OpConnect, ID: "S1", Parents: []string{"a", "b"}}) },
			"steps[1]: connect takes exactly one parent, got 2",
		},
		{
			"remove with parents",
			func(s *Scenario) { s.Steps = append(s.Steps, Step{Op: OpRemove, ID: "S1", Parents: []string{"S0"}}) },
			"steps[1]: remove takes no parents",
		},
		{"unknown assertion", func(s *Scenario) { s.Assertions = []Assertion{{Type: "final_state"}} }, "assertions[0].type must be one of"},
		{"exists without id", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertExists}} }, "assertions[0]: id is required for exists"},
		{"count without count", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertCount}} }, "assertions[0]: count is required for count"},
		{"valid with id", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertValid, ID: "S0"}} }, "assertions[0]: valid does not take id"},
		{"absent with ids", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertAbsent, ID: "x", IDs: []string{"y"}}} }, "assertions[0]: absent does not take ids"},
		{"ancestors without id", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertAncestors, IDs: []string{"S0"}}} }, "assertions[0]: id is required for ancestors"},
		{"descendants with count", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertDescendants, ID: "S0", Count: &count}} }, "assertions[0]: descendants does not take count"},
		{"exists with count", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertExists, ID: "x", Count: &count}} }, "assertions[0]: exists does not take count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			require.NoError(t, Validate(s))

			tt.mutate(s)
			err := Validate(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CreateWithoutParentsExpectingNotFound(t *testing.T) {
	s := &Scenario{
		Name:        "s",
		Description: "d",
		Stem:        "S0",
		Steps:       []Step{{Op: OpCreate, ID: "S1", ExpectError: "not_found"}},
	}
	assert.NoError(t, Validate(s))
}

func TestValidate_AncestryAssertions(t *testing.T) {
	s := &Scenario{
		Name:        "s",
		Description: "d",
		Stem:        "S0",
		Steps:       []Step{{Op: OpCreate, ID: "S1", Parents: []string{"S0"}}},
		Assertions: []Assertion{
			{Type: AssertAncestors, ID: "S1", IDs: []string{"S0"}},
			{Type: AssertDescendants, ID: "S0", IDs: []string{"S1"}},
			{Type: AssertDescendants, ID: "S1"},
		},
	}
	assert.NoError(t, Validate(s))
}

func TestLoadScenario(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		s, err := LoadScenario(filepath.Join("testdata", "scenarios", "cascade.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "cascade", s.Name)
		assert.Len(t, s.Steps, 6)
		assert.Len(t, s.Assertions, 6)
	})

	t.Run("cue", func(t *testing.T) {
		s, err := LoadScenario(filepath.Join("testdata", "scenarios", "diamond.cue"))
		require.NoError(t, err)
		assert.Equal(t, "diamond", s.Name)
		assert.Len(t, s.Steps, 7)
		assert.Equal(t, "already_exists", s.Steps[3].ExpectError)
		require.NotNil(t, s.Assertions[3].Count)
		assert.Equal(t, 4, *s.Assertions[3].Count)
	})

	t.Run("yml extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "minimal.yml")
		require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))

		s, err := LoadScenario(path)
		require.NoError(t, err)
		assert.Equal(t, "minimal", s.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read scenario file")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "minimal.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

		_, err := LoadScenario(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported scenario format ".json"`)
	})
}

func TestIsScenarioFile(t *testing.T) {
	assert.True(t, IsScenarioFile("a.yaml"))
	assert.True(t, IsScenarioFile("dir/a.YML"))
	assert.True(t, IsScenarioFile("a.cue"))
	assert.False(t, IsScenarioFile("a.golden"))
	assert.False(t, IsScenarioFile("yaml"))
}
