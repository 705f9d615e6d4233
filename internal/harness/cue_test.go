package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCUE(t *testing.T) {
	src := `
name:        "cue-minimal"
description: "CUE scenarios use the YAML field names"
stem:        "S0"
steps: [
	{op: "create", id: "S1", parents: ["S0"]},
	{op: "remove", id: "S1"},
]
assertions: [
	{type: "absent", id: "S1"},
	{type: "count", count: 1},
]
`
	s, err := ParseCUE("minimal.cue", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "cue-minimal", s.Name)
	assert.Equal(t, []Step{
		{Op: OpCreate, ID: "S1", Parents: []string{"S0"}},
		{Op: OpRemove, ID: "S1"},
	}, s.Steps)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, AssertAbsent, s.Assertions[0].Type)
	require.NotNil(t, s.Assertions[1].Count)
	assert.Equal(t, 1, *s.Assertions[1].Count)
}

func TestParseCUE_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "syntax error",
			src:  `name: "x`,
			want: "failed to parse CUE",
		},
		{
			name: "not concrete",
			src:  `name: string, description: "d", stem: "S0", steps: []`,
			want: "failed to parse CUE",
		},
		{
			name: "unknown top-level field",
			src:  `name: "x", description: "d", stem: "S0", flow: []`,
			want: "flow: unknown field",
		},
		{
			name: "unknown step field",
			src:  `name: "x", description: "d", stem: "S0", steps: [{op: "create", id: "a", parent: "S0"}]`,
			want: "steps[0].parent: unknown field",
		},
		{
			name: "wrong type",
			src:  `name: 3, description: "d", stem: "S0", steps: []`,
			want: "name: must be a string",
		},
		{
			name: "steps not a list",
			src:  `name: "x", description: "d", stem: "S0", steps: {op: "create"}`,
			want: "steps: must be a list",
		},
		{
			name: "fails validation",
			src:  `name: "x", description: "d", stem: "S0", steps: []`,
			want: "invalid scenario: steps must have at least 1 entries",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCUE("bad.cue", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "steps[0].op", Message: "must be a string"}
	assert.Equal(t, "steps[0].op: must be a string", err.Error())
}
