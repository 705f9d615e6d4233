package genealogy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineage(t *testing.T) *Genealogy[string, *testVirus] {
	t.Helper()
	g := newTestGenealogy(t, "S0")
	require.NoError(t, g.Create("A", "S0"))
	require.NoError(t, g.Create("B", "S0"))
	require.NoError(t, g.CreateFrom("C", []string{"A", "B"}))
	require.NoError(t, g.Create("D", "C"))
	require.NoError(t, g.Create("E", "B"))
	return g
}

func TestAncestors(t *testing.T) {
	g := lineage(t)

	tests := []struct {
		id   string
		want []string
	}{
		{"S0", []string{}},
		{"A", []string{"S0"}},
		{"C", []string{"A", "B", "S0"}},
		{"D", []string{"A", "B", "C", "S0"}},
		{"E", []string{"B", "S0"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := g.Ancestors(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := g.Ancestors("missing")
	assert.True(t, IsNotFound(err))
}

func TestDescendants(t *testing.T) {
	g := lineage(t)

	tests := []struct {
		id   string
		want []string
	}{
		{"S0", []string{"A", "B", "C", "D", "E"}},
		{"A", []string{"C", "D"}},
		{"B", []string{"C", "D", "E"}},
		{"D", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := g.Descendants(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := g.Descendants("missing")
	assert.True(t, IsNotFound(err))
}

func TestIsAncestor(t *testing.T) {
	g := lineage(t)

	ok, err := g.IsAncestor("A", "D")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.IsAncestor("E", "D")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.IsAncestor("D", "D")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = g.IsAncestor("missing", "D")
	assert.True(t, IsNotFound(err))

	_, err = g.IsAncestor("A", "missing")
	assert.True(t, IsNotFound(err))
}

func TestAncestors_AfterRemove(t *testing.T) {
	g := lineage(t)
	require.NoError(t, g.Remove("A"))

	got, err := g.Ancestors("D")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "S0"}, got)
}

// Behaviour with cycles is undefined, but walks must still terminate.
func TestReach_TerminatesOnCycle(t *testing.T) {
	g := newTestGenealogy(t, "S0")
	require.NoError(t, g.Create("A", "S0"))
	require.NoError(t, g.Create("B", "A"))
	require.NoError(t, g.Connect("A", "B"))

	got, err := g.Descendants("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, got)
}
