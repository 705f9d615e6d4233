package testutil

// DefaultRunID is returned by a FixedRunIDGenerator built with an empty id.
const DefaultRunID = "test-run-default"

// FixedRunIDGenerator returns the same run id on every call.
//
// Scenario runs normally get a fresh UUIDv7; tests pin it so command output
// can be compared byte for byte.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator that always returns id, or
// DefaultRunID when id is empty.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
