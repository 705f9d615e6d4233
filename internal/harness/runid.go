package harness

import "github.com/google/uuid"

// RunIDGenerator produces identifiers for scenario runs.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates UUIDv7 run ids.
//
// UUIDv7 embeds a millisecond timestamp, so ids from successive runs sort
// in creation order.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
