package testutil

// Sequence hands out step numbers for scenario traces.
//
// Numbers start at 1 and increase by one per call, so two runs of the same
// scenario number their steps identically. Not safe for concurrent use;
// each scenario run owns its own Sequence.
type Sequence struct {
	seq int64
}

// NewSequence creates a sequence whose first Next returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next advances the sequence and returns the new value.
func (s *Sequence) Next() int64 {
	s.seq++
	return s.seq
}
