package genealogy

// fifo is an unbounded first-in first-out queue used by the breadth-first
// walks (removal cascade, ancestry queries).
//
// Not safe for concurrent use; the genealogy itself is single-owner.
type fifo[T any] struct {
	items []T
}

func newFIFO[T any](seed ...T) *fifo[T] {
	q := &fifo[T]{items: make([]T, 0, max(len(seed), 8))}
	q.items = append(q.items, seed...)
	return q
}

func (q *fifo[T]) push(v T) {
	q.items = append(q.items, v)
}

// pop removes and returns the front item. ok is false when the queue is empty.
func (q *fifo[T]) pop() (v T, ok bool) {
	if len(q.items) == 0 {
		return v, false
	}

	v = q.items[0]

	// Zero the slot so the backing array does not pin popped values.
	var zero T
	q.items[0] = zero

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return v, true
}

func (q *fifo[T]) len() int {
	return len(q.items)
}
