package sequence

// Queue is an append-only FIFO buffer.
//
// It is used for per-tick event buffering: producers push during a tick,
// a single consumer drains everything at once. Not safe for concurrent use;
// ownership is expected to stay within one scheduler invocation.
type Queue[T any] struct {
	items []T
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends a value to the back of the queue.
func (q *Queue[T]) Push(value T) {
	q.items = append(q.items, value)
}

// PushAll appends all values in order.
func (q *Queue[T]) PushAll(values ...T) {
	q.items = append(q.items, values...)
}

// Len returns the number of buffered values.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Drain returns all buffered values in push order and empties the queue.
// The returned slice is owned by the caller; the queue keeps its capacity.
func (q *Queue[T]) Drain() []T {
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = make([]T, 0, cap(out))
	return out
}

// Clear drops all buffered values and returns how many were dropped.
func (q *Queue[T]) Clear() int {
	n := len(q.items)
	q.items = q.items[:0]
	return n
}
