package deflate

import "errors"

// ErrRingBufferEmpty is returned by dequeue and peek on an empty RingBuffer.
var ErrRingBufferEmpty = errors.New("deflate: dequeue from empty ring buffer")

// ErrRingBufferIndexOutOfRange is returned by At when the logical index is
// not currently held in the buffer.
var ErrRingBufferIndexOutOfRange = errors.New("deflate: ring buffer index out of range")

// RingBuffer is a fixed-capacity FIFO with overwrite-on-full semantics and
// O(1) indexed access from the oldest element. It never grows past the
// capacity fixed at construction.
type RingBuffer[T any] struct {
	buf   []T
	head  int // index of oldest element
	tail  int // index where the next Enqueue will write
	count int
}

// NewRingBuffer returns a RingBuffer with room for capacity elements.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		panic("deflate: ring buffer capacity must be positive")
	}
	return &RingBuffer[T]{buf: make([]T, capacity)}
}

// Cap returns the fixed capacity of the buffer.
func (r *RingBuffer[T]) Cap() int { return len(r.buf) }

// Len returns the number of elements currently held.
func (r *RingBuffer[T]) Len() int { return r.count }

// IsEmpty reports whether the buffer holds no elements.
func (r *RingBuffer[T]) IsEmpty() bool { return r.count == 0 }

// IsFull reports whether the buffer is at capacity.
func (r *RingBuffer[T]) IsFull() bool { return r.count == len(r.buf) }

// Enqueue appends x as the newest element. If the buffer is already full,
// the oldest element is silently overwritten and the head advances.
func (r *RingBuffer[T]) Enqueue(x T) {
	if r.IsFull() {
		r.head = (r.head + 1) % len(r.buf)
	} else {
		r.count++
	}
	r.buf[r.tail] = x
	r.tail = (r.tail + 1) % len(r.buf)
}

// Dequeue removes and returns the oldest element.
func (r *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	if r.IsEmpty() {
		return zero, ErrRingBufferEmpty
	}
	x := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return x, nil
}

// Peek returns the oldest element without removing it.
func (r *RingBuffer[T]) Peek() (T, error) {
	var zero T
	if r.IsEmpty() {
		return zero, ErrRingBufferEmpty
	}
	return r.buf[r.head], nil
}

// At returns the i-th logical element, oldest first (At(0) == Peek()).
func (r *RingBuffer[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= r.count {
		return zero, ErrRingBufferIndexOutOfRange
	}
	return r.buf[(r.head+i)%len(r.buf)], nil
}

// Reset empties the buffer without releasing its backing store.
func (r *RingBuffer[T]) Reset() {
	var zero T
	for i := 0; i < r.count; i++ {
		r.buf[(r.head+i)%len(r.buf)] = zero
	}
	r.head, r.tail, r.count = 0, 0, 0
}

// Do calls fn for every element from oldest to newest.
func (r *RingBuffer[T]) Do(fn func(T)) {
	for i := 0; i < r.count; i++ {
		fn(r.buf[(r.head+i)%len(r.buf)])
	}
}
