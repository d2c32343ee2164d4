// Package buffer holds the bounded ring buffer used to keep trace history.
//
// A RingBuffer never silently loses data when it shrinks: elements that no
// longer fit after Resize are parked in an overflow list and handed out
// first by Remove. Growth past capacity through Insert evicts the oldest
// stored element as usual.
//
// RingBuffer is not safe for concurrent use. Callers that share one across
// goroutines must provide their own locking.
package buffer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCapacity is returned when a capacity below 1 is requested.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	// ErrEmpty is returned when removing from a buffer with nothing in it.
	ErrEmpty = errors.New("buffer is empty")
	// ErrInvalidState is returned when a RingBuffer was not built with New.
	ErrInvalidState = errors.New("buffer not initialized")
)

// RingBuffer is a fixed-capacity circular buffer with an overflow list
type RingBuffer[T any] struct {
	items    []T
	head     int  // Next write position
	tail     int  // Oldest live element
	empty    bool // Disambiguates head == tail
	overflow []T  // Elements displaced by a shrink, oldest first
}

// New creates a ring buffer with the given capacity
func New[T any](capacity int) (*RingBuffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new ring buffer with capacity %d: %w", capacity, ErrInvalidCapacity)
	}
	return &RingBuffer[T]{
		items: make([]T, capacity),
		empty: true,
	}, nil
}

// Capacity returns the number of slots in primary storage
func (rb *RingBuffer[T]) Capacity() int {
	return len(rb.items)
}

// Len returns the number of live elements in primary storage, excluding overflow
func (rb *RingBuffer[T]) Len() int {
	switch {
	case rb.empty || len(rb.items) == 0:
		return 0
	case rb.head > rb.tail:
		return rb.head - rb.tail
	default:
		return rb.head + len(rb.items) - rb.tail
	}
}

// Pending returns the number of elements still waiting in overflow
func (rb *RingBuffer[T]) Pending() int {
	return len(rb.overflow)
}

// Size returns the total number of retrievable elements
func (rb *RingBuffer[T]) Size() int {
	return rb.Len() + len(rb.overflow)
}

// IsEmpty reports whether both storage and overflow are empty
func (rb *RingBuffer[T]) IsEmpty() bool {
	return rb.Len() == 0 && len(rb.overflow) == 0
}

// IsFull reports whether primary storage has no free slot.
// A full buffer evicts on the next Insert.
func (rb *RingBuffer[T]) IsFull() bool {
	return len(rb.items) > 0 && rb.Len() == len(rb.items)
}

// Insert writes v as the newest element. When storage is already full the
// oldest stored element is evicted and returned with ok set.
//
// Pending overflow does not take part in eviction: a buffer that was shrunk
// keeps its overflow untouched while inserts keep overwriting storage's own
// oldest slot. Overflow only drains through Remove.
func (rb *RingBuffer[T]) Insert(v T) (evicted T, ok bool, err error) {
	n := len(rb.items)
	if n == 0 {
		return evicted, false, ErrInvalidState
	}

	if rb.Len() == n {
		evicted, ok = rb.items[rb.tail], true
		rb.tail = (rb.tail + 1) % n
	}

	rb.items[rb.head] = v
	rb.head = (rb.head + 1) % n
	rb.empty = false
	return evicted, ok, nil
}

// Remove takes the oldest element out of the buffer.
// Overflow elements are always older than storage and come out first.
func (rb *RingBuffer[T]) Remove() (T, error) {
	v, ok := rb.Poll()
	if !ok {
		return v, ErrEmpty
	}
	return v, nil
}

// Poll is Remove without the error: ok is false when the buffer is empty
func (rb *RingBuffer[T]) Poll() (T, bool) {
	var zero T

	if len(rb.overflow) > 0 {
		v := rb.overflow[0]
		rb.overflow[0] = zero
		rb.overflow = rb.overflow[1:]
		if len(rb.overflow) == 0 {
			rb.overflow = nil
		}
		return v, true
	}

	if rb.Len() == 0 {
		return zero, false
	}

	v := rb.items[rb.tail]
	rb.items[rb.tail] = zero // Release reference
	rb.tail = (rb.tail + 1) % len(rb.items)
	if rb.tail == rb.head {
		rb.empty = true
	}
	return v, true
}

// Oldest returns the element Remove would return, without removing it
func (rb *RingBuffer[T]) Oldest() (T, bool) {
	if len(rb.overflow) > 0 {
		return rb.overflow[0], true
	}
	if rb.Len() == 0 {
		var zero T
		return zero, false
	}
	return rb.items[rb.tail], true
}

// Newest returns the most recently inserted element still held
func (rb *RingBuffer[T]) Newest() (T, bool) {
	if rb.Len() > 0 {
		return rb.items[rb.prev(rb.head)], true
	}
	if len(rb.overflow) > 0 {
		return rb.overflow[len(rb.overflow)-1], true
	}
	var zero T
	return zero, false
}

// ReplaceFunc overwrites the oldest element for which match returns true
// with v, in place. It reports whether an element was replaced.
func (rb *RingBuffer[T]) ReplaceFunc(v T, match func(T) bool) bool {
	for i := range rb.overflow {
		if match(rb.overflow[i]) {
			rb.overflow[i] = v
			return true
		}
	}
	for i, n := rb.tail, rb.Len(); n > 0; i, n = rb.next(i), n-1 {
		if match(rb.items[i]) {
			rb.items[i] = v
			return true
		}
	}
	return false
}

// RemoveAll drains the buffer and returns everything it held, oldest first
func (rb *RingBuffer[T]) RemoveAll() []T {
	result := make([]T, 0, rb.Size())
	for {
		v, ok := rb.Poll()
		if !ok {
			return result
		}
		result = append(result, v)
	}
}

// Resize changes the storage capacity.
//
// When more elements are held than fit, the oldest ones move to a fresh
// overflow list and are returned by Remove before anything else. All
// remaining elements are copied into new storage, so Resize costs
// O(Size()) and should not be called per sample.
func (rb *RingBuffer[T]) Resize(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("resize ring buffer to %d: %w", capacity, ErrInvalidCapacity)
	}
	if capacity == len(rb.items) && len(rb.overflow) == 0 {
		return nil
	}

	var displaced []T
	if excess := rb.Size() - capacity; excess > 0 {
		displaced = make([]T, 0, excess)
		for i := 0; i < excess; i++ {
			v, _ := rb.Poll()
			displaced = append(displaced, v)
		}
	}

	// Whatever is left, including any older overflow that survived the
	// loop above, now fits into the new storage.
	items := make([]T, capacity)
	copied := 0
	for {
		v, ok := rb.Poll()
		if !ok {
			break
		}
		items[copied] = v
		copied++
	}

	rb.items = items
	rb.tail = 0
	rb.head = copied % capacity
	rb.empty = copied == 0
	if displaced != nil {
		rb.overflow = displaced
	}
	return nil
}

// String renders the contents oldest first, e.g. "[1, 2, 3]"
func (rb *RingBuffer[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for v := range rb.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprint(&sb, v)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (rb *RingBuffer[T]) next(i int) int {
	if i == len(rb.items)-1 {
		return 0
	}
	return i + 1
}

func (rb *RingBuffer[T]) prev(i int) int {
	if i == 0 {
		return len(rb.items) - 1
	}
	return i - 1
}
