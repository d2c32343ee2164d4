package buffer

import "iter"

// All yields elements from oldest to newest: pending overflow first, then
// storage from tail to head. The buffer must not be mutated while ranging.
func (rb *RingBuffer[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range rb.overflow {
			if !yield(v) {
				return
			}
		}
		for i, n := rb.tail, rb.Len(); n > 0; i, n = rb.next(i), n-1 {
			if !yield(rb.items[i]) {
				return
			}
		}
	}
}

// Backward yields elements from newest to oldest, the reverse of All
func (rb *RingBuffer[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i, n := rb.prev(rb.head), rb.Len(); n > 0; i, n = rb.prev(i), n-1 {
			if !yield(rb.items[i]) {
				return
			}
		}
		for i := len(rb.overflow) - 1; i >= 0; i-- {
			if !yield(rb.overflow[i]) {
				return
			}
		}
	}
}
