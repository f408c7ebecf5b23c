// Package api
// Author: momentics
//
// Concurrent FIFO contract for cross-thread hand-off, e.g. the decrypt
// sample exchange between a producer and a consumer goroutine.

package api

// Ring is a bounded concurrent FIFO.
type Ring[T any] interface {
	// Enqueue appends item; false when the ring is full.
	Enqueue(item T) bool

	// Dequeue removes the oldest item; false when the ring is empty.
	Dequeue() (T, bool)

	// Len reports the number of queued items.
	Len() int

	// Cap reports the fixed capacity.
	Cap() int
}
