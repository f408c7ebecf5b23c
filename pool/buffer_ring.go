// File: pool/buffer_ring.go
// Author: momentics <momentics@gmail.com>
//
// BufferRing exposes the package-local ring as api.Ring, the shape the
// decrypt-sample DataExchange hands between its producer and consumer.

package pool

import "github.com/momentics/weblink-rpc/api"

// BufferRing implements api.Ring with power-of-two capacity.
type BufferRing[T any] struct {
	*RingBuffer[T]
}

// NewRingBuffer creates a ring of the given capacity, which must be a
// power of two.
func NewRingBuffer[T any](capacity uint64) *BufferRing[T] {
	return &BufferRing[T]{RingBuffer: newRingBuffer[T](capacity)}
}

var _ api.Ring[any] = (*BufferRing[any])(nil)
