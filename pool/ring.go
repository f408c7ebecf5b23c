// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity lock-free FIFO ring used for sample hand-off between a
// producer and a consumer thread. Capacity must be a power of two so the
// index math reduces to a mask.

package pool

import "sync/atomic"

// RingBuffer is a lock-free ring of power-of-two capacity.
type RingBuffer[T any] struct {
	slots []T
	mask  uint64
	head  uint64
	tail  uint64
	_     [cacheLinePad]byte
}

// newRingBuffer allocates a ring buffer; size must be a power of two.
func newRingBuffer[T any](size uint64) *RingBuffer[T] {
	if size == 0 || size&(size-1) != 0 {
		panic("pool: ring buffer size must be a power of two")
	}
	return &RingBuffer[T]{
		slots: make([]T, size),
		mask:  size - 1,
	}
}

// Enqueue appends val; false when the ring is full.
func (r *RingBuffer[T]) Enqueue(val T) bool {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	if tail-head == uint64(len(r.slots)) {
		return false
	}
	r.slots[tail&r.mask] = val
	atomic.AddUint64(&r.tail, 1)
	return true
}

// Dequeue removes the oldest value; ok is false when the ring is empty.
func (r *RingBuffer[T]) Dequeue() (val T, ok bool) {
	head := atomic.LoadUint64(&r.head)
	tail := atomic.LoadUint64(&r.tail)
	if head == tail {
		return val, false
	}
	val = r.slots[head&r.mask]
	atomic.AddUint64(&r.head, 1)
	return val, true
}

// Len reports the number of queued values.
func (r *RingBuffer[T]) Len() int {
	return int(atomic.LoadUint64(&r.tail) - atomic.LoadUint64(&r.head))
}

// Cap reports the fixed ring capacity.
func (r *RingBuffer[T]) Cap() int {
	return len(r.slots)
}
