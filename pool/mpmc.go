// File: pool/mpmc.go
// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded multi-producer/multi-consumer free-list queue, the Vyukov
// sequence-number scheme. Backs the slab pools' free lists so Get/Put
// never take a lock on the hot path.

package pool

import "sync/atomic"

const cacheLinePad = 64

type mpmcCell[T any] struct {
	sequence atomic.Uint64
	data     T
}

type mpmcQueue[T any] struct {
	head  uint64
	_     [cacheLinePad]byte
	tail  uint64
	_     [cacheLinePad]byte
	mask  uint64
	cells []mpmcCell[T]
}

// newMPMCQueue builds a queue whose capacity is rounded up to a power of
// two, minimum 2.
func newMPMCQueue[T any](capacity int) *mpmcQueue[T] {
	size := 2
	for size < capacity {
		size <<= 1
	}
	q := &mpmcQueue[T]{
		mask:  uint64(size - 1),
		cells: make([]mpmcCell[T], size),
	}
	for i := range q.cells {
		q.cells[i].sequence.Store(uint64(i))
	}
	return q
}

// push appends val; false when the queue is full.
func (q *mpmcQueue[T]) push(val T) bool {
	for {
		tail := atomic.LoadUint64(&q.tail)
		c := &q.cells[tail&q.mask]
		seq := c.sequence.Load()
		switch dif := int64(seq) - int64(tail); {
		case dif == 0:
			if atomic.CompareAndSwapUint64(&q.tail, tail, tail+1) {
				c.data = val
				c.sequence.Store(tail + 1)
				return true
			}
		case dif < 0:
			return false
		}
	}
}

// pop removes the oldest value; ok is false when the queue is empty.
func (q *mpmcQueue[T]) pop() (val T, ok bool) {
	for {
		head := atomic.LoadUint64(&q.head)
		c := &q.cells[head&q.mask]
		seq := c.sequence.Load()
		switch dif := int64(seq) - int64(head+1); {
		case dif == 0:
			if atomic.CompareAndSwapUint64(&q.head, head, head+1) {
				val = c.data
				var zero T
				c.data = zero
				c.sequence.Store(head + q.mask + 1)
				return val, true
			}
		case dif < 0:
			return val, false
		}
	}
}
