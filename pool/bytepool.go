// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT
//
// Fixed-size []byte recycling for scratch buffers that never leave one
// call frame, e.g. the handshake writers' serializer drain buffers.

package pool

// BytePool recycles equally-sized byte slices.
type BytePool interface {
	Get() []byte
	Put([]byte)
}

// SimpleBytePool is a channel-backed BytePool. It is pre-filled at
// construction; when drained, Get falls back to fresh allocations, and
// Put drops surplus buffers.
type SimpleBytePool struct {
	free chan []byte
	size int
}

// NewSimpleBytePool creates a pool holding capacity buffers of size bytes.
func NewSimpleBytePool(capacity, size int) *SimpleBytePool {
	p := &SimpleBytePool{
		free: make(chan []byte, capacity),
		size: size,
	}
	for i := 0; i < capacity; i++ {
		p.free <- make([]byte, size)
	}
	return p
}

// Get returns a buffer of the pool's fixed size.
func (p *SimpleBytePool) Get() []byte {
	select {
	case b := <-p.free:
		return b
	default:
		return make([]byte, p.size)
	}
}

// Put returns a buffer; surplus beyond the pool capacity is discarded.
func (p *SimpleBytePool) Put(b []byte) {
	if cap(b) < p.size {
		return
	}
	select {
	case p.free <- b[:p.size]:
	default:
	}
}
