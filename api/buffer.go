// File: api/buffer.go
// Package api defines Buffer and BufferPool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Buffer is a pooled byte slice. It is a plain value, not an interface,
// so passing it around never boxes; Release hands the storage back to
// the pool recorded in Pool.
type Buffer struct {
	Data  []byte
	NUMA  int
	Pool  Releaser
	Class int
}

// Releaser accepts released buffers; satisfied by the pool package so
// Buffer does not depend on it.
type Releaser interface {
	Put(Buffer)
}

// Bytes returns the byte slice backing this Buffer.
func (b Buffer) Bytes() []byte { return b.Data }

// NUMANode returns the node this buffer was requested for.
func (b Buffer) NUMANode() int { return b.NUMA }

// Copy returns an owned copy of the buffer contents.
func (b Buffer) Copy() []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// Slice returns a sub-view sharing the underlying storage. An
// out-of-range request yields an empty view over the same pool.
func (b Buffer) Slice(from, to int) Buffer {
	if from < 0 || to > len(b.Data) || from > to {
		return Buffer{NUMA: b.NUMA, Class: b.Class, Pool: b.Pool}
	}
	return Buffer{Data: b.Data[from:to], NUMA: b.NUMA, Pool: b.Pool, Class: b.Class}
}

// Release returns the storage to its pool; a no-op for unpooled buffers.
func (b Buffer) Release() {
	if b.Pool != nil {
		b.Pool.Put(b)
	}
}

// Capacity reports the capacity of the underlying slice.
func (b Buffer) Capacity() int { return cap(b.Data) }

// BufferPool allocates pooled buffers, optionally preferring a NUMA node.
type BufferPool interface {
	Get(size int, numaPreferred int) Buffer
	Put(b Buffer)
	Stats() BufferPoolStats
}

// BufferPoolStats summarizes a pool's allocation accounting.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	NUMAStats  map[int]int64
}
