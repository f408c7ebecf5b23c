// File: pool/slab_pool.go
// Package pool implements free-listed buffer allocation per size class.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/weblink-rpc/api"
)

const defaultFreeListCapacity = 4096

// slabPool hands out api.Buffer values of one size class, recycling
// released storage through a lock-free free list. Requests larger than
// the class get a dedicated allocation and are still recyclable.
type slabPool struct {
	class int
	free  *mpmcQueue[api.Buffer]

	totalAlloc atomic.Int64
	totalFree  atomic.Int64

	nodeMu     sync.Mutex
	nodeCounts map[int]int64
}

func newSlabPool(class int) *slabPool {
	return &slabPool{
		class:      class,
		free:       newMPMCQueue[api.Buffer](defaultFreeListCapacity),
		nodeCounts: make(map[int]int64),
	}
}

// Get returns a buffer holding at least size bytes, pulled from the free
// list when a recycled buffer is large enough.
func (sp *slabPool) Get(size, numaPreferred int) api.Buffer {
	if size <= 0 {
		size = sp.class
	}
	if buf, ok := sp.free.pop(); ok {
		if cap(buf.Data) >= size {
			buf.Data = buf.Data[:size]
			return buf
		}
		// Too small for this request; recycle it for the next caller.
		sp.free.push(buf)
	}

	alloc := size
	if alloc < sp.class {
		alloc = sp.class
	}
	sp.totalAlloc.Add(1)
	sp.countNode(numaPreferred)
	return api.Buffer{
		Data:  make([]byte, alloc)[:size],
		NUMA:  numaPreferred,
		Pool:  sp,
		Class: sp.class,
	}
}

// Put returns a buffer to the free list; when the list is full the
// storage is simply dropped for the GC.
func (sp *slabPool) Put(buf api.Buffer) {
	if buf.Data == nil {
		return
	}
	buf.Data = buf.Data[:cap(buf.Data)]
	if sp.free.push(buf) {
		sp.totalFree.Add(1)
	}
}

func (sp *slabPool) countNode(node int) {
	sp.nodeMu.Lock()
	sp.nodeCounts[node]++
	sp.nodeMu.Unlock()
}

// Stats reports allocation accounting for this size class.
func (sp *slabPool) Stats() api.BufferPoolStats {
	alloc := sp.totalAlloc.Load()
	freed := sp.totalFree.Load()

	sp.nodeMu.Lock()
	nodes := make(map[int]int64, len(sp.nodeCounts))
	for k, v := range sp.nodeCounts {
		nodes[k] = v
	}
	sp.nodeMu.Unlock()

	return api.BufferPoolStats{
		TotalAlloc: alloc,
		TotalFree:  freed,
		InUse:      alloc - freed,
		NUMAStats:  nodes,
	}
}

var _ api.BufferPool = (*slabPool)(nil)
var _ api.Releaser = (*slabPool)(nil)
