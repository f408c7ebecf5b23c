// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
//
// BufferPoolManager keys slab pools by the caller's preferred NUMA node
// so each node's traffic recycles through its own free list. The node id
// is advisory: on hosts without NUMA topology every caller passes -1 and
// shares one pool.

package pool

import (
	"sync"

	"github.com/momentics/weblink-rpc/api"
)

// defaultBufSize is the backing slice size handed out when a caller does
// not request a specific length.
const defaultBufSize = 65536

// BufferPoolManager provides one buffer pool per NUMA node.
type BufferPoolManager struct {
	mu    sync.RWMutex
	pools map[int]api.BufferPool
}

// NewBufferPoolManager creates and initializes a new manager.
func NewBufferPoolManager() *BufferPoolManager {
	return &BufferPoolManager{pools: make(map[int]api.BufferPool)}
}

// GetPool obtains or creates the pool for numaNode (-1 = system default).
func (m *BufferPoolManager) GetPool(numaNode int) api.BufferPool {
	m.mu.RLock()
	p, ok := m.pools[numaNode]
	m.mu.RUnlock()
	if ok {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pools[numaNode]; ok {
		return p
	}
	p = newSlabPool(defaultBufSize)
	m.pools[numaNode] = p
	return p
}
