// File: pool/objpool.go
// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT
//
// Generic object pooling over sync.Pool. The message factories recycle
// parsed requests/responses through this so steady-state parsing stays
// allocation-free.

package pool

import "sync"

// ObjectPool is the generic recycle contract.
type ObjectPool[T any] interface {
	Get() T
	Put(T)
}

// SyncPool adapts sync.Pool to a typed ObjectPool.
type SyncPool[T any] struct {
	inner sync.Pool
}

// NewSyncPool builds a pool that calls creator when empty.
func NewSyncPool[T any](creator func() T) *SyncPool[T] {
	return &SyncPool[T]{inner: sync.Pool{New: func() any { return creator() }}}
}

// Get returns a pooled or freshly created instance.
func (p *SyncPool[T]) Get() T {
	return p.inner.Get().(T)
}

// Put hands obj back for reuse. The caller must not touch it afterwards.
func (p *SyncPool[T]) Put(obj T) {
	p.inner.Put(obj)
}

var _ ObjectPool[int] = (*SyncPool[int])(nil)
