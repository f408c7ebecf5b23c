// File: rpcruntime/proxy.go
// Author: momentics <momentics@gmail.com>
//
// ProxyAdministrator deduplicates proxy objects per channel, so two
// calls resolving to the same remote handle get back the identical Go
// value, per ProxyStubs.cpp's "RPC::Administrator::Instance().
// ProxyInstance<...>(channel, implementation)" dedup. It also serializes
// each proxy's own calls and is threaded into every ProxyFactory so a
// proxy whose method returns another interface pointer (CreateSession's
// returned ISession, in cdm) can construct that nested proxy through the
// same administrator rather than reaching for a process-wide singleton.

package rpcruntime

import (
	"context"
	"fmt"
	"sync"
)

type proxyKey struct {
	id     InterfaceID
	handle uint32
}

// ProxyAdministrator owns every proxy this channel has constructed for
// remote instances, and the Invoker each proxy's calls travel over.
type ProxyAdministrator struct {
	invoker Invoker

	mu      sync.Mutex
	proxies map[proxyKey]any
	locks   map[proxyKey]*sync.Mutex
}

// NewProxyAdministrator constructs an administrator whose proxies call
// out over invoker.
func NewProxyAdministrator(invoker Invoker) *ProxyAdministrator {
	return &ProxyAdministrator{
		invoker: invoker,
		proxies: make(map[proxyKey]any),
		locks:   make(map[proxyKey]*sync.Mutex),
	}
}

// ProxyInstance returns the cached proxy for (id, handle), constructing
// one via the registered ProxyFactory on first use. The factory receives
// this administrator so it can look up or construct further proxies
// (e.g. a returned nested interface pointer) through the same dedup map.
func (p *ProxyAdministrator) ProxyInstance(id InterfaceID, handle uint32) (any, error) {
	key := proxyKey{id, handle}

	p.mu.Lock()
	if existing, ok := p.proxies[key]; ok {
		p.mu.Unlock()
		return existing, nil
	}
	descriptor, ok := lookup(id)
	if !ok {
		p.mu.Unlock()
		return nil, errUnregisteredInterface(id)
	}
	p.locks[key] = &sync.Mutex{}
	p.mu.Unlock()

	proxy := descriptor.factory(p, handle)

	p.mu.Lock()
	p.proxies[key] = proxy
	p.mu.Unlock()
	return proxy, nil
}

// Invoke sends msg, serialized against every other in-flight call for
// the same (Interface, Handle) pair, per spec.md section 4.7's "one
// in-flight invocation per interface pointer, FIFO-ordered".
func (p *ProxyAdministrator) Invoke(ctx context.Context, msg *InvokeMessage) (*InvokeResponse, error) {
	key := proxyKey{msg.Interface, msg.Handle}

	p.mu.Lock()
	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return p.invoker.Invoke(ctx, msg)
}

// Release drops the cached proxy for (id, handle) and notifies the
// peer's StubAdministrator to drop its matching hold, per spec.md
// section 4.7's "releasing a proxy notifies the other side, which
// releases its stub's hold on the real object".
func (p *ProxyAdministrator) Release(ctx context.Context, id InterfaceID, handle uint32) error {
	key := proxyKey{id, handle}

	p.mu.Lock()
	delete(p.proxies, key)
	delete(p.locks, key)
	p.mu.Unlock()

	_, err := p.invoker.Invoke(ctx, &InvokeMessage{Interface: id, Handle: handle, Method: releaseMethodIndex})
	return err
}

func errUnregisteredInterface(id InterfaceID) error {
	return fmt.Errorf("rpcruntime: no proxy factory registered for interface %d", id)
}
