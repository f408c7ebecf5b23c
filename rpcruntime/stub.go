// File: rpcruntime/stub.go
// Author: momentics <momentics@gmail.com>
//
// StubAdministrator holds the real object instances a channel has
// announced to its peer and dispatches inbound InvokeMessages against
// them, grounded on ProxyStubs.cpp's per-interface MethodHandler arrays
// indexed by method number.

package rpcruntime

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/weblink-rpc/control"
)

type stubEntry struct {
	id       InterfaceID
	receiver any
	refs     int32
}

// StubAdministrator owns every object this channel has exposed to its
// peer, keyed by a locally-assigned handle.
type StubAdministrator struct {
	mu       sync.Mutex
	entries  map[uint32]*stubEntry
	nextHand uint32
}

// NewStubAdministrator constructs an empty administrator for one channel.
func NewStubAdministrator() *StubAdministrator {
	return &StubAdministrator{entries: make(map[uint32]*stubEntry)}
}

// Announce registers receiver under id and returns the handle its peer
// will address it by, per ProxyStubs.cpp's implicit "this instance now
// has a remote proxy" bookkeeping. The initial reference count is 1.
func (s *StubAdministrator) Announce(id InterfaceID, receiver any) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHand++
	handle := s.nextHand
	s.entries[handle] = &stubEntry{id: id, receiver: receiver, refs: 1}
	return handle
}

// Dispatch routes msg to the registered receiver's method table entry,
// per ProxyStubs.cpp's "AccesorOCDMStubMethods[methodIndex](channel,
// message)" call.
func (s *StubAdministrator) Dispatch(msg *InvokeMessage) *InvokeResponse {
	if msg.Method == releaseMethodIndex {
		s.release(msg.Handle)
		return &InvokeResponse{}
	}

	s.mu.Lock()
	entry, ok := s.entries[msg.Handle]
	s.mu.Unlock()
	if !ok {
		return &InvokeResponse{Error: fmt.Sprintf("rpcruntime: unknown handle %d", msg.Handle)}
	}

	descriptor, ok := lookup(entry.id)
	if !ok {
		return &InvokeResponse{Error: fmt.Sprintf("rpcruntime: unregistered interface %d", entry.id)}
	}
	if int(msg.Method) >= len(descriptor.stub) {
		return &InvokeResponse{Error: fmt.Sprintf("rpcruntime: method index %d out of range", msg.Method)}
	}

	result, err := descriptor.stub[msg.Method](s, entry.receiver, msg.Parameters)
	if err != nil {
		return &InvokeResponse{Error: err.Error()}
	}
	return &InvokeResponse{Result: result}
}

func (s *StubAdministrator) release(handle uint32) {
	s.mu.Lock()
	entry, ok := s.entries[handle]
	if !ok {
		s.mu.Unlock()
		return
	}
	remaining := atomic.AddInt32(&entry.refs, -1)
	if remaining <= 0 {
		delete(s.entries, handle)
	}
	s.mu.Unlock()
}

// Close drops every remaining entry, per spec.md section 5's "leaking a
// stub across disconnect is logged but does not leak memory because the
// channel owns the stub set".
func (s *StubAdministrator) Close() {
	s.mu.Lock()
	leaked := len(s.entries)
	s.entries = make(map[uint32]*stubEntry)
	s.mu.Unlock()

	if leaked > 0 {
		control.Logger().Warn("rpcruntime: channel closed with {} stub entries still held", leaked)
	}
}
