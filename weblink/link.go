// File: weblink/link.go
// Author: momentics <momentics@gmail.com>

package weblink

import (
	"sync"

	"github.com/eapache/queue"
)

// OutboundCodec primes itself with the head-of-line outbound message and
// drains wire bytes from it across possibly many calls, mirroring
// WebLink.h's OUTBOUND::Serializer contract.
type OutboundCodec[T any] interface {
	// Prime resets the codec's internal state to begin serializing item.
	Prime(item T)

	// Drain writes as many wire bytes as fit in dst, returning the count
	// written and whether item is now fully serialized.
	Drain(dst []byte) (n int, done bool)
}

// Trigger notifies the owner that the link has outbound bytes ready and
// the transport should be woken up to flush them.
type Trigger interface {
	Trigger()
}

// TriggerFunc adapts a plain function to Trigger.
type TriggerFunc func()

// Trigger calls f.
func (f TriggerFunc) Trigger() { f() }

// Link owns the outbound FIFO and primed codec for one direction of a
// byte-stream connection. It is deliberately silent about the inbound
// direction: httpcodec's RequestParser/ResponseParser (or any other
// Feed(data)-shaped parser) already invoke their own LinkBody/Received-
// equivalent callbacks directly, so Link only needs to wrap outbound
// queuing and priming — see WebLink.h's SerializerImpl for the original
// shape this generalizes.
type Link[T any] struct {
	mu      sync.Mutex
	queue   *queue.Queue
	codec   OutboundCodec[T]
	trigger Trigger

	// Sent is invoked once an item has been fully drained from the codec
	// and removed from the FIFO.
	Sent func(T)

	// StateChange is forwarded verbatim from the owning connection.
	StateChange func()

	open bool
}

// NewLink constructs a Link around codec, waking trigger whenever a
// previously-empty FIFO receives its first item.
func NewLink[T any](codec OutboundCodec[T], trigger Trigger) *Link[T] {
	return &Link[T]{
		queue:   queue.New(),
		codec:   codec,
		trigger: trigger,
		open:    true,
	}
}

// Submit appends item to the outbound FIFO. If the FIFO was empty, the
// codec is immediately primed with item and the transport is triggered,
// per spec.md section 4.3.
func (l *Link[T]) Submit(item T) bool {
	l.mu.Lock()
	if !l.open {
		l.mu.Unlock()
		return false
	}
	l.queue.Add(item)
	first := l.queue.Length() == 1
	if first {
		l.codec.Prime(item)
	}
	l.mu.Unlock()

	if first {
		l.trigger.Trigger()
	}
	return true
}

// Flush drains as many wire bytes as fit into dst from the head-of-line
// item. When the codec reports the item fully serialized, it is popped
// from the FIFO, Sent is invoked, and the next queued item (if any) is
// primed. Returns the bytes written and whether the FIFO still has work
// (so the caller knows whether to keep calling Flush).
func (l *Link[T]) Flush(dst []byte) (n int, pending bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.queue.Length() == 0 {
		return 0, false
	}

	n, done := l.codec.Drain(dst)
	if !done {
		return n, true
	}

	sent := l.queue.Peek().(T)
	l.queue.Remove()

	if l.queue.Length() > 0 {
		next := l.queue.Peek().(T)
		l.codec.Prime(next)
	}

	if l.Sent != nil {
		l.mu.Unlock()
		l.Sent(sent)
		l.mu.Lock()
	}

	return n, l.queue.Length() > 0
}

// Pending reports the number of outbound items still queued.
func (l *Link[T]) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queue.Length()
}

// Close marks the link closed: further Submit calls are rejected. Queued
// items are left in place for the caller to drain or discard.
func (l *Link[T]) Close() {
	l.mu.Lock()
	l.open = false
	l.mu.Unlock()
}

// IsOpen reports whether Submit still accepts new items.
func (l *Link[T]) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// FireStateChange forwards a state-change notification to the owner, if
// one is registered.
func (l *Link[T]) FireStateChange() {
	if l.StateChange != nil {
		l.StateChange()
	}
}
