// File: jsonrpc/pendingcall.go
// Author: momentics <momentics@gmail.com>
//
// PendingCall tracks one outstanding id in a Link's pending-call table,
// grounded on JSONRPCLink.h's Entry: either synchronous (a completion
// signal plus a response slot) or asynchronous (a deadline plus a
// callback).

package jsonrpc

import (
	"time"

	"github.com/momentics/weblink-rpc/api"
)

// CallbackFunc receives the response (or a synthesized timeout/abort
// message) for an asynchronous call.
type CallbackFunc func(*Message)

// PendingCall is one entry in a Link's pending-call table, keyed by id.
type PendingCall struct {
	synchronous bool

	// synchronous fields
	signal   chan *Message
	response *Message

	// asynchronous fields
	deadline time.Time
	callback CallbackFunc
}

// NewSyncCall builds a synchronous PendingCall, analogous to Entry's
// default constructor in JSONRPCLink.h.
func NewSyncCall() *PendingCall {
	return &PendingCall{
		synchronous: true,
		signal:      make(chan *Message, 1),
	}
}

// NewAsyncCall builds an asynchronous PendingCall with deadline
// now+waitTime, analogous to Entry(waitTime, completed).
func NewAsyncCall(waitTime time.Duration, cb CallbackFunc) *PendingCall {
	return &PendingCall{
		synchronous: false,
		deadline:    time.Now().Add(waitTime),
		callback:    cb,
	}
}

// Synchronous reports whether this entry blocks a waiter rather than
// firing a callback.
func (p *PendingCall) Synchronous() bool { return p.synchronous }

// Deadline returns the async call's expiry instant.
func (p *PendingCall) Deadline() time.Time { return p.deadline }

// Signal completes the entry with an inbound response, per Entry::Signal.
func (p *PendingCall) Signal(response *Message) {
	if p.synchronous {
		p.response = response
		select {
		case p.signal <- response:
		default:
		}
		return
	}
	if p.callback != nil {
		p.callback(response)
	}
}

// Abort completes the entry as ASYNC_ABORTED, per Entry::Abort — used
// when the owning channel closes with the call still outstanding.
func (p *PendingCall) Abort(id uint32) {
	msg := &Message{
		ID:    &id,
		Error: &ErrorObject{Code: int(api.ErrCodeAsyncAborted), Message: "pending call has been aborted"},
	}
	p.Signal(msg)
}

// Expire completes an asynchronous entry as TIMEDOUT, per Entry::Expired.
// Synchronous entries are never expired here; WaitForResponse times out
// on its own and the Link removes the slot.
func (p *PendingCall) Expire(id uint32) {
	if p.synchronous {
		return
	}
	msg := &Message{
		ID:    &id,
		Error: &ErrorObject{Code: int(api.ErrCodeTimedOut), Message: "pending a-sync call has timed out"},
	}
	if p.callback != nil {
		p.callback(msg)
	}
}

// WaitForResponse blocks until Signal is called or waitTime elapses,
// returning the response (or nil on timeout), per Entry::WaitForResponse.
func (p *PendingCall) WaitForResponse(waitTime time.Duration) *Message {
	select {
	case resp := <-p.signal:
		return resp
	case <-time.After(waitTime):
		return nil
	}
}
