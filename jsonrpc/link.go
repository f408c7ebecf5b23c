// File: jsonrpc/link.go
// Author: momentics <momentics@gmail.com>
//
// Link is one observer's view of a shared Channel: its own pending-call
// table, designator construction, and event subscription bookkeeping,
// grounded on JSONRPCLink.h's LinkType.

package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/weblink-rpc/api"
)

// DefaultWaitTime mirrors JSONRPCLink.h's DefaultWaitTime (10 seconds).
const DefaultWaitTime = 10 * time.Second

// EventHandler processes a dispatched inbound notification.
type EventHandler func(params json.RawMessage)

var namespaceSeq uint32

// Link is one observer's view of a shared Channel.
type Link struct {
	channel    *Channel
	wheel      *TimeoutWheel
	callsign   string
	version    uint8
	localSpace string

	mu      sync.Mutex
	pending map[uint32]*PendingCall
	events  map[string]EventHandler
}

// NewLink registers a new Link as an observer of channel. An empty
// localCallsign yields a generated "temporaryN" namespace, per
// LinkType's constructor when localCallsign is nullptr.
func NewLink(channel *Channel, wheel *TimeoutWheel, remoteCallsign string, localCallsign string, version uint8) *Link {
	ns := localCallsign
	if ns == "" {
		ns = fmt.Sprintf("temporary%d", atomic.AddUint32(&namespaceSeq, 1))
	}
	l := &Link{
		channel:    channel,
		wheel:      wheel,
		callsign:   remoteCallsign,
		version:    version,
		localSpace: ns,
		pending:    make(map[uint32]*PendingCall),
		events:     make(map[string]EventHandler),
	}
	channel.Register(l)
	return l
}

// Close unregisters from the channel, revokes this link's wheel entry,
// and aborts every outstanding call, per LinkType::~LinkType.
func (l *Link) Close() {
	l.channel.Unregister(l)
	l.wheel.Revoke(l)
	l.abortAll()
}

func (l *Link) abortAll() {
	l.mu.Lock()
	pending := l.pending
	l.pending = make(map[uint32]*PendingCall)
	l.mu.Unlock()

	for id, call := range pending {
		call.Abort(id)
	}
}

// Opened implements Observer. LinkType's own default is a no-op
// ("Nice to know :-)"); SmartLink overrides this with reconnection
// logic.
func (l *Link) Opened() {}

// Closed implements Observer: every outstanding call is aborted with
// ASYNC_ABORTED, per LinkType::Closed. Subscribed handlers (Assign)
// survive so a reconnect can re-arm them.
func (l *Link) Closed() { l.abortAll() }

// Assign registers a local handler for an inbound event name without
// issuing a "register" call, per LinkType::Assign.
func (l *Link) Assign(eventName string, handler EventHandler) {
	l.mu.Lock()
	l.events[eventName] = handler
	l.mu.Unlock()
}

// Revoke removes a previously Assigned handler, per LinkType::Revoke.
func (l *Link) Revoke(eventName string) {
	l.mu.Lock()
	delete(l.events, eventName)
	l.mu.Unlock()
}

// Subscribe registers handler for eventName and sends the "register"
// call that arms it server-side, per LinkType::Subscribe.
func (l *Link) Subscribe(waitTime time.Duration, eventName string, handler EventHandler) error {
	l.Assign(eventName, handler)

	params, _ := json.Marshal(map[string]string{"event": eventName, "id": l.localSpace})
	_, err := l.invokeSync(waitTime, "register", params)
	if err != nil {
		l.Revoke(eventName)
	}
	return err
}

// Unsubscribe sends "unregister" and removes the local handler, per
// LinkType::Unsubscribe.
func (l *Link) Unsubscribe(waitTime time.Duration, eventName string) {
	params, _ := json.Marshal(map[string]string{"event": eventName, "id": l.localSpace})
	_, _ = l.invokeSync(waitTime, "unregister", params)
	l.Revoke(eventName)
}

// Designator builds the fully-qualified method name for method.
func (l *Link) Designator(method string) string {
	return BuildDesignator(l.callsign, l.version, method)
}

// Invoke performs a synchronous call and, if result is non-nil,
// unmarshals the response's Result into it, per
// LinkType::InternalInvoke's synchronous overload.
func (l *Link) Invoke(waitTime time.Duration, method string, params, result any) error {
	raw, err := marshalParams(params)
	if err != nil {
		return err
	}
	resp, err := l.invokeSync(waitTime, method, raw)
	if err != nil {
		return err
	}
	if result != nil && resp.Result != nil {
		return json.Unmarshal(resp.Result, result)
	}
	return nil
}

// Set is an Invoke convenience for property setters, per LinkType::Set.
func (l *Link) Set(waitTime time.Duration, method string, value any) error {
	return l.Invoke(waitTime, method, value, nil)
}

// Get is an Invoke convenience for property getters, per LinkType::Get.
func (l *Link) Get(waitTime time.Duration, method string, result any) error {
	return l.Invoke(waitTime, method, nil, result)
}

// Dispatch performs an asynchronous call, invoking callback on
// completion or timeout, per LinkType::InternalInvoke's asynchronous
// overload.
func (l *Link) Dispatch(waitTime time.Duration, method string, params any, callback CallbackFunc) error {
	raw, err := marshalParams(params)
	if err != nil {
		return err
	}
	return l.invokeAsync(waitTime, method, raw, callback)
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	return json.Marshal(params)
}

func (l *Link) invokeSync(waitTime time.Duration, method string, params json.RawMessage) (*Message, error) {
	if !l.channel.IsOpen() {
		if l.channel.conn.Suspended() {
			return nil, api.NewError(api.ErrCodeAsyncFailed, "channel is suspended")
		}
		return nil, api.NewError(api.ErrCodeUnavailable, "channel is not open")
	}

	id := l.channel.Sequence()
	call := NewSyncCall()

	l.mu.Lock()
	l.pending[id] = call
	l.mu.Unlock()

	msg := &Message{ID: &id, Designator: l.Designator(method), Parameters: params}
	if err := l.channel.Submit(msg); err != nil {
		l.mu.Lock()
		delete(l.pending, id)
		l.mu.Unlock()
		return nil, api.NewError(api.ErrCodeAsyncFailed, "submit failed")
	}

	resp := call.WaitForResponse(waitTime)

	l.mu.Lock()
	delete(l.pending, id)
	l.mu.Unlock()

	if resp == nil {
		return nil, api.NewError(api.ErrCodeTimedOut, "call timed out")
	}
	if resp.Error != nil {
		return resp, fmt.Errorf("jsonrpc: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	return resp, nil
}

func (l *Link) invokeAsync(waitTime time.Duration, method string, params json.RawMessage, callback CallbackFunc) error {
	if !l.channel.IsOpen() {
		if l.channel.conn.Suspended() {
			return api.NewError(api.ErrCodeAsyncFailed, "channel is suspended")
		}
		return api.NewError(api.ErrCodeUnavailable, "channel is not open")
	}

	id := l.channel.Sequence()
	call := NewAsyncCall(waitTime, callback)

	l.mu.Lock()
	l.pending[id] = call
	l.mu.Unlock()

	msg := &Message{ID: &id, Designator: l.Designator(method), Parameters: params}
	if err := l.channel.Submit(msg); err != nil {
		l.mu.Lock()
		delete(l.pending, id)
		l.mu.Unlock()
		return api.NewError(api.ErrCodeAsyncFailed, "submit failed")
	}

	l.wheel.Arm(l, l.nextDeadline())
	return nil
}

// nextDeadline reports the earliest deadline among this link's
// outstanding asynchronous calls, or the zero Time if none remain.
func (l *Link) nextDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextDeadlineLocked()
}

func (l *Link) nextDeadlineLocked() time.Time {
	var earliest time.Time
	for _, call := range l.pending {
		if call.Synchronous() {
			continue
		}
		d := call.Deadline()
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	return earliest
}

// Timed expires every due asynchronous call and reports this link's new
// next-earliest deadline, per LinkType::Timed; it is invoked by
// TimeoutWheel.fire.
func (l *Link) Timed() time.Time {
	now := time.Now()

	type due struct {
		id   uint32
		call *PendingCall
	}

	l.mu.Lock()
	var expired []due
	for id, call := range l.pending {
		if call.Synchronous() {
			continue
		}
		if !call.Deadline().After(now) {
			expired = append(expired, due{id, call})
			delete(l.pending, id)
		}
	}
	next := l.nextDeadlineLocked()
	l.mu.Unlock()

	for _, d := range expired {
		d.call.Expire(d.id)
	}
	return next
}

// Accept implements Observer, per LinkType::Inbound: a message carrying
// a recognized id is routed to the pending-call table; otherwise, if its
// designator's namespace matches this link's, it is dispatched to the
// subscribed event handler.
func (l *Link) Accept(msg *Message) bool {
	if msg.IsResponse() {
		l.mu.Lock()
		call, ok := l.pending[*msg.ID]
		if ok {
			delete(l.pending, *msg.ID)
		}
		l.mu.Unlock()
		if !ok {
			return false
		}
		call.Signal(msg)
		return true
	}

	eventName, namespace := splitDesignator(msg.Designator)
	if namespace != "" && namespace != l.localSpace {
		return false
	}

	l.mu.Lock()
	handler, ok := l.events[eventName]
	l.mu.Unlock()
	if !ok {
		return false
	}
	handler(msg.Parameters)
	return true
}

// splitDesignator separates a notification's "namespace.eventName"
// designator into its two parts, mirroring inbound->Callsign()/
// FullMethod() in Channel.cpp's Inbound().
func splitDesignator(designator string) (method, namespace string) {
	idx := strings.LastIndex(designator, ".")
	if idx < 0 {
		return designator, ""
	}
	return designator[idx+1:], designator[:idx]
}
