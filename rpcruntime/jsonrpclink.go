// File: rpcruntime/jsonrpclink.go
// Author: momentics <momentics@gmail.com>
//
// LinkInvoker adapts a *jsonrpc.Link into an Invoker, and StubObserver
// is its callee-side counterpart on a jsonrpc.Channel: together they
// carry every InvokeMessage as the parameters of one fixed JSON-RPC
// method name. This is the concrete channel rpcruntime runs over in
// this module: the original C++ runtime has its own IPC transport, but
// spec.md's JSON-RPC link is the one channel abstraction this repo
// builds, so the generic RPC runtime rides on top of it rather than
// duplicating a second wire protocol.

package rpcruntime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/momentics/weblink-rpc/jsonrpc"
)

// invokeMethod is the designator every LinkInvoker call addresses;
// rpcruntime's own Interface/Handle/Method fields (not the designator)
// carry the actual dispatch target.
const invokeMethod = "rpcruntime.invoke"

// LinkInvoker carries InvokeMessages over a jsonrpc.Link.
type LinkInvoker struct {
	link *jsonrpc.Link
}

// NewLinkInvoker wraps link as an Invoker.
func NewLinkInvoker(link *jsonrpc.Link) *LinkInvoker {
	return &LinkInvoker{link: link}
}

// Invoke implements Invoker by issuing a synchronous jsonrpc call whose
// parameters are msg and whose result unmarshals into an InvokeResponse.
func (l *LinkInvoker) Invoke(ctx context.Context, msg *InvokeMessage) (*InvokeResponse, error) {
	waitTime := jsonrpc.DefaultWaitTime
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			waitTime = remaining
		}
	}

	var resp InvokeResponse
	if err := l.link.Invoke(waitTime, invokeMethod, msg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StubObserver is the callee-side half of the bridge: registered
// directly on a jsonrpc.Channel (not a Link, since it answers every
// "rpcruntime.invoke" call regardless of which Link's namespace it
// falls under), it dispatches inbound InvokeMessages to admin and
// submits the InvokeResponse back under the same id.
type StubObserver struct {
	channel *jsonrpc.Channel
	admin   *StubAdministrator
}

// NewStubObserver registers a StubObserver as an observer of channel.
func NewStubObserver(channel *jsonrpc.Channel, admin *StubAdministrator) *StubObserver {
	o := &StubObserver{channel: channel, admin: admin}
	channel.Register(o)
	return o
}

// Accept implements jsonrpc.Observer.
func (o *StubObserver) Accept(msg *jsonrpc.Message) bool {
	if msg.IsResponse() || msg.Designator != invokeMethod || msg.ID == nil {
		return false
	}

	var call InvokeMessage
	if err := json.Unmarshal(msg.Parameters, &call); err != nil {
		return false
	}

	resp := o.admin.Dispatch(&call)
	result, _ := json.Marshal(resp)
	_ = o.channel.Submit(&jsonrpc.Message{ID: msg.ID, Result: result})
	return true
}

// Opened implements jsonrpc.Observer.
func (o *StubObserver) Opened() {}

// Closed implements jsonrpc.Observer: every announced instance is
// dropped, per spec.md section 5's channel-owns-the-stub-set guarantee.
func (o *StubObserver) Closed() { o.admin.Close() }
