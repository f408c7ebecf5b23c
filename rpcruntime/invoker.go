// File: rpcruntime/invoker.go
// Author: momentics <momentics@gmail.com>
//
// Invoker is the channel-facing side of a proxy: whatever carries an
// InvokeMessage to the peer's StubAdministrator and returns its
// response. jsonrpc.Link satisfies it via the LinkInvoker adapter in
// jsonrpclink.go, reusing the pending-call/timeout machinery already
// built for JSON-RPC rather than inventing a second wire protocol.

package rpcruntime

import "context"

// Invoker sends an InvokeMessage to the remote stub and blocks for its
// response, per LinkType::InternalInvoke's synchronous shape — "one
// in-flight invocation per interface pointer" is enforced by the caller
// (ProxyAdministrator serializes calls per proxy), not by Invoker itself.
type Invoker interface {
	Invoke(ctx context.Context, msg *InvokeMessage) (*InvokeResponse, error)
}
