// File: rpcruntime/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package rpcruntime is the generic proxy/stub RPC layer: a process-wide
// registry mapping an InterfaceID to a stub dispatch table and a proxy
// factory, a StubAdministrator holding real object instances on the
// callee side, and a ProxyAdministrator deduplicating proxies per
// channel on the caller side. Grounded on
// original_source/Source/ocdm/ProxyStubs.cpp for the dispatch-table
// shape and on the channel/administrator pattern already used in
// api/adapters for the Go idiom: interfaces plus explicit Release, no
// finalizers.
package rpcruntime
