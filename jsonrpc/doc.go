// Package jsonrpc implements the multiplexed JSON-RPC link described in
// spec.md section 4.5: a Channel multiplexes every link addressing the
// same (host, callsign) over one WebSocket, a Link owns a per-observer
// pending-call table and designator grammar, and a single shared timeout
// wheel expires asynchronous calls across every link in the process.
//
// Grounded on original_source/Source/jsonrpc/Channel.h and Channel.cpp
// for the interning-map/observer/Administrator pattern, and on
// original_source/Source/websocket/JSONRPCLink.h for the pending-call
// table, designator construction, and smart-link reconnection.
package jsonrpc
