// Package weblink implements the generic framed-message pump described in
// spec.md section 4.3: given a byte-stream link and an outbound message
// type, it owns an outbound FIFO, primes a codec with the head of that
// FIFO, and forwards owner callbacks (Sent, StateChange) as the codec and
// transport make progress. It has no Received callback: inbound bytes go
// straight to the codec's own parser.
//
// Grounded on original_source/Source/websocket/WebLink.h's WebLinkType:
// the outbound SerializerImpl there queues ProxyType<OUTBOUND> elements
// and primes the next one once the current has fully drained; Link below
// is that same state machine generalized over Go generics instead of C++
// templates.
package weblink
