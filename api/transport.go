// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// The byte-stream boundary the codecs compose above: everything the
// WebSocket connection needs from a transport is batched Send/Recv over
// discrete byte buffers, so the codec stays agnostic of sockets, TLS,
// or in-process loopbacks.

package api

// TransportFeatures advertises what a Transport implementation supports,
// so callers can pick zero-copy or batched paths when available.
type TransportFeatures struct {
	ZeroCopy bool
	Batch    bool
}

// Transport is a message-oriented, full-duplex byte-stream link:
// Send/Recv move batches of frames in one call, which is what
// protocol.WSConnection drives its send/recv loops against.
type Transport interface {
	// Send writes one or more discrete byte buffers to the peer.
	Send([][]byte) error

	// Recv returns zero or more discrete byte buffers read from the peer.
	Recv() ([][]byte, error)

	// Close shuts down the transport.
	Close() error

	// Features reports this transport's capabilities.
	Features() TransportFeatures
}
