// File: protocol/handshake_serializer.go
// Package protocol
// Helper for flushing a handshake message through httpcodec onto an io.Writer.
package protocol

import (
	"io"

	"github.com/momentics/weblink-rpc/httpcodec"
	"github.com/momentics/weblink-rpc/httpmsg"
	"github.com/momentics/weblink-rpc/pool"
)

// handshakeBufs recycles the scratch buffers the handshake writers drain
// serializer output through.
var handshakeBufs = pool.NewSimpleBytePool(16, 4096)

// WriteUpgradeResponse drains a ResponseSerializer over resp and writes
// the wire bytes to w, looping until the resumable codec reports done.
func WriteUpgradeResponse(w io.Writer, resp *httpmsg.Response) error {
	var ser httpcodec.ResponseSerializer
	ser.Reset(resp, false)
	buf := handshakeBufs.Get()
	defer handshakeBufs.Put(buf)
	for {
		n, done := ser.Serialize(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}

// WriteUpgradeRequest drains a RequestSerializer over req and writes the
// wire bytes to w, looping until the resumable codec reports done.
func WriteUpgradeRequest(w io.Writer, req *httpmsg.Request) error {
	var ser httpcodec.RequestSerializer
	ser.Reset(req)
	buf := handshakeBufs.Get()
	defer handshakeBufs.Put(buf)
	for {
		n, done := ser.Serialize(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}
