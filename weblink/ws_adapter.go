// File: weblink/ws_adapter.go
// Author: momentics <momentics@gmail.com>
//
// Adapts a single WebSocket frame to weblink's OutboundCodec contract: a
// frame is small enough that Drain always completes it in one call once
// dst is large enough for the whole encoded frame, but Drain still obeys
// the partial-write contract for callers with small buffers.

package weblink

import "github.com/momentics/weblink-rpc/protocol"

// FrameCodec adapts WebSocket frame encoding to OutboundCodec.
type FrameCodec struct {
	Mask    bool
	encoded []byte
	offset  int
}

func (c *FrameCodec) Prime(item *protocol.WSFrame) {
	data, err := protocol.EncodeFrameToBytesWithMask(item, c.Mask)
	if err != nil {
		data = nil
	}
	c.encoded = data
	c.offset = 0
}

func (c *FrameCodec) Drain(dst []byte) (n int, done bool) {
	remaining := c.encoded[c.offset:]
	n = copy(dst, remaining)
	c.offset += n
	return n, c.offset >= len(c.encoded)
}
