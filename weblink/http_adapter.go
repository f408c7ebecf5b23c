// File: weblink/http_adapter.go
// Author: momentics <momentics@gmail.com>
//
// Adapts httpcodec's resumable serializers to weblink's OutboundCodec
// contract, so a Link[*httpmsg.Request] or Link[*httpmsg.Response] can
// drive an HTTP/1.1 connection's outbound FIFO.

package weblink

import (
	"github.com/momentics/weblink-rpc/httpcodec"
	"github.com/momentics/weblink-rpc/httpmsg"
)

// RequestCodec adapts httpcodec.RequestSerializer to OutboundCodec.
type RequestCodec struct {
	ser httpcodec.RequestSerializer
}

func (c *RequestCodec) Prime(item *httpmsg.Request)         { c.ser.Reset(item) }
func (c *RequestCodec) Drain(dst []byte) (int, bool)         { return c.ser.Serialize(dst) }

// ResponseCodec adapts httpcodec.ResponseSerializer to OutboundCodec. Each
// response is tagged with whether it answers a HEAD request, since HEAD
// responses omit the body regardless of Content-Length.
type ResponseCodec struct {
	ser      httpcodec.ResponseSerializer
	HeadOnly func(*httpmsg.Response) bool
}

func (c *ResponseCodec) Prime(item *httpmsg.Response) {
	headOnly := false
	if c.HeadOnly != nil {
		headOnly = c.HeadOnly(item)
	}
	c.ser.Reset(item, headOnly)
}

func (c *ResponseCodec) Drain(dst []byte) (int, bool) { return c.ser.Serialize(dst) }
