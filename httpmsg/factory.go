// File: httpmsg/factory.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide pooled message factories. Messages travel through the
// codec at high rates; recycling them through an object pool keeps the
// parse path allocation-free once warmed up.

package httpmsg

import "github.com/momentics/weblink-rpc/pool"

// RequestFactory produces Requests from a shared free list.
type RequestFactory struct {
	pool *pool.SyncPool[*Request]
}

// NewRequestFactory builds an empty factory.
func NewRequestFactory() *RequestFactory {
	return &RequestFactory{pool: pool.NewSyncPool(func() *Request { return &Request{} })}
}

// Acquire returns a reset Request for verb/path.
func (f *RequestFactory) Acquire(verb Verb, path string) *Request {
	r := f.pool.Get()
	*r = Request{Message: NewMessage(), Verb: verb, Path: path}
	return r
}

// Release ends the request's body and returns it to the free list. The
// caller must not touch r afterwards.
func (f *RequestFactory) Release(r *Request) {
	r.Message.Release()
	f.pool.Put(r)
}

// ResponseFactory produces Responses from a shared free list.
type ResponseFactory struct {
	pool *pool.SyncPool[*Response]
}

// NewResponseFactory builds an empty factory.
func NewResponseFactory() *ResponseFactory {
	return &ResponseFactory{pool: pool.NewSyncPool(func() *Response { return &Response{} })}
}

// Acquire returns a reset Response with the given status line.
func (f *ResponseFactory) Acquire(status int, reason string) *Response {
	r := f.pool.Get()
	*r = Response{Message: NewMessage(), Status: status, Reason: reason}
	return r
}

// Release ends the response's body and returns it to the free list.
func (f *ResponseFactory) Release(r *Response) {
	r.Message.Release()
	f.pool.Put(r)
}

// Process-wide factories shared by every codec instance.
var (
	Requests  = NewRequestFactory()
	Responses = NewResponseFactory()
)
