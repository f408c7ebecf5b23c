// File: httpmsg/doc.go
// Package httpmsg
// Author: momentics <momentics@gmail.com>
//
// In-memory HTTP request/response message model: every header is optional
// (presence distinct from a zero value), a message owns at most one Body,
// and Body ownership is exclusive to the message that holds it. This
// package holds no wire logic; httpcodec serializes/parses these shapes.
package httpmsg
