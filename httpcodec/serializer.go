// File: httpcodec/serializer.go
// Author: momentics <momentics@gmail.com>
//
// Incremental outbound serialization: start-line, fixed-order headers,
// blank line, then body. Content-Length is taken from the body's
// BeginSerialize hint when no explicit value was set. The serializer
// produces no more than len(dst) bytes per Serialize call and resumes
// exactly where it left off on the next call.

package httpcodec

import (
	"fmt"
	"strconv"

	"github.com/momentics/weblink-rpc/httpmsg"
)

type serializerStage int

const (
	stageHeader serializerStage = iota
	stageBody
	stageChunkTerminator
	stageDone
)

const maxChunkSize = 8192

// bodyWriter drives a httpmsg.Body in either plain or chunked mode,
// shared by RequestSerializer and ResponseSerializer.
type bodyWriter struct {
	body    httpmsg.Body
	chunked bool
	scratch []byte
	pending []byte // unflushed chunk-framed bytes awaiting drain into dst
}

func (w *bodyWriter) drainPending(dst []byte) int {
	n := copy(dst, w.pending)
	w.pending = w.pending[n:]
	return n
}

// step writes into dst[off:] and returns the new offset and whether the
// body has been fully drained.
func (w *bodyWriter) step(dst []byte, off int) (int, bool) {
	if len(w.pending) > 0 {
		off += w.drainPending(dst[off:])
		if len(w.pending) > 0 {
			return off, false
		}
	}
	if w.body == nil {
		return off, true
	}
	if !w.chunked {
		n := w.body.Emit(dst[off:])
		off += n
		return off, n == 0 && off < len(dst)
	}

	// Chunked: stage the next chunk in a scratch buffer, then frame it
	// into pending so partial flushes never split a chunk header.
	if w.scratch == nil {
		w.scratch = make([]byte, maxChunkSize)
	}
	n := w.body.Emit(w.scratch)
	if n == 0 {
		w.pending = append(w.pending, []byte("0\r\n\r\n")...)
		w.body = nil
		off += w.drainPending(dst[off:])
		return off, len(w.pending) == 0
	}
	w.pending = append(w.pending, []byte(fmt.Sprintf("%x\r\n", n))...)
	w.pending = append(w.pending, w.scratch[:n]...)
	w.pending = append(w.pending, []byte("\r\n")...)
	off += w.drainPending(dst[off:])
	return off, false
}

// RequestSerializer incrementally serializes one Request.
type RequestSerializer struct {
	headerBuf []byte
	headerPos int
	body      bodyWriter
	stage     serializerStage
}

// Reset prepares the serializer to emit req from the start.
func (s *RequestSerializer) Reset(req *httpmsg.Request) {
	*s = RequestSerializer{}

	if b := req.Body(); b != nil {
		hint := b.BeginSerialize()
		if !req.ContentLength.Set && !(req.TransferEncoding.Set && req.TransferEncoding.Value == httpmsg.TransferEncodingChunked) {
			req.ContentLength = reqOptInt64(hint)
		}
		s.body.body = b
		s.body.chunked = req.TransferEncoding.Set && req.TransferEncoding.Value == httpmsg.TransferEncodingChunked
	}

	startLine := fmt.Sprintf("%s %s HTTP/%d.%d\r\n", req.Verb.String(), requestTarget(req), req.Major, req.Minor)
	var buf []byte
	buf = append(buf, startLine...)
	for _, h := range renderRequestHeaders(req) {
		buf = append(buf, h...)
		buf = append(buf, "\r\n"...)
	}
	buf = append(buf, "\r\n"...)
	s.headerBuf = buf
}

func requestTarget(req *httpmsg.Request) string {
	path := "/" + req.Path
	if req.Query.Set {
		path += "?" + req.Query.Value
	}
	if req.Fragment.Set {
		path += "#" + req.Fragment.Value
	}
	return path
}

// Serialize writes up to len(dst) bytes, returning how many were written
// and whether the message is fully emitted.
func (s *RequestSerializer) Serialize(dst []byte) (int, bool) {
	total := 0
	for total < len(dst) {
		switch s.stage {
		case stageHeader:
			n := copy(dst[total:], s.headerBuf[s.headerPos:])
			s.headerPos += n
			total += n
			if s.headerPos >= len(s.headerBuf) {
				s.stage = stageBody
			} else {
				return total, false
			}
		case stageBody:
			newOff, done := s.body.step(dst, total)
			progressed := newOff > total
			total = newOff
			if done {
				s.stage = stageDone
				return total, true
			}
			if !progressed {
				return total, false
			}
		case stageDone:
			return total, true
		}
	}
	return total, s.stage == stageDone
}

// ResponseSerializer incrementally serializes one Response.
type ResponseSerializer struct {
	headerBuf []byte
	headerPos int
	body      bodyWriter
	stage     serializerStage
	headOnly  bool
}

// Reset prepares the serializer to emit resp from the start. headOnly
// suppresses the body entirely, per the HEAD-response edge case.
func (s *ResponseSerializer) Reset(resp *httpmsg.Response, headOnly bool) {
	*s = ResponseSerializer{headOnly: headOnly}

	if !headOnly {
		if b := resp.Body(); b != nil {
			hint := b.BeginSerialize()
			if !resp.ContentLength.Set && !(resp.TransferEncoding.Set && resp.TransferEncoding.Value == httpmsg.TransferEncodingChunked) {
				resp.ContentLength = respOptInt64(hint)
			}
			s.body.body = b
			s.body.chunked = resp.TransferEncoding.Set && resp.TransferEncoding.Value == httpmsg.TransferEncodingChunked
		}
	}

	reason := resp.Reason
	startLine := "HTTP/" + strconv.Itoa(resp.Major) + "." + strconv.Itoa(resp.Minor) + " " + strconv.Itoa(resp.Status) + " " + reason + "\r\n"
	var buf []byte
	buf = append(buf, startLine...)
	for _, h := range renderResponseHeaders(resp) {
		buf = append(buf, h...)
		buf = append(buf, "\r\n"...)
	}
	buf = append(buf, "\r\n"...)
	s.headerBuf = buf
}

// Serialize writes up to len(dst) bytes, returning how many were written
// and whether the message is fully emitted.
func (s *ResponseSerializer) Serialize(dst []byte) (int, bool) {
	total := 0
	for total < len(dst) {
		switch s.stage {
		case stageHeader:
			n := copy(dst[total:], s.headerBuf[s.headerPos:])
			s.headerPos += n
			total += n
			if s.headerPos >= len(s.headerBuf) {
				s.stage = stageBody
			} else {
				return total, false
			}
		case stageBody:
			newOff, done := s.body.step(dst, total)
			progressed := newOff > total
			total = newOff
			if done {
				s.stage = stageDone
				return total, true
			}
			if !progressed {
				return total, false
			}
		case stageDone:
			return total, true
		}
	}
	return total, s.stage == stageDone
}
