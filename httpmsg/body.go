// File: httpmsg/body.go
// Author: momentics <momentics@gmail.com>
//
// Body decouples message framing (httpcodec) from payload storage. Exactly
// one Body is attached per message; httpcodec drives it through
// BeginSerialize/Emit on the way out and BeginDeserialize/Absorb/End on the
// way in, never both directions on the same call.

package httpmsg

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"io"
	"os"
)

// Body is the stream-oriented payload contract attached to a Message.
type Body interface {
	// BeginSerialize is called once before outbound emission starts and
	// returns a total-length hint (0 if unknown, e.g. chunked streaming).
	BeginSerialize() int64

	// Emit writes up to len(buf) bytes into buf and returns how many were
	// written. A return of 0 signals EOF.
	Emit(buf []byte) int

	// BeginDeserialize is called once headers indicate a body is present.
	BeginDeserialize()

	// Absorb consumes up to len(buf) bytes of inbound payload.
	Absorb(buf []byte) int

	// End is called exactly once when the body's direction completes.
	End()
}

// TextBody is an in-memory byte payload, used for small JSON-RPC/CDM
// message bodies and test fixtures alike.
type TextBody struct {
	data   []byte
	offset int
	buf    []byte
}

// NewTextBody wraps data for outbound emission.
func NewTextBody(data []byte) *TextBody { return &TextBody{data: data} }

// NewTextBodySink returns an empty TextBody ready to absorb inbound bytes.
func NewTextBodySink() *TextBody { return &TextBody{} }

func (t *TextBody) BeginSerialize() int64 { return int64(len(t.data)) }

func (t *TextBody) Emit(buf []byte) int {
	if t.offset >= len(t.data) {
		return 0
	}
	n := copy(buf, t.data[t.offset:])
	t.offset += n
	return n
}

func (t *TextBody) BeginDeserialize() { t.buf = t.buf[:0] }

func (t *TextBody) Absorb(buf []byte) int {
	t.buf = append(t.buf, buf...)
	return len(buf)
}

func (t *TextBody) End() {}

// Bytes returns the accumulated payload (absorbed, or source if emitting).
func (t *TextBody) Bytes() []byte {
	if len(t.buf) > 0 {
		return t.buf
	}
	return t.data
}

// FileBody maps a file on disk as the body payload, with an optional
// starting offset and truncate-on-empty semantics for inbound bodies.
type FileBody struct {
	path        string
	file        *os.File
	startOffset int64
	truncate    bool
	total       int64
	emitted     int64
}

// NewFileBody prepares an outbound body sourced from path, starting at
// startOffset.
func NewFileBody(path string, startOffset int64) *FileBody {
	return &FileBody{path: path, startOffset: startOffset}
}

// NewFileBodySink prepares an inbound body that writes to path. If
// truncate is set, the file is truncated to empty before the first write.
func NewFileBodySink(path string, truncate bool) *FileBody {
	return &FileBody{path: path, truncate: truncate}
}

func (f *FileBody) BeginSerialize() int64 {
	file, err := os.Open(f.path)
	if err != nil {
		return 0
	}
	f.file = file
	if f.startOffset > 0 {
		_, _ = f.file.Seek(f.startOffset, io.SeekStart)
	}
	info, err := file.Stat()
	if err != nil {
		return 0
	}
	f.total = info.Size() - f.startOffset
	if f.total < 0 {
		f.total = 0
	}
	return f.total
}

func (f *FileBody) Emit(buf []byte) int {
	if f.file == nil {
		return 0
	}
	n, err := f.file.Read(buf)
	f.emitted += int64(n)
	if n == 0 || err != nil {
		return 0
	}
	return n
}

func (f *FileBody) BeginDeserialize() {
	flags := os.O_CREATE | os.O_WRONLY
	if f.truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	file, err := os.OpenFile(f.path, flags, 0o644)
	if err == nil {
		f.file = file
	}
}

func (f *FileBody) Absorb(buf []byte) int {
	if f.file == nil {
		return len(buf)
	}
	n, _ := f.file.Write(buf)
	return n
}

func (f *FileBody) End() {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}
}

// JSONBody streams a JSON object's already-encoded bytes; it embeds
// TextBody, so the codec treats it identically on the wire and callers
// read the encoded JSON back through the embedded Bytes().
type JSONBody struct {
	TextBody
}

// NewJSONBody wraps pre-encoded JSON bytes for outbound emission.
func NewJSONBody(encoded []byte) *JSONBody {
	return &JSONBody{TextBody: TextBody{data: encoded}}
}

// NewJSONBodySink returns an empty JSONBody ready to absorb inbound bytes.
func NewJSONBodySink() *JSONBody { return &JSONBody{} }

// SignedBody wraps another Body and maintains a running HMAC over every
// byte that passes through Emit/Absorb in either direction, matching the
// Content-HMAC contract in spec.md section 3.
type SignedBody struct {
	inner Body
	mac   hash.Hash
}

// NewSignedBody wraps inner with an HMAC-SHA256 computed over key.
func NewSignedBody(inner Body, key []byte) *SignedBody {
	return &SignedBody{inner: inner, mac: hmac.New(sha256.New, key)}
}

func (s *SignedBody) BeginSerialize() int64 { return s.inner.BeginSerialize() }

func (s *SignedBody) Emit(buf []byte) int {
	n := s.inner.Emit(buf)
	if n > 0 {
		s.mac.Write(buf[:n])
	}
	return n
}

func (s *SignedBody) BeginDeserialize() { s.inner.BeginDeserialize() }

func (s *SignedBody) Absorb(buf []byte) int {
	n := s.inner.Absorb(buf)
	if n > 0 {
		s.mac.Write(buf[:n])
	}
	return n
}

func (s *SignedBody) End() { s.inner.End() }

// Digest returns the running HMAC digest over every streamed byte so far.
func (s *SignedBody) Digest() []byte { return s.mac.Sum(nil) }

// Inner returns the wrapped Body.
func (s *SignedBody) Inner() Body { return s.inner }
