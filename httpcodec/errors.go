// File: httpcodec/errors.go
// Author: momentics <momentics@gmail.com>

package httpcodec

import "errors"

// Codec errors per spec.md section 7. The parser never returns these to
// abort the whole stream; a malformed start line is discarded up to the
// next CRLF and parsing restarts on the following line.
var (
	ErrMalformedStartLine = errors.New("httpcodec: malformed start line")
	ErrMalformedHeader    = errors.New("httpcodec: malformed header")
	ErrUnexpectedEOF      = errors.New("httpcodec: unexpected end of stream")
	ErrDecompressFailed   = errors.New("httpcodec: gzip decompression failed")
)
