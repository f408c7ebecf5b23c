// File: httpcodec/doc.go
// Package httpcodec
// Author: momentics <momentics@gmail.com>
//
// Incremental HTTP/1.1 serializer and parser over caller-supplied buffers:
// neither side owns the transport. Handles chunked transfer and gzip
// content-encoding; header names are matched case-insensitively on parse
// and rendered in the fixed order httpmsg.Request/Response list their
// fields, per spec.md section 4.2.
package httpcodec
