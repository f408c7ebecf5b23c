// File: httpcodec/lines.go
// Author: momentics <momentics@gmail.com>
//
// CRLF line accumulation shared by the header parser and the chunk-size /
// chunk-trailer scanners: each caller owns an accumulator slice so a line
// split across Feed calls is reassembled transparently.

package httpcodec

import "bytes"

// scanLine looks for "\r\n" in buf. If found, the accumulated line (acc
// plus the prefix of buf before CRLF) is returned along with the number
// of bytes of buf consumed (including the CRLF) and found=true; acc is
// reset. If not found, all of buf is appended to acc and found=false.
func scanLine(buf []byte, acc *[]byte) (line string, consumed int, found bool) {
	// The CR may have ended the previous call's buffer.
	if n := len(*acc); n > 0 && (*acc)[n-1] == '\r' && len(buf) > 0 && buf[0] == '\n' {
		line = string((*acc)[:n-1])
		*acc = (*acc)[:0]
		return line, 1, true
	}
	idx := bytes.Index(buf, []byte("\r\n"))
	if idx < 0 {
		*acc = append(*acc, buf...)
		return "", len(buf), false
	}
	*acc = append(*acc, buf[:idx]...)
	line = string(*acc)
	*acc = (*acc)[:0]
	return line, idx + 2, true
}
