// File: httpcodec/gzip_absorber.go
// Author: momentics <momentics@gmail.com>
//
// Streams gzip-compressed inbound body bytes through compress/gzip's
// incremental Reader via an io.Pipe: Absorb feeds compressed bytes in,
// a background goroutine inflates and forwards plaintext to the real
// Body sink. Window is whatever compress/gzip uses internally (RFC 1952
// gzip wrapper over a raw deflate stream, equivalent to zlib's
// windowBits=15+16). A corrupt stream records an error and stops
// forwarding rather than panicking.

package httpcodec

import (
	"compress/gzip"
	"io"

	"github.com/momentics/weblink-rpc/httpmsg"
)

type gzipAbsorber struct {
	pw   *io.PipeWriter
	done chan struct{}
	err  error
}

func newGzipAbsorber(sink httpmsg.Body) *gzipAbsorber {
	pr, pw := io.Pipe()
	g := &gzipAbsorber{pw: pw, done: make(chan struct{})}
	go func() {
		defer close(g.done)
		zr, err := gzip.NewReader(pr)
		if err != nil {
			g.err = ErrDecompressFailed
			pr.CloseWithError(err)
			return
		}
		buf := make([]byte, 4096)
		for {
			n, rerr := zr.Read(buf)
			if n > 0 {
				sink.Absorb(buf[:n])
			}
			if rerr != nil {
				if rerr != io.EOF {
					g.err = ErrDecompressFailed
					pr.CloseWithError(rerr)
				}
				return
			}
		}
	}()
	return g
}

// Absorb feeds compressed bytes into the pipe. Once the background
// goroutine has failed, further writes return immediately via the
// pipe's recorded error instead of blocking.
func (g *gzipAbsorber) Absorb(data []byte) int {
	n, err := g.pw.Write(data)
	if err != nil {
		return n
	}
	return n
}

// Close signals end-of-stream to the inflater and waits for it to drain.
func (g *gzipAbsorber) Close() error {
	_ = g.pw.Close()
	<-g.done
	return g.err
}
