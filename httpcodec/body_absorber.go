// File: httpcodec/body_absorber.go
// Author: momentics <momentics@gmail.com>
//
// Drives a httpmsg.Body (optionally wrapped in a gzip inflater) through
// either fixed Content-Length framing or chunked transfer framing, per
// spec.md section 4.2. The inflate state is remembered across chunk
// boundaries, per the design note in spec.md section 9.

package httpcodec

import (
	"strconv"

	"github.com/momentics/weblink-rpc/httpmsg"
)

type absorbSink interface {
	Absorb([]byte) int
}

type absorbStage int

const (
	absorbFixed absorbStage = iota
	absorbChunkSize
	absorbChunkData
	absorbChunkCRLF
	absorbChunkTrailer
	absorbComplete
)

type bodyAbsorber struct {
	body      httpmsg.Body
	sink      absorbSink
	gz        *gzipAbsorber
	chunked   bool
	stage     absorbStage
	remaining int64
	lineAcc   []byte
}

// newBodyAbsorber wires body (or an in-memory TextBody sink if nil) behind optional
// gzip inflation, in either fixed-length or chunked mode.
func newBodyAbsorber(body httpmsg.Body, chunked bool, contentLength int64, gzipped bool) *bodyAbsorber {
	a := &bodyAbsorber{body: body, chunked: chunked, remaining: contentLength}
	if body == nil {
		body = httpmsg.NewTextBodySink()
		a.body = body
	}
	body.BeginDeserialize()
	if gzipped {
		a.gz = newGzipAbsorber(body)
		a.sink = a.gz
	} else {
		a.sink = body
	}
	if chunked {
		a.stage = absorbChunkSize
	} else {
		a.stage = absorbFixed
	}
	if !chunked && contentLength == 0 {
		a.stage = absorbComplete
	}
	return a
}

// Feed consumes as much of buf as the current framing allows, returning
// bytes consumed and whether the body is now complete.
func (a *bodyAbsorber) Feed(buf []byte) (consumed int, complete bool) {
	for consumed < len(buf) {
		switch a.stage {
		case absorbFixed:
			n := len(buf) - consumed
			if int64(n) > a.remaining {
				n = int(a.remaining)
			}
			if n == 0 {
				a.stage = absorbComplete
				return consumed, true
			}
			sunk := a.sink.Absorb(buf[consumed : consumed+n])
			consumed += sunk
			a.remaining -= int64(sunk)
			if a.remaining == 0 {
				a.stage = absorbComplete
				return consumed, true
			}
			if sunk == 0 {
				return consumed, false
			}

		case absorbChunkSize:
			line, n, found := scanLine(buf[consumed:], &a.lineAcc)
			consumed += n
			if !found {
				return consumed, false
			}
			size, err := strconv.ParseInt(trimChunkExt(line), 16, 64)
			if err != nil {
				a.stage = absorbComplete
				return consumed, true
			}
			if size == 0 {
				a.stage = absorbChunkTrailer
			} else {
				a.remaining = size
				a.stage = absorbChunkData
			}

		case absorbChunkData:
			n := len(buf) - consumed
			if int64(n) > a.remaining {
				n = int(a.remaining)
			}
			if n == 0 {
				return consumed, false
			}
			sunk := a.sink.Absorb(buf[consumed : consumed+n])
			consumed += sunk
			a.remaining -= int64(sunk)
			if a.remaining == 0 {
				a.stage = absorbChunkCRLF
			}
			if sunk == 0 {
				return consumed, false
			}

		case absorbChunkCRLF:
			_, n, found := scanLine(buf[consumed:], &a.lineAcc)
			consumed += n
			if !found {
				return consumed, false
			}
			a.stage = absorbChunkSize

		case absorbChunkTrailer:
			line, n, found := scanLine(buf[consumed:], &a.lineAcc)
			consumed += n
			if !found {
				return consumed, false
			}
			if line == "" {
				a.stage = absorbComplete
				return consumed, true
			}

		case absorbComplete:
			return consumed, true
		}
	}
	return consumed, a.stage == absorbComplete
}

// trimChunkExt drops a ";ext=value" chunk extension, if present.
func trimChunkExt(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == ';' {
			return line[:i]
		}
	}
	return line
}

// End finalizes the body: closes the gzip inflater (if any) and calls
// Body.End exactly once.
func (a *bodyAbsorber) End() error {
	var err error
	if a.gz != nil {
		err = a.gz.Close()
	}
	a.body.End()
	return err
}
