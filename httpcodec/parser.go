// File: httpcodec/parser.go
// Author: momentics <momentics@gmail.com>
//
// Incremental inbound parsing: start-line -> headers -> body, resuming
// across arbitrarily small Feed() calls. A malformed start line discards
// bytes up to the next CRLF and restarts parsing rather than erroring
// out — "recover, do not crash" per spec.md section 4.2/7.

package httpcodec

import (
	"strings"

	"github.com/momentics/weblink-rpc/httpmsg"
)

type parseStage int

const (
	parseStartLine parseStage = iota
	parseHeaders
	parseBody
)

// RequestParser incrementally parses a stream of HTTP requests.
type RequestParser struct {
	stage    parseStage
	lineAcc  []byte
	current  *httpmsg.Request
	absorber *bodyAbsorber

	// LinkBody is called once headers are known, before body consumption
	// begins, so the owner can attach an appropriate Body. May be nil, in
	// which case an in-memory TextBody sink is used.
	LinkBody func(*httpmsg.Request) httpmsg.Body

	// OnRequest is invoked once per fully parsed request.
	OnRequest func(*httpmsg.Request)

	// OnBodyError is invoked if gzip inflation fails; the message is
	// still delivered to OnRequest with whatever body bytes arrived.
	OnBodyError func(*httpmsg.Request, error)
}

// Feed consumes all of data, emitting zero or more complete requests via
// OnRequest. There is no notion of a parse error escaping Feed: malformed
// input resynchronizes internally per spec.md's recovery policy.
func (p *RequestParser) Feed(data []byte) {
	for len(data) > 0 {
		switch p.stage {
		case parseStartLine:
			line, n, found := scanLine(data, &p.lineAcc)
			data = data[n:]
			if !found {
				return
			}
			if !p.parseRequestLine(line) {
				// malformed start-line: already resynced to next CRLF by
				// scanLine; stay in parseStartLine and keep scanning.
				continue
			}
			p.stage = parseHeaders

		case parseHeaders:
			line, n, found := scanLine(data, &p.lineAcc)
			data = data[n:]
			if !found {
				return
			}
			if line == "" {
				p.beginBody()
				continue
			}
			if name, value, ok := splitHeaderLine(line); ok {
				applyRequestHeader(p.current, name, value)
			}

		case parseBody:
			n, complete := p.absorber.Feed(data)
			data = data[n:]
			if complete {
				err := p.absorber.End()
				if err != nil && p.OnBodyError != nil {
					p.OnBodyError(p.current, err)
				}
				if p.OnRequest != nil {
					p.OnRequest(p.current)
				}
				p.reset()
			}
			if n == 0 {
				return
			}
		}
	}
}

func (p *RequestParser) parseRequestLine(line string) bool {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return false
	}
	major, minor, ok := parseHTTPVersion(parts[2])
	if !ok {
		return false
	}
	target := parts[1]
	path, query, fragment := splitTarget(target)

	req := httpmsg.Requests.Acquire(httpmsg.ParseVerb(parts[0]), path)
	req.Major, req.Minor = major, minor
	if query != "" {
		req.Query = reqOpt(query)
	}
	if fragment != "" {
		req.Fragment = reqOpt(fragment)
	}
	p.current = req
	return true
}

func (p *RequestParser) beginBody() {
	req := p.current
	chunked := req.TransferEncoding.Set && req.TransferEncoding.Value == httpmsg.TransferEncodingChunked
	contentLength := int64(0)
	if req.ContentLength.Set {
		contentLength = req.ContentLength.Value
	}
	var body httpmsg.Body
	if p.LinkBody != nil {
		body = p.LinkBody(req)
	}
	gzipped := req.ContentEncoding.Set && req.ContentEncoding.Value == httpmsg.ContentEncodingGzip
	p.absorber = newBodyAbsorber(body, chunked, contentLength, gzipped)
	p.stage = parseBody
	if !chunked && contentLength == 0 {
		req.SetBody(p.absorber.body)
		err := p.absorber.End()
		if err != nil && p.OnBodyError != nil {
			p.OnBodyError(req, err)
		}
		if p.OnRequest != nil {
			p.OnRequest(req)
		}
		p.reset()
		return
	}
	req.SetBody(p.absorber.body)
}

func (p *RequestParser) reset() {
	p.stage = parseStartLine
	p.current = nil
	p.absorber = nil
}

// ResponseParser incrementally parses a stream of HTTP responses.
type ResponseParser struct {
	stage    parseStage
	lineAcc  []byte
	current  *httpmsg.Response
	absorber *bodyAbsorber
	headOnly bool

	LinkBody    func(*httpmsg.Response) httpmsg.Body
	OnResponse  func(*httpmsg.Response)
	OnBodyError func(*httpmsg.Response, error)
}

// ExpectHeadResponse tells the parser the next response corresponds to a
// HEAD request: it carries no body regardless of Content-Length, per
// spec.md section 4.2's edge case.
func (p *ResponseParser) ExpectHeadResponse() { p.headOnly = true }

// Feed consumes all of data, emitting zero or more complete responses.
func (p *ResponseParser) Feed(data []byte) {
	for len(data) > 0 {
		switch p.stage {
		case parseStartLine:
			line, n, found := scanLine(data, &p.lineAcc)
			data = data[n:]
			if !found {
				return
			}
			if !p.parseStatusLine(line) {
				continue
			}
			p.stage = parseHeaders

		case parseHeaders:
			line, n, found := scanLine(data, &p.lineAcc)
			data = data[n:]
			if !found {
				return
			}
			if line == "" {
				p.beginBody()
				continue
			}
			if name, value, ok := splitHeaderLine(line); ok {
				applyResponseHeader(p.current, name, value)
			}

		case parseBody:
			n, complete := p.absorber.Feed(data)
			data = data[n:]
			if complete {
				err := p.absorber.End()
				if err != nil && p.OnBodyError != nil {
					p.OnBodyError(p.current, err)
				}
				if p.OnResponse != nil {
					p.OnResponse(p.current)
				}
				p.reset()
			}
			if n == 0 {
				return
			}
		}
	}
}

func (p *ResponseParser) parseStatusLine(line string) bool {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return false
	}
	major, minor, ok := parseHTTPVersion(parts[0])
	if !ok {
		return false
	}
	status, ok := parseStatusCode(parts[1])
	if !ok {
		return false
	}
	reason := ""
	if len(parts) == 3 {
		reason = parts[2]
	}
	resp := httpmsg.Responses.Acquire(status, reason)
	resp.Major, resp.Minor = major, minor
	p.current = resp
	return true
}

func (p *ResponseParser) beginBody() {
	resp := p.current
	headOnly := p.headOnly
	p.headOnly = false

	chunked := !headOnly && resp.TransferEncoding.Set && resp.TransferEncoding.Value == httpmsg.TransferEncodingChunked
	contentLength := int64(0)
	if !headOnly && resp.ContentLength.Set {
		contentLength = resp.ContentLength.Value
	}
	var body httpmsg.Body
	if p.LinkBody != nil {
		body = p.LinkBody(resp)
	}
	gzipped := !headOnly && resp.ContentEncoding.Set && resp.ContentEncoding.Value == httpmsg.ContentEncodingGzip
	p.absorber = newBodyAbsorber(body, chunked, contentLength, gzipped)
	p.stage = parseBody
	resp.SetBody(p.absorber.body)
	if headOnly || (!chunked && contentLength == 0) {
		err := p.absorber.End()
		if err != nil && p.OnBodyError != nil {
			p.OnBodyError(resp, err)
		}
		if p.OnResponse != nil {
			p.OnResponse(resp)
		}
		p.reset()
	}
}

func (p *ResponseParser) reset() {
	p.stage = parseStartLine
	p.current = nil
	p.absorber = nil
}
