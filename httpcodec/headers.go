// File: httpcodec/headers.go
// Author: momentics <momentics@gmail.com>
//
// Header rendering (fixed order, case mode) and parsing (case-insensitive
// name match) for Request and Response. Unknown header names are skipped
// on parse per spec.md section 4.2.

package httpcodec

import (
	"strconv"
	"strings"
	"time"

	"github.com/momentics/weblink-rpc/httpmsg"
)

func renderName(name string, mode httpmsg.CaseMode) string {
	if mode == httpmsg.CaseUpper {
		return strings.ToUpper(name)
	}
	return name
}

func writeHeader(out *[]string, mode httpmsg.CaseMode, name, value string) {
	*out = append(*out, renderName(name, mode)+": "+value)
}

const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

func connectionText(c httpmsg.Connection) string {
	switch c {
	case httpmsg.ConnectionClose:
		return "close"
	case httpmsg.ConnectionKeepAlive:
		return "keep-alive"
	case httpmsg.ConnectionUpgrade:
		return "upgrade"
	default:
		return ""
	}
}

func parseConnection(v string) (httpmsg.Connection, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "close":
		return httpmsg.ConnectionClose, true
	case "keep-alive":
		return httpmsg.ConnectionKeepAlive, true
	case "upgrade":
		return httpmsg.ConnectionUpgrade, true
	default:
		return httpmsg.ConnectionUnset, false
	}
}

func parseContentEncoding(v string) (httpmsg.ContentEncoding, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "identity":
		return httpmsg.ContentEncodingIdentity, true
	case "gzip":
		return httpmsg.ContentEncodingGzip, true
	default:
		return httpmsg.ContentEncodingUnset, false
	}
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// renderRequestHeaders renders req's present headers in the fixed order
// spec.md section 3 lists them.
func renderRequestHeaders(req *httpmsg.Request) []string {
	var out []string
	mode := req.Case

	if req.Host.Set {
		writeHeader(&out, mode, "Host", req.Host.Value)
	}
	if req.Origin.Set {
		writeHeader(&out, mode, "Origin", req.Origin.Value)
	}
	if req.Accept.Set {
		writeHeader(&out, mode, "Accept", req.Accept.Value)
	}
	if req.AcceptEncoding.Set {
		writeHeader(&out, mode, "Accept-Encoding", req.AcceptEncoding.Value)
	}
	if req.UserAgent.Set {
		writeHeader(&out, mode, "User-Agent", req.UserAgent.Value)
	}
	if req.ContentType.Set {
		writeHeader(&out, mode, "Content-Type", req.ContentType.Value)
	}
	if req.ContentLength.Set {
		writeHeader(&out, mode, "Content-Length", strconv.FormatInt(req.ContentLength.Value, 10))
	}
	if req.ContentEncoding.Set {
		writeHeader(&out, mode, "Content-Encoding", contentEncodingText(req.ContentEncoding.Value))
	}
	if req.TransferEncoding.Set {
		writeHeader(&out, mode, "Transfer-Encoding", "chunked")
	}
	if req.Connection.Set {
		writeHeader(&out, mode, "Connection", connectionText(req.Connection.Value))
	}
	if req.Upgrade.Set {
		writeHeader(&out, mode, "Upgrade", "websocket")
	}
	if req.SecWebSocketKey.Set {
		writeHeader(&out, mode, "Sec-WebSocket-Key", req.SecWebSocketKey.Value)
	}
	if req.SecWebSocketVersion.Set {
		writeHeader(&out, mode, "Sec-WebSocket-Version", strconv.Itoa(req.SecWebSocketVersion.Value))
	}
	if req.SecWebSocketProtocol.Set {
		writeHeader(&out, mode, "Sec-WebSocket-Protocol", strings.Join(req.SecWebSocketProtocol.Value, ", "))
	}
	if req.SecWebSocketExtension.Set {
		writeHeader(&out, mode, "Sec-WebSocket-Extensions", strings.Join(req.SecWebSocketExtension.Value, ", "))
	}
	if req.Range.Set {
		writeHeader(&out, mode, "Range", req.Range.Value)
	}
	if req.Authorization.Set {
		auth := req.Authorization.Value
		scheme := "Bearer"
		if auth.Scheme == httpmsg.AuthBasic {
			scheme = "Basic"
		}
		writeHeader(&out, mode, "Authorization", scheme+" "+auth.Token)
	}
	if req.ContentHMAC.Set {
		hmacHdr := req.ContentHMAC.Value
		writeHeader(&out, mode, "Content-HMAC", hmacHdr.Algorithm+"="+hmacHdr.Digest)
	}
	return out
}

func contentEncodingText(c httpmsg.ContentEncoding) string {
	switch c {
	case httpmsg.ContentEncodingGzip:
		return "gzip"
	case httpmsg.ContentEncodingIdentity:
		return "identity"
	default:
		return ""
	}
}

// applyRequestHeader applies one parsed (name, value) pair to req.
// Unknown names are ignored, matching the "skip unknown" parse rule.
func applyRequestHeader(req *httpmsg.Request, name, value string) {
	switch strings.ToLower(name) {
	case "host":
		req.Host = reqOpt(value)
	case "origin":
		req.Origin = reqOpt(value)
	case "accept":
		req.Accept = reqOpt(value)
	case "accept-encoding":
		req.AcceptEncoding = reqOpt(value)
	case "user-agent":
		req.UserAgent = reqOpt(value)
	case "content-type":
		req.ContentType = reqOpt(value)
	case "content-length":
		if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			req.ContentLength = reqOptInt64(n)
		}
	case "content-encoding":
		if ce, ok := parseContentEncoding(value); ok {
			req.ContentEncoding = reqOptCE(ce)
		}
	case "transfer-encoding":
		if strings.EqualFold(strings.TrimSpace(value), "chunked") {
			req.TransferEncoding = reqOptTE(httpmsg.TransferEncodingChunked)
		}
	case "connection":
		if c, ok := parseConnection(value); ok {
			req.Connection = reqOptConn(c)
		}
	case "upgrade":
		if strings.EqualFold(strings.TrimSpace(value), "websocket") {
			req.Upgrade = reqOptUpgrade(httpmsg.UpgradeWebSocket)
		}
	case "sec-websocket-key":
		req.SecWebSocketKey = reqOpt(value)
	case "sec-websocket-version":
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			req.SecWebSocketVersion = reqOptInt(n)
		}
	case "sec-websocket-protocol":
		req.SecWebSocketProtocol = reqOptList(splitCommaList(value))
	case "sec-websocket-extensions":
		req.SecWebSocketExtension = reqOptList(splitCommaList(value))
	case "range":
		req.Range = reqOpt(value)
	case "authorization":
		if auth, ok := parseAuthorization(value); ok {
			req.Authorization = reqOptAuth(auth)
		}
	case "content-hmac":
		if h, ok := parseContentHMAC(value); ok {
			req.ContentHMAC = reqOptHMAC(h)
		}
	}
}

func parseAuthorization(v string) (httpmsg.Authorization, bool) {
	parts := strings.SplitN(strings.TrimSpace(v), " ", 2)
	if len(parts) != 2 {
		return httpmsg.Authorization{}, false
	}
	switch strings.ToLower(parts[0]) {
	case "bearer":
		return httpmsg.Authorization{Scheme: httpmsg.AuthBearer, Token: parts[1]}, true
	case "basic":
		return httpmsg.Authorization{Scheme: httpmsg.AuthBasic, Token: parts[1]}, true
	default:
		return httpmsg.Authorization{}, false
	}
}

func parseContentHMAC(v string) (httpmsg.ContentHMAC, bool) {
	idx := strings.IndexByte(v, '=')
	if idx < 0 {
		return httpmsg.ContentHMAC{}, false
	}
	return httpmsg.ContentHMAC{Algorithm: strings.TrimSpace(v[:idx]), Digest: strings.TrimSpace(v[idx+1:])}, true
}

// renderResponseHeaders renders resp's present headers in the fixed order
// spec.md section 3 lists them.
func renderResponseHeaders(resp *httpmsg.Response) []string {
	var out []string
	mode := resp.Case

	if resp.Date.Set {
		writeHeader(&out, mode, "Date", resp.Date.Value.UTC().Format(httpDateLayout))
	}
	if resp.Server.Set {
		writeHeader(&out, mode, "Server", resp.Server.Value)
	}
	if resp.LastModified.Set {
		writeHeader(&out, mode, "Last-Modified", resp.LastModified.Value.UTC().Format(httpDateLayout))
	}
	if resp.ETag.Set {
		writeHeader(&out, mode, "ETag", resp.ETag.Value)
	}
	if resp.Allow.Set {
		writeHeader(&out, mode, "Allow", allowText(resp.Allow.Value))
	}
	if resp.ContentType.Set {
		writeHeader(&out, mode, "Content-Type", resp.ContentType.Value)
	}
	if resp.ContentLength.Set {
		writeHeader(&out, mode, "Content-Length", strconv.FormatInt(resp.ContentLength.Value, 10))
	}
	if resp.ContentEncoding.Set {
		writeHeader(&out, mode, "Content-Encoding", contentEncodingText(resp.ContentEncoding.Value))
	}
	if resp.TransferEncoding.Set {
		writeHeader(&out, mode, "Transfer-Encoding", "chunked")
	}
	if resp.Connection.Set {
		writeHeader(&out, mode, "Connection", connectionText(resp.Connection.Value))
	}
	if resp.Upgrade.Set {
		writeHeader(&out, mode, "Upgrade", "websocket")
	}
	if resp.SecWebSocketAccept.Set {
		writeHeader(&out, mode, "Sec-WebSocket-Accept", resp.SecWebSocketAccept.Value)
	}
	if resp.Location.Set {
		writeHeader(&out, mode, "Location", resp.Location.Value)
	}
	if resp.AccessControlOrigin.Set {
		writeHeader(&out, mode, "Access-Control-Allow-Origin", resp.AccessControlOrigin.Value)
	}
	if resp.AccessControlMethods.Set {
		writeHeader(&out, mode, "Access-Control-Allow-Methods", resp.AccessControlMethods.Value)
	}
	if resp.CacheControl.Set {
		writeHeader(&out, mode, "Cache-Control", resp.CacheControl.Value)
	}
	if resp.ApplicationURL.Set {
		writeHeader(&out, mode, "Application-URL", resp.ApplicationURL.Value)
	}
	return out
}

func allowText(mask httpmsg.VerbMask) string {
	verbs := []httpmsg.Verb{
		httpmsg.VerbGET, httpmsg.VerbHEAD, httpmsg.VerbPOST, httpmsg.VerbPUT,
		httpmsg.VerbDELETE, httpmsg.VerbOPTIONS, httpmsg.VerbTRACE,
		httpmsg.VerbCONNECT, httpmsg.VerbPATCH,
	}
	var out []string
	for _, v := range verbs {
		if mask.Has(v) {
			out = append(out, v.String())
		}
	}
	return strings.Join(out, ", ")
}

func applyResponseHeader(resp *httpmsg.Response, name, value string) {
	switch strings.ToLower(name) {
	case "date":
		if t, err := time.Parse(httpDateLayout, value); err == nil {
			resp.Date = respOptTime(t)
		}
	case "server":
		resp.Server = respOpt(value)
	case "last-modified":
		if t, err := time.Parse(httpDateLayout, value); err == nil {
			resp.LastModified = respOptTime(t)
		}
	case "etag":
		resp.ETag = respOpt(value)
	case "allow":
		var mask httpmsg.VerbMask
		for _, v := range splitCommaList(value) {
			mask = mask.WithVerb(httpmsg.ParseVerb(strings.TrimSpace(v)))
		}
		resp.Allow = respOptMask(mask)
	case "content-type":
		resp.ContentType = respOpt(value)
	case "content-length":
		if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			resp.ContentLength = respOptInt64(n)
		}
	case "content-encoding":
		if ce, ok := parseContentEncoding(value); ok {
			resp.ContentEncoding = respOptCE(ce)
		}
	case "transfer-encoding":
		if strings.EqualFold(strings.TrimSpace(value), "chunked") {
			resp.TransferEncoding = respOptTE(httpmsg.TransferEncodingChunked)
		}
	case "connection":
		if c, ok := parseConnection(value); ok {
			resp.Connection = respOptConn(c)
		}
	case "upgrade":
		if strings.EqualFold(strings.TrimSpace(value), "websocket") {
			resp.Upgrade = respOptUpgrade(httpmsg.UpgradeWebSocket)
		}
	case "sec-websocket-accept":
		resp.SecWebSocketAccept = respOpt(value)
	case "location":
		resp.Location = respOpt(value)
	case "access-control-allow-origin":
		resp.AccessControlOrigin = respOpt(value)
	case "access-control-allow-methods":
		resp.AccessControlMethods = respOpt(value)
	case "cache-control":
		resp.CacheControl = respOpt(value)
	case "application-url":
		resp.ApplicationURL = respOpt(value)
	}
}

// The reqOpt*/respOpt* helpers exist only to keep the switch bodies above
// terse; httpmsg.Optional has no constructor of its own.
func reqOpt(v string) httpmsg.Optional[string]        { return httpmsg.Optional[string]{Value: v, Set: true} }
func reqOptInt64(v int64) httpmsg.Optional[int64]      { return httpmsg.Optional[int64]{Value: v, Set: true} }
func reqOptInt(v int) httpmsg.Optional[int]            { return httpmsg.Optional[int]{Value: v, Set: true} }
func reqOptList(v []string) httpmsg.Optional[[]string] { return httpmsg.Optional[[]string]{Value: v, Set: true} }
func reqOptCE(v httpmsg.ContentEncoding) httpmsg.Optional[httpmsg.ContentEncoding] {
	return httpmsg.Optional[httpmsg.ContentEncoding]{Value: v, Set: true}
}
func reqOptTE(v httpmsg.TransferEncoding) httpmsg.Optional[httpmsg.TransferEncoding] {
	return httpmsg.Optional[httpmsg.TransferEncoding]{Value: v, Set: true}
}
func reqOptConn(v httpmsg.Connection) httpmsg.Optional[httpmsg.Connection] {
	return httpmsg.Optional[httpmsg.Connection]{Value: v, Set: true}
}
func reqOptUpgrade(v httpmsg.Upgrade) httpmsg.Optional[httpmsg.Upgrade] {
	return httpmsg.Optional[httpmsg.Upgrade]{Value: v, Set: true}
}
func reqOptAuth(v httpmsg.Authorization) httpmsg.Optional[httpmsg.Authorization] {
	return httpmsg.Optional[httpmsg.Authorization]{Value: v, Set: true}
}
func reqOptHMAC(v httpmsg.ContentHMAC) httpmsg.Optional[httpmsg.ContentHMAC] {
	return httpmsg.Optional[httpmsg.ContentHMAC]{Value: v, Set: true}
}

func respOpt(v string) httpmsg.Optional[string]   { return httpmsg.Optional[string]{Value: v, Set: true} }
func respOptInt64(v int64) httpmsg.Optional[int64] { return httpmsg.Optional[int64]{Value: v, Set: true} }
func respOptTime(v time.Time) httpmsg.Optional[time.Time] {
	return httpmsg.Optional[time.Time]{Value: v, Set: true}
}
func respOptMask(v httpmsg.VerbMask) httpmsg.Optional[httpmsg.VerbMask] {
	return httpmsg.Optional[httpmsg.VerbMask]{Value: v, Set: true}
}
func respOptCE(v httpmsg.ContentEncoding) httpmsg.Optional[httpmsg.ContentEncoding] {
	return httpmsg.Optional[httpmsg.ContentEncoding]{Value: v, Set: true}
}
func respOptTE(v httpmsg.TransferEncoding) httpmsg.Optional[httpmsg.TransferEncoding] {
	return httpmsg.Optional[httpmsg.TransferEncoding]{Value: v, Set: true}
}
func respOptConn(v httpmsg.Connection) httpmsg.Optional[httpmsg.Connection] {
	return httpmsg.Optional[httpmsg.Connection]{Value: v, Set: true}
}
func respOptUpgrade(v httpmsg.Upgrade) httpmsg.Optional[httpmsg.Upgrade] {
	return httpmsg.Optional[httpmsg.Upgrade]{Value: v, Set: true}
}
