// File: protocol/handshake.go
// Package protocol
//
// WebSocket opening handshake, client and server sides, built on httpmsg's
// Request/Response types instead of net/http: the handshake is just an
// ordinary HTTP/1.1 exchange that happens to carry Upgrade headers, so it
// rides the same codec as every other message on the link.
package protocol

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"

	"github.com/momentics/weblink-rpc/httpmsg"
)

// WebSocketGUID is the magic string RFC 6455 section 1.3 appends to the
// client's Sec-WebSocket-Key before hashing.
const WebSocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

var (
	ErrMissingWebSocketKey = errors.New("protocol: missing Sec-WebSocket-Key")
	ErrBadWebSocketVersion = errors.New("protocol: unsupported Sec-WebSocket-Version")
	ErrNotUpgradeRequest   = errors.New("protocol: request is not a WebSocket upgrade")
	ErrHandshakeRejected   = errors.New("protocol: peer rejected the WebSocket upgrade")
	ErrAcceptKeyMismatch   = errors.New("protocol: Sec-WebSocket-Accept does not match the request key")
)

// HandshakeState tracks a link's position in the WEBSERVICE/UPGRADING/
// WEBSOCKET state machine. SUSPENDED and ACTIVITY are orthogonal bits in
// spec terms; modeled here as separate fields on WSConnection rather than
// folded into this enum, since Go has no free bitwise-OR-on-enum idiom.
type HandshakeState int

const (
	StateWebService HandshakeState = iota
	StateUpgrading
	StateWebSocket
)

func (s HandshakeState) String() string {
	switch s {
	case StateWebService:
		return "WEBSERVICE"
	case StateUpgrading:
		return "UPGRADING"
	case StateWebSocket:
		return "WEBSOCKET"
	default:
		return "UNKNOWN"
	}
}

// ComputeAcceptKey derives Sec-WebSocket-Accept from a client key per
// RFC 6455 section 1.3: base64(SHA1(key + GUID)).
func ComputeAcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(WebSocketGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// GenerateClientKey draws a fresh 16-byte CSPRNG value for Sec-WebSocket-Key.
func GenerateClientKey() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// BuildUpgradeRequest synthesizes the client-side opening handshake
// request: GET path HTTP/1.1 with Upgrade: websocket, Connection: upgrade,
// Sec-WebSocket-Version: 13, and a freshly generated key. It returns the
// key alongside the request so the caller can validate the eventual
// Sec-WebSocket-Accept.
func BuildUpgradeRequest(path, host string, protocols []string, origin string) (*httpmsg.Request, string, error) {
	key, err := GenerateClientKey()
	if err != nil {
		return nil, "", err
	}
	req := httpmsg.NewRequest(httpmsg.VerbGET, path)
	req.Host = httpmsg.Optional[string]{Value: host, Set: true}
	req.Connection = httpmsg.Optional[httpmsg.Connection]{Value: httpmsg.ConnectionUpgrade, Set: true}
	req.Upgrade = httpmsg.Optional[httpmsg.Upgrade]{Value: httpmsg.UpgradeWebSocket, Set: true}
	req.SecWebSocketKey = httpmsg.Optional[string]{Value: key, Set: true}
	req.SecWebSocketVersion = httpmsg.Optional[int]{Value: 13, Set: true}
	if len(protocols) > 0 {
		req.SecWebSocketProtocol = httpmsg.Optional[[]string]{Value: protocols, Set: true}
	}
	if origin != "" {
		req.Origin = httpmsg.Optional[string]{Value: origin, Set: true}
	}
	return req, key, nil
}

// ValidateUpgradeRequest checks an inbound request against the server-side
// preconditions for an upgrade (Upgrade/Connection headers, version, and
// presence of a key), returning the key to echo into Sec-WebSocket-Accept.
func ValidateUpgradeRequest(req *httpmsg.Request) (key string, err error) {
	if !req.IsWebSocketHandshake() {
		return "", ErrNotUpgradeRequest
	}
	if req.SecWebSocketVersion.Set && req.SecWebSocketVersion.Value != 13 {
		return "", ErrBadWebSocketVersion
	}
	if !req.SecWebSocketKey.Set || req.SecWebSocketKey.Value == "" {
		return "", ErrMissingWebSocketKey
	}
	return req.SecWebSocketKey.Value, nil
}

// BuildUpgradeResponse constructs the server's "101 Switching Protocols"
// response, computing Sec-WebSocket-Accept from the client's key and
// copying the first requested subprotocol back verbatim, if any.
func BuildUpgradeResponse(clientKey string, protocols httpmsg.Optional[[]string]) *httpmsg.Response {
	resp := httpmsg.NewResponse(101, "Switching Protocols")
	resp.Connection = httpmsg.Optional[httpmsg.Connection]{Value: httpmsg.ConnectionUpgrade, Set: true}
	resp.Upgrade = httpmsg.Optional[httpmsg.Upgrade]{Value: httpmsg.UpgradeWebSocket, Set: true}
	resp.SecWebSocketAccept = httpmsg.Optional[string]{Value: ComputeAcceptKey(clientKey), Set: true}
	if protocols.Set && len(protocols.Value) > 0 {
		resp.SecWebSocketProtocol = httpmsg.Optional[[]string]{Value: protocols.Value[:1], Set: true}
	}
	return resp
}

// ValidateUpgradeResponse checks the client-side handshake response: a 101
// with an accept key matching the request's Sec-WebSocket-Key, or an
// explicit rejection for a 403 response. Any other response means the
// link falls back to plain WEBSERVICE, per spec.md section 4.4.
func ValidateUpgradeResponse(resp *httpmsg.Response, requestKey string) error {
	if resp.Status == 403 {
		return ErrHandshakeRejected
	}
	if resp.Status != 101 {
		return ErrNotUpgradeRequest
	}
	if !resp.SecWebSocketAccept.Set || resp.SecWebSocketAccept.Value != ComputeAcceptKey(requestKey) {
		return ErrAcceptKeyMismatch
	}
	return nil
}
