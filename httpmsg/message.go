// File: httpmsg/message.go
// Author: momentics <momentics@gmail.com>

package httpmsg

import "github.com/momentics/weblink-rpc/weburl"

// Optional re-exports weburl's presence-aware value wrapper so every header
// field in this package can distinguish "absent" from "zero value".
type Optional[T any] = weburl.Optional[T]

func some[T any](v T) Optional[T] { return Optional[T]{Value: v, Set: true} }

// CaseMode controls how header names are rendered on the wire. Parsing is
// always case-insensitive regardless of this setting.
type CaseMode int

const (
	CaseRaw CaseMode = iota
	CaseUpper
)

// Connection enumerates the supported Connection header values.
type Connection int

const (
	ConnectionUnset Connection = iota
	ConnectionClose
	ConnectionKeepAlive
	ConnectionUpgrade
)

// TransferEncoding enumerates the supported Transfer-Encoding values.
type TransferEncoding int

const (
	TransferEncodingUnset TransferEncoding = iota
	TransferEncodingChunked
)

// ContentEncoding enumerates the supported Content-Encoding values.
type ContentEncoding int

const (
	ContentEncodingUnset ContentEncoding = iota
	ContentEncodingIdentity
	ContentEncodingGzip
)

// Upgrade enumerates the supported Upgrade header values.
type Upgrade int

const (
	UpgradeUnset Upgrade = iota
	UpgradeWebSocket
)

// Message is the shape shared by Request and Response: version, common
// headers, and at most one Body. Body ownership is exclusive: releasing a
// message releases its Body via Body.End.
type Message struct {
	Major int
	Minor int
	Case  CaseMode

	ContentType     Optional[string] // including charset, e.g. "application/json; charset=utf-8"
	ContentLength   Optional[int64]
	ContentEncoding Optional[ContentEncoding]
	TransferEncoding Optional[TransferEncoding]
	Connection      Optional[Connection]
	Upgrade         Optional[Upgrade]

	SecWebSocketKey       Optional[string]
	SecWebSocketVersion   Optional[int]
	SecWebSocketProtocol  Optional[[]string]
	SecWebSocketExtension Optional[[]string]

	body Body
}

// NewMessage returns a Message defaulted to HTTP/1.1, raw header casing.
func NewMessage() Message {
	return Message{Major: 1, Minor: 1, Case: CaseRaw}
}

// Body returns the attached body, or nil if none is set.
func (m *Message) Body() Body { return m.body }

// SetBody attaches a body to the message, releasing any previous body.
func (m *Message) SetBody(b Body) {
	if m.body != nil {
		m.body.End()
	}
	m.body = b
}

// Release ends the attached body, if any, and clears it.
func (m *Message) Release() {
	if m.body != nil {
		m.body.End()
		m.body = nil
	}
}

// IsWebSocketHandshake reports whether the message carries both
// Upgrade: websocket and Connection: upgrade, per spec.md section 3.
func (m *Message) IsWebSocketHandshake() bool {
	return m.Upgrade.Set && m.Upgrade.Value == UpgradeWebSocket &&
		m.Connection.Set && m.Connection.Value == ConnectionUpgrade
}
