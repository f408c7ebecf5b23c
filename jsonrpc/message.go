// File: jsonrpc/message.go
// Author: momentics <momentics@gmail.com>
//
// Wire shape for JSON-RPC messages exchanged over a Channel, and the
// designator grammar ([callsign[.version]].method[@index]) spec.md
// section 4.5 and section 299 (GLOSSARY) describe.

package jsonrpc

import (
	"encoding/json"
	"strconv"
)

// Message is one JSON-RPC request, response, or notification. A request
// carries Designator (+ optional Parameters) and no Result/Error; a
// response carries ID plus exactly one of Result/Error; a notification
// (an inbound "event") carries Designator and no ID, mirroring
// Channel.cpp's Inbound() discrimination.
type Message struct {
	Version    string          `json:"jsonrpc,omitempty"`
	ID         *uint32         `json:"id,omitempty"`
	Designator string          `json:"method,omitempty"`
	Parameters json.RawMessage `json:"params,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      *ErrorObject    `json:"error,omitempty"`
}

// DefaultVersion is stamped on every outbound message. Inbound messages
// carrying "1.0", "2.0", or no version at all are accepted alike.
const DefaultVersion = "2.0"

// ErrorObject is the JSON-RPC error payload.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IsResponse reports whether this message answers a previously issued
// call: it carries an id and either a result or an error, per
// Channel.cpp's Inbound():
//
//	(inbound->Id.IsSet() == true) && (inbound->Result.IsSet() || inbound->Error.IsSet())
func (m *Message) IsResponse() bool {
	return m.ID != nil && (m.Result != nil || m.Error != nil)
}

// BuildDesignator constructs the fully-qualified method name
// callsign[.version].method, or the bare method when callsign is empty,
// per JSONRPCLink.h's Send(): "_callsign + _versionstring + '.' + method".
func BuildDesignator(callsign string, version uint8, method string) string {
	if callsign == "" {
		return method
	}
	if version > 0 {
		return callsign + "." + strconv.FormatUint(uint64(version), 10) + "." + method
	}
	return callsign + "." + method
}

// WithIndex appends the "@index" property suffix get(index)/set(index)
// helpers use, per spec.md section 4.5.
func WithIndex(method, index string) string {
	if index == "" {
		return method
	}
	return method + "@" + index
}
