// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by the codec, WebSocket, and JSON-RPC layers.

package api

import "fmt"

// ErrTransportClosed reports an operation against a closed transport.
var ErrTransportClosed = fmt.Errorf("transport is closed")

// ErrorCode identifies one class of recoverable failure.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota

	// ErrCodeMalformedStartLine marks an HTTP/1.1 request or status line
	// that could not be tokenized (missing method/target/version, or a
	// malformed status code). The parser recovers by resynchronizing on
	// the next CRLF rather than surfacing this to the owner.
	ErrCodeMalformedStartLine

	// ErrCodeFrameViolation marks a WebSocket frame that violates RFC 6455
	// framing rules (reserved opcode, fragmented control frame, stray
	// continuation frame) — classify() in protocol/opcode.go.
	ErrCodeFrameViolation

	// ErrCodeTimedOut marks a synchronous JSON-RPC call that exceeded its
	// wait_time, or an asynchronous PendingCall expired by the timeout
	// wheel.
	ErrCodeTimedOut

	// ErrCodeAsyncAborted marks a PendingCall signalled because its
	// channel closed while the call was outstanding.
	ErrCodeAsyncAborted

	// ErrCodeUnavailable marks an operation attempted against a channel
	// that is not open.
	ErrCodeUnavailable

	// ErrCodeAsyncFailed marks a call that failed to submit at all, e.g.
	// the channel is suspended.
	ErrCodeAsyncFailed

	// ErrCodeInvalidSignature marks an inbound JSON-RPC message that is
	// neither a recognizable response (id + result/error) nor a request
	// this link's designator grammar accepts, or a JWT whose signature
	// failed verification.
	ErrCodeInvalidSignature
)

// Error carries an ErrorCode alongside its message.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// NewError creates a coded error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}
