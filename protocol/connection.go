// File: protocol/connection.go
// Package protocol implements the core WebSocket connection handling.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WSConnection encapsulates a full-duplex WebSocket session.

package protocol

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/weblink-rpc/api"
)

// WSConnection encapsulates a full-duplex WebSocket session.
type WSConnection struct {
	transport api.Transport  // Underlying I/O abstraction
	bufPool   api.BufferPool // NUMA-aware buffer pool
	path      string         // Request path for routing

	inbox  chan *WSFrame
	outbox chan *WSFrame

	mu      sync.RWMutex
	handler api.Handler

	done   chan struct{}
	closed int32

	// Internal queue for frames for RecvZeroCopy when recvLoop is running
	recvQueue chan api.Buffer

	bytesReceived  int64
	bytesSent      int64
	framesReceived int64
	framesSent     int64

	// pendingReceiveBytes tracks payload bytes of a frame whose header has
	// been parsed but whose body has not yet fully arrived. Widened to
	// uint64 so a frame approaching MaxDecodableFramePayload never wraps,
	// per spec.md section 9's open question on 32-bit truncation.
	pendingReceiveBytes uint64

	state     HandshakeState
	suspended int32
	mode      Mode

	// Fragmentation assembly state: once a non-final data frame arrives,
	// subsequent continuation frames are appended here until FIN=1.
	fragMu      sync.Mutex
	fragActive  bool
	fragOpcode  byte
	fragPayload []byte

	// RTT measurement: set when a PING is sent, cleared and reported when
	// the matching PONG arrives.
	pingMu     sync.Mutex
	pingSentAt time.Time
	pingInFlight bool
	lastRTT    time.Duration

	lastActivity int64 // unix nanoseconds, updated on any frame traffic
}

// NewWSConnection constructs a WSConnection with specified channel capacity
// and no request path (see NewWSConnectionWithPath).
func NewWSConnection(tr api.Transport, pool api.BufferPool, channelSize int) *WSConnection {
	return &WSConnection{
		transport: tr,
		bufPool:   pool,
		inbox:     make(chan *WSFrame, channelSize),
		outbox:    make(chan *WSFrame, channelSize),
		done:      make(chan struct{}),
		recvQueue: make(chan api.Buffer, 64), // Queue for RecvZeroCopy
		mode:      ModeBinary,
	}
}

// NewWSConnectionWithPath constructs a WSConnection with specified channel capacity and request path.
func NewWSConnectionWithPath(tr api.Transport, pool api.BufferPool, channelSize int, path string) *WSConnection {
	c := NewWSConnection(tr, pool, channelSize)
	c.path = path
	return c
}

// SetMode selects whether inbound data frames are expected as TEXT or
// BINARY; a disagreeing opcode classifies as FrameTypeInconsistent.
func (c *WSConnection) SetMode(m Mode) { c.mode = m }

// State returns the connection's current handshake state.
func (c *WSConnection) State() HandshakeState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetState transitions the connection's handshake state, e.g. once the
// upgrade response has been flushed (UPGRADING -> WEBSOCKET).
func (c *WSConnection) SetState(s HandshakeState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Suspend flips the SUSPENDED bit: new inbound/outbound traffic is
// rejected while existing work drains, per spec.md section 4.4's close
// sequence.
func (c *WSConnection) Suspend() { atomic.StoreInt32(&c.suspended, 1) }

// Suspended reports whether Suspend has been called.
func (c *WSConnection) Suspended() bool { return atomic.LoadInt32(&c.suspended) == 1 }

// LastActivity returns the time of the most recent frame traffic.
func (c *WSConnection) LastActivity() time.Time {
	ns := atomic.LoadInt64(&c.lastActivity)
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (c *WSConnection) touchActivity() {
	atomic.StoreInt64(&c.lastActivity, time.Now().UnixNano())
}

// LastRTT returns the most recently measured ping/pong round-trip time.
func (c *WSConnection) LastRTT() time.Duration {
	c.pingMu.Lock()
	defer c.pingMu.Unlock()
	return c.lastRTT
}

// Ping sends a PING control frame and arms RTT measurement for the
// matching PONG.
func (c *WSConnection) Ping(payload []byte) error {
	c.pingMu.Lock()
	c.pingSentAt = time.Now()
	c.pingInFlight = true
	c.pingMu.Unlock()
	return c.SendFrame(&WSFrame{IsFinal: true, Opcode: byte(OpcodePing), Payload: payload, PayloadLen: int64(len(payload))})
}

// Transport provides access to the underlying api.Transport.
// This enables external wrappers to set I/O deadlines or query transport features.
func (c *WSConnection) Transport() api.Transport {
	return c.transport
}

// Path returns the original request path for routing purposes.
func (c *WSConnection) Path() string {
	return c.path
}

// BufferPool returns the buffer pool associated with this connection.
func (c *WSConnection) BufferPool() api.BufferPool {
	return c.bufPool
}

// RecvZeroCopy performs zero-copy receive:
// If recvLoop is running (using recvQueue), reads from internal queue
// Otherwise, reads directly from transport
func (c *WSConnection) RecvZeroCopy() ([]api.Buffer, error) {
	// Read from internal recvQueue if available (when recvLoop is active)
	select {
	case buf := <-c.recvQueue:
		return []api.Buffer{buf}, nil
	case <-c.done:
		return nil, api.ErrTransportClosed
	default:
		// Fallback to direct transport read if recvQueue is empty
		// This is only for cases when recvLoop isn't running
		raws, err := c.transport.Recv()
		if err != nil {
			return nil, err
		}

		result := make([]api.Buffer, 0, len(raws))
		for _, raw := range raws {
			frame, _, err := DecodeFrameFromBytes(raw)
			if err != nil || frame == nil {
				continue
			}

			// Validate that frame payload length is within reasonable bounds
			if frame.PayloadLen < 0 || frame.PayloadLen > MaxFramePayload {
				continue // Skip invalid frames to prevent resource exhaustion
			}

			buf := c.bufPool.Get(int(frame.PayloadLen), -1)

			// Perform bounds checking before copying
			payloadBytes := buf.Bytes()
			if len(payloadBytes) < len(frame.Payload) {
				// Truncate payload to fit buffer size if necessary
				frame.Payload = frame.Payload[:len(payloadBytes)]
			}
			copy(payloadBytes, frame.Payload)

			atomic.AddInt64(&c.framesReceived, 1)
			atomic.AddInt64(&c.bytesReceived, frame.PayloadLen)
			result = append(result, buf)
		}
		return result, nil
	}
}

// SendFrame encodes frame and writes it straight to the transport; the
// outbox channel and sendLoop are not involved.
func (c *WSConnection) SendFrame(frame *WSFrame) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return api.ErrTransportClosed
	}
	if c.Suspended() && Opcode(frame.Opcode) != OpcodeClose {
		return api.ErrTransportClosed
	}

	// Try to send directly via transport if sendLoop is not running
	// Use masked encoding if this is a client connection (indicated by Masked field)
	data, err := EncodeFrameToBytesWithMask(frame, frame.Masked)
	if err != nil {
		return err
	}

	// Send directly via transport (bypass outbox channel)
	if sendErr := c.transport.Send([][]byte{data}); sendErr != nil {
		return sendErr
	}

	atomic.AddInt64(&c.framesSent, 1)
	atomic.AddInt64(&c.bytesSent, frame.PayloadLen)
	c.touchActivity()
	return nil
}

// Start launches receive and send loops.
func (c *WSConnection) Start() {
	go c.recvLoop()
	go c.sendLoop()
}

// GetInboxChan returns the inbox channel for receiving incoming frames.
func (c *WSConnection) GetInboxChan() <-chan *WSFrame {
	return c.inbox
}

// Close initiates shutdown: signals loops and closes transport.
func (c *WSConnection) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	close(c.done)
	return c.transport.Close()
}

// Done returns channel closed when connection is closed.
func (c *WSConnection) Done() <-chan struct{} {
	return c.done
}

// SetHandler registers an api.Handler to process incoming payload Buffers.
func (c *WSConnection) SetHandler(h api.Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// recvLoop continuously reads raw frames from transport, decodes them,
// handles control frames (ping/pong/close), assembles fragmented messages,
// and dispatches completed data frames into the inbox channel and optional
// application handler.
//
// It exits when `done` is closed or a receive error occurs.
func (c *WSConnection) recvLoop() {
	defer c.Close()

	for {
		select {
		case <-c.done:
			return
		default:
			raws, err := c.transport.Recv()
			if err != nil {
				// Transport error: terminate connection
				return
			}

			for _, raw := range raws {
				// A single transport read can hold several frames; keep
				// decoding until the buffer is drained or incomplete.
				for len(raw) > 0 {
					frame, consumed, err := DecodeFrameFromBytes(raw)
					if err != nil {
						// ErrFrameTooBig or an oversized-but-decodable frame:
						// the owner's policy is to log and close with a CLOSE
						// frame, per spec.md section 7.
						c.SendFrame(&WSFrame{IsFinal: true, Opcode: byte(OpcodeClose)})
						return
					}
					if frame == nil {
						// Incomplete header/payload; DecodeFrameFromBytes does
						// not yet support resuming across reads, so the pending
						// byte count is tracked for observability only.
						atomic.StoreUint64(&c.pendingReceiveBytes, uint64(len(raw)))
						break
					}
					raw = raw[consumed:]
					atomic.StoreUint64(&c.pendingReceiveBytes, 0)
					atomic.AddInt64(&c.framesReceived, 1)
					atomic.AddInt64(&c.bytesReceived, frame.PayloadLen)
					c.touchActivity()

					complete, assembled := c.assembleFragment(frame)
					if !complete {
						continue
					}

					// Handle WebSocket control frames inline.
					if c.handleControl(assembled) {
						continue
					}

					switch classify(assembled, false, c.mode) {
					case FrameTypeViolation, FrameTypeInconsistent:
						c.SendFrame(&WSFrame{IsFinal: true, Opcode: byte(OpcodeClose)})
						return
					}

					// Enqueue for application processing
					select {
					case c.inbox <- assembled:
					case <-c.done:
						return
					}

					c.deliverPayload(assembled)
				}
			}
		}
	}
}

// assembleFragment folds continuation frames into the in-progress
// fragmented message, per spec.md section 4.4's fragmentation rules.
// Returns the complete frame (or the original frame if it was already
// whole) once FIN=1 has been observed.
func (c *WSConnection) assembleFragment(frame *WSFrame) (complete bool, out *WSFrame) {
	if isControlOpcode(frame.Opcode) {
		return true, frame
	}

	c.fragMu.Lock()
	defer c.fragMu.Unlock()

	if frame.Opcode != byte(OpcodeContinuation) {
		if !frame.IsFinal {
			c.fragActive = true
			c.fragOpcode = frame.Opcode
			c.fragPayload = append([]byte(nil), frame.Payload...)
			return false, nil
		}
		return true, frame
	}

	// Continuation frame: append to whatever fragment is in progress (or
	// none, which classify() below will flag as VIOLATION).
	if c.fragActive {
		c.fragPayload = append(c.fragPayload, frame.Payload...)
	}
	if !frame.IsFinal {
		return false, nil
	}
	assembled := &WSFrame{
		IsFinal:    true,
		Opcode:     c.fragOpcode,
		PayloadLen: int64(len(c.fragPayload)),
		Payload:    c.fragPayload,
	}
	if !c.fragActive {
		assembled.Opcode = byte(OpcodeContinuation)
	}
	c.fragActive = false
	c.fragPayload = nil
	return true, assembled
}

// deliverPayload copies frame's payload into a pooled buffer and hands it
// to the registered handler and to RecvZeroCopy's internal queue.
func (c *WSConnection) deliverPayload(frame *WSFrame) {
	if frame.PayloadLen > MaxFramePayload || frame.PayloadLen < 0 {
		return
	}
	buf := c.bufPool.Get(int(frame.PayloadLen), -1)
	payloadBytes := buf.Bytes()
	if len(payloadBytes) < len(frame.Payload) {
		frame.Payload = frame.Payload[:len(payloadBytes)]
	}
	copy(payloadBytes, frame.Payload)

	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h != nil {
		go func(b api.Buffer) {
			defer b.Release()
			h.Handle(b)
		}(buf)
	}

	select {
	case c.recvQueue <- buf:
	default:
		buf.Release()
	}
}

// sendLoop reads frames from outbox, encodes them to bytes, and calls
// transport.Send. On send errors, it closes the connection.
func (c *WSConnection) sendLoop() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.outbox:
			// Use masked encoding if this is a client connection (indicated by Masked field)
			data, err := EncodeFrameToBytesWithMask(frame, frame.Masked)
			if err != nil {
				c.Close()
				return
			}
			if err := c.transport.Send([][]byte{data}); err != nil {
				c.Close()
				return
			}
		}
	}
}

// handleControl processes ping, pong, and close control frames per RFC6455.
// Returns true if the frame was a control frame that has been handled.
func (c *WSConnection) handleControl(frame *WSFrame) bool {
	switch Opcode(frame.Opcode) {
	case OpcodePing:
		// Immediately respond with Pong using same payload; REQUEST_PONG.
		pong := &WSFrame{
			IsFinal:    true,
			Opcode:     byte(OpcodePong),
			PayloadLen: frame.PayloadLen,
			Payload:    frame.Payload,
		}
		c.SendFrame(pong)
		return true

	case OpcodePong:
		// Record RTT as now - last_ping_ticks if a ping was outstanding;
		// ignore an unsolicited PONG otherwise.
		c.pingMu.Lock()
		if c.pingInFlight {
			c.lastRTT = time.Since(c.pingSentAt)
			c.pingInFlight = false
		}
		c.pingMu.Unlock()
		return true

	case OpcodeClose:
		// Status code + optional UTF-8 reason occupy exactly frame's
		// declared payload; echo verbatim and shut down. Per spec.md
		// section 9, do not re-derive the payload length from the raw
		// header a second time — frame.Payload already holds it.
		c.SendFrame(frame)
		c.Close()
		return true

	default:
		return false
	}
}

// CloseStatus extracts the 2-byte status code and optional UTF-8 reason
// from a CLOSE frame's payload, if present.
func CloseStatus(frame *WSFrame) (code uint16, reason string, ok bool) {
	if Opcode(frame.Opcode) != OpcodeClose || len(frame.Payload) < 2 {
		return 0, "", false
	}
	code = uint16(frame.Payload[0])<<8 | uint16(frame.Payload[1])
	reason = string(frame.Payload[2:])
	return code, reason, true
}

// GetStats returns a snapshot of connection statistics for metrics reporting.
func (c *WSConnection) GetStats() map[string]int64 {
	return map[string]int64{
		"bytes_received":        atomic.LoadInt64(&c.bytesReceived),
		"bytes_sent":            atomic.LoadInt64(&c.bytesSent),
		"frames_received":       atomic.LoadInt64(&c.framesReceived),
		"frames_sent":           atomic.LoadInt64(&c.framesSent),
		"pending_receive_bytes": int64(atomic.LoadUint64(&c.pendingReceiveBytes)),
	}
}
