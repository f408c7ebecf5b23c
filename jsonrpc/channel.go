// File: jsonrpc/channel.go
// Author: momentics <momentics@gmail.com>
//
// Channel multiplexes every Link addressing the same (host, callsign)
// over one WebSocket connection, grounded on Channel.h's ChannelImpl and
// its interning Instance() factory (searchLine = host@callsign).

package jsonrpc

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/weblink-rpc/api"
	"github.com/momentics/weblink-rpc/protocol"
)

// Observer is registered with a Channel and offered every inbound
// message, in registration order, until one accepts it — Channel.cpp's
// Inbound() loop. Opened/Closed mirror the channel's connection state,
// per CommunicationChannel::StateChange.
type Observer interface {
	Accept(msg *Message) bool
	Opened()
	Closed()
}

// Channel owns one WebSocket connection shared by every Link that
// addresses the same remote (host, callsign) pair.
type Channel struct {
	key  string
	conn *protocol.WSConnection

	mu        sync.Mutex
	observers []Observer
	sequence  uint32
}

var (
	channelsMu sync.Mutex
	channels   = make(map[string]*Channel)
)

// Instance returns the shared Channel for host@callsign, constructing
// it via newConn on first use, per CommunicationChannel::Instance's
// Core::ProxyMapType interning.
func Instance(host, callsign string, newConn func() (*protocol.WSConnection, error)) (*Channel, error) {
	key := host + "@" + callsign

	channelsMu.Lock()
	defer channelsMu.Unlock()

	if ch, ok := channels[key]; ok {
		return ch, nil
	}

	conn, err := newConn()
	if err != nil {
		return nil, err
	}

	ch := &Channel{key: key, conn: conn}
	conn.SetHandler(ch)
	channels[key] = ch
	go ch.watchClose()
	return ch, nil
}

// Sequence allocates the next monotonic call id, per Channel::Sequence's
// "++_sequence".
func (c *Channel) Sequence() uint32 { return atomic.AddUint32(&c.sequence, 1) }

// IsOpen reports whether the underlying WebSocket is usable for Submit,
// per LinkType::Send's "(_channel.IsValid()==true) &&
// (_channel->IsSuspended()==true)" guard, inverted.
func (c *Channel) IsOpen() bool {
	return c.conn.State() == protocol.StateWebSocket && !c.conn.Suspended()
}

// Register adds an observer and, if the channel is already open,
// immediately notifies it, per CommunicationChannel::Register.
func (c *Channel) Register(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()

	if c.IsOpen() {
		o.Opened()
	}
}

// Unregister removes an observer, per CommunicationChannel::Unregister.
// When the last observer leaves, the channel is dropped from the
// interning map so a future Instance call reconnects instead of reusing
// a connection nobody references.
func (c *Channel) Unregister(o Observer) {
	c.mu.Lock()
	for i, existing := range c.observers {
		if existing == o {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			break
		}
	}
	empty := len(c.observers) == 0
	c.mu.Unlock()

	if empty {
		channelsMu.Lock()
		if channels[c.key] == c {
			delete(channels, c.key)
		}
		channelsMu.Unlock()
	}
}

// Submit marshals msg and sends it as a single masked text frame, per
// Channel::Submit's "_channel.Submit(message)".
func (c *Channel) Submit(msg *Message) error {
	if msg.Version == "" {
		msg.Version = DefaultVersion
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.SendFrame(&protocol.WSFrame{
		IsFinal:    true,
		Opcode:     byte(protocol.OpcodeText),
		PayloadLen: int64(len(payload)),
		Payload:    payload,
		Masked:     true,
	})
}

// Handle implements api.Handler: it decodes an inbound text frame's
// payload as a Message and offers it to observers in registration order
// until one accepts it, per Channel.cpp's Inbound().
func (c *Channel) Handle(data any) error {
	buf, ok := data.(api.Buffer)
	if !ok {
		return fmt.Errorf("jsonrpc: unexpected payload type %T", data)
	}

	var msg Message
	if err := json.Unmarshal(buf.Bytes(), &msg); err != nil {
		return err
	}

	c.mu.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		if o.Accept(&msg) {
			return nil
		}
	}
	return api.NewError(api.ErrCodeInvalidSignature, "no observer accepted inbound message")
}

// watchClose notifies every observer once the underlying connection
// closes, per CommunicationChannel::StateChange's Closed() branch. The
// Link side drains its pending-call table with ASYNC_ABORTED in
// response.
func (c *Channel) watchClose() {
	<-c.conn.Done()

	c.mu.Lock()
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.Closed()
	}
}
