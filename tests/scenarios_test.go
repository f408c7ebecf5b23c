// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// scenarios_test.go — end-to-end walks of the wire- and session-layer
// stack: event subscription, call timeouts with late responses, failed
// registrations, and masked frame round-trips over a shared channel.
package tests

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/weblink-rpc/api"
	"github.com/momentics/weblink-rpc/jsonrpc"
	"github.com/momentics/weblink-rpc/protocol"
)

type scenarioPool struct{}

func (scenarioPool) Get(size int, _ int) api.Buffer { return api.Buffer{Data: make([]byte, size)} }
func (scenarioPool) Put(api.Buffer)                 {}
func (scenarioPool) Stats() api.BufferPoolStats     { return api.BufferPoolStats{} }

// scenarioChannel builds an open Channel whose outbound messages are
// handed, decoded, to respond. The returned channel can be fed inbound
// traffic through deliverTo.
func scenarioChannel(t *testing.T, key string, respond func(msg *jsonrpc.Message)) *jsonrpc.Channel {
	t.Helper()
	tr := &api.MockTransport{
		SendFunc: func(frames [][]byte) error {
			for _, raw := range frames {
				frame, _, err := protocol.DecodeFrameFromBytes(raw)
				if err != nil || frame == nil {
					continue
				}
				var msg jsonrpc.Message
				if err := json.Unmarshal(frame.Payload, &msg); err != nil {
					continue
				}
				if respond != nil {
					respond(&msg)
				}
			}
			return nil
		},
		RecvFunc:     func() ([][]byte, error) { return nil, nil },
		CloseFunc:    func() error { return nil },
		FeaturesFunc: func() api.TransportFeatures { return api.TransportFeatures{} },
	}
	conn := protocol.NewWSConnection(tr, scenarioPool{}, 8)
	conn.SetState(protocol.StateWebSocket)
	ch, err := jsonrpc.Instance("scenario-"+key, "/jsonrpc/"+key, func() (*protocol.WSConnection, error) {
		return conn, nil
	})
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	return ch
}

func deliverTo(ch *jsonrpc.Channel, msg *jsonrpc.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ch.Handle(api.Buffer{Data: payload})
}

// Scenario 1: subscribing to "statechange" under local id "tmp1" arms a
// handler that an inbound "tmp1.statechange" notification invokes exactly
// once with the parsed parameters.
func TestScenario_SubscribeStateChange(t *testing.T) {
	var ch *jsonrpc.Channel
	ch = scenarioChannel(t, "statechange", func(msg *jsonrpc.Message) {
		// accept the register call
		reply := &jsonrpc.Message{ID: msg.ID, Result: json.RawMessage(`{}`)}
		go func() { _ = deliverTo(ch, reply) }()
	})

	wheel := jsonrpc.NewTimeoutWheel()
	link := jsonrpc.NewLink(ch, wheel, "Controller", "tmp1", 0)
	defer link.Close()

	var calls int32
	got := make(chan struct {
		Callsign string `json:"callsign"`
		State    string `json:"state"`
	}, 1)
	if err := link.Subscribe(time.Second, "statechange", func(params json.RawMessage) {
		atomic.AddInt32(&calls, 1)
		var payload struct {
			Callsign string `json:"callsign"`
			State    string `json:"state"`
		}
		_ = json.Unmarshal(params, &payload)
		got <- payload
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	params, _ := json.Marshal(map[string]string{"callsign": "Foo", "state": "Activated"})
	if err := deliverTo(ch, &jsonrpc.Message{Designator: "tmp1.statechange", Parameters: params}); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	select {
	case payload := <-got:
		if payload.Callsign != "Foo" || payload.State != "Activated" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one invocation, got %d", n)
	}
}

// Scenario 2: a synchronous call the server never answers times out after
// wait_time; a late response for the same id is dropped silently.
func TestScenario_TimeoutThenLateResponse(t *testing.T) {
	var lastID uint32
	ch := scenarioChannel(t, "timeout", func(msg *jsonrpc.Message) {
		if msg.ID != nil {
			atomic.StoreUint32(&lastID, *msg.ID)
		}
	})

	wheel := jsonrpc.NewTimeoutWheel()
	link := jsonrpc.NewLink(ch, wheel, "Foo", "", 1)
	defer link.Close()

	start := time.Now()
	err := link.Invoke(100*time.Millisecond, "status", nil, nil)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("returned before wait_time elapsed: %v", elapsed)
	}

	// A late response for the already-timed-out id must not be claimed.
	id := atomic.LoadUint32(&lastID)
	late := &jsonrpc.Message{ID: &id, Result: json.RawMessage(`{}`)}
	if err := deliverTo(ch, late); err == nil {
		t.Fatal("expected the late response to be dropped (no observer claims it)")
	}
}

// Scenario 3: the remote rejects the register call with -32601; Subscribe
// surfaces the error and rolls the local handler back.
func TestScenario_SubscribeRollbackOnError(t *testing.T) {
	var ch *jsonrpc.Channel
	ch = scenarioChannel(t, "rollback", func(msg *jsonrpc.Message) {
		reply := &jsonrpc.Message{
			ID:    msg.ID,
			Error: &jsonrpc.ErrorObject{Code: -32601, Message: "Unknown method"},
		}
		go func() { _ = deliverTo(ch, reply) }()
	})

	wheel := jsonrpc.NewTimeoutWheel()
	link := jsonrpc.NewLink(ch, wheel, "Foo", "tmp1", 0)
	defer link.Close()

	err := link.Subscribe(time.Second, "e", func(json.RawMessage) {
		t.Error("rolled-back handler must not fire")
	})
	if err == nil {
		t.Fatal("expected subscribe to fail with -32601")
	}

	// The handler was removed, so the event is not claimed by this link.
	params, _ := json.Marshal(map[string]string{"x": "y"})
	if accepted := link.Accept(&jsonrpc.Message{Designator: "tmp1.e", Parameters: params}); accepted {
		t.Fatal("event for rolled-back handler must not be accepted")
	}
}

// Scenario 5: a 130-byte masked TEXT frame uses a 2-byte base header, a
// 2-byte extended length, and a 4-byte mask key; the payload round-trips
// through the masking.
func TestScenario_MaskedTextFrame130Bytes(t *testing.T) {
	payload := make([]byte, 130)
	for i := range payload {
		payload[i] = byte('a' + i%26)
	}
	frame := &protocol.WSFrame{
		IsFinal:    true,
		Opcode:     byte(protocol.OpcodeText),
		PayloadLen: int64(len(payload)),
		Payload:    payload,
	}
	encoded, err := protocol.EncodeFrameToBytesWithMask(frame, true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(encoded) != 2+2+4+130 {
		t.Fatalf("expected 8-byte header before payload, total 138, got %d", len(encoded))
	}
	if encoded[1]&0x80 == 0 {
		t.Fatal("mask bit not set")
	}

	decoded, consumed, err := protocol.DecodeFrameFromBytes(encoded)
	if err != nil || decoded == nil {
		t.Fatalf("decode: %v", err)
	}
	if consumed != len(encoded) {
		t.Fatalf("expected full frame consumed, got %d", consumed)
	}
	if string(decoded.Payload) != string(payload) {
		t.Fatal("masked payload did not round-trip")
	}
}

// Scenario 6: two links with different local namespaces share one
// channel; events route by namespace and responses route by id.
func TestScenario_TwoLinksShareChannel(t *testing.T) {
	ch := scenarioChannel(t, "shared", nil)

	wheel := jsonrpc.NewTimeoutWheel()
	linkA := jsonrpc.NewLink(ch, wheel, "Foo", "nsA", 0)
	defer linkA.Close()
	linkB := jsonrpc.NewLink(ch, wheel, "Bar", "nsB", 0)
	defer linkB.Close()

	gotA := make(chan struct{}, 1)
	linkA.Assign("ping", func(json.RawMessage) { gotA <- struct{}{} })
	linkB.Assign("ping", func(json.RawMessage) { t.Error("event must not reach link B") })

	if err := deliverTo(ch, &jsonrpc.Message{Designator: "nsA.ping"}); err != nil {
		t.Fatalf("deliver event: %v", err)
	}
	select {
	case <-gotA:
	case <-time.After(time.Second):
		t.Fatal("link A never saw its event")
	}

	// A response with an id issued by B resolves B's waiter, not A's.
	done := make(chan *jsonrpc.Message, 1)
	if err := linkB.Dispatch(time.Second, "status", nil, func(m *jsonrpc.Message) {
		done <- m
	}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// The id B used is the channel's current sequence value.
	id := currentSequence(ch)
	if err := deliverTo(ch, &jsonrpc.Message{ID: &id, Result: json.RawMessage(`{"ok":true}`)}); err != nil {
		t.Fatalf("deliver response: %v", err)
	}
	select {
	case m := <-done:
		if m.Error != nil {
			t.Fatalf("unexpected error: %+v", m.Error)
		}
	case <-time.After(time.Second):
		t.Fatal("link B's callback never fired")
	}
}

// currentSequence reads the id the channel handed out most recently by
// allocating the next one and subtracting. The probe id is never used on
// the wire, so the gap is harmless.
func currentSequence(ch *jsonrpc.Channel) uint32 {
	return ch.Sequence() - 1
}
