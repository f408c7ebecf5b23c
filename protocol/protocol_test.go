// File: protocol/protocol_test.go
// Author: momentics <momentics@gmail.com>

package protocol

import (
	"testing"
	"time"

	"github.com/momentics/weblink-rpc/api"
)

type nullPool struct{}

func (nullPool) Get(size int, _ int) api.Buffer { return api.Buffer{Data: make([]byte, size)} }
func (nullPool) Put(api.Buffer)                 {}
func (nullPool) Stats() api.BufferPoolStats     { return api.BufferPoolStats{} }

func TestComputeAcceptKeyRFCVector(t *testing.T) {
	// RFC 6455 section 1.3 sample handshake.
	got := ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Fatalf("accept key mismatch: got %q want %q", got, want)
	}
}

func TestUpgradeRequestResponseRoundTrip(t *testing.T) {
	req, key, err := BuildUpgradeRequest("/jsonrpc/Controller", "example.com", []string{"notification"}, "http://example.com")
	if err != nil {
		t.Fatalf("BuildUpgradeRequest: %v", err)
	}
	gotKey, err := ValidateUpgradeRequest(req)
	if err != nil {
		t.Fatalf("ValidateUpgradeRequest: %v", err)
	}
	if gotKey != key {
		t.Fatalf("key mismatch: %q vs %q", gotKey, key)
	}

	resp := BuildUpgradeResponse(gotKey, req.SecWebSocketProtocol)
	if resp.Status != 101 {
		t.Fatalf("expected 101, got %d", resp.Status)
	}
	if err := ValidateUpgradeResponse(resp, key); err != nil {
		t.Fatalf("ValidateUpgradeResponse: %v", err)
	}

	// A 403 means the peer rejected the upgrade outright.
	resp.Status = 403
	if err := ValidateUpgradeResponse(resp, key); err != ErrHandshakeRejected {
		t.Fatalf("expected ErrHandshakeRejected, got %v", err)
	}
}

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		name     string
		frame    *WSFrame
		fragging bool
		mode     Mode
		want     FrameType
	}{
		{"reserved 0x3", &WSFrame{Opcode: 0x3, IsFinal: true}, false, ModeBinary, FrameTypeViolation},
		{"reserved 0xB", &WSFrame{Opcode: 0xB, IsFinal: true}, false, ModeBinary, FrameTypeViolation},
		{"orphan continuation", &WSFrame{Opcode: byte(OpcodeContinuation), IsFinal: true}, false, ModeBinary, FrameTypeViolation},
		{"continuation mid-fragment", &WSFrame{Opcode: byte(OpcodeContinuation), IsFinal: true}, true, ModeBinary, FrameTypeContinuation},
		{"fragmented control", &WSFrame{Opcode: byte(OpcodePing), IsFinal: false}, false, ModeBinary, FrameTypeViolation},
		{"text in binary mode", &WSFrame{Opcode: byte(OpcodeText), IsFinal: true}, false, ModeBinary, FrameTypeInconsistent},
		{"binary in binary mode", &WSFrame{Opcode: byte(OpcodeBinary), IsFinal: true}, false, ModeBinary, FrameTypeBinary},
		{"text in text mode", &WSFrame{Opcode: byte(OpcodeText), IsFinal: true}, false, ModeText, FrameTypeText},
		{"close", &WSFrame{Opcode: byte(OpcodeClose), IsFinal: true}, false, ModeBinary, FrameTypeClose},
	}
	for _, c := range cases {
		if got := classify(c.frame, c.fragging, c.mode); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestMaskedRoundTripVariousSizes(t *testing.T) {
	for _, n := range []int{0, 1, 125, 126, 130, 65535} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i)
		}
		f := &WSFrame{IsFinal: true, Opcode: byte(OpcodeBinary), Payload: payload, PayloadLen: int64(n)}
		raw, err := EncodeFrameToBytesWithMask(f, true)
		if err != nil {
			t.Fatalf("n=%d encode: %v", n, err)
		}
		decoded, consumed, err := DecodeFrameFromBytes(raw)
		if err != nil || decoded == nil {
			t.Fatalf("n=%d decode: %v", n, err)
		}
		if consumed != len(raw) {
			t.Fatalf("n=%d consumed %d of %d", n, consumed, len(raw))
		}
		if string(decoded.Payload) != string(payload) {
			t.Fatalf("n=%d payload mismatch", n)
		}
	}
}

func TestFragmentAssembly(t *testing.T) {
	c := NewWSConnection(&api.MockTransport{
		SendFunc:     func([][]byte) error { return nil },
		RecvFunc:     func() ([][]byte, error) { return nil, nil },
		CloseFunc:    func() error { return nil },
		FeaturesFunc: func() api.TransportFeatures { return api.TransportFeatures{} },
	}, nullPool{}, 4)

	complete, _ := c.assembleFragment(&WSFrame{Opcode: byte(OpcodeBinary), IsFinal: false, Payload: []byte("hel")})
	if complete {
		t.Fatal("non-final frame must not complete the message")
	}
	complete, _ = c.assembleFragment(&WSFrame{Opcode: byte(OpcodeContinuation), IsFinal: false, Payload: []byte("lo ")})
	if complete {
		t.Fatal("non-final continuation must not complete the message")
	}
	complete, out := c.assembleFragment(&WSFrame{Opcode: byte(OpcodeContinuation), IsFinal: true, Payload: []byte("ws")})
	if !complete {
		t.Fatal("final continuation must complete the message")
	}
	if string(out.Payload) != "hello ws" {
		t.Fatalf("assembled payload %q", out.Payload)
	}
	if out.Opcode != byte(OpcodeBinary) {
		t.Fatalf("assembled opcode %d", out.Opcode)
	}
}

func TestPingPongRTT(t *testing.T) {
	c := NewWSConnection(&api.MockTransport{
		SendFunc:     func([][]byte) error { return nil },
		RecvFunc:     func() ([][]byte, error) { return nil, nil },
		CloseFunc:    func() error { return nil },
		FeaturesFunc: func() api.TransportFeatures { return api.TransportFeatures{} },
	}, nullPool{}, 4)
	c.SetState(StateWebSocket)

	if err := c.Ping([]byte("rtt")); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	c.handleControl(&WSFrame{IsFinal: true, Opcode: byte(OpcodePong), Payload: []byte("rtt"), PayloadLen: 3})

	if rtt := c.LastRTT(); rtt < 5*time.Millisecond {
		t.Fatalf("RTT %v below elapsed wall-clock", rtt)
	}
}

func TestCloseStatus(t *testing.T) {
	payload := append([]byte{0x03, 0xE8}, []byte("bye")...) // 1000 + reason
	code, reason, ok := CloseStatus(&WSFrame{Opcode: byte(OpcodeClose), Payload: payload})
	if !ok || code != 1000 || reason != "bye" {
		t.Fatalf("got %d %q %v", code, reason, ok)
	}
	if _, _, ok := CloseStatus(&WSFrame{Opcode: byte(OpcodeClose)}); ok {
		t.Fatal("bare close must not report a status")
	}
}
