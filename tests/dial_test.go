// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// dial_test.go — drives the full client path over a real loopback TCP
// socket: opening handshake, masked frame out, echoed frame back.
package tests

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/momentics/weblink-rpc/api"
	"github.com/momentics/weblink-rpc/protocol"
)

func TestDialUpgradeEcho(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	// Server: accept one connection, upgrade it, echo every data frame.
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		ws, err := protocol.Upgrade(conn, 8)
		if err != nil {
			return
		}
		ws.SetHandler(api.HandlerFunc(func(data any) error {
			buf, ok := data.(api.Buffer)
			if !ok {
				return nil
			}
			payload := buf.Copy()
			return ws.SendFrame(&protocol.WSFrame{
				IsFinal:    true,
				Opcode:     byte(protocol.OpcodeBinary),
				PayloadLen: int64(len(payload)),
				Payload:    payload,
			})
		}))
	}()

	url := fmt.Sprintf("ws://127.0.0.1:%d/jsonrpc/Echo", ln.Addr().(*net.TCPAddr).Port)
	client, err := protocol.Dial(url, 8)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if client.State() != protocol.StateWebSocket {
		t.Fatalf("expected WEBSOCKET state, got %v", client.State())
	}
	if client.Path() != "/jsonrpc/Echo" {
		t.Fatalf("path = %q", client.Path())
	}

	// Give the server goroutine a beat to install its echo handler.
	time.Sleep(100 * time.Millisecond)

	msg := []byte("hello over tcp")
	if err := client.SendFrame(&protocol.WSFrame{
		IsFinal:    true,
		Opcode:     byte(protocol.OpcodeBinary),
		PayloadLen: int64(len(msg)),
		Payload:    msg,
		Masked:     true,
	}); err != nil {
		t.Fatalf("SendFrame: %v", err)
	}

	select {
	case frame := <-client.GetInboxChan():
		if string(frame.Payload) != string(msg) {
			t.Fatalf("echo mismatch: %q", frame.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no echo frame before timeout")
	}
}
