// File: jsonrpc/connect.go
// Author: momentics <momentics@gmail.com>
//
// Convenience entry point joining the transport, WebSocket, and channel
// layers: Connect dials a ws:// endpoint and returns the interned
// Channel for it, so callers only deal in Links.

package jsonrpc

import (
	"github.com/momentics/weblink-rpc/control"
	"github.com/momentics/weblink-rpc/protocol"
	"github.com/momentics/weblink-rpc/weburl"
)

// defaultChannelSize bounds a connection's in-flight frame queues.
const defaultChannelSize = 64

// Connect returns the shared Channel for rawURL, dialing and upgrading
// the WebSocket on first use. An empty rawURL falls back to the
// THUNDER_ACCESS endpoint from the environment.
func Connect(rawURL string) (*Channel, error) {
	if rawURL == "" {
		rawURL = "ws://" + control.ThunderAccess() + "/jsonrpc"
	}

	u := weburl.Parse(rawURL)
	host := ""
	if u.Host.Set {
		host = u.Host.Value
	}
	callsign := ""
	if u.Path.Set {
		callsign = u.Path.Value
	}

	return Instance(host, callsign, func() (*protocol.WSConnection, error) {
		ws, err := protocol.Dial(rawURL, defaultChannelSize)
		if err != nil {
			return nil, err
		}
		// JSON-RPC messages travel as TEXT frames.
		ws.SetMode(protocol.ModeText)
		return ws, nil
	})
}
