// File: protocol/dial.go
// Package protocol
//
// Binds the WebSocket codec to a real byte stream: Dial performs the
// client-side opening handshake over a TCP connection and returns a
// WSConnection pumping frames through it; Upgrade is the server-side
// counterpart for an already-accepted net.Conn. The codec itself stays
// transport-agnostic — both paths just wrap the connection in an
// api.Transport and let WSConnection drive it.

package protocol

import (
	"bufio"
	"fmt"
	"net"

	"github.com/momentics/weblink-rpc/api"
	"github.com/momentics/weblink-rpc/httpcodec"
	"github.com/momentics/weblink-rpc/httpmsg"
	"github.com/momentics/weblink-rpc/pool"
	"github.com/momentics/weblink-rpc/weburl"
)

// netTransport adapts a net.Conn (plus any bytes buffered during the
// handshake) to api.Transport, reading into pooled buffers.
type netTransport struct {
	conn    net.Conn
	br      *bufio.Reader
	bufPool api.BufferPool
	closed  bool
}

func newNetTransport(conn net.Conn, br *bufio.Reader) *netTransport {
	return &netTransport{
		conn:    conn,
		br:      br,
		bufPool: pool.DefaultPool(-1),
	}
}

func (t *netTransport) Send(buffers [][]byte) error {
	if t.closed {
		return api.ErrTransportClosed
	}
	for _, b := range buffers {
		if _, err := t.conn.Write(b); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

func (t *netTransport) Recv() ([][]byte, error) {
	if t.closed {
		return nil, api.ErrTransportClosed
	}
	buf := t.bufPool.Get(0, -1)
	data := buf.Bytes()
	n, err := t.br.Read(data)
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("read: %w", err)
	}
	return [][]byte{data[:n]}, nil
}

func (t *netTransport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

func (t *netTransport) Features() api.TransportFeatures {
	return api.TransportFeatures{ZeroCopy: true}
}

// Dial connects to a ws:// URL, performs the opening handshake, and
// returns a WSConnection in the WEBSOCKET state with its pump started.
// A non-101, non-403 response leaves the connection in WEBSERVICE so the
// caller can keep speaking plain HTTP over it, per the upgrade fallback.
func Dial(rawURL string, channelSize int) (*WSConnection, error) {
	u := weburl.Parse(rawURL)
	if !u.IsValid() || !u.Host.Set {
		return nil, fmt.Errorf("protocol: invalid URL %q", rawURL)
	}
	hostport := fmt.Sprintf("%s:%d", u.Host.Value, u.EffectivePort())
	path := "/"
	if u.Path.Set {
		path = "/" + u.Path.Value
	}

	conn, err := net.Dial("tcp", hostport)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", hostport, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	req, key, err := BuildUpgradeRequest(path, hostport, nil, "")
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := WriteUpgradeRequest(conn, req); err != nil {
		conn.Close()
		return nil, err
	}

	br := bufio.NewReader(conn)
	resp, err := readUpgradeResponse(br)
	if err != nil {
		conn.Close()
		return nil, err
	}

	tr := newNetTransport(conn, br)
	ws := NewWSConnectionWithPath(tr, tr.bufPool, channelSize, path)

	switch err := ValidateUpgradeResponse(resp, key); err {
	case nil:
		ws.SetState(StateWebSocket)
	case ErrNotUpgradeRequest:
		// peer answered but declined the upgrade; stay plain HTTP
		ws.SetState(StateWebService)
	default:
		conn.Close()
		return nil, err
	}

	ws.Start()
	return ws, nil
}

// Upgrade performs the server-side opening handshake on an accepted
// connection and returns a WSConnection in the WEBSOCKET state.
func Upgrade(conn net.Conn, channelSize int) (*WSConnection, error) {
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	// Header lines are read one at a time so any frame bytes the client
	// pipelines after the handshake stay buffered for the transport.
	br := bufio.NewReader(conn)
	req, err := readUpgradeRequest(br)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake request: %w", err)
	}
	key, err := ValidateUpgradeRequest(req)
	if err != nil {
		conn.Close()
		return nil, err
	}
	resp := BuildUpgradeResponse(key, req.SecWebSocketProtocol)
	if err := WriteUpgradeResponse(conn, resp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake response: %w", err)
	}

	tr := newNetTransport(conn, br)
	ws := NewWSConnectionWithPath(tr, tr.bufPool, channelSize, req.Path)
	ws.SetState(StateWebSocket)
	ws.Start()
	return ws, nil
}

// readUpgradeRequest feeds header lines to a RequestParser until the
// request completes; the upgrade request carries no body, so parsing
// finishes at the blank line.
func readUpgradeRequest(br *bufio.Reader) (*httpmsg.Request, error) {
	var parser httpcodec.RequestParser
	var req *httpmsg.Request
	parser.OnRequest = func(r *httpmsg.Request) { req = r }
	for req == nil {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			parser.Feed(line)
		}
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// readUpgradeResponse is the client-side twin of readUpgradeRequest.
func readUpgradeResponse(br *bufio.Reader) (*httpmsg.Response, error) {
	var parser httpcodec.ResponseParser
	var resp *httpmsg.Response
	parser.ExpectHeadResponse()
	parser.OnResponse = func(r *httpmsg.Response) { resp = r }
	for resp == nil {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			parser.Feed(line)
		}
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}
