package jsonrpc_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/momentics/weblink-rpc/api"
	"github.com/momentics/weblink-rpc/jsonrpc"
	"github.com/momentics/weblink-rpc/protocol"
)

// fakeBufferPool is a minimal api.BufferPool for these tests; it hands
// out plain allocations instead of going through the pool package's
// shared, process-wide slab pools.
type fakeBufferPool struct{}

func (fakeBufferPool) Get(size int, _ int) api.Buffer { return api.Buffer{Data: make([]byte, size)} }
func (fakeBufferPool) Put(api.Buffer)                 {}
func (fakeBufferPool) Stats() api.BufferPoolStats     { return api.BufferPoolStats{} }

func newOpenChannel(t *testing.T, key string, onSend func(msg *jsonrpc.Message)) *jsonrpc.Channel {
	t.Helper()
	bufPool := fakeBufferPool{}

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
				if onSend != nil {
					onSend(&msg)
				}
			}
			return nil
		},
		RecvFunc:     func() ([][]byte, error) { return nil, nil },
		CloseFunc:    func() error { return nil },
		FeaturesFunc: func() api.TransportFeatures { return api.TransportFeatures{} },
	}
	conn := protocol.NewWSConnection(tr, bufPool, 8)
	conn.SetState(protocol.StateWebSocket)

	ch, err := jsonrpc.Instance("host-"+key, "/jsonrpc/"+key, func() (*protocol.WSConnection, error) {
		return conn, nil
	})
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	return ch
}

// deliver feeds msg into ch as if it had arrived over the wire. It is
// called from a background goroutine to simulate an asynchronous server
// response, so it reports failures by returning an error rather than
// calling *testing.T methods off the test goroutine.
func deliver(ch *jsonrpc.Channel, msg *jsonrpc.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	buf := fakeBufferPool{}.Get(len(payload), -1)
	copy(buf.Bytes(), payload)
	return ch.Handle(buf)
}

func TestBuildDesignator(t *testing.T) {
	if got := jsonrpc.BuildDesignator("", 0, "create"); got != "create" {
		t.Fatalf("bare method: got %q", got)
	}
	if got := jsonrpc.BuildDesignator("session", 0, "create"); got != "session.create" {
		t.Fatalf("callsign.method: got %q", got)
	}
	if got := jsonrpc.BuildDesignator("session", 2, "create"); got != "session.2.create" {
		t.Fatalf("callsign.version.method: got %q", got)
	}
	if got := jsonrpc.WithIndex("status", "1"); got != "status@1" {
		t.Fatalf("index suffix: got %q", got)
	}
	if got := jsonrpc.WithIndex("status", ""); got != "status" {
		t.Fatalf("empty index: got %q", got)
	}
}

func TestLinkInvokeSyncRoundTrip(t *testing.T) {
	var ch *jsonrpc.Channel
	ch = newOpenChannel(t, "sync", func(msg *jsonrpc.Message) {
		result, _ := json.Marshal(map[string]string{"status": "ok"})
		go func() { _ = deliver(ch, &jsonrpc.Message{ID: msg.ID, Result: result}) }()
	})

	wheel := jsonrpc.NewTimeoutWheel()
	link := jsonrpc.NewLink(ch, wheel, "session", "", 0)
	defer link.Close()

	var resp struct {
		Status string `json:"status"`
	}
	if err := link.Invoke(time.Second, "create", nil, &resp); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %q", resp.Status)
	}
}

func TestLinkInvokeSyncErrorResponse(t *testing.T) {
	var ch *jsonrpc.Channel
	ch = newOpenChannel(t, "syncerr", func(msg *jsonrpc.Message) {
		go func() {
			_ = deliver(ch, &jsonrpc.Message{
				ID:    msg.ID,
				Error: &jsonrpc.ErrorObject{Code: 5, Message: "bad session"},
			})
		}()
	})

	wheel := jsonrpc.NewTimeoutWheel()
	link := jsonrpc.NewLink(ch, wheel, "session", "", 0)
	defer link.Close()

	err := link.Invoke(time.Second, "create", nil, nil)
	if err == nil {
		t.Fatal("expected an error response to surface as an error")
	}
}

func TestLinkDispatchAsyncTimeout(t *testing.T) {
	ch := newOpenChannel(t, "async", nil) // server never responds

	wheel := jsonrpc.NewTimeoutWheel()
	link := jsonrpc.NewLink(ch, wheel, "session", "", 0)
	defer link.Close()

	done := make(chan *jsonrpc.Message, 1)
	if err := link.Dispatch(30*time.Millisecond, "create", nil, func(m *jsonrpc.Message) {
		done <- m
	}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case msg := <-done:
		if msg.Error == nil {
			t.Fatal("expected a TIMEDOUT error message")
		}
	case <-time.After(time.Second):
		t.Fatal("timed-out callback never fired")
	}
}

func TestLinkAcceptDispatchesSubscribedEvent(t *testing.T) {
	ch := newOpenChannel(t, "event", nil)
	wheel := jsonrpc.NewTimeoutWheel()
	link := jsonrpc.NewLink(ch, wheel, "session", "observer1", 0)
	defer link.Close()

	received := make(chan string, 1)
	link.Assign("statechange", func(params json.RawMessage) {
		var payload struct {
			State string `json:"state"`
		}
		_ = json.Unmarshal(params, &payload)
		received <- payload.State
	})

	params, _ := json.Marshal(map[string]string{"state": "activated"})
	if !link.Accept(&jsonrpc.Message{Designator: "observer1.statechange", Parameters: params}) {
		t.Fatal("expected Accept to recognize the subscribed event")
	}

	select {
	case state := <-received:
		if state != "activated" {
			t.Fatalf("expected activated, got %q", state)
		}
	case <-time.After(time.Second):
		t.Fatal("event handler never ran")
	}
}

func TestChannelInstanceIsInterned(t *testing.T) {
	calls := 0
	newConn := func() (*protocol.WSConnection, error) {
		calls++
		tr := &api.MockTransport{
			SendFunc:     func([][]byte) error { return nil },
			RecvFunc:     func() ([][]byte, error) { return nil, nil },
			CloseFunc:    func() error { return nil },
			FeaturesFunc: func() api.TransportFeatures { return api.TransportFeatures{} },
		}
		return protocol.NewWSConnection(tr, fakeBufferPool{}, 4), nil
	}

	ch1, err := jsonrpc.Instance("interned-host", "/jsonrpc/shared", newConn)
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	ch2, err := jsonrpc.Instance("interned-host", "/jsonrpc/shared", newConn)
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if ch1 != ch2 {
		t.Fatal("expected the same host@callsign to share one Channel")
	}
	if calls != 1 {
		t.Fatalf("expected newConn invoked once, got %d", calls)
	}
}

func TestTimeoutWheelFiresEarliestFirst(t *testing.T) {
	wheel := jsonrpc.NewTimeoutWheel()

	order := make(chan string, 2)
	a := &fakeTimed{name: "a", out: order, deadline: time.Now().Add(20 * time.Millisecond)}
	b := &fakeTimed{name: "b", out: order, deadline: time.Now().Add(60 * time.Millisecond)}

	wheel.Arm(a, a.deadline)
	wheel.Arm(b, b.deadline)

	first := <-order
	second := <-order
	if first != "a" || second != "b" {
		t.Fatalf("expected a before b, got %s then %s", first, second)
	}
}

type fakeTimed struct {
	name     string
	out      chan string
	deadline time.Time
	fired    bool
}

func (f *fakeTimed) Timed() time.Time {
	if !f.fired {
		f.fired = true
		f.out <- f.name
	}
	return time.Time{}
}
