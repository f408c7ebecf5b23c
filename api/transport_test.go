package api_test

import (
	"errors"
	"testing"

	"github.com/momentics/weblink-rpc/api"
)

func TestMockTransportDelegates(t *testing.T) {
	var sent [][]byte
	boom := errors.New("boom")
	m := &api.MockTransport{
		SendFunc: func(b [][]byte) error {
			sent = append(sent, b...)
			return nil
		},
		RecvFunc:     func() ([][]byte, error) { return nil, boom },
		CloseFunc:    func() error { return nil },
		FeaturesFunc: func() api.TransportFeatures { return api.TransportFeatures{ZeroCopy: true} },
	}

	// MockTransport must satisfy the Transport contract.
	var tr api.Transport = m

	if err := tr.Send([][]byte{[]byte("x")}); err != nil || len(sent) != 1 {
		t.Fatalf("Send: err=%v sent=%d", err, len(sent))
	}
	if _, err := tr.Recv(); !errors.Is(err, boom) {
		t.Fatalf("Recv error not forwarded: %v", err)
	}
	if !tr.Features().ZeroCopy {
		t.Fatal("Features not forwarded")
	}
}

func TestBufferSliceAndRelease(t *testing.T) {
	released := 0
	pool := releaseCounter{n: &released}
	b := api.Buffer{Data: []byte("0123456789"), Pool: pool}

	view := b.Slice(2, 6)
	if string(view.Bytes()) != "2345" {
		t.Fatalf("Slice = %q", view.Bytes())
	}
	if out := b.Slice(4, 2); out.Data != nil {
		t.Fatal("out-of-range slice must be empty")
	}

	b.Release()
	if released != 1 {
		t.Fatalf("Release did not reach the pool (%d)", released)
	}
}

type releaseCounter struct{ n *int }

func (r releaseCounter) Put(api.Buffer) { *r.n++ }
