package weblink_test

import (
	"testing"

	"github.com/momentics/weblink-rpc/weblink"
)

type fakeCodec struct {
	primed  []int
	current int
	sent    int
}

func (c *fakeCodec) Prime(item int) {
	c.primed = append(c.primed, item)
	c.current = item
	c.sent = 0
}

// Drain emits one byte per call so multi-call draining is exercised.
func (c *fakeCodec) Drain(dst []byte) (int, bool) {
	if len(dst) == 0 {
		return 0, false
	}
	dst[0] = byte(c.current)
	c.sent++
	return 1, c.sent >= c.current
}

func TestSubmitPrimesOnlyFirstItem(t *testing.T) {
	codec := &fakeCodec{}
	triggered := 0
	link := weblink.NewLink[int](codec, weblink.TriggerFunc(func() { triggered++ }))

	link.Submit(3)
	link.Submit(5)

	if triggered != 1 {
		t.Fatalf("expected exactly one trigger, got %d", triggered)
	}
	if len(codec.primed) != 1 || codec.primed[0] != 3 {
		t.Fatalf("expected only the first item primed, got %v", codec.primed)
	}
	if link.Pending() != 2 {
		t.Fatalf("expected 2 pending items, got %d", link.Pending())
	}
}

func TestFlushAdvancesQueueAndPrimesNext(t *testing.T) {
	codec := &fakeCodec{}
	link := weblink.NewLink[int](codec, weblink.TriggerFunc(func() {}))

	var sentItems []int
	link.Sent = func(item int) { sentItems = append(sentItems, item) }

	link.Submit(2)
	link.Submit(1)

	buf := make([]byte, 1)
	// First item needs 2 Drain calls to complete.
	if _, pending := link.Flush(buf); !pending {
		t.Fatal("expected pending work after first byte of a 2-byte item")
	}
	if _, pending := link.Flush(buf); !pending {
		t.Fatal("expected the second item still pending after the first completes")
	}
	if len(sentItems) != 1 || sentItems[0] != 2 {
		t.Fatalf("expected item 2 to be reported sent, got %v", sentItems)
	}
	if codec.primed[len(codec.primed)-1] != 1 {
		t.Fatalf("expected next item (1) primed after first completed, got %v", codec.primed)
	}

	if _, pending := link.Flush(buf); pending {
		t.Fatal("expected no pending work after the last item drains")
	}
	if len(sentItems) != 2 || sentItems[1] != 1 {
		t.Fatalf("expected both items reported sent, got %v", sentItems)
	}
}

func TestSubmitAfterCloseIsRejected(t *testing.T) {
	codec := &fakeCodec{}
	link := weblink.NewLink[int](codec, weblink.TriggerFunc(func() {}))
	link.Close()

	if link.Submit(1) {
		t.Fatal("expected Submit to fail once the link is closed")
	}
	if link.IsOpen() {
		t.Fatal("expected IsOpen to report false after Close")
	}
}
