package pool_test

import (
	"sync"
	"testing"

	"github.com/momentics/weblink-rpc/pool"
)

func TestRingBufferFIFOOrder(t *testing.T) {
	r := pool.NewRingBuffer[int](16)
	for i := 0; i < 16; i++ {
		if !r.Enqueue(i) {
			t.Fatalf("Enqueue failed at %d", i)
		}
	}
	if r.Enqueue(99) {
		t.Fatal("Enqueue succeeded on a full ring")
	}
	for i := 0; i < 16; i++ {
		v, ok := r.Dequeue()
		if !ok || v != i {
			t.Fatalf("Dequeue %d: got %d ok=%v", i, v, ok)
		}
	}
	if _, ok := r.Dequeue(); ok {
		t.Fatal("Dequeue succeeded on an empty ring")
	}
	if r.Cap() != 16 {
		t.Fatalf("Cap = %d", r.Cap())
	}
}

func TestRingBufferProducerConsumer(t *testing.T) {
	r := pool.NewRingBuffer[int](128)
	const items = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < items; i++ {
			for !r.Enqueue(i) {
			}
		}
	}()

	sum := 0
	for received := 0; received < items; {
		if v, ok := r.Dequeue(); ok {
			sum += v
			received++
		}
	}
	wg.Wait()

	if want := items * (items - 1) / 2; sum != want {
		t.Fatalf("sum = %d, want %d", sum, want)
	}
}
