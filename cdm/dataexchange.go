// File: cdm/dataexchange.go
// Author: momentics <momentics@gmail.com>
//
// DataExchange reduces original_source/Source/ocdm/DataExchange.h's
// shared-memory SharedBuffer (IV + subsample administration header plus
// a raw payload region) to the opaque produce/consume ring contract
// spec.md section 1 names as an external collaborator: no shared
// memory, no GStreamer secure-buffer vendor code, just a fixed-size
// in-process ring a decrypt pipeline could sit behind.

package cdm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/momentics/weblink-rpc/pool"
)

// Sample carries one encrypted fragment's administration header
// alongside its payload, per DataExchange::SetIV/SetSubSampleData/Write.
type Sample struct {
	IV        []byte
	SubSample []byte
	Payload   []byte
}

// DataExchange is a fixed-capacity produce/consume ring of Samples. The
// id plays the role of the original's shared-memory buffer name: the
// handle both sides of a decrypt session agree on.
type DataExchange struct {
	id   string
	ring *pool.BufferRing[Sample]
}

// NewDataExchange constructs a ring holding up to capacity samples.
// capacity must be a power of two, per pool.NewRingBuffer's contract.
func NewDataExchange(capacity uint64) *DataExchange {
	return &DataExchange{
		id:   uuid.NewString(),
		ring: pool.NewRingBuffer[Sample](capacity),
	}
}

// ID returns the exchange's unique handle.
func (d *DataExchange) ID() string { return d.id }

// Produce enqueues sample, per DataExchange::Write (preceded by
// SetIV/SetSubSampleData in the original's two-step protocol, folded
// here into one call since Sample carries all three fields together).
func (d *DataExchange) Produce(sample Sample) error {
	if !d.ring.Enqueue(sample) {
		return fmt.Errorf("cdm: data exchange ring is full (cap %d)", d.ring.Cap())
	}
	return nil
}

// Consume dequeues the oldest sample, per DataExchange::Read.
func (d *DataExchange) Consume() (Sample, bool) {
	return d.ring.Dequeue()
}

// Len reports how many samples are currently queued.
func (d *DataExchange) Len() int { return d.ring.Len() }

// Cap reports the ring's fixed capacity.
func (d *DataExchange) Cap() int { return d.ring.Cap() }
