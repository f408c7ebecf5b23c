// File: pool/doc.go
// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer, object, and ring pooling for the wire-layer hot paths: slab
// pools behind the codec's byte buffers, a sync.Pool-backed object pool
// behind the message factories, and a lock-free ring for decrypt-sample
// hand-off. All types are safe for concurrent use unless a method
// documents otherwise.
package pool
