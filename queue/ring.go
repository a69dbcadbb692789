// Package queue implements the bounded lock-free MPMC ring used for tick
// fan-out and log records (spec component C2).
//
// Design, adapted from the LMAX-disruptor cursor/CAS shape in
// rishavpaul-system-design/order-matching-engine/internal/disruptor (which is
// single-producer/single-consumer, gated by one "consumed up to" sequence):
// here both ends are multi-party, so a single gating sequence isn't enough —
// a slower consumer could still let a producer believe a slot is free. We
// replace the gating sequence with a per-slot "occupied" flag that the
// consumer clears only after it has copied the slot out, synchronized with
// release/acquire atomics. Producers and consumers each claim their index via
// a compare-and-swap loop on their cursor; there is no ordering guarantee
// between producers, only
// FIFO within a single producer's claimed indices.
//
// Contract: Enqueue never blocks and never allocates once the ring is warm.
// TryDequeue returns immediately if nothing is ready. Backpressure is the
// caller's problem — a full ring makes Enqueue report failure rather than
// wait.
package queue

import "sync/atomic"

// slot holds one element plus an atomic occupancy flag. occupied == 1 means
// a producer has published a value the consumer hasn't taken yet.
type slot[T any] struct {
	value    T
	occupied atomic.Uint32
}

// Ring is a fixed-capacity MPMC ring buffer of T. Capacity is rounded up to
// the next power of two so index-wrap is a mask, not a mod.
type Ring[T any] struct {
	mask    uint64
	slots   []slot[T]
	tail    atomic.Uint64 // next index a producer may claim
	head    atomic.Uint64 // next index a consumer may claim
	dropped atomic.Uint64 // count of Enqueue calls that found the ring full
}

// New returns a Ring with capacity rounded up to the next power of two
// (minimum 32, matching spec's "blocks of 32" sizing note).
func New[T any](capacity int) *Ring[T] {
	if capacity < 32 {
		capacity = 32
	}
	size := nextPow2(uint64(capacity))
	return &Ring[T]{
		mask:  size - 1,
		slots: make([]slot[T], size),
	}
}

func nextPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Cap returns the ring's slot count.
func (r *Ring[T]) Cap() int {
	return len(r.slots)
}

// Dropped returns the number of Enqueue calls that found the ring full.
func (r *Ring[T]) Dropped() uint64 {
	return r.dropped.Load()
}

// Enqueue claims the next tail slot and publishes v. Returns false,
// without blocking, if the ring is full (the claimed slot would lap the
// consumer's head). Never allocates.
func (r *Ring[T]) Enqueue(v T) bool {
	for {
		tail := r.tail.Load()
		head := r.head.Load()
		if tail-head >= uint64(len(r.slots)) {
			r.dropped.Add(1)
			return false
		}
		if r.slots[tail&r.mask].occupied.Load() != 0 {
			// A consumer has claimed this slot but not yet copied it out.
			r.dropped.Add(1)
			return false
		}
		if r.tail.CompareAndSwap(tail, tail+1) {
			s := &r.slots[tail&r.mask]
			s.value = v
			s.occupied.Store(1) // release: value write visible before flag
			return true
		}
	}
}

// TryDequeue claims the next head slot if its producer has published to it.
// Returns the zero value and false if nothing is ready yet.
func (r *Ring[T]) TryDequeue() (T, bool) {
	var zero T
	for {
		head := r.head.Load()
		tail := r.tail.Load()
		if head >= tail {
			return zero, false
		}
		s := &r.slots[head&r.mask]
		if s.occupied.Load() == 0 {
			// A producer claimed this index but hasn't published yet.
			return zero, false
		}
		if r.head.CompareAndSwap(head, head+1) {
			v := s.value
			s.value = zero
			s.occupied.Store(0) // release slot back to producers
			return v, true
		}
	}
}

// Len is an approximate count of published-but-unconsumed elements. Racy by
// construction (both cursors move concurrently); for metrics only.
func (r *Ring[T]) Len() int {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}
