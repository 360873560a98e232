// Package pool implements the fixed-capacity order arena. Orders are
// never heap-allocated individually on the hot path: the pool hands out
// stable integer handles into a preallocated slice, and an intrusive
// free list makes allocate/free O(1) and allocation-free after
// construction.
package pool

import (
	"errors"

	"fenrir/internal/order"
)

// ErrFull is returned by Allocate when the free list is empty. It is
// surfaced to callers as a reject event, never fatal.
var ErrFull = errors.New("order pool exhausted")

// ErrStale is returned by Get/Free when a Handle's generation no
// longer matches the slot's current generation — a use-after-free.
var ErrStale = errors.New("stale pool handle")

// Handle is a 32-bit index into the pool plus a generation counter
// that detects use-after-free: every Free bumps the slot's
// generation, so a Handle captured before the free no longer matches.
type Handle struct {
	index      uint32
	generation uint32
}

// Valid reports whether h refers to any slot at all (the zero Handle
// is never issued by Allocate).
func (h Handle) Valid() bool {
	return h.generation != 0
}

type slot struct {
	record     order.Record
	generation uint32
	// nextFree holds the index of the next free slot when this slot is
	// not live; ignored while the slot is live.
	nextFree uint32
}

// Pool is a fixed-capacity arena of order.Record slots.
type Pool struct {
	slots    []slot
	freeHead uint32 // index of the first free slot, or sentinel below
	live     int
}

// sentinel marks the end of the free list.
const sentinel = ^uint32(0)

// New constructs a Pool with room for exactly capacity live orders.
func New(capacity int) *Pool {
	p := &Pool{
		slots:    make([]slot, capacity),
		freeHead: 0,
	}
	for i := range p.slots {
		if i == len(p.slots)-1 {
			p.slots[i].nextFree = sentinel
		} else {
			p.slots[i].nextFree = uint32(i + 1)
		}
		// generation starts at 1 so the zero Handle is never valid.
		p.slots[i].generation = 1
	}
	if capacity == 0 {
		p.freeHead = sentinel
	}
	return p
}

// Capacity returns the pool's fixed capacity.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// Live returns the number of currently allocated handles.
func (p *Pool) Live() int {
	return p.live
}

// Allocate reserves a slot and writes rec into it, returning a stable
// handle. O(1), never allocates.
func (p *Pool) Allocate(rec order.Record) (Handle, error) {
	if p.freeHead == sentinel {
		return Handle{}, ErrFull
	}
	idx := p.freeHead
	s := &p.slots[idx]
	p.freeHead = s.nextFree
	s.record = rec
	p.live++
	return Handle{index: idx, generation: s.generation}, nil
}

// Get returns a pointer to the live record for h. The pointer is only
// valid until the next Free of the same handle.
func (p *Pool) Get(h Handle) (*order.Record, error) {
	if int(h.index) >= len(p.slots) || p.slots[h.index].generation != h.generation {
		return nil, ErrStale
	}
	return &p.slots[h.index].record, nil
}

// Free returns h's slot to the free list and bumps its generation so
// any previously captured Handle becomes stale. O(1).
func (p *Pool) Free(h Handle) error {
	if int(h.index) >= len(p.slots) || p.slots[h.index].generation != h.generation {
		return ErrStale
	}
	s := &p.slots[h.index]
	s.record = order.Record{}
	s.generation++
	if s.generation == 0 {
		// Skip the reserved zero generation on wraparound.
		s.generation = 1
	}
	s.nextFree = p.freeHead
	p.freeHead = h.index
	p.live--
	return nil
}
