// Package book implements one side of the order book: a price-ordered
// collection of PriceLevels, each a FIFO of resting order handles.
package book

import (
	"fenrir/internal/fixedpoint"
	"fenrir/internal/pool"
)

// initialLevelDepth is the starting capacity of a level's FIFO ring.
// Chosen small; PriceLevel grows (doubling) past it rather than
// rejecting deep levels.
const initialLevelDepth = 8

// PriceLevel is a (price, aggregate quantity, FIFO of handles) tuple.
// The FIFO is a ring buffer so arrival order — and therefore
// price-time priority — is a pure side effect of traversal.
type PriceLevel struct {
	price     fixedpoint.Price
	buf       []pool.Handle
	head      int
	count     int
	aggregate fixedpoint.Quantity
}

// NewPriceLevel constructs an empty level at price.
func NewPriceLevel(price fixedpoint.Price) *PriceLevel {
	return &PriceLevel{
		price: price,
		buf:   make([]pool.Handle, initialLevelDepth),
	}
}

// Price returns the level's price.
func (l *PriceLevel) Price() fixedpoint.Price { return l.price }

// Len returns the number of resting handles at this level.
func (l *PriceLevel) Len() int { return l.count }

// AggregateQty returns the sum of remaining quantity across the level's
// resting handles.
func (l *PriceLevel) AggregateQty() fixedpoint.Quantity { return l.aggregate }

// Empty reports whether the level has no resting liquidity left.
func (l *PriceLevel) Empty() bool { return l.count == 0 }

func (l *PriceLevel) grow() {
	newBuf := make([]pool.Handle, len(l.buf)*2)
	for i := 0; i < l.count; i++ {
		newBuf[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	l.buf = newBuf
	l.head = 0
}

// PushBack appends handle to the tail of the FIFO and adds qty to the
// aggregate. O(1) amortized.
func (l *PriceLevel) PushBack(h pool.Handle, qty fixedpoint.Quantity) {
	if l.count == len(l.buf) {
		l.grow()
	}
	tail := (l.head + l.count) % len(l.buf)
	l.buf[tail] = h
	l.count++
	l.aggregate = l.aggregate.Add(qty)
}

// Front returns the handle at the head of the FIFO without removing
// it.
func (l *PriceLevel) Front() (pool.Handle, bool) {
	if l.count == 0 {
		return pool.Handle{}, false
	}
	return l.buf[l.head], true
}

// PopFront removes and returns the handle at the head of the FIFO.
// Callers are responsible for decrementing the aggregate (via
// DecrementAggregate) as the handle's remaining quantity is consumed —
// by the time a handle is popped its remaining quantity is always
// already reflected in the aggregate.
func (l *PriceLevel) PopFront() (pool.Handle, bool) {
	if l.count == 0 {
		return pool.Handle{}, false
	}
	h := l.buf[l.head]
	l.head = (l.head + 1) % len(l.buf)
	l.count--
	return h, true
}

// DecrementAggregate subtracts qty from the level's aggregate quantity
// as a resting handle's remaining quantity is consumed by a fill.
func (l *PriceLevel) DecrementAggregate(qty fixedpoint.Quantity) {
	l.aggregate = l.aggregate.Sub(qty)
}

// Remove scans the FIFO for handle (O(k), used only by cancel) and
// removes it, subtracting qty from the aggregate. Reports whether the
// handle was found.
func (l *PriceLevel) Remove(h pool.Handle, qty fixedpoint.Quantity) bool {
	for i := 0; i < l.count; i++ {
		pos := (l.head + i) % len(l.buf)
		if l.buf[pos] != h {
			continue
		}
		for j := i; j < l.count-1; j++ {
			from := (l.head + j + 1) % len(l.buf)
			to := (l.head + j) % len(l.buf)
			l.buf[to] = l.buf[from]
		}
		l.count--
		l.aggregate = l.aggregate.Sub(qty)
		return true
	}
	return false
}

// Handles returns the FIFO contents in arrival order. Used by tests and
// diagnostics only — never called from the crossing loop.
func (l *PriceLevel) Handles() []pool.Handle {
	out := make([]pool.Handle, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	return out
}
