package book

import (
	"github.com/tidwall/btree"

	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"
	"fenrir/internal/pool"
)

// levels is the ordered price -> *PriceLevel map backing one side of
// the book. Bid sides order descending (best = max price); ask sides
// order ascending (best = min price) — both give O(1) best-price reads
// via Min() and O(log n) insertion/lookup.
type levels = btree.BTreeG[*PriceLevel]

// Side is a collection of price levels for one side of the book, with
// O(1) best-price lookup and in-order traversal toward the away side.
type Side struct {
	side order.Side
	tree *levels
	best *PriceLevel
}

// NewSide constructs an empty book side.
func NewSide(side order.Side) *Side {
	var less func(a, b *PriceLevel) bool
	if side == order.Bid {
		less = func(a, b *PriceLevel) bool { return a.price > b.price }
	} else {
		less = func(a, b *PriceLevel) bool { return a.price < b.price }
	}
	return &Side{
		side: side,
		tree: btree.NewBTreeG(less),
	}
}

// betterThan reports whether candidate is a strictly better price than
// current for this side (higher for bids, lower for asks).
func (s *Side) betterThan(candidate, current fixedpoint.Price) bool {
	if s.side == order.Bid {
		return candidate > current
	}
	return candidate < current
}

// level returns the existing level at price, or creates and inserts a
// new empty one.
func (s *Side) level(price fixedpoint.Price) *PriceLevel {
	probe := &PriceLevel{price: price}
	if existing, ok := s.tree.GetMut(probe); ok {
		return existing
	}
	l := NewPriceLevel(price)
	s.tree.Set(l)
	return l
}

// Add rests handle with qty at price, creating the level if needed and
// updating the cached best pointer in O(1) amortized.
func (s *Side) Add(h pool.Handle, price fixedpoint.Price, qty fixedpoint.Quantity) {
	l := s.level(price)
	l.PushBack(h, qty)
	if s.best == nil || s.betterThan(price, s.best.price) {
		s.best = l
	}
}

// Remove takes qty off the level at price for handle h (used by
// cancel). If the level empties it is dropped from the tree; if it was
// the cached best, the best pointer advances to the new best level.
func (s *Side) Remove(h pool.Handle, price fixedpoint.Price, qty fixedpoint.Quantity) bool {
	probe := &PriceLevel{price: price}
	l, ok := s.tree.GetMut(probe)
	if !ok {
		return false
	}
	if !l.Remove(h, qty) {
		return false
	}
	if l.Empty() {
		s.tree.Delete(l)
		if s.best == l {
			s.advanceBest()
		}
	}
	return true
}

// DrainBestFront consumes the head of the best level's FIFO as part of
// the crossing loop: it decrements the level's aggregate by fillQty and,
// if the maker's remaining quantity reached zero, pops it off the FIFO.
// If the level is now empty, it is dropped from the tree and the cached
// best advances.
func (s *Side) DrainBestFront(fillQty fixedpoint.Quantity, makerFullyFilled bool) {
	if s.best == nil {
		return
	}
	s.best.DecrementAggregate(fillQty)
	if makerFullyFilled {
		s.best.PopFront()
	}
	if s.best.Empty() {
		s.tree.Delete(s.best)
		s.advanceBest()
	}
}

// advanceBest recomputes the cached best from the tree. Amortized O(1)
// across a sweep because depletions advance monotonically.
func (s *Side) advanceBest() {
	next, ok := s.tree.Min()
	if !ok {
		s.best = nil
		return
	}
	s.best = next
}

// Best returns the best level on this side, if any.
func (s *Side) Best() (*PriceLevel, bool) {
	if s.best == nil {
		return nil, false
	}
	return s.best, true
}

// Crosses reports whether an incoming order at price p (on the
// opposite side of s) would cross s's best level. market is true for
// Market orders, which cross at any price so long as liquidity exists.
func (s *Side) Crosses(p fixedpoint.Price, market bool) bool {
	best, ok := s.Best()
	if !ok {
		return false
	}
	if market {
		return true
	}
	if s.side == order.Ask {
		return p.CrossesAsk(best.price)
	}
	return p.CrossesBid(best.price)
}

// IterFromBest calls fn for every non-empty level starting at the best
// price and moving toward the away side, stopping early if fn returns
// false.
func (s *Side) IterFromBest(fn func(*PriceLevel) bool) {
	s.tree.Scan(fn)
}

// Len returns the number of distinct non-empty price levels.
func (s *Side) Len() int {
	return s.tree.Len()
}
