package book

import (
	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"
	"fenrir/internal/pool"
)

// Entry is the resting state of a known order: enough to find and
// remove it from its level without a scan of the whole book.
type Entry struct {
	Handle pool.Handle
	Price  fixedpoint.Price
	Side   order.Side
	Type   order.Type
}

// Index maps an externally assigned OrderId to its resting pool handle,
// price, and side. An order is present in the index iff it is
// currently resting on the book.
type Index struct {
	byID map[order.ID]Entry
}

// NewIndex constructs an empty order index.
func NewIndex() *Index {
	return &Index{byID: make(map[order.ID]Entry)}
}

// Put registers a resting order.
func (ix *Index) Put(id order.ID, e Entry) {
	ix.byID[id] = e
}

// Get looks up a resting order by id.
func (ix *Index) Get(id order.ID) (Entry, bool) {
	e, ok := ix.byID[id]
	return e, ok
}

// Delete removes id from the index.
func (ix *Index) Delete(id order.ID) {
	delete(ix.byID, id)
}

// Len returns the number of resting orders tracked.
func (ix *Index) Len() int {
	return len(ix.byID)
}
