// Package order defines the wire-independent order record and its
// enumerations: the 64-byte struct that is the sole unit of state the
// matching core mutates.
package order

import (
	"github.com/rs/zerolog"

	"fenrir/internal/fixedpoint"
)

// Side is two-valued: Bid or Ask.
type Side uint8

const (
	Bid Side = iota
	Ask
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Type is the recognized order-type tag.
type Type uint8

const (
	// Limit rests on the book if not fully matched.
	Limit Type = iota
	// Market matches at best available prices; any unfilled remainder
	// is cancelled, never rests.
	Market
	// IOC (Immediate-or-Cancel) matches what it can immediately; any
	// remainder is cancelled, never rests.
	IOC
	// PostOnly must rest without crossing; if it would cross, the
	// whole order is rejected before any match is attempted.
	PostOnly
)

func (t Type) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	case IOC:
		return "ioc"
	case PostOnly:
		return "post_only"
	default:
		return "unknown"
	}
}

// ID is the externally assigned, client-correlatable order identifier.
// Unique over the engine's lifetime; never reused.
type ID uint64

// Record is exactly one cache line (64 bytes), laid out hot-fields
// first: the fields the crossing loop reads and mutates, followed by
// fields that are fixed for the life of the order and reserved
// padding. Field order matters for layout; do not reorder casually.
type Record struct {
	ID        ID               // 8
	Remaining fixedpoint.Quantity // 8
	Price     fixedpoint.Price    // 8
	Timestamp int64            // 8 — monotonic ticks assigned per engine thread

	Original fixedpoint.Quantity // 8
	SymbolID uint32           // 4
	Side     Side             // 1
	Type     Type             // 1
	_        [2]byte          // reserved padding

	_ [64 - 8*5 - 4 - 1 - 1 - 2]byte // pad Record to exactly 64 bytes
}

// New constructs a Record with Remaining == Original and the given
// monotonic timestamp.
func New(id ID, side Side, typ Type, price fixedpoint.Price, qty fixedpoint.Quantity, symbolID uint32, ts int64) Record {
	return Record{
		ID:        id,
		Remaining: qty,
		Price:     price,
		Timestamp: ts,
		Original:  qty,
		SymbolID:  symbolID,
		Side:      side,
		Type:      typ,
	}
}

// Filled reports whether the order's remaining quantity has been fully
// consumed.
func (r *Record) Filled() bool {
	return r.Remaining.IsZero()
}

// MarshalZerologObject lets callers log a Record with structured
// fields instead of formatting a string on the hot path.
func (r Record) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("orderId", uint64(r.ID)).
		Str("side", r.Side.String()).
		Str("type", r.Type.String()).
		Int64("price", int64(r.Price)).
		Uint64("remaining", uint64(r.Remaining)).
		Uint64("original", uint64(r.Original)).
		Int64("ts", r.Timestamp)
}
