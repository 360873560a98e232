package engine

import (
	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"
)

// Kind identifies what a Command does. Order-type/command-kind dispatch
// is decided once per command from this tag; the crossing loop itself
// never branches on it again.
type Kind uint8

const (
	New Kind = iota
	Cancel
	Replace
)

// Command is a single flat struct carrying every field any of the
// three kinds might need — the engine's tagged union of record.
// Keeping it flat (rather than an interface) avoids dynamic dispatch on
// the hot path and is exactly the shape a ring slot holds.
type Command struct {
	Kind     Kind
	OrderID  order.ID
	Side     order.Side
	Type     order.Type
	Price    fixedpoint.Price
	Quantity fixedpoint.Quantity
	SymbolID uint32
	ClientTS int64
}

// NewOrder builds a New command.
func NewOrder(id order.ID, side order.Side, typ order.Type, price fixedpoint.Price, qty fixedpoint.Quantity, symbolID uint32) Command {
	return Command{Kind: New, OrderID: id, Side: side, Type: typ, Price: price, Quantity: qty, SymbolID: symbolID}
}

// CancelOrder builds a Cancel command.
func CancelOrder(id order.ID) Command {
	return Command{Kind: Cancel, OrderID: id}
}

// ReplaceOrder builds a Replace command.
func ReplaceOrder(id order.ID, price fixedpoint.Price, qty fixedpoint.Quantity) Command {
	return Command{Kind: Replace, OrderID: id, Price: price, Quantity: qty}
}
