// Package gateway is the TCP front door: it turns wire bytes into
// engine commands and engine events into wire bytes. It owns no book
// state; the UDP trade feed is encoded separately in internal/marketdata.
package gateway

import (
	"encoding/binary"
	"errors"

	"fenrir/internal/engine"
	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"
)

// CommandWireSize is the fixed width of one inbound command frame,
// matching §6: kind, side, type, 5 bytes padding, order_id, price,
// quantity, symbol_id, timestamp_in, and padding out to 64 bytes to
// match the Order record's own cache-line width.
const CommandWireSize = 64

// EventWireSize is the fixed width of one outbound event frame. The
// wire layout is a deployment choice — this one keeps every field
// fixed-width so no length prefix is needed.
const EventWireSize = 48

var (
	ErrShortCommand = errors.New("gateway: command frame too short")
	ErrShortEvent   = errors.New("gateway: event frame too short")
	ErrBadKind      = errors.New("gateway: unrecognized command kind")
)

// wireKind mirrors §6's kind byte: 0=New, 1=Cancel, 2=Replace.
const (
	wireKindNew     = 0
	wireKindCancel  = 1
	wireKindReplace = 2
)

// DecodeCommand parses one fixed-width command frame into an
// engine.Command. It performs no validation beyond checking the kind
// byte — side/type/quantity/price validity is the engine's job (§7).
func DecodeCommand(buf []byte) (engine.Command, error) {
	if len(buf) < CommandWireSize {
		return engine.Command{}, ErrShortCommand
	}

	kind := buf[0]
	side := order.Side(buf[1])
	typ := order.Type(buf[2])
	// buf[3:8] is reserved padding.
	orderID := order.ID(binary.LittleEndian.Uint64(buf[8:16]))
	price := fixedpoint.Price(binary.LittleEndian.Uint64(buf[16:24]))
	quantity := fixedpoint.Quantity(binary.LittleEndian.Uint64(buf[24:32]))
	symbolID := binary.LittleEndian.Uint32(buf[32:36])
	// buf[36:44] is timestamp_in, advisory only; buf[44:64] reserved.

	switch kind {
	case wireKindNew:
		return engine.NewOrder(orderID, side, typ, price, quantity, symbolID), nil
	case wireKindCancel:
		return engine.CancelOrder(orderID), nil
	case wireKindReplace:
		return engine.ReplaceOrder(orderID, price, quantity), nil
	default:
		return engine.Command{}, ErrBadKind
	}
}

// EncodeCommand serializes cmd into a fixed CommandWireSize frame. Used
// by clients (cmd/client and tests) to build requests; the gateway
// itself only ever decodes.
func EncodeCommand(cmd engine.Command) []byte {
	buf := make([]byte, CommandWireSize)

	switch cmd.Kind {
	case engine.New:
		buf[0] = wireKindNew
	case engine.Cancel:
		buf[0] = wireKindCancel
	case engine.Replace:
		buf[0] = wireKindReplace
	}
	buf[1] = byte(cmd.Side)
	buf[2] = byte(cmd.Type)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(cmd.OrderID))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(cmd.Price))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(cmd.Quantity))
	binary.LittleEndian.PutUint32(buf[32:36], cmd.SymbolID)
	binary.LittleEndian.PutUint64(buf[36:44], uint64(cmd.ClientTS))
	return buf
}

// EncodeEvent serializes ev into a fixed EventWireSize frame.
func EncodeEvent(ev engine.Event) []byte {
	buf := make([]byte, EventWireSize)
	buf[0] = byte(ev.Kind)
	buf[1] = byte(ev.Reason)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(ev.OrderID))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(ev.CounterpartyID))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(ev.Price))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(ev.Quantity))
	binary.LittleEndian.PutUint64(buf[40:48], uint64(ev.Timestamp))
	return buf
}

// DecodeEvent parses one fixed-width event frame. Used by cmd/client to
// render execution reports.
func DecodeEvent(buf []byte) (engine.Event, error) {
	if len(buf) < EventWireSize {
		return engine.Event{}, ErrShortEvent
	}
	return engine.Event{
		Kind:           engine.EventKind(buf[0]),
		Reason:         engine.RejectReason(buf[1]),
		OrderID:        order.ID(binary.LittleEndian.Uint64(buf[8:16])),
		CounterpartyID: order.ID(binary.LittleEndian.Uint64(buf[16:24])),
		Price:          fixedpoint.Price(binary.LittleEndian.Uint64(buf[24:32])),
		Quantity:       fixedpoint.Quantity(binary.LittleEndian.Uint64(buf[32:40])),
		Timestamp:      int64(binary.LittleEndian.Uint64(buf[40:48])),
	}, nil
}
