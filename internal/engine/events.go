package engine

import (
	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"
)

// EventKind tags the outbound event union fixed by the wire contract:
// Ack, Fill, CancelAck, Reject, plus Cancelled for the Market/IOC
// unfilled-residual case (§4.5, §9 open question (a)).
type EventKind uint8

const (
	EventAck EventKind = iota
	EventFill
	EventCancelAck
	EventReject
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventAck:
		return "ack"
	case EventFill:
		return "fill"
	case EventCancelAck:
		return "cancel_ack"
	case EventReject:
		return "reject"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RejectReason enumerates the per-command error taxonomy (§7). All are
// recovered locally; none are fatal.
type RejectReason uint8

const (
	ReasonNone RejectReason = iota
	ReasonInvalid
	ReasonUnknownOrder
	ReasonNoCapacity
	ReasonWouldCross
	// ReasonBackPressure marks a ring-full rejection reported by the I/O
	// layer (§7). The engine itself never emits this reason — it is
	// produced by a gateway that fails to enqueue a command, before the
	// command ever reaches the matching core.
	ReasonBackPressure
)

func (r RejectReason) String() string {
	switch r {
	case ReasonInvalid:
		return "invalid"
	case ReasonUnknownOrder:
		return "unknown_order"
	case ReasonNoCapacity:
		return "no_capacity"
	case ReasonWouldCross:
		return "would_cross"
	case ReasonBackPressure:
		return "back_pressure"
	default:
		return "none"
	}
}

// Event is a single flat struct over the tagged union of outbound
// events. Which fields are meaningful depends on Kind:
//
//   - Ack:        OrderID, Quantity (resting remainder)
//   - Fill:       OrderID (taker), CounterpartyID (maker), Price, Quantity, Timestamp
//   - CancelAck:  OrderID
//   - Reject:     OrderID, Reason
//   - Cancelled:  OrderID, Quantity (unfilled remainder)
type Event struct {
	Kind           EventKind
	OrderID        order.ID
	CounterpartyID order.ID
	Price          fixedpoint.Price
	Quantity       fixedpoint.Quantity
	Timestamp      int64
	Reason         RejectReason
}

// Sink receives events as the engine emits them. The engine never
// buffers events itself; cmd/server wires Sink to push into the
// outbound ring, and tests wire it to collect into a slice.
type Sink func(Event)
