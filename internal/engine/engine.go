// Package engine owns the book, the order pool, and the order index
// for one symbol, and orchestrates command dispatch and the crossing
// algorithm. This is the heart of the matching core: everything else
// in the module exists to feed it commands and carry its events away.
package engine

import (
	"github.com/rs/zerolog"

	"fenrir/internal/book"
	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"
	"fenrir/internal/pool"
	"fenrir/internal/ring"
)

// Engine is exclusively owned and mutated by a single thread; no lock
// anywhere in the matching core (§5). A value passed by reference
// through the thread that owns it — there is no other global state.
type Engine struct {
	symbolID uint32
	bids     *book.Side
	asks     *book.Side
	pool     *pool.Pool
	index    *book.Index
	clock    int64
	sink     Sink
	log      zerolog.Logger
}

// New constructs an Engine with a pool of the given capacity for one
// symbol. sink receives every event the engine emits, in emission
// order.
func New(capacity int, symbolID uint32, sink Sink, logger zerolog.Logger) *Engine {
	return &Engine{
		symbolID: symbolID,
		bids:     book.NewSide(order.Bid),
		asks:     book.NewSide(order.Ask),
		pool:     pool.New(capacity),
		index:    book.NewIndex(),
		sink:     sink,
		log:      logger.With().Uint32("symbolId", symbolID).Logger(),
	}
}

// RestingCount returns the number of orders currently resting on the
// book, which must always equal the pool's live count (§8 invariant 5).
func (e *Engine) RestingCount() int {
	return e.index.Len()
}

func (e *Engine) emit(ev Event) {
	if e.sink != nil {
		e.sink(ev)
	}
}

func (e *Engine) nextTimestamp() int64 {
	e.clock++
	return e.clock
}

func (e *Engine) sideOf(s order.Side) (mine, opposite *book.Side) {
	if s == order.Bid {
		return e.bids, e.asks
	}
	return e.asks, e.bids
}

// Dispatch executes a single command against the book, emitting zero or
// more events through the engine's sink. This is the entire public
// surface of the matching core's hot path.
func (e *Engine) Dispatch(cmd Command) {
	switch cmd.Kind {
	case New:
		e.handleNew(cmd.OrderID, cmd.Side, cmd.Type, cmd.Price, cmd.Quantity, cmd.SymbolID)
	case Cancel:
		e.handleCancel(cmd.OrderID)
	case Replace:
		e.handleReplace(cmd.OrderID, cmd.Price, cmd.Quantity)
	default:
		e.emit(Event{Kind: EventReject, OrderID: cmd.OrderID, Reason: ReasonInvalid})
	}
}

// RunLoop is the engine thread's event loop: while (cmd = ring.pop())
// dispatch(cmd). It never suspends — on an empty ring it spins. It
// returns when stop is closed.
func (e *Engine) RunLoop(commands *ring.Ring[Command], stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		cmd, err := commands.TryPop()
		if err != nil {
			continue
		}
		e.Dispatch(cmd)
	}
}

func (e *Engine) validateNew(side order.Side, typ order.Type, price fixedpoint.Price, qty fixedpoint.Quantity) bool {
	if qty.IsZero() {
		return false
	}
	if side != order.Bid && side != order.Ask {
		return false
	}
	switch typ {
	case order.Limit, order.PostOnly:
		if !price.Valid() {
			return false
		}
	case order.Market:
		// Market never prices.
	case order.IOC:
		// An IOC still carries a limit price used to bound the sweep.
		if !price.Valid() {
			return false
		}
	default:
		return false
	}
	return true
}

func (e *Engine) handleNew(id order.ID, side order.Side, typ order.Type, price fixedpoint.Price, qty fixedpoint.Quantity, symbolID uint32) {
	if !e.validateNew(side, typ, price, qty) {
		e.emit(Event{Kind: EventReject, OrderID: id, Reason: ReasonInvalid})
		return
	}

	mine, opposite := e.sideOf(side)

	if typ == order.PostOnly && opposite.Crosses(price, false) {
		e.emit(Event{Kind: EventReject, OrderID: id, Reason: ReasonWouldCross})
		return
	}

	ts := e.nextTimestamp()
	rec := order.New(id, side, typ, price, qty, symbolID, ts)
	h, err := e.pool.Allocate(rec)
	if err != nil {
		e.emit(Event{Kind: EventReject, OrderID: id, Reason: ReasonNoCapacity})
		return
	}

	remaining := e.cross(h, side, typ, price, opposite, ts)

	switch typ {
	case order.Limit, order.PostOnly:
		if remaining.IsZero() {
			if err := e.pool.Free(h); err != nil {
				e.log.Error().Err(err).Msg("free after full fill")
			}
		} else {
			mine.Add(h, price, remaining)
			e.index.Put(id, book.Entry{Handle: h, Price: price, Side: side, Type: typ})
		}
		e.emit(Event{Kind: EventAck, OrderID: id, Quantity: remaining})
	case order.Market, order.IOC:
		if err := e.pool.Free(h); err != nil {
			e.log.Error().Err(err).Msg("free after market/ioc residual")
		}
		if !remaining.IsZero() {
			e.emit(Event{Kind: EventCancelled, OrderID: id, Quantity: remaining})
		}
	}
}

// cross runs the crossing algorithm (§4.5) for an incoming order resting
// in handle h with remaining quantity tracked in the pool record. It
// returns the residual quantity left after sweeping opposite as far as
// it crosses.
func (e *Engine) cross(h pool.Handle, side order.Side, typ order.Type, price fixedpoint.Price, opposite *book.Side, takerTS int64) fixedpoint.Quantity {
	taker, err := e.pool.Get(h)
	if err != nil {
		e.log.Error().Err(err).Msg("cross: stale taker handle")
		return 0
	}

	market := typ == order.Market
	for !taker.Remaining.IsZero() {
		best, ok := opposite.Best()
		if !ok {
			break
		}
		if !market {
			if side == order.Bid && !price.CrossesAsk(best.Price()) {
				break
			}
			if side == order.Ask && !price.CrossesBid(best.Price()) {
				break
			}
		}

		makerHandle, ok := best.Front()
		if !ok {
			// Level is present but empty; advancing best lazily handles
			// this, but guard defensively against a stale cached best.
			break
		}
		maker, err := e.pool.Get(makerHandle)
		if err != nil {
			e.log.Error().Err(err).Msg("cross: stale maker handle")
			break
		}

		fill := taker.Remaining.Min(maker.Remaining)
		maker.Remaining = maker.Remaining.Sub(fill)
		taker.Remaining = taker.Remaining.Sub(fill)

		e.emit(Event{
			Kind:           EventFill,
			OrderID:        taker.ID,
			CounterpartyID: maker.ID,
			Price:          best.Price(),
			Quantity:       fill,
			Timestamp:      takerTS,
		})

		makerFullyFilled := maker.Remaining.IsZero()
		opposite.DrainBestFront(fill, makerFullyFilled)
		if makerFullyFilled {
			e.index.Delete(maker.ID)
			if err := e.pool.Free(makerHandle); err != nil {
				e.log.Error().Err(err).Msg("free fully-filled maker")
			}
		}
	}

	return taker.Remaining
}

func (e *Engine) handleCancel(id order.ID) {
	entry, ok := e.index.Get(id)
	if !ok {
		e.emit(Event{Kind: EventReject, OrderID: id, Reason: ReasonUnknownOrder})
		return
	}

	rec, err := e.pool.Get(entry.Handle)
	qty := fixedpoint.Quantity(0)
	if err == nil {
		qty = rec.Remaining
	}

	side, _ := e.sideOf(entry.Side)
	side.Remove(entry.Handle, entry.Price, qty)
	e.index.Delete(id)
	if err := e.pool.Free(entry.Handle); err != nil {
		e.log.Error().Err(err).Msg("free on cancel")
	}
	e.emit(Event{Kind: EventCancelAck, OrderID: id})
}

// handleReplace implements cancel-then-new with a single atomic pair of
// events (§4.5); it always resets time priority (§9 open question (b)).
func (e *Engine) handleReplace(id order.ID, newPrice fixedpoint.Price, newQty fixedpoint.Quantity) {
	entry, ok := e.index.Get(id)
	if !ok {
		e.emit(Event{Kind: EventReject, OrderID: id, Reason: ReasonUnknownOrder})
		return
	}

	rec, err := e.pool.Get(entry.Handle)
	qty := fixedpoint.Quantity(0)
	if err == nil {
		qty = rec.Remaining
	}
	side, _ := e.sideOf(entry.Side)
	side.Remove(entry.Handle, entry.Price, qty)
	e.index.Delete(id)
	if err := e.pool.Free(entry.Handle); err != nil {
		e.log.Error().Err(err).Msg("free on replace")
	}
	e.emit(Event{Kind: EventCancelAck, OrderID: id})

	e.handleNew(id, entry.Side, entry.Type, newPrice, newQty, e.symbolID)
}
