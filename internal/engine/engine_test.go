package engine_test

import (
	"testing"

	"fenrir/internal/engine"
	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*engine.Engine, *[]engine.Event) {
	t.Helper()
	events := &[]engine.Event{}
	sink := func(ev engine.Event) { *events = append(*events, ev) }
	return engine.New(1024, 0, sink, zerolog.Nop()), events
}

func TestSimpleMatch(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Ask, order.Limit, 100, 10, 0))
	e.Dispatch(engine.NewOrder(2, order.Bid, order.Limit, 100, 10, 0))

	require.Len(t, *events, 3)
	assert.Equal(t, engine.EventAck, (*events)[0].Kind)
	assert.Equal(t, fixedpoint.Quantity(10), (*events)[0].Quantity)

	fill := (*events)[1]
	assert.Equal(t, engine.EventFill, fill.Kind)
	assert.Equal(t, order.ID(2), fill.OrderID)
	assert.Equal(t, order.ID(1), fill.CounterpartyID)
	assert.Equal(t, fixedpoint.Price(100), fill.Price)
	assert.Equal(t, fixedpoint.Quantity(10), fill.Quantity)

	ack2 := (*events)[2]
	assert.Equal(t, engine.EventAck, ack2.Kind)
	assert.Equal(t, order.ID(2), ack2.OrderID)
	assert.Equal(t, fixedpoint.Quantity(0), ack2.Quantity)

	assert.Equal(t, 0, e.RestingCount())
}

func TestPartialFill(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Ask, order.Limit, 100, 10, 0))
	*events = nil

	e.Dispatch(engine.NewOrder(2, order.Bid, order.Limit, 100, 4, 0))

	require.Len(t, *events, 2)
	fill := (*events)[0]
	assert.Equal(t, engine.EventFill, fill.Kind)
	assert.Equal(t, fixedpoint.Quantity(4), fill.Quantity)

	ack := (*events)[1]
	assert.Equal(t, engine.EventAck, ack.Kind)
	assert.Equal(t, order.ID(2), ack.OrderID)
	assert.Equal(t, fixedpoint.Quantity(0), ack.Quantity)

	assert.Equal(t, 1, e.RestingCount())
}

func TestPriceTimePriority(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Ask, order.Limit, 100, 5, 0))
	e.Dispatch(engine.NewOrder(2, order.Ask, order.Limit, 100, 5, 0))
	*events = nil

	e.Dispatch(engine.NewOrder(3, order.Bid, order.Limit, 100, 7, 0))

	require.Len(t, *events, 3)
	fill1 := (*events)[0]
	assert.Equal(t, order.ID(1), fill1.CounterpartyID)
	assert.Equal(t, fixedpoint.Quantity(5), fill1.Quantity)

	fill2 := (*events)[1]
	assert.Equal(t, order.ID(2), fill2.CounterpartyID)
	assert.Equal(t, fixedpoint.Quantity(2), fill2.Quantity)

	assert.Equal(t, 1, e.RestingCount())
}

func TestIOCNoMatchCancelsResidual(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Bid, order.IOC, 100, 10, 0))

	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, engine.EventCancelled, ev.Kind)
	assert.Equal(t, order.ID(1), ev.OrderID)
	assert.Equal(t, fixedpoint.Quantity(10), ev.Quantity)
	assert.Equal(t, 0, e.RestingCount())
}

func TestPostOnlyRejectsWhenCrossing(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Ask, order.Limit, 100, 10, 0))
	*events = nil

	e.Dispatch(engine.NewOrder(2, order.Bid, order.PostOnly, 101, 5, 0))

	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, engine.EventReject, ev.Kind)
	assert.Equal(t, engine.ReasonWouldCross, ev.Reason)
	assert.Equal(t, 1, e.RestingCount())
}

func TestCancelThenReplace(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Bid, order.Limit, 99, 10, 0))
	e.Dispatch(engine.NewOrder(2, order.Bid, order.Limit, 99, 5, 0))
	*events = nil

	e.Dispatch(engine.ReplaceOrder(1, 100, 8))

	require.Len(t, *events, 2)
	assert.Equal(t, engine.EventCancelAck, (*events)[0].Kind)
	assert.Equal(t, order.ID(1), (*events)[0].OrderID)
	assert.Equal(t, engine.EventAck, (*events)[1].Kind)
	assert.Equal(t, fixedpoint.Quantity(8), (*events)[1].Quantity)

	assert.Equal(t, 2, e.RestingCount())
}

func TestCancelUnknownIsIdempotentReject(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.CancelOrder(999))

	require.Len(t, *events, 1)
	assert.Equal(t, engine.EventReject, (*events)[0].Kind)
	assert.Equal(t, engine.ReasonUnknownOrder, (*events)[0].Reason)
	assert.Equal(t, 0, e.RestingCount())
}

func TestZeroQuantityRejected(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Bid, order.Limit, 100, 0, 0))

	require.Len(t, *events, 1)
	assert.Equal(t, engine.EventReject, (*events)[0].Kind)
	assert.Equal(t, engine.ReasonInvalid, (*events)[0].Reason)
}

func TestNonPositivePriceRejected(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Bid, order.Limit, 0, 10, 0))

	require.Len(t, *events, 1)
	assert.Equal(t, engine.EventReject, (*events)[0].Kind)
	assert.Equal(t, engine.ReasonInvalid, (*events)[0].Reason)
}

func TestPoolExhaustionRejectsWithNoCapacity(t *testing.T) {
	sink := func(engine.Event) {}
	e := engine.New(1, 0, sink, zerolog.Nop())

	e.Dispatch(engine.NewOrder(1, order.Bid, order.Limit, 100, 10, 0))

	events := []engine.Event{}
	e2 := engine.New(1, 0, func(ev engine.Event) { events = append(events, ev) }, zerolog.Nop())
	e2.Dispatch(engine.NewOrder(1, order.Bid, order.Limit, 100, 10, 0))
	e2.Dispatch(engine.NewOrder(2, order.Bid, order.Limit, 101, 10, 0))

	require.Len(t, events, 2)
	assert.Equal(t, engine.EventAck, events[0].Kind)
	assert.Equal(t, engine.EventReject, events[1].Kind)
	assert.Equal(t, engine.ReasonNoCapacity, events[1].Reason)
	_ = e
}

func TestMultiLevelSweep(t *testing.T) {
	e, events := newTestEngine(t)

	e.Dispatch(engine.NewOrder(1, order.Ask, order.Limit, 100, 5, 0))
	e.Dispatch(engine.NewOrder(2, order.Ask, order.Limit, 101, 5, 0))
	*events = nil

	e.Dispatch(engine.NewOrder(3, order.Bid, order.Limit, 101, 8, 0))

	require.Len(t, *events, 3)
	assert.Equal(t, fixedpoint.Price(100), (*events)[0].Price)
	assert.Equal(t, fixedpoint.Quantity(5), (*events)[0].Quantity)
	assert.Equal(t, fixedpoint.Price(101), (*events)[1].Price)
	assert.Equal(t, fixedpoint.Quantity(3), (*events)[1].Quantity)
	assert.Equal(t, engine.EventAck, (*events)[2].Kind)
	assert.Equal(t, fixedpoint.Quantity(0), (*events)[2].Quantity)

	assert.Equal(t, 1, e.RestingCount())
}
