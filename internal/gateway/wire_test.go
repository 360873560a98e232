package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/engine"
	"fenrir/internal/fixedpoint"
	"fenrir/internal/gateway"
	"fenrir/internal/order"
)

func TestCommandRoundTrip(t *testing.T) {
	cases := []engine.Command{
		engine.NewOrder(7, order.Bid, order.Limit, 1050, 25, 3),
		engine.CancelOrder(7),
		engine.ReplaceOrder(7, 1100, 10),
	}

	for _, cmd := range cases {
		buf := gateway.EncodeCommand(cmd)
		require.Len(t, buf, gateway.CommandWireSize)

		got, err := gateway.DecodeCommand(buf)
		require.NoError(t, err)
		assert.Equal(t, cmd.Kind, got.Kind)
		assert.Equal(t, cmd.OrderID, got.OrderID)
		assert.Equal(t, cmd.Price, got.Price)
		assert.Equal(t, cmd.Quantity, got.Quantity)
		if cmd.Kind == engine.New {
			assert.Equal(t, cmd.Side, got.Side)
			assert.Equal(t, cmd.Type, got.Type)
			assert.Equal(t, cmd.SymbolID, got.SymbolID)
		}
	}
}

func TestDecodeCommandRejectsShortFrame(t *testing.T) {
	_, err := gateway.DecodeCommand(make([]byte, 10))
	assert.ErrorIs(t, err, gateway.ErrShortCommand)
}

func TestDecodeCommandRejectsUnknownKind(t *testing.T) {
	buf := gateway.EncodeCommand(engine.CancelOrder(1))
	buf[0] = 0xFF
	_, err := gateway.DecodeCommand(buf)
	assert.ErrorIs(t, err, gateway.ErrBadKind)
}

func TestEventRoundTrip(t *testing.T) {
	ev := engine.Event{
		Kind:           engine.EventFill,
		OrderID:        5,
		CounterpartyID: 9,
		Price:          fixedpoint.Price(2500),
		Quantity:       fixedpoint.Quantity(3),
		Timestamp:      42,
	}

	buf := gateway.EncodeEvent(ev)
	require.Len(t, buf, gateway.EventWireSize)

	got, err := gateway.DecodeEvent(buf)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestDecodeEventRejectsShortFrame(t *testing.T) {
	_, err := gateway.DecodeEvent(make([]byte, 4))
	assert.ErrorIs(t, err, gateway.ErrShortEvent)
}
