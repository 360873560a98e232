package gateway_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"fenrir/internal/engine"
	"fenrir/internal/gateway"
	"fenrir/internal/order"
	"fenrir/internal/ring"
)

func TestServerRoutesAckBackToSession(t *testing.T) {
	in, err := ring.New[engine.Command](1024)
	require.NoError(t, err)
	out, err := ring.New[engine.Event](1024)
	require.NoError(t, err)

	e := engine.New(1024, 0, func(ev engine.Event) {
		for out.TryPush(ev) != nil {
		}
	}, zerolog.Nop())

	srv := gateway.New("127.0.0.1", 0, in, out, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	stopEngine := make(chan struct{})
	go func() {
		for {
			select {
			case <-stopEngine:
				return
			default:
			}
			cmd, err := in.TryPop()
			if err != nil {
				continue
			}
			e.Dispatch(cmd)
		}
	}()
	defer close(stopEngine)

	addr := srv.Addr()
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	cmd := engine.NewOrder(1, order.Bid, order.Limit, 100, 10, 0)
	_, err = conn.Write(gateway.EncodeCommand(cmd))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, gateway.EventWireSize)
	_, err = conn.Read(buf)
	require.NoError(t, err)

	ev, err := gateway.DecodeEvent(buf)
	require.NoError(t, err)
	require.Equal(t, engine.EventAck, ev.Kind)
	require.Equal(t, order.ID(1), ev.OrderID)
}
