// Package marketdata broadcasts trade prints over UDP so downstream
// consumers (tickers, risk systems, replay recorders) see fills
// without ever touching the gateway's TCP session state. Only Fill
// events are interesting here — Ack/Reject/Cancel are session-private.
package marketdata

import (
	"encoding/binary"
	"net"

	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/engine"
)

// TradeWireSize is the fixed width of one broadcast trade frame:
// symbol_id, a reserved pad word, price, quantity, timestamp.
const TradeWireSize = 32

// tradeBufferSize bounds how many unsent trades the publisher holds
// before it starts dropping. A slow or absent subscriber must never
// put backpressure on the matching engine.
const tradeBufferSize = 4096

// Publisher fans Fill events out over a single UDP socket. It is
// intentionally connectionless and best-effort — market data is a
// broadcast, not a guaranteed delivery channel, matching spec.md §1's
// "UDP market-data publisher" collaborator.
type Publisher struct {
	symbolID uint32
	conn     *net.UDPConn
	trades   chan engine.Event
	log      zerolog.Logger
}

// New resolves address (host:port) and opens a UDP socket to it.
func New(address string, symbolID uint32, logger zerolog.Logger) (*Publisher, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		symbolID: symbolID,
		conn:     conn,
		trades:   make(chan engine.Event, tradeBufferSize),
		log:      logger,
	}, nil
}

// Publish queues ev for broadcast if it is a Fill. Non-blocking: a
// full buffer means a slow or absent subscriber, and the print is
// dropped rather than stalling the caller (the engine's own sink on a
// busy matching thread, in production wiring).
func (p *Publisher) Publish(ev engine.Event) {
	if ev.Kind != engine.EventFill {
		return
	}
	select {
	case p.trades <- ev:
	default:
		p.log.Warn().Uint64("orderId", uint64(ev.OrderID)).Msg("market data buffer full, dropping trade print")
	}
}

// Run drains the trade buffer and writes one UDP datagram per trade
// until t starts dying.
func (p *Publisher) Run(t *tomb.Tomb) error {
	defer p.conn.Close()
	for {
		select {
		case <-t.Dying():
			return nil
		case ev := <-p.trades:
			if _, err := p.conn.Write(encodeTrade(p.symbolID, ev)); err != nil {
				p.log.Error().Err(err).Msg("trade broadcast failed")
			}
		}
	}
}

func encodeTrade(symbolID uint32, ev engine.Event) []byte {
	buf := make([]byte, TradeWireSize)
	binary.LittleEndian.PutUint32(buf[0:4], symbolID)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(ev.Price))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(ev.Quantity))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(ev.Timestamp))
	return buf
}
