// Command server wires one symbol's matching engine to a TCP gateway
// and a UDP market data publisher, connected by the two rings the
// engine thread and the I/O threads pass through.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/engine"
	"fenrir/internal/gateway"
	"fenrir/internal/marketdata"
	"fenrir/internal/ring"
)

func main() {
	address := flag.String("address", "0.0.0.0", "gateway bind address")
	port := flag.Int("port", 9001, "gateway bind port")
	mdAddress := flag.String("marketdata", "127.0.0.1:9002", "market data UDP destination")
	symbolID := flag.Uint("symbol", 0, "symbol id this instance matches")
	poolCapacity := flag.Int("pool-capacity", 1<<20, "maximum resting orders")
	ringCapacity := flag.Uint64("ring-capacity", 1<<16, "command/event ring capacity, must be a power of two")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	commands, err := ring.New[engine.Command](*ringCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ring capacity")
	}
	events, err := ring.New[engine.Event](*ringCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ring capacity")
	}

	publisher, err := marketdata.New(*mdAddress, uint32(*symbolID), logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start market data publisher")
	}

	sink := func(ev engine.Event) {
		publisher.Publish(ev)
		for events.TryPush(ev) != nil {
			// The event ring only backs up if the gateway's drain
			// goroutine is stuck; spin rather than drop an event.
		}
	}
	eng := engine.New(*poolCapacity, uint32(*symbolID), sink, logger)

	srv := gateway.New(*address, *port, commands, events, logger)

	mdTomb, _ := tomb.WithContext(ctx)
	mdTomb.Go(func() error { return publisher.Run(mdTomb) })

	engineStop := make(chan struct{})
	go eng.RunLoop(commands, engineStop)
	defer close(engineStop)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("gateway exited")
		}
	}()

	log.Info().
		Str("address", *address).
		Int("port", *port).
		Uint("symbol", *symbolID).
		Msg("fenrir matching engine running")

	<-ctx.Done()
}
