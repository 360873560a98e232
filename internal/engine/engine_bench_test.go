package engine_test

import (
	"testing"

	"fenrir/internal/engine"
	"fenrir/internal/order"

	"github.com/rs/zerolog"
)

func BenchmarkDispatchRestingLimit(b *testing.B) {
	sink := func(engine.Event) {}
	e := engine.New(1<<20, 0, sink, zerolog.Nop())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Dispatch(engine.NewOrder(order.ID(i+1), order.Bid, order.Limit, 100, 10, 0))
	}
}

func BenchmarkDispatchCrossingLimit(b *testing.B) {
	sink := func(engine.Event) {}
	e := engine.New(1<<20, 0, sink, zerolog.Nop())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := order.ID(i + 1)
		e.Dispatch(engine.NewOrder(id, order.Ask, order.Limit, 100, 10, 0))
		e.Dispatch(engine.NewOrder(id+(1<<30), order.Bid, order.Limit, 100, 10, 0))
	}
}
