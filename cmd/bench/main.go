// Command bench replays synthetic order flow against the matching
// core directly (no network, no ring) and reports per-batch latency
// statistics. The replay-by-round, batch-latency structure follows
// the retrieval pack's quantcup benchmark; the mean/stddev reporting
// uses the same grd/stat package it does.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/grd/stat"
	"github.com/rs/zerolog"

	"fenrir/internal/engine"
	"fenrir/internal/fixedpoint"
	"fenrir/internal/order"
)

const nanoToSeconds = 1e-9

func main() {
	batchSize := flag.Int("batch", 100, "orders per latency sample")
	orderCount := flag.Int("orders", 100000, "synthetic orders per round")
	rounds := flag.Int("rounds", 10, "replay rounds")
	poolCapacity := flag.Int("pool-capacity", 1<<21, "matching engine pool capacity")
	flag.Parse()

	batchLatencies := make([]time.Duration, 0, *rounds*(*orderCount / *batchSize))
	roundLatencies := make([]time.Duration, *rounds)

	for round := 0; round < *rounds; round++ {
		e := engine.New(*poolCapacity, 0, func(engine.Event) {}, zerolog.Nop())
		feed := syntheticFeed(*orderCount, round)

		roundStart := time.Now()
		for i := *batchSize; i <= len(feed); i += *batchSize {
			batchStart := time.Now()
			for _, cmd := range feed[i-*batchSize : i] {
				e.Dispatch(cmd)
			}
			batchLatencies = append(batchLatencies, time.Since(batchStart))
		}
		roundLatencies[round] = time.Since(roundStart)

		fmt.Printf("round %d: resting=%d\n", round+1, e.RestingCount())
	}

	batchDurations := durationSlice(batchLatencies)
	roundDurations := durationSlice(roundLatencies)

	mean := stat.Mean(batchDurations)
	sd := stat.SdMean(batchDurations, mean)
	fmt.Printf("[batch] mean=%1.6fs sd=%1.6fs\n", mean*nanoToSeconds, sd*nanoToSeconds)

	roundMean := stat.Mean(roundDurations)
	fmt.Printf("[round] %.1f orders/sec\n", float64(*orderCount)/(roundMean*nanoToSeconds))
}

// syntheticFeed builds a deterministic command sequence for one round:
// alternating crossing and resting limit orders at a handful of price
// levels, seasoned with cancels of earlier order ids so the book
// churns instead of only ever growing.
func syntheticFeed(n, round int) []engine.Command {
	feed := make([]engine.Command, 0, n)
	base := order.ID(round) * order.ID(n) * 2
	for i := 0; i < n; i++ {
		id := base + order.ID(i) + 1
		side := order.Bid
		if i%2 == 1 {
			side = order.Ask
		}
		price := fixedpoint.Price(100 + int64(i%5))
		if i > 0 && i%37 == 0 {
			feed = append(feed, engine.CancelOrder(id-order.ID(20)))
			continue
		}
		feed = append(feed, engine.NewOrder(id, side, order.Limit, price, 10, 0))
	}
	return feed
}

type durationSlice []time.Duration

func (d durationSlice) Get(i int) float64 { return float64(d[i]) }
func (d durationSlice) Len() int          { return len(d) }
