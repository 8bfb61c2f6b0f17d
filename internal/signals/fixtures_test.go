package signals

import (
	"context"
	"fmt"
	"math"
	"time"

	"expansion-monitor/internal/market"
)

var fixtureBase = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func candlesFor(tf market.Timeframe, closes []float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		out[i] = market.Candle{
			Timestamp: fixtureBase.Add(time.Duration(i) * tf.Duration()),
			Open:      open,
			High:      math.Max(open, c),
			Low:       math.Min(open, c),
			Close:     c,
			Volume:    1000 + float64(i),
		}
	}
	return out
}

func linearCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// breakoutCloses is flat for 90 bars, drifts by step for 19 bars and ends
// with a bar that moves by jump: a fresh SMA20/SMA100 crossover whose gap
// widens on the last bar, which is an elephant candle.
func breakoutCloses(step, jump float64) []float64 {
	closes := make([]float64, 110)
	for i := 0; i < 90; i++ {
		closes[i] = 100
	}
	for i := 90; i < 109; i++ {
		closes[i] = 100 + step*float64(i-89)
	}
	closes[109] = closes[108] + jump
	return closes
}

// fadingCloses rises for 100 bars then falls for 10, so the SMA gap shrinks
func fadingCloses() []float64 {
	closes := linearCloses(100, 100, 1)
	for i := 0; i < 10; i++ {
		closes = append(closes, closes[len(closes)-1]-3)
	}
	return closes
}

type fakeProvider struct {
	closes map[market.Timeframe][]float64
	errs   map[market.Timeframe]error
}

func (f *fakeProvider) FetchCandles(ctx context.Context, symbol string, tf market.Timeframe, minCount int) ([]market.Candle, error) {
	if err, ok := f.errs[tf]; ok {
		return nil, err
	}
	closes, ok := f.closes[tf]
	if !ok {
		return nil, fmt.Errorf("%w: no data for %s %s", market.ErrProviderUnavailable, symbol, tf)
	}
	return candlesFor(tf, closes), nil
}

func bullishMarket(exec []float64) *fakeProvider {
	return &fakeProvider{
		closes: map[market.Timeframe][]float64{
			market.TF3m:  exec,
			market.TF5m:  exec,
			market.TF15m: linearCloses(110, 100, 1),
			market.TF1h:  linearCloses(110, 100, 1),
			market.TF4h:  linearCloses(110, 100, 1),
		},
	}
}
