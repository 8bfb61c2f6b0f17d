package binance

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"expansion-monitor/internal/market"
)

// MockClient provides simulated market data for development/testing.
// A series is deterministic for a given symbol, interval and end bar.
type MockClient struct {
	prices map[string]float64
	now    func() time.Time
}

// NewMockClient creates a new mock client
func NewMockClient() *MockClient {
	return &MockClient{
		prices: map[string]float64{
			"BTCUSDT":  104500.00,
			"ETHUSDT":  3900.00,
			"BNBUSDT":  710.00,
			"SOLUSDT":  220.00,
			"XRPUSDT":  2.35,
			"ADAUSDT":  1.05,
			"DOGEUSDT": 0.40,
			"LINKUSDT": 28.00,
		},
		now: time.Now,
	}
}

// GetKlines returns a simulated random walk ending at the current bar
func (mc *MockClient) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tf, err := market.ParseTimeframe(interval)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxKlineLimit {
		return nil, fmt.Errorf("kline limit %d out of range 1..%d", limit, maxKlineLimit)
	}

	basePrice, ok := mc.prices[symbol]
	if !ok {
		basePrice = 100.0
	}

	step := tf.Duration()
	last := mc.now().Truncate(step)
	first := last.Add(-time.Duration(limit-1) * step)

	h := fnv.New64a()
	h.Write([]byte(symbol + "|" + interval))
	rng := rand.New(rand.NewSource(int64(h.Sum64() ^ uint64(first.Unix()))))

	volatility := 0.004
	klines := make([]Kline, limit)
	price := basePrice
	for i := 0; i < limit; i++ {
		openTime := first.Add(time.Duration(i) * step)

		open := price
		change := (rng.Float64() - 0.5) * volatility * 2
		close := open * (1 + change)

		high := math.Max(open, close) * (1 + rng.Float64()*volatility*0.5)
		low := math.Min(open, close) * (1 - rng.Float64()*volatility*0.5)

		klines[i] = Kline{
			OpenTime:  openTime.UnixMilli(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000 + rng.Float64()*5000,
			CloseTime: openTime.Add(step).UnixMilli() - 1,
		}
		price = close
	}

	return klines, nil
}
