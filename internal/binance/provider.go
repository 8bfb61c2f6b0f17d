package binance

import (
	"context"
	"fmt"
	"time"

	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/market"
)

// Provider adapts a KlineSource to market.Provider
type Provider struct {
	source KlineSource
	limit  int
}

// NewProvider wraps source. limit is the minimum number of candles requested per call.
func NewProvider(source KlineSource, limit int) *Provider {
	return &Provider{source: source, limit: limit}
}

// FetchCandles normalizes the symbol, fetches klines and converts them to candles.
// Every failure is wrapped with market.ErrProviderUnavailable.
func (p *Provider) FetchCandles(ctx context.Context, symbol string, timeframe market.Timeframe, minCount int) ([]market.Candle, error) {
	sym := market.NormalizeSymbol(symbol)
	limit := minCount
	if p.limit > limit {
		limit = p.limit
	}
	if limit > maxKlineLimit {
		limit = maxKlineLimit
	}

	start := time.Now()
	klines, err := p.source.GetKlines(ctx, sym, string(timeframe), limit)
	if err != nil {
		logging.MarketDataContext(sym, string(timeframe), limit).WithError(err).Warn("Kline fetch failed")
		return nil, fmt.Errorf("%w: %s %s: %v", market.ErrProviderUnavailable, sym, timeframe, err)
	}

	logging.MarketDataContext(sym, string(timeframe), limit).
		WithDuration(time.Since(start)).
		Debug("Fetched klines", "count", len(klines))

	return KlinesToCandles(klines), nil
}

// KlinesToCandles converts exchange klines to candles stamped with their open time
func KlinesToCandles(klines []Kline) []market.Candle {
	out := make([]market.Candle, len(klines))
	for i, k := range klines {
		out[i] = market.Candle{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Open:      k.Open,
			High:      k.High,
			Low:       k.Low,
			Close:     k.Close,
			Volume:    k.Volume,
		}
	}
	return out
}

var _ market.Provider = (*Provider)(nil)
