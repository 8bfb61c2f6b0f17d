package market

import (
	"context"
	"errors"
	"strings"
)

// ErrProviderUnavailable marks any failure to obtain candles: timeout, network, unknown symbol.
var ErrProviderUnavailable = errors.New("market data provider unavailable")

// Provider supplies ordered candle series for a symbol and timeframe.
// Implementations wrap failures with ErrProviderUnavailable.
type Provider interface {
	FetchCandles(ctx context.Context, symbol string, timeframe Timeframe, minCount int) ([]Candle, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, symbol string, timeframe Timeframe, minCount int) ([]Candle, error)

// FetchCandles calls f
func (f ProviderFunc) FetchCandles(ctx context.Context, symbol string, timeframe Timeframe, minCount int) ([]Candle, error) {
	return f(ctx, symbol, timeframe, minCount)
}

// NormalizeSymbol turns "btc/usdt" or "BTC-USDT" into the exchange form "BTCUSDT"
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
