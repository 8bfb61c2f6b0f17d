package market

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCandleWicks(t *testing.T) {
	c := Candle{Open: 100, High: 110, Low: 95, Close: 104}

	if c.Body() != 4 {
		t.Errorf("Expected body 4, got %f", c.Body())
	}
	if c.UpperWick() != 6 {
		t.Errorf("Expected upper wick 6, got %f", c.UpperWick())
	}
	if c.LowerWick() != 5 {
		t.Errorf("Expected lower wick 5, got %f", c.LowerWick())
	}
}

func TestValidateSeries(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ok := []Candle{{Timestamp: base}, {Timestamp: base.Add(time.Minute)}}
	if err := ValidateSeries(ok); err != nil {
		t.Errorf("Expected valid series, got %v", err)
	}

	dup := []Candle{{Timestamp: base}, {Timestamp: base}}
	if err := ValidateSeries(dup); err == nil {
		t.Error("Expected error for repeated timestamp")
	}
}

func TestParseTimeframes(t *testing.T) {
	tfs, err := ParseTimeframes("3m, 5m,1h")
	if err != nil {
		t.Fatalf("ParseTimeframes returned error: %v", err)
	}
	if len(tfs) != 3 || tfs[0] != TF3m || tfs[1] != TF5m || tfs[2] != TF1h {
		t.Errorf("Unexpected timeframes %v", tfs)
	}
	if JoinTimeframes(tfs) != "3m,5m,1h" {
		t.Errorf("Unexpected join %q", JoinTimeframes(tfs))
	}

	if _, err := ParseTimeframes("3m,7m"); err == nil {
		t.Error("Expected error for unsupported timeframe")
	}
	if TF4h.Duration() != 4*time.Hour {
		t.Errorf("Expected 4h duration, got %v", TF4h.Duration())
	}
}

func TestNormalizeSymbol(t *testing.T) {
	cases := map[string]string{
		"BTC/USDT":  "BTCUSDT",
		"eth-usdt":  "ETHUSDT",
		" solusdt ": "SOLUSDT",
	}
	for in, expected := range cases {
		if got := NormalizeSymbol(in); got != expected {
			t.Errorf("NormalizeSymbol(%q) = %q, expected %q", in, got, expected)
		}
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	cache.Set(ctx, "k", []Candle{{Close: 1}}, time.Minute)

	if got, ok := cache.Get(ctx, "k"); !ok || len(got) != 1 {
		t.Fatal("Expected cache hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Expected cache miss after expiry")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected expired entry removed, %d left", cache.Len())
	}
}

func TestCachedProviderFetchesOnce(t *testing.T) {
	calls := 0
	next := ProviderFunc(func(ctx context.Context, symbol string, tf Timeframe, minCount int) ([]Candle, error) {
		calls++
		return []Candle{{Close: 42}}, nil
	})

	l1 := NewMemoryCache()
	l2 := NewMemoryCache()
	p := NewCachedProvider(next, l1, l2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		candles, err := p.FetchCandles(ctx, "BTCUSDT", TF5m, 110)
		if err != nil {
			t.Fatalf("FetchCandles returned error: %v", err)
		}
		if candles[0].Close != 42 {
			t.Errorf("Unexpected close %f", candles[0].Close)
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", calls)
	}

	// An L2-only hit is promoted into L1
	key := CacheKey("ETHUSDT", TF1h, 110)
	l2.Set(ctx, key, []Candle{{Close: 7}}, time.Minute)
	if _, err := p.FetchCandles(ctx, "ETHUSDT", TF1h, 110); err != nil {
		t.Fatalf("FetchCandles returned error: %v", err)
	}
	if _, ok := l1.Get(ctx, key); !ok {
		t.Error("Expected L2 hit to be copied into L1")
	}
	if calls != 1 {
		t.Errorf("Expected no upstream call for L2 hit, got %d", calls)
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	calls := 0
	next := ProviderFunc(func(ctx context.Context, symbol string, tf Timeframe, minCount int) ([]Candle, error) {
		calls++
		return nil, ErrProviderUnavailable
	})
	p := NewCachedProvider(next, NewMemoryCache())

	for i := 0; i < 2; i++ {
		_, err := p.FetchCandles(context.Background(), "BTCUSDT", TF5m, 110)
		if !errors.Is(err, ErrProviderUnavailable) {
			t.Fatalf("Expected ErrProviderUnavailable, got %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("Expected errors to bypass cache, got %d calls", calls)
	}
}
