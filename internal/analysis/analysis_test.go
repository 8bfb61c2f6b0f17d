package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"expansion-monitor/internal/indicators"
	"expansion-monitor/internal/market"
)

func buildCandles(closes []float64) []market.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		out[i] = market.Candle{
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
			Open:      open,
			High:      math.Max(open, c),
			Low:       math.Min(open, c),
			Close:     c,
			Volume:    500,
		}
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func mustSeries(t *testing.T, closes []float64) *indicators.Series {
	t.Helper()
	s, err := indicators.Compute(buildCandles(closes), indicators.DefaultParams())
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	return s
}

func TestClassifyBiasStrict(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		expected Bias
	}{
		{"rising", linear(120, 100, 1), BiasBull},
		{"falling", linear(120, 300, -1), BiasBear},
		{"flat", linear(120, 100, 0), BiasNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyBias(mustSeries(t, tt.closes), BiasStrict)
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestClassifyBiasStrictVersusLoose(t *testing.T) {
	// Long uptrend followed by a sharp pullback: price still above SMA100,
	// but the fast SMA is falling and RSI has dropped below 50.
	closes := linear(110, 100, 1)
	for i := 0; i < 10; i++ {
		closes = append(closes, closes[len(closes)-1]-4)
	}
	s := mustSeries(t, closes)

	cur, prev := s.Latest()
	if cur.Candle.Close <= cur.Slow || cur.Fast >= prev.Fast || cur.RSI >= 50 {
		t.Fatalf("Fixture does not set up the intended conflict: close=%f slow=%f fast=%f/%f rsi=%f",
			cur.Candle.Close, cur.Slow, cur.Fast, prev.Fast, cur.RSI)
	}

	if got := ClassifyBias(s, BiasStrict); got != BiasNeutral {
		t.Errorf("Strict mode should be NEUTRAL, got %s", got)
	}
	if got := ClassifyBias(s, BiasLoose); got != BiasBull {
		t.Errorf("Loose mode should be BULL, got %s", got)
	}
}

func TestParseBiasMode(t *testing.T) {
	if m, err := ParseBiasMode(""); err != nil || m != BiasStrict {
		t.Errorf("Empty mode should default to strict, got %s (%v)", m, err)
	}
	if m, err := ParseBiasMode("loose"); err != nil || m != BiasLoose {
		t.Errorf("Expected loose, got %s (%v)", m, err)
	}
	if _, err := ParseBiasMode("medium"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestMacroAligned(t *testing.T) {
	tests := []struct {
		biases   []Bias
		expected bool
	}{
		{[]Bias{BiasBull, BiasBull, BiasBull}, true},
		{[]Bias{BiasBear, BiasBear, BiasBear}, true},
		{[]Bias{BiasBull, BiasBear, BiasBull}, false},
		{[]Bias{BiasNeutral, BiasNeutral, BiasNeutral}, false},
		{[]Bias{BiasBull, BiasBull, BiasNeutral}, false},
		{[]Bias{BiasBull}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := MacroAligned(tt.biases...); got != tt.expected {
			t.Errorf("MacroAligned(%v) = %v, expected %v", tt.biases, got, tt.expected)
		}
	}
}

func TestExpansionOnQuadraticSeries(t *testing.T) {
	// For a quadratic close, SMA20 - SMA100 grows linearly with t, so the
	// gap widens on every bar once both averages are defined.
	closes := make([]float64, 160)
	for i := range closes {
		x := float64(i)
		closes[i] = 100 + 0.01*x*x
	}
	s := mustSeries(t, closes)
	d := NewExpansionDetector(1)

	for i := 100; i < s.Len(); i++ {
		expanding, err := d.IsExpandingAt(s, i)
		if err != nil {
			t.Fatalf("IsExpandingAt(%d) returned error: %v", i, err)
		}
		if !expanding {
			t.Errorf("Expected expansion at bar %d (gap %f vs %f)", i, Gap(s, i), Gap(s, i-1))
		}
	}
}

func TestExpansionShrinkingGap(t *testing.T) {
	closes := linear(100, 100, 1)
	for i := 0; i < 10; i++ {
		closes = append(closes, closes[len(closes)-1]-3)
	}
	s := mustSeries(t, closes)

	expanding, err := NewExpansionDetector(1).IsExpanding(s)
	if err != nil {
		t.Fatalf("IsExpanding returned error: %v", err)
	}
	if expanding {
		t.Errorf("Expected no expansion while the gap shrinks (gap %f vs %f)", Gap(s, s.Last()), Gap(s, s.Last()-1))
	}
}

func TestExpansionLookbackNeedsHistory(t *testing.T) {
	s := mustSeries(t, linear(101, 100, 1))

	if _, err := NewExpansionDetector(1).IsExpanding(s); err != nil {
		t.Errorf("Lookback 1 should work on 101 candles, got %v", err)
	}
	_, err := NewExpansionDetector(5).IsExpanding(s)
	if !errors.Is(err, indicators.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData for lookback 5, got %v", err)
	}
	if NewExpansionDetector(0).Lookback != 1 {
		t.Error("Non-positive lookback should default to 1")
	}
}

func flatBodies(n int, body float64) []market.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		out[i] = market.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open:      100,
			Close:     100 + body,
			High:      100 + body,
			Low:       100,
		}
	}
	return out
}

func TestConfirmationElephant(t *testing.T) {
	// 19 bodies of 1.7 plus a 5.7 body average to 1.9, so the last body is 3x the average
	candles := flatBodies(19, 1.7)
	last := candles[18]
	last.Timestamp = last.Timestamp.Add(time.Minute)
	last.Open, last.Close = 100, 105.7
	last.High, last.Low = 105.7, 100
	candles = append(candles, last)

	conf, err := NewConfirmationDetector(DefaultConfirmationConfig()).Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if math.Abs(conf.Body-3*conf.AvgBody) > 1e-9 {
		t.Fatalf("Fixture body %f should be 3x average %f", conf.Body, conf.AvgBody)
	}
	if !conf.Elephant {
		t.Error("Expected elephant candle")
	}
	if conf.Tail {
		t.Error("Expected no tail without wicks")
	}
	if !conf.Confirmed() {
		t.Error("Elephant should confirm")
	}
}

func TestConfirmationTail(t *testing.T) {
	candles := flatBodies(20, 1)
	// Upper wick of 2.5x the body on a body equal to the average
	candles[19].High = 101 + 2.5

	conf, err := NewConfirmationDetector(DefaultConfirmationConfig()).Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if conf.Body != conf.AvgBody {
		t.Fatalf("Fixture body %f should equal average %f", conf.Body, conf.AvgBody)
	}
	if !conf.Tail {
		t.Error("Expected tail candle")
	}
	if conf.Elephant {
		t.Error("Body equal to average is not an elephant")
	}
}

func TestConfirmationLowerTail(t *testing.T) {
	candles := flatBodies(20, 1)
	candles[19].Low = 100 - 2.1

	conf, err := NewConfirmationDetector(DefaultConfirmationConfig()).Detect(candles)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if !conf.Tail {
		t.Error("Expected lower tail candle")
	}
}

func TestConfirmationPlainCandle(t *testing.T) {
	conf, err := NewConfirmationDetector(DefaultConfirmationConfig()).Detect(flatBodies(25, 1))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if conf.Confirmed() {
		t.Errorf("Ordinary candle should not confirm: %+v", conf)
	}

	_, err = NewConfirmationDetector(DefaultConfirmationConfig()).Detect(flatBodies(5, 1))
	if !errors.Is(err, indicators.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}
