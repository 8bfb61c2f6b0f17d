package indicators

import (
	"fmt"

	"expansion-monitor/internal/market"
)

// Params selects the windows used to build a Series
type Params struct {
	FastWindow int
	SlowWindow int
	RSIPeriod  int
}

// DefaultParams matches the SMA20/SMA100 + RSI14 setup
func DefaultParams() Params {
	return Params{FastWindow: 20, SlowWindow: 100, RSIPeriod: 14}
}

// MinCandles is the shortest series for which the latest two bars carry every indicator
func (p Params) MinCandles() int {
	n := p.SlowWindow
	if p.FastWindow > n {
		n = p.FastWindow
	}
	if p.RSIPeriod > n {
		n = p.RSIPeriod
	}
	return n + 1
}

// Series is a candle series with indicator values aligned index-for-index
type Series struct {
	Candles []market.Candle
	Fast    []float64
	Slow    []float64
	RSI     []float64
	Params  Params
}

// Compute builds the indicator-augmented series.
// Fails with ErrInsufficientData when fewer than p.MinCandles() candles are given.
func Compute(candles []market.Candle, p Params) (*Series, error) {
	if need := p.MinCandles(); len(candles) < need {
		return nil, fmt.Errorf("%w: need %d candles, have %d", ErrInsufficientData, need, len(candles))
	}

	fast, err := SMA(candles, p.FastWindow)
	if err != nil {
		return nil, fmt.Errorf("fast sma: %w", err)
	}
	slow, err := SMA(candles, p.SlowWindow)
	if err != nil {
		return nil, fmt.Errorf("slow sma: %w", err)
	}
	rsi, err := RSI(candles, p.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}

	return &Series{
		Candles: candles,
		Fast:    fast,
		Slow:    slow,
		RSI:     rsi,
		Params:  p,
	}, nil
}

// Len returns the number of bars
func (s *Series) Len() int {
	return len(s.Candles)
}

// Last returns the index of the latest bar
func (s *Series) Last() int {
	return len(s.Candles) - 1
}

// Point is one indicator-augmented bar
type Point struct {
	Candle market.Candle `json:"candle"`
	Fast   float64       `json:"sma_fast"`
	Slow   float64       `json:"sma_slow"`
	RSI    float64       `json:"rsi"`
}

// At returns the bar at index i
func (s *Series) At(i int) Point {
	return Point{
		Candle: s.Candles[i],
		Fast:   s.Fast[i],
		Slow:   s.Slow[i],
		RSI:    s.RSI[i],
	}
}

// Latest returns the current and previous bars
func (s *Series) Latest() (current, previous Point) {
	return s.At(s.Last()), s.At(s.Last() - 1)
}
