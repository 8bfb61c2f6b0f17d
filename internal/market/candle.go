package market

import (
	"fmt"
	"math"
	"time"
)

// Candle represents one OHLCV bar of a (symbol, timeframe) series
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Body returns the absolute open-to-close range
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// UpperWick returns the distance from the top of the body to the high
func (c Candle) UpperWick() float64 {
	return c.High - math.Max(c.Close, c.Open)
}

// LowerWick returns the distance from the bottom of the body to the low
func (c Candle) LowerWick() float64 {
	return math.Min(c.Close, c.Open) - c.Low
}

// ValidateSeries checks that timestamps are strictly increasing
func ValidateSeries(candles []Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			return fmt.Errorf("candle %d at %s is not after candle %d at %s",
				i, candles[i].Timestamp.Format(time.RFC3339), i-1, candles[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes extracts closing prices
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
