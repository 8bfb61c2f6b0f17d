// Package indicators computes index-aligned indicator series over candles.
// Values that are not yet defined (lookback not satisfied) are NaN.
package indicators

import (
	"errors"
	"fmt"
	"math"

	"expansion-monitor/internal/market"
)

var (
	// ErrInsufficientData is returned when a series is shorter than the required lookback
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidWindow is returned for non-positive windows and periods
	ErrInvalidWindow = errors.New("invalid indicator window")
)

// Defined reports whether an indicator value has been computed
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// ============================================================================
// MOVING AVERAGES
// ============================================================================

// SMA calculates the trailing simple moving average of close at every index.
// The first window-1 values are NaN.
func SMA(candles []market.Candle, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: sma window %d", ErrInvalidWindow, window)
	}
	if len(candles) < window {
		return nil, fmt.Errorf("%w: sma(%d) needs %d candles, have %d", ErrInsufficientData, window, window, len(candles))
	}

	out := undefinedSeries(len(candles))
	sum := 0.0
	for i, c := range candles {
		sum += c.Close
		if i >= window {
			sum -= candles[i-window].Close
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}

// ============================================================================
// RSI (Relative Strength Index)
// ============================================================================

// RSI calculates Wilder's Relative Strength Index.
// The first average is the simple mean of the first period changes; later
// averages use Wilder smoothing. The first period values are NaN.
func RSI(candles []market.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: rsi period %d", ErrInvalidWindow, period)
	}
	if len(candles) < period+1 {
		return nil, fmt.Errorf("%w: rsi(%d) needs %d candles, have %d", ErrInsufficientData, period, period+1, len(candles))
	}

	out := undefinedSeries(len(candles))

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(candles[i].Close - candles[i-1].Close)
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(candles); i++ {
		gain, loss := splitChange(candles[i].Close - candles[i-1].Close)
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
