package analysis

import (
	"fmt"
	"math"

	"expansion-monitor/internal/indicators"
)

// ExpansionDetector detects a widening gap between the fast and slow SMA
type ExpansionDetector struct {
	// Lookback is the number of bars between the compared gaps; 1 compares the latest two bars
	Lookback int
}

// NewExpansionDetector creates a detector; lookback <= 0 falls back to 1
func NewExpansionDetector(lookback int) *ExpansionDetector {
	if lookback <= 0 {
		lookback = 1
	}
	return &ExpansionDetector{Lookback: lookback}
}

// Gap returns |fast - slow| at index i
func Gap(s *indicators.Series, i int) float64 {
	return math.Abs(s.Fast[i] - s.Slow[i])
}

// IsExpanding checks the latest bar of an execution timeframe series
func (d *ExpansionDetector) IsExpanding(s *indicators.Series) (bool, error) {
	return d.IsExpandingAt(s, s.Last())
}

// IsExpandingAt reports gap(i) > gap(i-Lookback) with a strict inequality
func (d *ExpansionDetector) IsExpandingAt(s *indicators.Series, i int) (bool, error) {
	j := i - d.Lookback
	if j < 0 || i >= s.Len() {
		return false, fmt.Errorf("%w: expansion at bar %d with lookback %d", indicators.ErrInsufficientData, i, d.Lookback)
	}
	if !indicators.Defined(s.Slow[j]) || !indicators.Defined(s.Fast[j]) {
		return false, fmt.Errorf("%w: moving averages undefined at bar %d", indicators.ErrInsufficientData, j)
	}
	return Gap(s, i) > Gap(s, j), nil
}
