package analysis

import (
	"fmt"

	"expansion-monitor/internal/indicators"
)

// Bias is the directional trend state of one timeframe
type Bias string

const (
	BiasBull    Bias = "BULL"
	BiasBear    Bias = "BEAR"
	BiasNeutral Bias = "NEUTRAL"
)

// BiasMode selects how many conditions a bias must satisfy
type BiasMode string

const (
	// BiasStrict requires price vs slow SMA, fast SMA slope and RSI side to agree
	BiasStrict BiasMode = "strict"
	// BiasLoose only compares price with the slow SMA
	BiasLoose BiasMode = "loose"
)

// ParseBiasMode validates a configured mode
func ParseBiasMode(s string) (BiasMode, error) {
	switch BiasMode(s) {
	case BiasStrict, BiasLoose:
		return BiasMode(s), nil
	case "":
		return BiasStrict, nil
	default:
		return "", fmt.Errorf("unknown bias mode %q", s)
	}
}

// ClassifyBias derives the bias from the latest two bars of a series
func ClassifyBias(s *indicators.Series, mode BiasMode) Bias {
	cur, prev := s.Latest()
	return classify(cur, prev, mode)
}

// ClassifyBiasAt derives the bias at index i (i >= 1)
func ClassifyBiasAt(s *indicators.Series, i int, mode BiasMode) Bias {
	return classify(s.At(i), s.At(i-1), mode)
}

func classify(cur, prev indicators.Point, mode BiasMode) Bias {
	close := cur.Candle.Close

	if mode == BiasLoose {
		switch {
		case close > cur.Slow:
			return BiasBull
		case close < cur.Slow:
			return BiasBear
		default:
			return BiasNeutral
		}
	}

	if close > cur.Slow && cur.Fast >= prev.Fast && cur.RSI >= 50 {
		return BiasBull
	}
	if close < cur.Slow && cur.Fast <= prev.Fast && cur.RSI <= 50 {
		return BiasBear
	}
	return BiasNeutral
}

// MacroAligned reports whether the higher timeframes agree on a direction.
// At least two biases are required, all equal and not NEUTRAL.
func MacroAligned(biases ...Bias) bool {
	if len(biases) < 2 {
		return false
	}
	first := biases[0]
	if first == BiasNeutral {
		return false
	}
	for _, b := range biases[1:] {
		if b != first {
			return false
		}
	}
	return true
}
