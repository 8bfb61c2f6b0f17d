package signals

import (
	"errors"
	"fmt"

	"expansion-monitor/internal/analysis"
	"expansion-monitor/internal/indicators"
	"expansion-monitor/internal/market"
)

// ErrInvalidConfiguration is returned for configurations the engine cannot run with
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config parameterizes the whole classifier
type Config struct {
	FastWindow         int
	SlowWindow         int
	RSIPeriod          int
	ExpansionLookback  int
	BodyLookback       int
	ElephantMultiplier float64
	TailMultiplier     float64
	VoidLongRSI        float64 // LONG is exhausted above this RSI
	VoidShortRSI       float64 // SHORT is exhausted below this RSI
	BiasMode           analysis.BiasMode

	// ExecutionTimeframes get one signal each
	ExecutionTimeframes []market.Timeframe
	// BiasTimeframes[0] is the bias timeframe; the full list is the macro set
	BiasTimeframes []market.Timeframe
}

// DefaultConfig returns the SMA20/SMA100, RSI14, 3m+5m against 15m/1h/4h setup
func DefaultConfig() Config {
	return Config{
		FastWindow:          20,
		SlowWindow:          100,
		RSIPeriod:           14,
		ExpansionLookback:   1,
		BodyLookback:        20,
		ElephantMultiplier:  2.5,
		TailMultiplier:      2.0,
		VoidLongRSI:         65,
		VoidShortRSI:        35,
		BiasMode:            analysis.BiasStrict,
		ExecutionTimeframes: []market.Timeframe{market.TF3m, market.TF5m},
		BiasTimeframes:      []market.Timeframe{market.TF15m, market.TF1h, market.TF4h},
	}
}

// Validate checks windows, thresholds and timeframe sets
func (c Config) Validate() error {
	if c.FastWindow <= 0 || c.SlowWindow <= 0 || c.RSIPeriod <= 0 {
		return fmt.Errorf("%w: windows must be positive (fast=%d slow=%d rsi=%d)", ErrInvalidConfiguration, c.FastWindow, c.SlowWindow, c.RSIPeriod)
	}
	if c.FastWindow >= c.SlowWindow {
		return fmt.Errorf("%w: fast window %d must be shorter than slow window %d", ErrInvalidConfiguration, c.FastWindow, c.SlowWindow)
	}
	if c.ExpansionLookback <= 0 || c.BodyLookback <= 0 {
		return fmt.Errorf("%w: lookbacks must be positive", ErrInvalidConfiguration)
	}
	if c.ElephantMultiplier <= 0 || c.TailMultiplier <= 0 {
		return fmt.Errorf("%w: candle multipliers must be positive", ErrInvalidConfiguration)
	}
	if c.VoidShortRSI < 0 || c.VoidLongRSI > 100 || c.VoidShortRSI > c.VoidLongRSI {
		return fmt.Errorf("%w: void thresholds %.1f/%.1f", ErrInvalidConfiguration, c.VoidLongRSI, c.VoidShortRSI)
	}
	if _, err := analysis.ParseBiasMode(string(c.BiasMode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := validateTimeframes(c.ExecutionTimeframes, c.BiasTimeframes); err != nil {
		return err
	}
	return nil
}

func validateTimeframes(exec, bias []market.Timeframe) error {
	if len(exec) == 0 {
		return fmt.Errorf("%w: execution timeframe list is empty", ErrInvalidConfiguration)
	}
	if len(bias) == 0 {
		return fmt.Errorf("%w: bias timeframe list is empty", ErrInvalidConfiguration)
	}
	for _, tf := range append(append([]market.Timeframe{}, exec...), bias...) {
		if !tf.Valid() {
			return fmt.Errorf("%w: unsupported timeframe %q", ErrInvalidConfiguration, tf)
		}
	}
	return nil
}

// IndicatorParams returns the windows for indicators.Compute
func (c Config) IndicatorParams() indicators.Params {
	return indicators.Params{
		FastWindow: c.FastWindow,
		SlowWindow: c.SlowWindow,
		RSIPeriod:  c.RSIPeriod,
	}
}

// MinCandles is the number of candles every timeframe must supply
func (c Config) MinCandles() int {
	n := c.IndicatorParams().MinCandles() + c.ExpansionLookback - 1
	if c.BodyLookback > n {
		n = c.BodyLookback
	}
	return n
}

// RequiredTimeframes lists execution then bias timeframes without duplicates
func RequiredTimeframes(exec, bias []market.Timeframe) []market.Timeframe {
	seen := make(map[market.Timeframe]bool)
	var out []market.Timeframe
	for _, tf := range append(append([]market.Timeframe{}, exec...), bias...) {
		if !seen[tf] {
			seen[tf] = true
			out = append(out, tf)
		}
	}
	return out
}
