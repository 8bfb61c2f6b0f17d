package analysis

import (
	"fmt"

	"expansion-monitor/internal/indicators"
	"expansion-monitor/internal/market"
)

// ConfirmationConfig holds thresholds for elephant and tail candles
type ConfirmationConfig struct {
	BodyLookback       int     // Candles averaged for body size, current included
	ElephantMultiplier float64 // Body must exceed this multiple of the average body
	TailMultiplier     float64 // A wick must exceed this multiple of the body
}

// DefaultConfirmationConfig returns the 20-bar / 2.5x / 2x setup
func DefaultConfirmationConfig() ConfirmationConfig {
	return ConfirmationConfig{
		BodyLookback:       20,
		ElephantMultiplier: 2.5,
		TailMultiplier:     2.0,
	}
}

// Confirmation describes the latest candle's shape
type Confirmation struct {
	Body     float64 `json:"body"`
	AvgBody  float64 `json:"avg_body"`
	Elephant bool    `json:"elephant"`
	Tail     bool    `json:"tail"`
}

// Confirmed is true for an elephant or a tail candle
func (c Confirmation) Confirmed() bool {
	return c.Elephant || c.Tail
}

// ConfirmationDetector classifies the latest candle of an execution timeframe
type ConfirmationDetector struct {
	config ConfirmationConfig
}

// NewConfirmationDetector creates a detector
func NewConfirmationDetector(config ConfirmationConfig) *ConfirmationDetector {
	if config.BodyLookback <= 0 {
		config.BodyLookback = DefaultConfirmationConfig().BodyLookback
	}
	return &ConfirmationDetector{config: config}
}

// Detect classifies the last candle against the trailing average body
func (d *ConfirmationDetector) Detect(candles []market.Candle) (Confirmation, error) {
	n := d.config.BodyLookback
	if len(candles) < n {
		return Confirmation{}, fmt.Errorf("%w: body average needs %d candles, have %d", indicators.ErrInsufficientData, n, len(candles))
	}

	current := candles[len(candles)-1]
	sum := 0.0
	for _, c := range candles[len(candles)-n:] {
		sum += c.Body()
	}

	conf := Confirmation{
		Body:    current.Body(),
		AvgBody: sum / float64(n),
	}
	conf.Elephant = conf.Body > d.config.ElephantMultiplier*conf.AvgBody
	tailLimit := d.config.TailMultiplier * conf.Body
	conf.Tail = current.UpperWick() > tailLimit || current.LowerWick() > tailLimit
	return conf, nil
}
