package signals

import (
	"expansion-monitor/internal/analysis"
	"expansion-monitor/internal/indicators"
	"expansion-monitor/internal/market"
)

// TimeframeReport exposes the intermediate readings for one timeframe
type TimeframeReport struct {
	Timeframe    market.Timeframe      `json:"timeframe"`
	Latest       indicators.Point      `json:"latest"`
	Previous     indicators.Point      `json:"previous"`
	Gap          float64               `json:"gap"`
	Bias         analysis.Bias         `json:"bias"`
	Expanding    bool                  `json:"expanding"`
	Confirmation analysis.Confirmation `json:"confirmation"`
}

// Inspect computes indicators and detector readings for one candle series
func (e *Engine) Inspect(tf market.Timeframe, candles []market.Candle) (*TimeframeReport, error) {
	s, err := e.series(candles)
	if err != nil {
		return nil, err
	}
	expanding, err := e.expansion.IsExpanding(s)
	if err != nil {
		return nil, err
	}
	conf, err := e.confirmation.Detect(s.Candles)
	if err != nil {
		return nil, err
	}

	cur, prev := s.Latest()
	return &TimeframeReport{
		Timeframe:    tf,
		Latest:       cur,
		Previous:     prev,
		Gap:          analysis.Gap(s, s.Last()),
		Bias:         analysis.ClassifyBias(s, e.cfg.BiasMode),
		Expanding:    expanding,
		Confirmation: conf,
	}, nil
}
