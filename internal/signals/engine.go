package signals

import (
	"errors"
	"fmt"

	"expansion-monitor/internal/analysis"
	"expansion-monitor/internal/indicators"
	"expansion-monitor/internal/market"
)

// Snapshot holds the candle series fetched for one symbol, keyed by timeframe
type Snapshot map[market.Timeframe][]market.Candle

// Engine is the pure classifier. It performs no I/O and holds no mutable state.
type Engine struct {
	cfg          Config
	expansion    *analysis.ExpansionDetector
	confirmation *analysis.ConfirmationDetector
}

// NewEngine validates cfg and builds the detectors
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		expansion: analysis.NewExpansionDetector(cfg.ExpansionLookback),
		confirmation: analysis.NewConfirmationDetector(analysis.ConfirmationConfig{
			BodyLookback:       cfg.BodyLookback,
			ElephantMultiplier: cfg.ElephantMultiplier,
			TailMultiplier:     cfg.TailMultiplier,
		}),
	}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// SymbolError describes why a symbol could not be evaluated
type SymbolError struct {
	Symbol    string
	Timeframe market.Timeframe
	Kind      FailureKind
	Err       error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Symbol, e.Timeframe, e.Kind, e.Err)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// Classify maps an error to its failure kind
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, indicators.ErrInsufficientData):
		return FailureInsufficientData
	default:
		return FailureProviderUnavailable
	}
}

// SkipSignal builds the single SKIP signal emitted for a symbol that failed
func SkipSignal(symbol string, err *SymbolError) Signal {
	return Signal{
		Symbol:    symbol,
		Timeframe: err.Timeframe,
		Action:    ActionSkip,
		Tier:      TierWait,
		Reason:    fmt.Sprintf("%s (%s): %v", err.Kind, err.Timeframe, err.Err),
		Failure:   err.Kind,
	}
}

// EvaluateSnapshot classifies every execution timeframe of one symbol.
// If any required timeframe is missing or too short the symbol yields one SKIP signal.
func (e *Engine) EvaluateSnapshot(symbol string, snap Snapshot, exec, bias []market.Timeframe) ([]Signal, error) {
	if err := validateTimeframes(exec, bias); err != nil {
		return nil, err
	}

	out, serr := e.evaluate(symbol, snap, exec, bias)
	if serr != nil {
		return []Signal{SkipSignal(symbol, serr)}, nil
	}
	return out, nil
}

func (e *Engine) evaluate(symbol string, snap Snapshot, exec, bias []market.Timeframe) ([]Signal, *SymbolError) {
	series := make(map[market.Timeframe]*indicators.Series)
	for _, tf := range RequiredTimeframes(exec, bias) {
		candles, ok := snap[tf]
		if !ok {
			return nil, &SymbolError{Symbol: symbol, Timeframe: tf, Kind: FailureProviderUnavailable, Err: market.ErrProviderUnavailable}
		}
		s, err := e.series(candles)
		if err != nil {
			return nil, &SymbolError{Symbol: symbol, Timeframe: tf, Kind: Classify(err), Err: err}
		}
		series[tf] = s
	}

	biasTF := bias[0]
	trend := analysis.ClassifyBias(series[biasTF], e.cfg.BiasMode)

	macro := make([]analysis.Bias, len(bias))
	for i, tf := range bias {
		macro[i] = analysis.ClassifyBias(series[tf], e.cfg.BiasMode)
	}
	aligned := analysis.MacroAligned(macro...)

	out := make([]Signal, 0, len(exec))
	for _, tf := range exec {
		sig, err := e.evaluateExecution(symbol, tf, series[tf], trend, aligned)
		if err != nil {
			return nil, &SymbolError{Symbol: symbol, Timeframe: tf, Kind: Classify(err), Err: err}
		}
		out = append(out, sig)
	}
	return out, nil
}

func (e *Engine) series(candles []market.Candle) (*indicators.Series, error) {
	if need := e.cfg.MinCandles(); len(candles) < need {
		return nil, fmt.Errorf("%w: need %d candles, have %d", indicators.ErrInsufficientData, need, len(candles))
	}
	if err := market.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("%w: %v", market.ErrProviderUnavailable, err)
	}
	return indicators.Compute(candles, e.cfg.IndicatorParams())
}

func (e *Engine) evaluateExecution(symbol string, tf market.Timeframe, s *indicators.Series, trend analysis.Bias, aligned bool) (Signal, error) {
	expanding, err := e.expansion.IsExpanding(s)
	if err != nil {
		return Signal{}, err
	}
	conf, err := e.confirmation.Detect(s.Candles)
	if err != nil {
		return Signal{}, err
	}

	cur, _ := s.Latest()
	v := Score(Setup{
		Expanding:    expanding,
		Confirmed:    conf.Confirmed(),
		Close:        cur.Candle.Close,
		FastSMA:      cur.Fast,
		RSI:          cur.RSI,
		Bias:         trend,
		MacroAligned: aligned,
	}, e.cfg)

	return Signal{
		Symbol:    symbol,
		Timeframe: tf,
		Action:    v.Action,
		Tier:      v.Tier,
		Reason:    v.Reason,
		Timestamp: cur.Candle.Timestamp,
		Price:     cur.Candle.Close,
		Volume:    cur.Candle.Volume,
	}, nil
}
