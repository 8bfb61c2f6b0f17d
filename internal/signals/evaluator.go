package signals

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"expansion-monitor/internal/market"

	"golang.org/x/sync/errgroup"
)

// Evaluator fetches a snapshot from an injected provider and runs the engine on it
type Evaluator struct {
	provider    market.Provider
	engine      *Engine
	candleLimit int
}

// NewEvaluator creates an evaluator. candleLimit is the number of candles requested
// per timeframe and is raised to the engine minimum when lower.
func NewEvaluator(provider market.Provider, engine *Engine, candleLimit int) *Evaluator {
	if need := engine.Config().MinCandles(); candleLimit < need {
		candleLimit = need
	}
	return &Evaluator{
		provider:    provider,
		engine:      engine,
		candleLimit: candleLimit,
	}
}

// Engine returns the wrapped engine
func (ev *Evaluator) Engine() *Engine {
	return ev.engine
}

// CandleLimit returns the number of candles requested per timeframe
func (ev *Evaluator) CandleLimit() int {
	return ev.candleLimit
}

// Evaluate returns one signal per execution timeframe, or a single SKIP signal
// when any required timeframe cannot be fetched. Only configuration errors are returned.
func (ev *Evaluator) Evaluate(ctx context.Context, symbol string, exec, bias []market.Timeframe) ([]Signal, error) {
	if err := validateTimeframes(exec, bias); err != nil {
		return nil, err
	}

	snap, serr := ev.fetch(ctx, symbol, RequiredTimeframes(exec, bias))
	if serr != nil {
		return []Signal{SkipSignal(symbol, serr)}, nil
	}
	return ev.engine.EvaluateSnapshot(symbol, snap, exec, bias)
}

// EvaluateAll evaluates each symbol against the configured timeframes in order and ranks the result
func (ev *Evaluator) EvaluateAll(ctx context.Context, symbols []string) ([]Signal, error) {
	cfg := ev.engine.Config()
	perSymbol := make([][]Signal, 0, len(symbols))
	for _, symbol := range symbols {
		sigs, err := ev.Evaluate(ctx, symbol, cfg.ExecutionTimeframes, cfg.BiasTimeframes)
		if err != nil {
			return nil, err
		}
		perSymbol = append(perSymbol, sigs)
	}
	return Flatten(perSymbol), nil
}

// fetch pulls every timeframe in parallel; the first failure cancels the rest
func (ev *Evaluator) fetch(ctx context.Context, symbol string, tfs []market.Timeframe) (Snapshot, *SymbolError) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	snap := make(Snapshot, len(tfs))

	for _, tf := range tfs {
		tf := tf
		g.Go(func() error {
			candles, err := ev.provider.FetchCandles(gctx, symbol, tf, ev.candleLimit)
			if err != nil {
				if !errors.Is(err, market.ErrProviderUnavailable) && Classify(err) == FailureProviderUnavailable {
					err = fmt.Errorf("%w: %v", market.ErrProviderUnavailable, err)
				}
				return &SymbolError{Symbol: symbol, Timeframe: tf, Kind: Classify(err), Err: err}
			}
			mu.Lock()
			snap[tf] = candles
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var serr *SymbolError
		if errors.As(err, &serr) {
			return nil, serr
		}
		return nil, &SymbolError{Symbol: symbol, Kind: FailureProviderUnavailable, Err: err}
	}
	return snap, nil
}
