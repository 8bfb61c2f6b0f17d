package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"expansion-monitor/internal/database"
	"expansion-monitor/internal/events"
	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/signals"
)

// Scanner evaluates the watchlist with a bounded worker pool and keeps the last ranked result
type Scanner struct {
	evaluator *signals.Evaluator
	config    ScannerConfig

	bus      *events.EventBus
	recorder Recorder
	alerter  Alerter
	observer Observer

	scanMu     sync.Mutex // one scan at a time
	mu         sync.RWMutex
	lastResult *ScanResult

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	log      *logging.Logger
}

// NewScanner creates a new scanner instance
func NewScanner(evaluator *signals.Evaluator, config ScannerConfig) *Scanner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = time.Minute
	}
	symbols := make([]string, 0, len(config.Symbols))
	for _, s := range config.Symbols {
		if n := market.NormalizeSymbol(s); n != "" {
			symbols = append(symbols, n)
		}
	}
	config.Symbols = symbols

	return &Scanner{
		evaluator: evaluator,
		config:    config,
		stopChan:  make(chan struct{}),
		log:       logging.WithComponent("scanner"),
	}
}

// WithEvents publishes scan and signal events to bus
func (sc *Scanner) WithEvents(bus *events.EventBus) *Scanner {
	sc.bus = bus
	return sc
}

// WithRecorder journals every scan
func (sc *Scanner) WithRecorder(r Recorder) *Scanner {
	sc.recorder = r
	return sc
}

// WithAlerter sends alerts for qualifying signals after each scan
func (sc *Scanner) WithAlerter(a Alerter) *Scanner {
	sc.alerter = a
	return sc
}

// WithObserver records metrics after each scan
func (sc *Scanner) WithObserver(o Observer) *Scanner {
	sc.observer = o
	return sc
}

// Symbols returns the normalized watchlist
func (sc *Scanner) Symbols() []string {
	return append([]string(nil), sc.config.Symbols...)
}

// Evaluator returns the evaluator used for every symbol
func (sc *Scanner) Evaluator() *signals.Evaluator {
	return sc.evaluator
}

// Start begins the background scan loop
func (sc *Scanner) Start() {
	if !sc.config.Enabled {
		sc.log.Info("Scanner is disabled")
		return
	}

	sc.wg.Add(1)
	go sc.runScanLoop()
	if sc.bus != nil {
		sc.bus.PublishMonitorStatus(true)
	}
	sc.log.Info("Scanner started", "interval", sc.config.ScanInterval.String(), "symbols", len(sc.config.Symbols))
}

// runScanLoop executes scans at configured intervals
func (sc *Scanner) runScanLoop() {
	defer sc.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sc.stopChan
		cancel()
	}()

	ticker := time.NewTicker(sc.config.ScanInterval)
	defer ticker.Stop()

	sc.scanLogged(ctx)

	for {
		select {
		case <-ticker.C:
			sc.scanLogged(ctx)
		case <-sc.stopChan:
			sc.log.Info("Scanner stopped")
			return
		}
	}
}

func (sc *Scanner) scanLogged(ctx context.Context) {
	if _, err := sc.Scan(ctx); err != nil && ctx.Err() == nil {
		sc.log.WithError(err).Error("Scan failed")
		if sc.bus != nil {
			sc.bus.PublishError("scanner", err)
		}
	}
}

// Scan runs one evaluation cycle over the watchlist. One symbol's failure becomes
// its SKIP signal; only configuration errors abort the scan.
func (sc *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	sc.scanMu.Lock()
	defer sc.scanMu.Unlock()

	startTime := time.Now()
	scanID := uuid.New().String()
	symbols := sc.config.Symbols
	l := logging.ScanContext(scanID, len(symbols))
	l.Info("Starting scan")
	if sc.bus != nil {
		sc.bus.PublishScanStarted(scanID, len(symbols))
	}

	perSymbol, err := sc.evaluateAll(ctx, symbols)
	if err != nil {
		return nil, err
	}

	ranked := signals.Flatten(perSymbol)
	failures := 0
	for _, s := range ranked {
		if s.Action == signals.ActionSkip {
			failures++
		}
	}

	endTime := time.Now()
	result := &ScanResult{
		ScanID:         scanID,
		StartTime:      startTime,
		EndTime:        endTime,
		Duration:       endTime.Sub(startTime),
		SymbolsScanned: len(symbols),
		Signals:        ranked,
		Failures:       failures,
	}

	sc.mu.Lock()
	sc.lastResult = result
	sc.mu.Unlock()

	sc.publish(ctx, result, l)

	l.WithDuration(result.Duration).Info("Scan completed",
		"signals", len(ranked),
		"actionable", len(result.Actionable()),
		"failures", failures)

	return result, nil
}

// evaluateAll fans symbols out to the worker pool and keeps results in watchlist order
func (sc *Scanner) evaluateAll(ctx context.Context, symbols []string) ([][]signals.Signal, error) {
	perSymbol := make([][]signals.Signal, len(symbols))
	cfg := sc.evaluator.Engine().Config()

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	for i := 0; i < sc.config.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				sigs, err := sc.evaluateSymbol(ctx, symbols[idx], cfg)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					continue
				}
				perSymbol[idx] = sigs
			}
		}()
	}

	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return perSymbol, firstErr
}

func (sc *Scanner) evaluateSymbol(ctx context.Context, symbol string, cfg signals.Config) ([]signals.Signal, error) {
	sctx := ctx
	if sc.config.SymbolTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, sc.config.SymbolTimeout)
		defer cancel()
	}
	return sc.evaluator.Evaluate(sctx, symbol, cfg.ExecutionTimeframes, cfg.BiasTimeframes)
}

// publish fans the finished scan out to events, metrics, the journal and alerts
func (sc *Scanner) publish(ctx context.Context, result *ScanResult, l *logging.Logger) {
	if sc.observer != nil {
		sc.observer.ObserveScan(result.SymbolsScanned, result.Duration, result.EndTime, result.Signals)
	}

	if sc.bus != nil {
		for _, s := range result.Signals {
			if s.Action == signals.ActionSkip {
				sc.bus.PublishSymbolSkipped(result.ScanID, s)
				continue
			}
			sc.bus.PublishSignal(result.ScanID, s)
		}
		sc.bus.PublishScanCompleted(result.ScanID, result.SymbolsScanned, len(result.Signals), result.Failures, result.Duration)
	}

	if sc.recorder != nil {
		record := database.ScanRecord{
			ID:             result.ScanID,
			StartedAt:      result.StartTime,
			FinishedAt:     result.EndTime,
			SymbolsScanned: result.SymbolsScanned,
			SignalCount:    len(result.Signals),
			FailureCount:   result.Failures,
		}
		if err := sc.recorder.SaveScan(ctx, record, result.Signals); err != nil {
			l.WithError(err).Warn("Failed to journal scan")
		}
	}

	if sc.alerter != nil {
		if sent, err := sc.alerter.NotifySignals(ctx, result.Signals); err != nil {
			l.WithError(err).Warn("Alert delivery failed", "sent", sent)
		} else if sent > 0 {
			l.Info("Alerts sent", "count", sent)
		}
	}
}

// LastResult returns the most recent scan result, or nil before the first scan
func (sc *Scanner) LastResult() *ScanResult {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastResult
}

// Stop gracefully shuts down the scanner
func (sc *Scanner) Stop() {
	sc.stopOnce.Do(func() {
		close(sc.stopChan)
		sc.wg.Wait()
		if sc.bus != nil && sc.config.Enabled {
			sc.bus.PublishMonitorStatus(false)
		}
	})
}
