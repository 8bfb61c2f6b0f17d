package scanner

import (
	"context"
	"time"

	"expansion-monitor/internal/database"
	"expansion-monitor/internal/signals"
)

// ScanResult aggregates the ranked signals of one watchlist scan
type ScanResult struct {
	ScanID         string           `json:"scan_id"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	Duration       time.Duration    `json:"duration"`
	SymbolsScanned int              `json:"symbols_scanned"`
	Signals        []signals.Signal `json:"signals"`
	Failures       int              `json:"failures"` // symbols that produced a SKIP
}

// Actionable returns the LONG and SHORT signals in rank order
func (r *ScanResult) Actionable() []signals.Signal {
	var out []signals.Signal
	for _, s := range r.Signals {
		if s.Actionable() {
			out = append(out, s)
		}
	}
	return out
}

// ScannerConfig holds scanner configuration
type ScannerConfig struct {
	Enabled       bool
	ScanInterval  time.Duration
	WorkerCount   int
	SymbolTimeout time.Duration
	Symbols       []string
}

// Recorder journals finished scans
type Recorder interface {
	SaveScan(ctx context.Context, scan database.ScanRecord, ranked []signals.Signal) error
}

// Alerter delivers alerts for qualifying signals
type Alerter interface {
	NotifySignals(ctx context.Context, ranked []signals.Signal) (int, error)
}

// Observer records scan metrics
type Observer interface {
	ObserveScan(symbols int, duration time.Duration, finished time.Time, ranked []signals.Signal)
}
