package database

import (
	"time"

	"expansion-monitor/internal/market"
	"expansion-monitor/internal/signals"
)

// ScanRecord is one row of the scans table
type ScanRecord struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	SymbolsScanned int       `json:"symbols_scanned"`
	SignalCount    int       `json:"signal_count"`
	FailureCount   int       `json:"failure_count"`
}

// SignalRecord is one journaled signal
type SignalRecord struct {
	ID         int64      `json:"id"`
	ScanID     string     `json:"scan_id"`
	Rank       int        `json:"rank"`
	Symbol     string     `json:"symbol"`
	Timeframe  string     `json:"timeframe"`
	Action     string     `json:"action"`
	Tier       string     `json:"tier"`
	Reason     string     `json:"reason"`
	CandleTime *time.Time `json:"candle_time,omitempty"`
	Price      float64    `json:"price"`
	Volume     float64    `json:"volume"`
	Failure    string     `json:"failure,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewSignalRecord converts a ranked signal into its journal row
func NewSignalRecord(scanID string, rank int, s signals.Signal) SignalRecord {
	rec := SignalRecord{
		ScanID:    scanID,
		Rank:      rank,
		Symbol:    s.Symbol,
		Timeframe: string(s.Timeframe),
		Action:    string(s.Action),
		Tier:      string(s.Tier),
		Reason:    s.Reason,
		Price:     s.Price,
		Volume:    s.Volume,
		Failure:   string(s.Failure),
	}
	if !s.Timestamp.IsZero() {
		ts := s.Timestamp
		rec.CandleTime = &ts
	}
	return rec
}

// Signal converts the row back to a signal
func (r SignalRecord) Signal() signals.Signal {
	s := signals.Signal{
		Symbol:    r.Symbol,
		Timeframe: market.Timeframe(r.Timeframe),
		Action:    signals.Action(r.Action),
		Tier:      signals.Tier(r.Tier),
		Reason:    r.Reason,
		Price:     r.Price,
		Volume:    r.Volume,
		Failure:   signals.FailureKind(r.Failure),
	}
	if r.CandleTime != nil {
		s.Timestamp = *r.CandleTime
	}
	return s
}
