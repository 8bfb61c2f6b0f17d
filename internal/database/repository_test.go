package database

import (
	"context"
	"os"
	"testing"
	"time"

	"expansion-monitor/config"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/signals"

	"github.com/google/uuid"
)

func rankedSample() []signals.Signal {
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return []signals.Signal{
		{Symbol: "SOLUSDT", Timeframe: market.TF3m, Action: signals.ActionLong, Tier: signals.TierAPlus, Reason: signals.ReasonAPlus, Timestamp: ts, Price: 150.2, Volume: 900},
		{Symbol: "XRPUSDT", Timeframe: market.TF1h, Action: signals.ActionSkip, Tier: signals.TierWait, Reason: "provider_unavailable (1h): timeout", Failure: signals.FailureProviderUnavailable},
	}
}

func TestBuildScanBatch(t *testing.T) {
	scan := ScanRecord{
		ID:             uuid.New().String(),
		StartedAt:      time.Now().Add(-time.Second),
		FinishedAt:     time.Now(),
		SymbolsScanned: 2,
		SignalCount:    2,
		FailureCount:   1,
	}

	batch := buildScanBatch(scan, rankedSample())

	if batch.Len() != 3 {
		t.Fatalf("Expected scan row plus 2 signal rows, got %d", batch.Len())
	}
	if batch.QueuedQueries[0].SQL != insertScanSQL {
		t.Error("First statement should insert the scan")
	}
	if got := batch.QueuedQueries[0].Arguments[0]; got != scan.ID {
		t.Errorf("Expected scan id %s, got %v", scan.ID, got)
	}

	second := batch.QueuedQueries[2].Arguments
	if second[1] != 2 {
		t.Errorf("Expected rank 2 for second signal, got %v", second[1])
	}
	if ct, ok := second[7].(*time.Time); !ok || ct != nil {
		t.Errorf("SKIP signal should have a nil candle time, got %v", second[7])
	}
	if second[10] != string(signals.FailureProviderUnavailable) {
		t.Errorf("Expected failure kind argument, got %v", second[10])
	}
}

func TestSignalRecordConversion(t *testing.T) {
	in := rankedSample()[0]
	rec := NewSignalRecord("scan-1", 1, in)

	if rec.CandleTime == nil || !rec.CandleTime.Equal(in.Timestamp) {
		t.Fatalf("Candle time not carried: %v", rec.CandleTime)
	}

	out := rec.Signal()
	if out.Symbol != in.Symbol || out.Timeframe != in.Timeframe || out.Tier != in.Tier || out.Action != in.Action {
		t.Errorf("Round trip changed the signal: %+v vs %+v", out, in)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", in.Timestamp, out.Timestamp)
	}
}

// TestRepositoryIntegration needs a real database.
// Run with: DATABASE_URL=postgres://... go test ./internal/database -run Integration
func TestRepositoryIntegration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{URL: url, MaxConns: 2})
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	repo := NewRepository(db)
	scan := ScanRecord{ID: uuid.New().String(), StartedAt: time.Now(), FinishedAt: time.Now(), SymbolsScanned: 2, SignalCount: 2, FailureCount: 1}
	if err := repo.SaveScan(ctx, scan, rankedSample()); err != nil {
		t.Fatalf("SaveScan failed: %v", err)
	}

	recs, err := repo.RecentSignals(ctx, "SOLUSDT", 10)
	if err != nil {
		t.Fatalf("RecentSignals failed: %v", err)
	}
	if len(recs) == 0 || recs[0].ScanID != scan.ID {
		t.Errorf("Expected the saved signal first, got %+v", recs)
	}
}
