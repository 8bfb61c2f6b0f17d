package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"expansion-monitor/internal/logging"
	"expansion-monitor/internal/signals"
)

const (
	insertScanSQL = `
		INSERT INTO scans (id, started_at, finished_at, symbols_scanned, signal_count, failure_count)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertSignalSQL = `
		INSERT INTO signals (scan_id, rank, symbol, timeframe, action, tier, reason, candle_time, price, volume, failure)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))`

	recentSignalsSQL = `
		SELECT id, scan_id, rank, symbol, timeframe, action, tier, reason, candle_time, price, volume,
		       COALESCE(failure, ''), created_at
		FROM signals
		WHERE symbol = $1
		ORDER BY created_at DESC, rank ASC
		LIMIT $2`
)

// querier is the part of pgxpool.Pool the repository uses
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Repository journals scans and their ranked signals
type Repository struct {
	db querier
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db.Pool}
}

// HealthCheck performs a database health check
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SaveScan writes the scan row and every signal in one transaction
func (r *Repository) SaveScan(ctx context.Context, scan ScanRecord, ranked []signals.Signal) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin scan transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := buildScanBatch(scan, ranked)
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("journal scan %s statement %d: %w", scan.ID, i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close scan batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit scan %s: %w", scan.ID, err)
	}

	logging.DatabaseContext("insert", "signals").Debug("Scan journaled", "scan_id", scan.ID, "signals", len(ranked))
	return nil
}

// RecentSignals returns the latest journaled signals for symbol, newest first
func (r *Repository) RecentSignals(ctx context.Context, symbol string, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, recentSignalsSQL, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		if err := rows.Scan(
			&rec.ID, &rec.ScanID, &rec.Rank, &rec.Symbol, &rec.Timeframe, &rec.Action, &rec.Tier,
			&rec.Reason, &rec.CandleTime, &rec.Price, &rec.Volume, &rec.Failure, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func buildScanBatch(scan ScanRecord, ranked []signals.Signal) *pgx.Batch {
	batch := &pgx.Batch{}
	batch.Queue(insertScanSQL,
		scan.ID, scan.StartedAt, scan.FinishedAt, scan.SymbolsScanned, scan.SignalCount, scan.FailureCount)

	for i, s := range ranked {
		rec := NewSignalRecord(scan.ID, i+1, s)
		batch.Queue(insertSignalSQL,
			rec.ScanID, rec.Rank, rec.Symbol, rec.Timeframe, rec.Action, rec.Tier, rec.Reason,
			rec.CandleTime, rec.Price, rec.Volume, rec.Failure)
	}
	return batch
}
