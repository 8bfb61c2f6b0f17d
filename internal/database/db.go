package database

import (
	"context"
	"fmt"
	"time"

	"expansion-monitor/config"
	"expansion-monitor/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new database connection from a postgres:// URL or key=value DSN
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logging.DatabaseContext("connect", "").Info("Connected to PostgreSQL", "database", poolConfig.ConnConfig.Database)

	return &DB{Pool: pool}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		logging.DatabaseContext("close", "").Info("Database connection closed")
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS scans (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		symbols_scanned INTEGER NOT NULL,
		signal_count INTEGER NOT NULL,
		failure_count INTEGER NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at)`,

	`CREATE TABLE IF NOT EXISTS signals (
		id BIGSERIAL PRIMARY KEY,
		scan_id UUID NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		symbol VARCHAR(20) NOT NULL,
		timeframe VARCHAR(4) NOT NULL,
		action VARCHAR(8) NOT NULL,
		tier VARCHAR(8) NOT NULL,
		reason TEXT NOT NULL,
		candle_time TIMESTAMPTZ,
		price DOUBLE PRECISION,
		volume DOUBLE PRECISION,
		failure VARCHAR(32),
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_symbol_created ON signals(symbol, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_tier ON signals(tier)`,
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	l := logging.DatabaseContext("migrate", "")
	l.Info("Running database migrations", "count", len(migrations))

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	l.Info("Database migrations completed")
	return nil
}
