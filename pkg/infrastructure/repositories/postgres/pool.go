// Package postgres implements the repositories against a Postgres
// database through pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing tolerates a pooled upstream (PgBouncer or a managed
// provider's pooler): few connections, short idle timeout so upstream
// reaping never hands us a dead socket, frequent health checks.
const (
	maxConns          = 5
	healthCheckPeriod = 10 * time.Second
	maxConnIdleTime   = 15 * time.Second
	connectTimeout    = 5 * time.Second
)

// NewPool creates a configured connection pool and verifies it with a
// ping before returning.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.HealthCheckPeriod = healthCheckPeriod
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
