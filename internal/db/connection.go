// Package db provides database connection management for pgedge-salesdw.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-salesdw/internal/logging"
)

// DefaultPoolConfig returns default connection pool configuration. The
// pipeline issues one statement at a time, so a small pool is enough.
func DefaultPoolConfig() *pgxpool.Config {
	config, _ := pgxpool.ParseConfig("")

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	return config
}

// Connect establishes a connection pool to a PostgreSQL database. The role
// ("source" or "warehouse") only labels log lines.
func Connect(ctx context.Context, role, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s connection string: %w", role, err)
	}

	defaults := DefaultPoolConfig()
	config.MaxConns = defaults.MaxConns
	config.MinConns = defaults.MinConns
	config.MaxConnLifetime = defaults.MaxConnLifetime
	config.MaxConnIdleTime = defaults.MaxConnIdleTime
	config.HealthCheckPeriod = defaults.HealthCheckPeriod

	logging.Debug().
		Str("role", role).
		Str("host", config.ConnConfig.Host).
		Uint16("port", config.ConnConfig.Port).
		Str("database", config.ConnConfig.Database).
		Msg("Connecting to database")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connection pool: %w", role, err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", role, err)
	}

	logging.Info().
		Str("role", role).
		Str("host", config.ConnConfig.Host).
		Str("database", config.ConnConfig.Database).
		Msg("Connected to database")

	return pool, nil
}

// Pair holds the two connections the pipeline needs.
type Pair struct {
	Source    *pgxpool.Pool
	Warehouse *pgxpool.Pool
}

// ConnectPair opens the source and warehouse pools. If the second
// connection fails the first is closed before returning.
func ConnectPair(ctx context.Context, sourceConn, warehouseConn string) (*Pair, error) {
	src, err := Connect(ctx, "source", sourceConn)
	if err != nil {
		return nil, err
	}
	dw, err := Connect(ctx, "warehouse", warehouseConn)
	if err != nil {
		src.Close()
		return nil, err
	}
	return &Pair{Source: src, Warehouse: dw}, nil
}

// Close closes both pools.
func (p *Pair) Close() {
	p.Source.Close()
	p.Warehouse.Close()
}
