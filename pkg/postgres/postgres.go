// Package postgres owns the pgx pool shared by the tracking
// repositories and the transaction manager.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgreDB struct {
	Pool     *pgxpool.Pool
	DBConfig *pgxpool.Config
}

// Config supplies the DSN and pool sizing for the tracking database.
type Config interface {
	GetDSN() string
	PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdleTime time.Duration)
}

// New builds and pings the pool. The ingest path holds a connection per
// in-flight sample, so the limits come from configuration rather than
// pgx defaults.
func New(ctx context.Context, config Config) (*PostgreDB, error) {
	dbConfig, err := pgxpool.ParseConfig(config.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	dbConfig.MaxConns, dbConfig.MinConns, dbConfig.MaxConnLifetime, dbConfig.MaxConnIdleTime = config.PoolLimits()

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Fail fast when the database is unreachable.
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgreDB{
		Pool:     pool,
		DBConfig: dbConfig,
	}, nil
}
