package client

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"radius-admin/internal/config"
	"radius-admin/internal/util"
)

// PostgresClient wraps the pooled connection to the FreeRADIUS database.
type PostgresClient struct {
	Pool   *pgxpool.Pool
	config *config.PostgresConfig
}

// NewPostgresClient connects to the RADIUS database and verifies the
// connection before returning.
func NewPostgresClient(cfg *config.Config, logger *zap.Logger) (*PostgresClient, error) {
	pgConfig := cfg.Postgres

	poolConfig, err := pgxpool.ParseConfig(pgConfig.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Postgres URL: %w", err)
	}
	poolConfig.MaxConns = int32(pgConfig.MaxConns)
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	util.Info("Postgres client initialized",
		zap.Int("max_conns", pgConfig.MaxConns))

	return &PostgresClient{
		Pool:   pool,
		config: &pgConfig,
	}, nil
}

// BeginTx opens a read-write transaction. Callers own commit/rollback.
func (p *PostgresClient) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return p.Pool.BeginTx(ctx, pgx.TxOptions{})
}

// HealthCheck verifies Postgres connectivity
func (p *PostgresClient) HealthCheck(ctx context.Context) error {
	if err := p.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (p *PostgresClient) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		util.Info("Postgres pool closed")
	}
}
