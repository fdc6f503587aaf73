package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"travel-match/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Los lookups de rasgos son cortos; el pool se dimensiona para lotes concurrentes.
	poolCfg.MaxConns = int32(maxConns(cfg))
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// maxConns deja una conexion por worker de matching, con un minimo de 10.
func maxConns(cfg *config.Config) int {
	if cfg.MatchWorkers > 10 {
		return cfg.MatchWorkers
	}
	return 10
}
