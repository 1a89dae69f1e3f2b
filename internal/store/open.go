package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ventes/internal/config"
)

// Open builds the blob store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (BlobStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		slog.Warn("using in-memory store, sales are lost on exit")
		return NewMemoryBlobStore(), nil

	case config.BackendSQLite:
		bs, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("connected to sqlite", "path", cfg.SQLitePath)
		return bs, nil

	case config.BackendPostgres:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		bs, err := NewPostgresBlobStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &ownedPool{PostgresBlobStore: bs, pool: pool}, nil

	case config.BackendRedis:
		bs, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		slog.Info("connected to redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return bs, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func openPool(ctx context.Context, cfg config.StoreConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("connected to database", "database", poolConfig.ConnConfig.Database)
	return pool, nil
}

// ownedPool closes the pool it was opened with.
type ownedPool struct {
	*PostgresBlobStore
	pool *pgxpool.Pool
}

func (o *ownedPool) Close() error {
	o.pool.Close()
	return nil
}
