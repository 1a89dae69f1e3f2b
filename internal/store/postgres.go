package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ventes/internal/core"
)

const (
	pgCreateTable = `CREATE TABLE IF NOT EXISTS blobs (
	name       TEXT PRIMARY KEY,
	data       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	pgSelect = `SELECT data FROM blobs WHERE name = $1`
	pgUpsert = `INSERT INTO blobs (name, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	pgDelete = `DELETE FROM blobs WHERE name = $1`
)

// PostgresBlobStore keeps blobs in PostgreSQL through a pgx pool.
// The pool is owned by the caller; Close does not close it.
type PostgresBlobStore struct {
	pool *pgxpool.Pool
}

// NewPostgresBlobStore creates the blobs table if needed.
func NewPostgresBlobStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresBlobStore, error) {
	if _, err := pool.Exec(ctx, pgCreateTable); err != nil {
		return nil, fmt.Errorf("create blobs table: %w", err)
	}
	return &PostgresBlobStore{pool: pool}, nil
}

func (p *PostgresBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, pgSelect, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load blob %s: %w", key, err)
	}
	return data, nil
}

func (p *PostgresBlobStore) Save(ctx context.Context, key string, data []byte) error {
	if _, err := p.pool.Exec(ctx, pgUpsert, key, data); err != nil {
		if isPgCapacityError(err) {
			return fmt.Errorf("save blob %s: %w", key, core.ErrCapacityExceeded)
		}
		return fmt.Errorf("save blob %s: %w", key, err)
	}
	return nil
}

func (p *PostgresBlobStore) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, pgDelete, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (p *PostgresBlobStore) Close() error { return nil }

// isPgCapacityError matches SQLSTATE class 54 (program limit exceeded)
// and 53100 (disk full).
func isPgCapacityError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "54") || pgErr.Code == "53100"
}
