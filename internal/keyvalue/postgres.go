package keyvalue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const stateSchema = `
CREATE TABLE IF NOT EXISTS oracle_state (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertState = `
INSERT INTO oracle_state (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

// Postgres is a Store backed by PostgreSQL. All oracle state lives in a
// single oracle_state table keyed by the namespaced record key.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres creates a PostgreSQL-backed store over an open connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects to PostgreSQL and bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := NewPostgres(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates the state table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, stateSchema); err != nil {
		return fmt.Errorf("ensure oracle_state schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Get retrieves the value stored under key.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM oracle_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertState, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// Apply commits all staged writes in one transaction.
func (p *Postgres) Apply(ctx context.Context, batch *Batch) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres begin: %w", err)
	}
	for _, op := range batch.Ops() {
		if _, err := tx.ExecContext(ctx, upsertState, op.Key, op.Value); err != nil {
			tx.Rollback()
			return fmt.Errorf("postgres apply %s: %w", op.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}
	return nil
}
