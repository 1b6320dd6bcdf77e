// Package postgres implements the record store ports on PostgreSQL through
// a pgx connection pool. It serves deployments where several hosts share
// one record store; the schema is embedded and applied with EnsureSchema.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
)

//go:embed schema.sql
var schemaSQL string

// connectTimeout bounds the initial connect and ping.
const connectTimeout = 10 * time.Second

// Store is the PostgreSQL record store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a connection pool and fails fast if the database is unreachable.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.Join(domain.ErrInvalidInput, errors.New("postgres dsn is empty"))
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping validates connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EventStore returns an EventStore backed by this store.
func (s *Store) EventStore() driven.EventStore {
	return &eventStore{pool: s.pool}
}

// FingerprintStore returns a FingerprintStore backed by this store.
func (s *Store) FingerprintStore() driven.FingerprintStore {
	return &fingerprintStore{pool: s.pool}
}

// TransitStore returns a TransitStore backed by this store.
func (s *Store) TransitStore() driven.TransitStore {
	return &transitStore{pool: s.pool}
}

// SchedulerStore returns a SchedulerStore backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{pool: s.pool}
}

// deleteCount runs a DELETE and returns the number of rows removed.
func deleteCount(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (int, error) {
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// notFound maps pgx.ErrNoRows to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromNullable(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
