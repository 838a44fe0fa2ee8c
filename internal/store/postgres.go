// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package store provides storage implementations: PostgreSQL-backed
// repositories for persistent worlds and in-memory repositories for
// offline play and tests.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection probe policy. A freshly started database container can
// take a few seconds to accept connections.
const (
	pingMaxRetries     = 5
	pingBackoffBase    = 500 * time.Millisecond
	pingBackoffCeiling = 5 * time.Second
)

// poolIface abstracts the pgx pool so repositories can run against
// either a real *pgxpool.Pool or a pgxmock pool in unit tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ poolIface = (*pgxpool.Pool)(nil)

// Store bundles the PostgreSQL repositories sharing one pool.
type Store struct {
	pool poolIface

	Worlds  *PostgresWorldRepository
	Rooms   *PostgresRoomRepository
	Players *PostgresPlayerRepository
	Events  *PostgresEventRepository
}

// Open connects to the database and returns a Store. The connection is
// probed with capped exponential backoff before any repository is
// handed out.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("db_connect_failed").Wrap(err)
	}

	backoff := retry.WithCappedDuration(pingBackoffCeiling, retry.NewExponential(pingBackoffBase))
	backoff = retry.WithMaxRetries(pingMaxRetries, backoff)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("db_unreachable").Wrap(err)
	}

	return NewStore(pool), nil
}

// NewStore builds a Store over an existing pool.
func NewStore(pool poolIface) *Store {
	return &Store{
		pool:    pool,
		Worlds:  NewPostgresWorldRepository(pool),
		Rooms:   NewPostgresRoomRepository(pool),
		Players: NewPostgresPlayerRepository(pool),
		Events:  NewPostgresEventRepository(pool),
	}
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
