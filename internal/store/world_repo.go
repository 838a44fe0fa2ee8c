// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/world"
)

// PostgresWorldRepository implements world.WorldRepository using PostgreSQL.
type PostgresWorldRepository struct {
	pool poolIface
}

var _ world.WorldRepository = (*PostgresWorldRepository)(nil)

// NewPostgresWorldRepository creates a new PostgreSQL world repository.
func NewPostgresWorldRepository(pool poolIface) *PostgresWorldRepository {
	return &PostgresWorldRepository{pool: pool}
}

// Get retrieves a world by ID.
func (r *PostgresWorldRepository) Get(ctx context.Context, id ulid.ULID) (*world.World, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, seed, created_at, last_played_at
		FROM worlds WHERE id = $1
	`, id.String())
	w, err := scanWorldRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("world_not_found").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get world").With("id", id.String()).Wrap(err)
	}
	return w, nil
}

// GetByName retrieves a world by name.
func (r *PostgresWorldRepository) GetByName(ctx context.Context, name string) (*world.World, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, seed, created_at, last_played_at
		FROM worlds WHERE name = $1
	`, name)
	w, err := scanWorldRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("world_not_found").With("name", name).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get world by name").With("name", name).Wrap(err)
	}
	return w, nil
}

// List returns all worlds, most recently played first.
func (r *PostgresWorldRepository) List(ctx context.Context) ([]*world.World, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, seed, created_at, last_played_at
		FROM worlds ORDER BY last_played_at DESC
	`)
	if err != nil {
		return nil, oops.With("operation", "list worlds").Wrap(err)
	}
	defer rows.Close()

	var worlds []*world.World
	for rows.Next() {
		w, err := scanWorldRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan world row").Wrap(err)
		}
		worlds = append(worlds, w)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate worlds").Wrap(err)
	}
	return worlds, nil
}

// Create persists a new world.
// Callers must validate the world before calling this method.
func (r *PostgresWorldRepository) Create(ctx context.Context, w *world.World) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO worlds (id, name, seed, created_at, last_played_at)
		VALUES ($1, $2, $3, $4, $5)
	`, w.ID.String(), w.Name, w.Seed, w.CreatedAt, w.LastPlayedAt)
	if isUniqueViolation(err) {
		return oops.Code("world_name_taken").With("name", w.Name).Wrap(world.ErrDuplicateWorld)
	}
	if err != nil {
		return oops.With("operation", "create world").With("id", w.ID.String()).Wrap(err)
	}
	return nil
}

// Touch updates the world's last-played timestamp.
func (r *PostgresWorldRepository) Touch(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE worlds SET last_played_at = now() WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.With("operation", "touch world").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("world_not_found").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// scanWorldRow scans a single world from a row.
func scanWorldRow(row pgx.Row) (*world.World, error) {
	var w world.World
	var idStr string

	err := row.Scan(&idStr, &w.Name, &w.Seed, &w.CreatedAt, &w.LastPlayedAt)
	if err != nil {
		return nil, err
	}
	w.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse world id").With("id", idStr).Wrap(err)
	}
	return &w, nil
}
