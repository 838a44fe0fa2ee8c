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

// PostgresRoomRepository implements world.RoomRepository using PostgreSQL.
// Path slots are stored as a JSONB document mapping direction to target
// room ID, with null marking a reserved-but-open exit.
type PostgresRoomRepository struct {
	pool poolIface
}

var _ world.RoomRepository = (*PostgresRoomRepository)(nil)

// NewPostgresRoomRepository creates a new PostgreSQL room repository.
func NewPostgresRoomRepository(pool poolIface) *PostgresRoomRepository {
	return &PostgresRoomRepository{pool: pool}
}

// Get retrieves a room by ID.
func (r *PostgresRoomRepository) Get(ctx context.Context, id ulid.ULID) (*world.Room, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, x, y, description, paths, created_at
		FROM rooms WHERE id = $1
	`, id.String())
	room, err := scanRoomRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("room_not_found").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get room").With("id", id.String()).Wrap(err)
	}
	return room, nil
}

// ListByWorld returns all rooms of a world in creation order.
func (r *PostgresRoomRepository) ListByWorld(ctx context.Context, worldID ulid.ULID) ([]*world.Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, x, y, description, paths, created_at
		FROM rooms WHERE world_id = $1 ORDER BY id
	`, worldID.String())
	if err != nil {
		return nil, oops.With("operation", "list rooms").With("world_id", worldID.String()).Wrap(err)
	}
	defer rows.Close()

	var rooms []*world.Room
	for rows.Next() {
		room, err := scanRoomRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan room row").Wrap(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate rooms").Wrap(err)
	}
	return rooms, nil
}

// Create persists a new room.
// Callers must validate the room before calling this method.
func (r *PostgresRoomRepository) Create(ctx context.Context, worldID ulid.ULID, room *world.Room) error {
	paths, err := encodePaths(room.Paths)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO rooms (id, world_id, name, x, y, description, paths, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, room.ID.String(), worldID.String(), room.Name, room.Coord.X, room.Coord.Y,
		room.Description, paths, room.CreatedAt)
	if isUniqueViolation(err) {
		return oops.Code("duplicate_coordinate").
			With("world_id", worldID.String()).
			With("x", room.Coord.X).
			With("y", room.Coord.Y).
			Wrap(world.ErrDuplicateCoordinate)
	}
	if err != nil {
		return oops.With("operation", "create room").With("id", room.ID.String()).Wrap(err)
	}
	return nil
}

// Update persists changed paths and description for an existing room.
func (r *PostgresRoomRepository) Update(ctx context.Context, worldID ulid.ULID, room *world.Room) error {
	paths, err := encodePaths(room.Paths)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, `
		UPDATE rooms SET description = $3, paths = $4
		WHERE id = $1 AND world_id = $2
	`, room.ID.String(), worldID.String(), room.Description, paths)
	if err != nil {
		return oops.With("operation", "update room").With("id", room.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("room_not_found").With("id", room.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// scanRoomRow scans a single room from a row.
func scanRoomRow(row pgx.Row) (*world.Room, error) {
	var room world.Room
	var idStr string
	var pathsData []byte

	err := row.Scan(&idStr, &room.Name, &room.Coord.X, &room.Coord.Y,
		&room.Description, &pathsData, &room.CreatedAt)
	if err != nil {
		return nil, err
	}
	room.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse room id").With("id", idStr).Wrap(err)
	}
	room.Paths, err = decodePaths(pathsData)
	if err != nil {
		return nil, err
	}
	room.Occupants = make(map[ulid.ULID]struct{})
	return &room, nil
}
