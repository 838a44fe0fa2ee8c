// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package store

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/world"
)

// PostgresEventRepository implements world.EventRepository using
// PostgreSQL. The events table is append-only; ULID primary keys keep
// it in timestamp order.
type PostgresEventRepository struct {
	pool poolIface
}

var _ world.EventRepository = (*PostgresEventRepository)(nil)

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(pool poolIface) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Append persists an event with its witness list.
func (r *PostgresEventRepository) Append(ctx context.Context, worldID ulid.ULID, e world.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (id, world_id, room_id, actor_id, actor_name, type, content, witness_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID.String(), worldID.String(), e.RoomID.String(), e.ActorID.String(),
		e.ActorName, string(e.Type), e.Content, ulidsToStrings(e.WitnessIDs), e.Timestamp)
	if err != nil {
		return oops.With("operation", "append event").With("id", e.ID.String()).Wrap(err)
	}
	return nil
}

// ListByRoom returns the most recent events in a room, oldest first,
// capped at limit.
func (r *PostgresEventRepository) ListByRoom(ctx context.Context, worldID, roomID ulid.ULID, limit int) ([]world.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, room_id, actor_id, actor_name, type, content, witness_ids, created_at
		FROM (
			SELECT id, room_id, actor_id, actor_name, type, content, witness_ids, created_at
			FROM events WHERE world_id = $1 AND room_id = $2
			ORDER BY id DESC LIMIT $3
		) recent ORDER BY id
	`, worldID.String(), roomID.String(), limit)
	if err != nil {
		return nil, oops.With("operation", "list events").With("room_id", roomID.String()).Wrap(err)
	}
	defer rows.Close()

	var events []world.Event
	for rows.Next() {
		var e world.Event
		var idStr, roomIDStr, actorIDStr, typeStr string
		var witnessStrs []string
		if err := rows.Scan(&idStr, &roomIDStr, &actorIDStr, &e.ActorName,
			&typeStr, &e.Content, &witnessStrs, &e.Timestamp); err != nil {
			return nil, oops.With("operation", "scan event row").Wrap(err)
		}
		if e.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse event id").With("id", idStr).Wrap(err)
		}
		if e.RoomID, err = ulid.Parse(roomIDStr); err != nil {
			return nil, oops.With("operation", "parse event room id").With("room_id", roomIDStr).Wrap(err)
		}
		if e.ActorID, err = ulid.Parse(actorIDStr); err != nil {
			return nil, oops.With("operation", "parse event actor id").With("actor_id", actorIDStr).Wrap(err)
		}
		if e.WitnessIDs, err = parseULIDs(witnessStrs, "witness_id"); err != nil {
			return nil, err
		}
		e.Type = world.ActionType(typeStr)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate events").Wrap(err)
	}
	return events, nil
}
