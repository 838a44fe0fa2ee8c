// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// PostgresPlayerRepository implements agent.PlayerRepository using
// PostgreSQL. Memory and travel history ride as JSONB documents; they
// are opaque to queries and only read back when a world is resumed.
type PostgresPlayerRepository struct {
	pool poolIface
}

var _ agent.PlayerRepository = (*PostgresPlayerRepository)(nil)

// NewPostgresPlayerRepository creates a new PostgreSQL player repository.
func NewPostgresPlayerRepository(pool poolIface) *PostgresPlayerRepository {
	return &PostgresPlayerRepository{pool: pool}
}

// Get retrieves a player by ID.
func (r *PostgresPlayerRepository) Get(ctx context.Context, id ulid.ULID) (*agent.Player, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, kind, room_id, description, personality, memory, history, created_at
		FROM players WHERE id = $1
	`, id.String())
	p, err := scanPlayerRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("player_not_found").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get player").With("id", id.String()).Wrap(err)
	}
	return p, nil
}

// ListByWorld returns all players of a world in creation order.
func (r *PostgresPlayerRepository) ListByWorld(ctx context.Context, worldID ulid.ULID) ([]*agent.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, kind, room_id, description, personality, memory, history, created_at
		FROM players WHERE world_id = $1 ORDER BY id
	`, worldID.String())
	if err != nil {
		return nil, oops.With("operation", "list players").With("world_id", worldID.String()).Wrap(err)
	}
	defer rows.Close()

	var players []*agent.Player
	for rows.Next() {
		p, err := scanPlayerRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan player row").Wrap(err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate players").Wrap(err)
	}
	return players, nil
}

// Create persists a new player.
// Callers must validate the player before calling this method.
func (r *PostgresPlayerRepository) Create(ctx context.Context, worldID ulid.ULID, p *agent.Player) error {
	memory, err := encodeMemory(p.Memory)
	if err != nil {
		return err
	}
	history, err := encodeHistory(p.History)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO players (id, world_id, name, kind, room_id, description, personality, memory, history, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID.String(), worldID.String(), p.Name, string(p.Kind), p.RoomID.String(),
		p.Description, string(p.Personality), memory, history, p.CreatedAt)
	if isUniqueViolation(err) {
		return oops.Code("name_taken").With("name", p.Name).Wrap(agent.ErrNameTaken)
	}
	if err != nil {
		return oops.With("operation", "create player").With("id", p.ID.String()).Wrap(err)
	}
	return nil
}

// Update persists the player's location, description, and memory.
func (r *PostgresPlayerRepository) Update(ctx context.Context, worldID ulid.ULID, p *agent.Player) error {
	memory, err := encodeMemory(p.Memory)
	if err != nil {
		return err
	}
	history, err := encodeHistory(p.History)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, `
		UPDATE players SET room_id = $3, description = $4, memory = $5, history = $6
		WHERE id = $1 AND world_id = $2
	`, p.ID.String(), worldID.String(), p.RoomID.String(), p.Description, memory, history)
	if err != nil {
		return oops.With("operation", "update player").With("id", p.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("player_not_found").With("id", p.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// scanPlayerRow scans a single player from a row.
func scanPlayerRow(row pgx.Row) (*agent.Player, error) {
	var p agent.Player
	var idStr, kindStr, roomIDStr, personalityStr string
	var memoryData, historyData []byte

	err := row.Scan(&idStr, &p.Name, &kindStr, &roomIDStr, &p.Description,
		&personalityStr, &memoryData, &historyData, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse player id").With("id", idStr).Wrap(err)
	}
	p.RoomID, err = ulid.Parse(roomIDStr)
	if err != nil {
		return nil, oops.With("operation", "parse player room id").With("room_id", roomIDStr).Wrap(err)
	}
	p.Kind = agent.Kind(kindStr)
	p.Personality = agent.Personality(personalityStr)
	p.Memory, err = decodeMemory(memoryData)
	if err != nil {
		return nil, err
	}
	p.History, err = decodeHistory(historyData)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
