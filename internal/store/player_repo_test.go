// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
	"github.com/driftway/driftway/pkg/errutil"
)

func playerColumns() []string {
	return []string{"id", "name", "kind", "room_id", "description", "personality", "memory", "history", "created_at"}
}

func TestPostgresPlayerRepository_Get_RestoresMemory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := ulid.Make()
	roomID := ulid.Make()

	mem := agent.NewMemory()
	mem.AddPlayer(&agent.PlayerEntry{Name: "Bram", Description: "A stranger.", LastSeenRoomID: roomID})
	mem.AddRoom(&agent.RoomEntry{RoomID: roomID, Name: "Gloomy Hall", Description: "A long dark hall."})
	memData, err := json.Marshal(mem)
	require.NoError(t, err)

	history := []agent.Step{{FromRoomID: roomID, Direction: world.North}}
	historyData, err := json.Marshal(history)
	require.NoError(t, err)

	rows := pgxmock.NewRows(playerColumns()).
		AddRow(id.String(), "Mira", "npc", roomID.String(), "A wanderer.",
			"explorer", memData, historyData, time.Now())
	mock.ExpectQuery(`SELECT id, name, kind, room_id, description, personality, memory, history, created_at`).
		WithArgs(id.String()).
		WillReturnRows(rows)

	repo := NewPostgresPlayerRepository(mock)
	p, err := repo.Get(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Mira", p.Name)
	assert.Equal(t, agent.KindNPC, p.Kind)
	assert.Equal(t, agent.Explorer, p.Personality)
	assert.Equal(t, roomID, p.RoomID)

	require.True(t, p.Memory.HasPlayer("Bram"))
	assert.Equal(t, "A stranger.", p.Memory.Player("Bram").Description)
	assert.Equal(t, roomID, p.Memory.Player("Bram").LastSeenRoomID)
	require.True(t, p.Memory.HasRoom(roomID))
	assert.Equal(t, "Gloomy Hall", p.Memory.Room(roomID).Name)

	require.Len(t, p.History, 1)
	assert.Equal(t, world.North, p.History[0].Direction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlayerRepository_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := ulid.Make()
	mock.ExpectQuery(`SELECT id, name, kind, room_id`).
		WithArgs(id.String()).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresPlayerRepository(mock)
	_, err = repo.Get(context.Background(), id)
	require.ErrorIs(t, err, world.ErrNotFound)
	errutil.AssertErrorCode(t, err, "player_not_found")
}

func TestPostgresPlayerRepository_Create_NameTaken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	worldID := ulid.Make()
	p, err := agent.NewPlayer("Mira", agent.KindHuman, ulid.Make(), nil)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO players`).
		WithArgs(p.ID.String(), worldID.String(), p.Name, "human", p.RoomID.String(),
			p.Description, "", pgxmock.AnyArg(), pgxmock.AnyArg(), p.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	repo := NewPostgresPlayerRepository(mock)
	err = repo.Create(context.Background(), worldID, p)
	require.ErrorIs(t, err, agent.ErrNameTaken)
	errutil.AssertErrorCode(t, err, "name_taken")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlayerRepository_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	worldID := ulid.Make()
	p, err := agent.NewPlayer("Mira", agent.KindHuman, ulid.Make(), nil)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE players SET`).
		WithArgs(p.ID.String(), worldID.String(), p.RoomID.String(), p.Description,
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewPostgresPlayerRepository(mock)
	require.NoError(t, repo.Update(context.Background(), worldID, p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlayerRepository_ListByWorld(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	worldID := ulid.Make()
	roomID := ulid.Make()
	a, b := ulid.Make(), ulid.Make()
	rows := pgxmock.NewRows(playerColumns()).
		AddRow(a.String(), "Mira", "human", roomID.String(), "", "", []byte(`{}`), []byte(`[]`), time.Now()).
		AddRow(b.String(), "Bram", "npc", roomID.String(), "", "hostile", []byte(`{}`), []byte(`[]`), time.Now())
	mock.ExpectQuery(`SELECT id, name, kind, room_id`).
		WithArgs(worldID.String()).
		WillReturnRows(rows)

	repo := NewPostgresPlayerRepository(mock)
	players, err := repo.ListByWorld(context.Background(), worldID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, agent.KindHuman, players[0].Kind)
	assert.Equal(t, agent.Hostile, players[1].Personality)
	assert.NotNil(t, players[0].Memory.Players, "empty memory decodes usable")
}
