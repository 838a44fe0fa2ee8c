// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftway/driftway/internal/world"
)

func eventColumns() []string {
	return []string{"id", "room_id", "actor_id", "actor_name", "type", "content", "witness_ids", "created_at"}
}

func TestPostgresEventRepository_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	worldID := ulid.Make()
	witness := ulid.Make()
	e := world.NewActionEvent(ulid.Make(), ulid.Make(), "Mira", world.ActionTalk, "Hello there.")
	e.WitnessIDs = []ulid.ULID{witness}

	mock.ExpectExec(`INSERT INTO events`).
		WithArgs(e.ID.String(), worldID.String(), e.RoomID.String(), e.ActorID.String(),
			"Mira", "TALK", "Hello there.", []string{witness.String()}, e.Timestamp).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewPostgresEventRepository(mock)
	require.NoError(t, repo.Append(context.Background(), worldID, e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEventRepository_Append_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	worldID := ulid.Make()
	e := world.NewActionEvent(ulid.Make(), ulid.Make(), "Mira", world.ActionTalk, "Hello.")

	mock.ExpectExec(`INSERT INTO events`).
		WithArgs(e.ID.String(), worldID.String(), e.RoomID.String(), e.ActorID.String(),
			"Mira", "TALK", "Hello.", []string{}, e.Timestamp).
		WillReturnError(errors.New("disk full"))

	repo := NewPostgresEventRepository(mock)
	err = repo.Append(context.Background(), worldID, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPostgresEventRepository_ListByRoom(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	worldID := ulid.Make()
	roomID := ulid.Make()
	actorID := ulid.Make()
	witness := ulid.Make()
	a, b := ulid.Make(), ulid.Make()

	rows := pgxmock.NewRows(eventColumns()).
		AddRow(a.String(), roomID.String(), actorID.String(), "Mira", "MOVE_IN",
			"Mira entered the room.", []string{witness.String()}, time.Now()).
		AddRow(b.String(), roomID.String(), actorID.String(), "Mira", "TALK",
			"Hello there.", []string{}, time.Now())
	mock.ExpectQuery(`SELECT id, room_id, actor_id, actor_name, type, content, witness_ids, created_at`).
		WithArgs(worldID.String(), roomID.String(), 10).
		WillReturnRows(rows)

	repo := NewPostgresEventRepository(mock)
	events, err := repo.ListByRoom(context.Background(), worldID, roomID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, world.ActionMoveIn, events[0].Type)
	assert.True(t, events[0].WitnessedBy(witness))
	assert.Equal(t, "Hello there.", events[1].Content)
	assert.Empty(t, events[1].WitnessIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
