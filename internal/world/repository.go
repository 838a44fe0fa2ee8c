// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// World is a named, persistent game world. Rooms, agents, and events
// all hang off a world ID so multiple worlds can share one store.
type World struct {
	ID           ulid.ULID
	Name         string
	Seed         int64
	CreatedAt    time.Time
	LastPlayedAt time.Time
}

// NewWorld creates a new World with a generated ID.
func NewWorld(name string, seed int64) (*World, error) {
	return NewWorldWithID(ulid.Make(), name, seed)
}

// NewWorldWithID creates a new World with the provided ID.
func NewWorldWithID(id ulid.ULID, name string, seed int64) (*World, error) {
	now := time.Now()
	w := &World{
		ID:           id,
		Name:         name,
		Seed:         seed,
		CreatedAt:    now,
		LastPlayedAt: now,
	}
	if err := ValidateName(w.Name); err != nil {
		return nil, err
	}
	return w, nil
}

// WorldRepository provides access to world records.
type WorldRepository interface {
	// Get retrieves a world by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id ulid.ULID) (*World, error)

	// GetByName retrieves a world by name. Returns ErrNotFound if missing.
	GetByName(ctx context.Context, name string) (*World, error)

	// List returns all worlds, most recently played first.
	List(ctx context.Context) ([]*World, error)

	// Create persists a new world.
	Create(ctx context.Context, w *World) error

	// Touch updates the world's last-played timestamp.
	Touch(ctx context.Context, id ulid.ULID) error
}

// RoomRepository provides access to the rooms of a world.
type RoomRepository interface {
	// Get retrieves a room by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id ulid.ULID) (*Room, error)

	// ListByWorld returns all rooms of a world.
	ListByWorld(ctx context.Context, worldID ulid.ULID) ([]*Room, error)

	// Create persists a new room. Returns ErrDuplicateCoordinate if the
	// world already has a room at the coordinate.
	Create(ctx context.Context, worldID ulid.ULID, r *Room) error

	// Update persists changed paths and description for an existing room.
	Update(ctx context.Context, worldID ulid.ULID, r *Room) error
}

// EventRepository provides append and replay access to the event log.
type EventRepository interface {
	// Append persists an event with its witness list.
	Append(ctx context.Context, worldID ulid.ULID, e Event) error

	// ListByRoom returns the most recent events in a room, oldest first,
	// capped at limit.
	ListByRoom(ctx context.Context, worldID, roomID ulid.ULID, limit int) ([]Event, error)
}
