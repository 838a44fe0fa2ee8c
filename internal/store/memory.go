// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// now is stubbed in tests.
var now = time.Now

// In-memory repositories back offline play and unit tests. They hold
// the caller's entities directly, without cloning; the game is single
// threaded, so last-write-wins matches the PostgreSQL behavior.

// MemWorldRepository is an in-memory world.WorldRepository.
type MemWorldRepository struct {
	byID   map[ulid.ULID]*world.World
	byName map[string]*world.World
}

var _ world.WorldRepository = (*MemWorldRepository)(nil)

// NewMemWorldRepository creates an empty in-memory world repository.
func NewMemWorldRepository() *MemWorldRepository {
	return &MemWorldRepository{
		byID:   make(map[ulid.ULID]*world.World),
		byName: make(map[string]*world.World),
	}
}

// Get retrieves a world by ID.
func (r *MemWorldRepository) Get(_ context.Context, id ulid.ULID) (*world.World, error) {
	w, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("world_not_found").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return w, nil
}

// GetByName retrieves a world by name.
func (r *MemWorldRepository) GetByName(_ context.Context, name string) (*world.World, error) {
	w, ok := r.byName[name]
	if !ok {
		return nil, oops.Code("world_not_found").With("name", name).Wrap(world.ErrNotFound)
	}
	return w, nil
}

// List returns all worlds, most recently played first.
func (r *MemWorldRepository) List(_ context.Context) ([]*world.World, error) {
	out := make([]*world.World, 0, len(r.byID))
	for _, w := range r.byID {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastPlayedAt.After(out[j].LastPlayedAt)
	})
	return out, nil
}

// Create persists a new world.
func (r *MemWorldRepository) Create(_ context.Context, w *world.World) error {
	if _, ok := r.byName[w.Name]; ok {
		return oops.Code("world_name_taken").With("name", w.Name).Wrap(world.ErrDuplicateWorld)
	}
	r.byID[w.ID] = w
	r.byName[w.Name] = w
	return nil
}

// Touch updates the world's last-played timestamp.
func (r *MemWorldRepository) Touch(ctx context.Context, id ulid.ULID) error {
	w, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	w.LastPlayedAt = now()
	return nil
}

// MemRoomRepository is an in-memory world.RoomRepository.
type MemRoomRepository struct {
	byID    map[ulid.ULID]*world.Room
	byWorld map[ulid.ULID][]*world.Room
	byCoord map[ulid.ULID]map[world.Coord]ulid.ULID
}

var _ world.RoomRepository = (*MemRoomRepository)(nil)

// NewMemRoomRepository creates an empty in-memory room repository.
func NewMemRoomRepository() *MemRoomRepository {
	return &MemRoomRepository{
		byID:    make(map[ulid.ULID]*world.Room),
		byWorld: make(map[ulid.ULID][]*world.Room),
		byCoord: make(map[ulid.ULID]map[world.Coord]ulid.ULID),
	}
}

// Get retrieves a room by ID.
func (r *MemRoomRepository) Get(_ context.Context, id ulid.ULID) (*world.Room, error) {
	room, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("room_not_found").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return room, nil
}

// ListByWorld returns all rooms of a world in creation order.
func (r *MemRoomRepository) ListByWorld(_ context.Context, worldID ulid.ULID) ([]*world.Room, error) {
	rooms := r.byWorld[worldID]
	out := make([]*world.Room, len(rooms))
	copy(out, rooms)
	return out, nil
}

// Create persists a new room.
func (r *MemRoomRepository) Create(_ context.Context, worldID ulid.ULID, room *world.Room) error {
	coords, ok := r.byCoord[worldID]
	if !ok {
		coords = make(map[world.Coord]ulid.ULID)
		r.byCoord[worldID] = coords
	}
	if _, ok := coords[room.Coord]; ok {
		return oops.Code("duplicate_coordinate").
			With("world_id", worldID.String()).
			With("x", room.Coord.X).
			With("y", room.Coord.Y).
			Wrap(world.ErrDuplicateCoordinate)
	}
	coords[room.Coord] = room.ID
	r.byID[room.ID] = room
	r.byWorld[worldID] = append(r.byWorld[worldID], room)
	return nil
}

// Update persists changed paths and description for an existing room.
func (r *MemRoomRepository) Update(_ context.Context, _ ulid.ULID, room *world.Room) error {
	stored, ok := r.byID[room.ID]
	if !ok {
		return oops.Code("room_not_found").With("id", room.ID.String()).Wrap(world.ErrNotFound)
	}
	stored.Description = room.Description
	stored.Paths = room.Paths
	return nil
}

// MemPlayerRepository is an in-memory agent.PlayerRepository.
type MemPlayerRepository struct {
	byID    map[ulid.ULID]*agent.Player
	byWorld map[ulid.ULID][]*agent.Player
}

var _ agent.PlayerRepository = (*MemPlayerRepository)(nil)

// NewMemPlayerRepository creates an empty in-memory player repository.
func NewMemPlayerRepository() *MemPlayerRepository {
	return &MemPlayerRepository{
		byID:    make(map[ulid.ULID]*agent.Player),
		byWorld: make(map[ulid.ULID][]*agent.Player),
	}
}

// Get retrieves a player by ID.
func (r *MemPlayerRepository) Get(_ context.Context, id ulid.ULID) (*agent.Player, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("player_not_found").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return p, nil
}

// ListByWorld returns all players of a world in creation order.
func (r *MemPlayerRepository) ListByWorld(_ context.Context, worldID ulid.ULID) ([]*agent.Player, error) {
	players := r.byWorld[worldID]
	out := make([]*agent.Player, len(players))
	copy(out, players)
	return out, nil
}

// Create persists a new player.
func (r *MemPlayerRepository) Create(_ context.Context, worldID ulid.ULID, p *agent.Player) error {
	for _, other := range r.byWorld[worldID] {
		if strings.EqualFold(other.Name, p.Name) {
			return oops.Code("name_taken").With("name", p.Name).Wrap(agent.ErrNameTaken)
		}
	}
	r.byID[p.ID] = p
	r.byWorld[worldID] = append(r.byWorld[worldID], p)
	return nil
}

// Update persists the player's location, description, and memory.
func (r *MemPlayerRepository) Update(_ context.Context, _ ulid.ULID, p *agent.Player) error {
	if _, ok := r.byID[p.ID]; !ok {
		return oops.Code("player_not_found").With("id", p.ID.String()).Wrap(world.ErrNotFound)
	}
	r.byID[p.ID] = p
	return nil
}

// MemEventRepository is an in-memory world.EventRepository.
type MemEventRepository struct {
	byWorld map[ulid.ULID][]world.Event
}

var _ world.EventRepository = (*MemEventRepository)(nil)

// NewMemEventRepository creates an empty in-memory event repository.
func NewMemEventRepository() *MemEventRepository {
	return &MemEventRepository{byWorld: make(map[ulid.ULID][]world.Event)}
}

// Append persists an event with its witness list.
func (r *MemEventRepository) Append(_ context.Context, worldID ulid.ULID, e world.Event) error {
	r.byWorld[worldID] = append(r.byWorld[worldID], e)
	return nil
}

// ListByRoom returns the most recent events in a room, oldest first,
// capped at limit.
func (r *MemEventRepository) ListByRoom(_ context.Context, worldID, roomID ulid.ULID, limit int) ([]world.Event, error) {
	var out []world.Event
	for _, e := range r.byWorld[worldID] {
		if e.RoomID == roomID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
