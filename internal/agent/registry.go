// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package agent

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/world"
)

// Roster limits.
const (
	MaxPlayers      = 10
	DefaultNPCCount = 5
)

// Registry errors.
var (
	// ErrNameTaken indicates a player name collision. Names are unique
	// per world, case-insensitively.
	ErrNameTaken = errors.New("player name already taken")

	// ErrRosterFull indicates the world is at its player cap.
	ErrRosterFull = errors.New("player roster is full")
)

// Registry is the in-memory roster of players in one world. Like the
// world graph it is confined to the turn loop goroutine.
type Registry struct {
	byID   map[ulid.ULID]*Player
	byName map[string]*Player // lowercased name
	order  []ulid.ULID        // join order, drives turn order
}

// NewRegistry creates an empty roster.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[ulid.ULID]*Player),
		byName: make(map[string]*Player),
	}
}

// Add puts a player on the roster. Returns ErrRosterFull at the cap
// and ErrNameTaken on a case-insensitive name collision.
func (r *Registry) Add(p *Player) error {
	if len(r.byID) >= MaxPlayers {
		return oops.Code("roster_full").With("max_players", MaxPlayers).Wrap(ErrRosterFull)
	}
	key := strings.ToLower(p.Name)
	if _, ok := r.byName[key]; ok {
		return oops.Code("name_taken").With("name", p.Name).Wrap(ErrNameTaken)
	}
	r.byID[p.ID] = p
	r.byName[key] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Remove takes a player off the roster.
func (r *Registry) Remove(id ulid.ULID) {
	p, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byName, strings.ToLower(p.Name))
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a player by ID. Returns world.ErrNotFound if missing.
func (r *Registry) Get(id ulid.ULID) (*Player, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("player_not_found").With("player_id", id.String()).Wrap(world.ErrNotFound)
	}
	return p, nil
}

// GetByName returns a player by name, case-insensitively.
func (r *Registry) GetByName(name string) (*Player, error) {
	p, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, oops.Code("player_not_found").With("name", name).Wrap(world.ErrNotFound)
	}
	return p, nil
}

// Len returns the roster size.
func (r *Registry) Len() int {
	return len(r.byID)
}

// All returns the players in join order.
func (r *Registry) All() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// InRoom returns the players standing in a room, sorted by name for
// stable rendering.
func (r *Registry) InRoom(roomID ulid.ULID) []*Player {
	var out []*Player
	for _, p := range r.byID {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OthersInRoom returns the players sharing a room with the given
// player, excluding the player itself.
func (r *Registry) OthersInRoom(p *Player) []*Player {
	var out []*Player
	for _, other := range r.InRoom(p.RoomID) {
		if other.ID != p.ID {
			out = append(out, other)
		}
	}
	return out
}

// PlayerRepository provides access to persisted player records.
// Memory rides along as a document; it is only ever read back when a
// world is resumed.
type PlayerRepository interface {
	// Get retrieves a player by ID. Returns world.ErrNotFound if missing.
	Get(ctx context.Context, id ulid.ULID) (*Player, error)

	// ListByWorld returns all players of a world in creation order.
	ListByWorld(ctx context.Context, worldID ulid.ULID) ([]*Player, error)

	// Create persists a new player. Returns ErrNameTaken if the name is
	// already used in the world.
	Create(ctx context.Context, worldID ulid.ULID, p *Player) error

	// Update persists the player's location, description, and memory.
	Update(ctx context.Context, worldID ulid.ULID, p *Player) error
}
