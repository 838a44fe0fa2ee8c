// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultMaxRoomPaths is the default per-room path budget. Every room
// keeps between 1 and this many path slots, so the graph always has
// somewhere to go but never becomes fully connected.
const DefaultMaxRoomPaths = 3

// Describer produces narrative descriptions for rooms as the graph
// grows. Implementations may call out to a language model; the graph
// treats them as opaque.
type Describer interface {
	// DescribeRoom describes a freshly created room. neighborName
	// resolves a connected exit to the neighbor's name; it returns ""
	// for slots still open to exploration.
	DescribeRoom(ctx context.Context, r *Room, exits []Direction, neighborName func(Direction) string) (string, error)

	// DescribeConnection updates an existing room's description after a
	// new neighbor connects to it via the given direction (from r's
	// side).
	DescribeConnection(ctx context.Context, r *Room, neighbor *Room, d Direction) (string, error)
}

// Graph holds the materialized portion of a world's room grid and
// generates new rooms lazily as agents explore open paths.
//
// Graph is not safe for concurrent use. The turn system serializes all
// access on a single goroutine.
type Graph struct {
	worldID  ulid.ULID
	maxPaths int
	rng      *rand.Rand
	namer    *Namer

	describer Describer
	repo      RoomRepository // optional write-through; nil in tests
	logger    *slog.Logger

	rooms   map[ulid.ULID]*Room
	byCoord map[Coord]ulid.ULID
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithMaxPaths overrides the per-room path budget.
func WithMaxPaths(n int) GraphOption {
	return func(g *Graph) { g.maxPaths = n }
}

// WithRoomRepository enables write-through persistence of created and
// mutated rooms.
func WithRoomRepository(repo RoomRepository) GraphOption {
	return func(g *Graph) { g.repo = repo }
}

// WithLogger sets the logger for graph operations.
func WithLogger(logger *slog.Logger) GraphOption {
	return func(g *Graph) { g.logger = logger }
}

// NewGraph creates an empty Graph for a world. The RNG drives both the
// random path fill and room naming, so a fixed seed reproduces the
// same layout given the same exploration order.
func NewGraph(worldID ulid.ULID, seed int64, describer Describer, opts ...GraphOption) *Graph {
	rng := rand.New(rand.NewSource(seed))
	g := &Graph{
		worldID:   worldID,
		maxPaths:  DefaultMaxRoomPaths,
		rng:       rng,
		namer:     NewNamer(rng),
		describer: describer,
		logger:    slog.Default(),
		rooms:     make(map[ulid.ULID]*Room),
		byCoord:   make(map[Coord]ulid.ULID),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WorldID returns the ID of the world this graph belongs to.
func (g *Graph) WorldID() ulid.ULID {
	return g.worldID
}

// Room returns the materialized room with the given ID.
// Returns ErrNotFound if the room does not exist.
func (g *Graph) Room(id ulid.ULID) (*Room, error) {
	r, ok := g.rooms[id]
	if !ok {
		return nil, oops.Code("room_not_found").With("room_id", id.String()).Wrap(ErrNotFound)
	}
	return r, nil
}

// RoomAt returns the materialized room at the coordinate, or nil.
func (g *Graph) RoomAt(c Coord) *Room {
	id, ok := g.byCoord[c]
	if !ok {
		return nil
	}
	return g.rooms[id]
}

// Len returns the number of materialized rooms.
func (g *Graph) Len() int {
	return len(g.rooms)
}

// Rooms returns all materialized rooms in unspecified order.
func (g *Graph) Rooms() []*Room {
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}

// Seed materializes the origin room at (0,0). The origin has no
// entry direction; all of its slots come from the random fill.
func (g *Graph) Seed(ctx context.Context) (*Room, error) {
	return g.CreateRoom(ctx, Coord{X: 0, Y: 0}, "")
}

// CreateRoom materializes a room at the coordinate.
//
// fromDirection is the direction pointing back toward the room the
// actor came from, or "" for the origin. The slot for fromDirection is
// always reserved, so a new room can never strand the agent who found
// it. Remaining slots are assigned in two passes: first reciprocal
// connections to any neighbor with an open slot facing this
// coordinate, in canonical direction order, then a uniform random fill
// of the leftover budget among walled-off directions whose cell is
// empty or whose neighbor has spare capacity.
//
// Creating a room at an occupied coordinate returns
// ErrDuplicateCoordinate; callers must check RoomAt first.
func (g *Graph) CreateRoom(ctx context.Context, coord Coord, fromDirection Direction) (*Room, error) {
	if existing := g.RoomAt(coord); existing != nil {
		return nil, oops.
			Code("duplicate_coordinate").
			With("x", coord.X).
			With("y", coord.Y).
			With("existing_room_id", existing.ID.String()).
			Wrap(ErrDuplicateCoordinate)
	}

	room, err := NewRoom(g.namer.RoomName(), coord)
	if err != nil {
		return nil, oops.Code("room_create_failed").Wrap(err)
	}

	if fromDirection != "" {
		if err := fromDirection.Validate(); err != nil {
			return nil, err
		}
		room.Paths[fromDirection] = nil
	}

	// Reciprocal pass: adopt every neighbor that already reserved an
	// open slot facing this cell, in canonical order. The slot toward
	// the originating room connects here too.
	type connection struct {
		nb     *Room
		toward Direction // from the neighbor toward the new room
	}
	var connected []connection
	for _, d := range Directions() {
		if !room.HasPath(d) && room.PathCount() >= g.maxPaths {
			continue
		}
		nb := g.RoomAt(coord.Translate(d))
		if nb == nil || !nb.HasOpenPath(d.Opposite()) {
			continue
		}
		g.connect(room, d, nb)
		connected = append(connected, connection{nb: nb, toward: d.Opposite()})
	}

	// Random fill: spend the leftover budget uniformly without
	// replacement. An empty cell gets an open slot; an existing
	// neighbor with spare capacity gets a full connection.
	var candidates []Direction
	for _, d := range Directions() {
		if room.HasPath(d) {
			continue
		}
		nb := g.RoomAt(coord.Translate(d))
		if nb == nil {
			candidates = append(candidates, d)
		} else if nb.PathCount() < g.maxPaths && !nb.HasPath(d.Opposite()) {
			candidates = append(candidates, d)
		}
	}
	for room.PathCount() < g.maxPaths && len(candidates) > 0 {
		i := g.rng.Intn(len(candidates))
		d := candidates[i]
		candidates = append(candidates[:i], candidates[i+1:]...)

		if nb := g.RoomAt(coord.Translate(d)); nb != nil {
			g.connect(room, d, nb)
			connected = append(connected, connection{nb: nb, toward: d.Opposite()})
		} else {
			room.Paths[d] = nil
		}
	}

	neighborName := func(d Direction) string {
		if target, ok := room.PathTarget(d); ok {
			if nb, exists := g.rooms[target]; exists {
				return nb.Name
			}
		}
		return ""
	}
	desc, err := g.describer.DescribeRoom(ctx, room, room.Exits(), neighborName)
	if err != nil {
		return nil, oops.
			Code("room_describe_failed").
			With("room_id", room.ID.String()).
			Wrap(err)
	}
	if err := room.SetDescription(desc); err != nil {
		return nil, err
	}

	if g.repo != nil {
		if err := g.repo.Create(ctx, g.worldID, room); err != nil {
			return nil, oops.Code("room_persist_failed").Wrap(err)
		}
	}

	// Each connected neighbor gets its description updated to mention
	// the new passage. An oracle failure here keeps the stale prose;
	// the connection itself is already wired and must persist.
	for _, c := range connected {
		newDesc, err := g.describer.DescribeConnection(ctx, c.nb, room, c.toward)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.logger.WarnContext(ctx, "neighbor re-description skipped: oracle failed",
				"room_id", c.nb.ID.String(), "direction", c.toward.String(), "error", err)
		} else if err := c.nb.SetDescription(newDesc); err != nil {
			return nil, err
		}
		if g.repo != nil {
			if err := g.repo.Update(ctx, g.worldID, c.nb); err != nil {
				return nil, oops.Code("room_persist_failed").With("room_id", c.nb.ID.String()).Wrap(err)
			}
		}
	}

	g.rooms[room.ID] = room
	g.byCoord[coord] = room.ID

	g.logger.DebugContext(ctx, "room created",
		"room_id", room.ID.String(),
		"name", room.Name,
		"x", coord.X,
		"y", coord.Y,
		"paths", room.PathCount(),
	)
	return room, nil
}

// connect wires a bidirectional path between room (in direction d) and
// its neighbor. Connecting is the only mutation a room's path set sees
// after creation, and it only ever fills an already-reserved slot on
// the older room.
func (g *Graph) connect(room *Room, d Direction, nb *Room) {
	roomID, nbID := room.ID, nb.ID
	room.Paths[d] = &nbID
	nb.Paths[d.Opposite()] = &roomID
}

// UpdateDescription replaces a room's description and persists the
// change. Interactions rewrite descriptions this way; the new text
// becomes what future visitors observe.
func (g *Graph) UpdateDescription(ctx context.Context, r *Room, desc string) error {
	if err := r.SetDescription(desc); err != nil {
		return err
	}
	if g.repo != nil {
		if err := g.repo.Update(ctx, g.worldID, r); err != nil {
			return oops.Code("room_persist_failed").With("room_id", r.ID.String()).Wrap(err)
		}
	}
	return nil
}

// Traverse resolves a move from a room in the given direction,
// materializing the destination if the slot is still open. Returns
// ErrInvalidDirection if the direction is walled off.
func (g *Graph) Traverse(ctx context.Context, from *Room, d Direction) (*Room, error) {
	if !from.HasPath(d) {
		return nil, oops.
			Code("no_path").
			With("room_id", from.ID.String()).
			With("direction", d.String()).
			Wrap(ErrInvalidDirection)
	}
	if target, ok := from.PathTarget(d); ok {
		return g.Room(target)
	}
	// The slot is open, but the cell may have materialized since it was
	// reserved: a neighbor created with its budget already spent cannot
	// adopt a facing slot, which leaves this side's passage open. The
	// move still lands in the existing room; the slot stays open.
	if existing := g.RoomAt(from.Coord.Translate(d)); existing != nil {
		return existing, nil
	}
	return g.CreateRoom(ctx, from.Coord.Translate(d), d.Opposite())
}

// Load rebuilds the in-memory index from the repository. Used when
// resuming a persisted world.
func (g *Graph) Load(ctx context.Context) error {
	if g.repo == nil {
		return oops.Code("no_repository").Errorf("graph has no repository to load from")
	}
	rooms, err := g.repo.ListByWorld(ctx, g.worldID)
	if err != nil {
		return oops.Code("world_load_failed").With("world_id", g.worldID.String()).Wrap(err)
	}
	g.rooms = make(map[ulid.ULID]*Room, len(rooms))
	g.byCoord = make(map[Coord]ulid.ULID, len(rooms))
	for _, r := range rooms {
		g.rooms[r.ID] = r
		g.byCoord[r.Coord] = r.ID
	}
	if err := g.Check(); err != nil {
		return err
	}
	g.logger.InfoContext(ctx, "world loaded", "world_id", g.worldID.String(), "rooms", len(rooms))
	return nil
}

// Check verifies the structural invariants of the materialized graph:
// coordinate uniqueness, path budgets, and bidirectional symmetry of
// every connected path. A failure here is a bug, not a user error.
func (g *Graph) Check() error {
	for _, r := range g.rooms {
		if r.PathCount() == 0 || r.PathCount() > g.maxPaths {
			return oops.
				Code("path_budget_violation").
				With("room_id", r.ID.String()).
				With("paths", r.PathCount()).
				Errorf("room has %d paths, want 1..%d", r.PathCount(), g.maxPaths)
		}
		if got := g.byCoord[r.Coord]; got != r.ID {
			return oops.
				Code("coordinate_index_mismatch").
				With("room_id", r.ID.String()).
				Errorf("coordinate index out of sync at (%d,%d)", r.Coord.X, r.Coord.Y)
		}
		for _, d := range Directions() {
			target, ok := r.PathTarget(d)
			if !ok {
				continue
			}
			nb, exists := g.rooms[target]
			if !exists {
				return oops.
					Code("dangling_path").
					With("room_id", r.ID.String()).
					With("direction", d.String()).
					Wrap(ErrAsymmetricPath)
			}
			back, ok := nb.PathTarget(d.Opposite())
			if !ok || back != r.ID {
				return oops.
					Code("asymmetric_path").
					With("room_id", r.ID.String()).
					With("neighbor_id", nb.ID.String()).
					With("direction", d.String()).
					Wrap(ErrAsymmetricPath)
			}
		}
	}
	return nil
}
