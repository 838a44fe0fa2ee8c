// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Room represents a single cell in the world grid. Identity and
// coordinate are fixed at creation; only the description and the
// targets of already-reserved path slots mutate afterward.
type Room struct {
	ID          ulid.ULID
	Name        string
	Coord       Coord
	Description string

	// Paths maps a direction to the connected room, or nil for a
	// reserved-but-open exit (explorable, not yet materialized).
	// A direction absent from the map is permanently walled off.
	Paths map[Direction]*ulid.ULID

	// Occupants is recomputed from agent locations each turn. It is a
	// projection, not authoritative state, and is never persisted.
	Occupants map[ulid.ULID]struct{}

	CreatedAt time.Time
}

// NewRoom creates a new Room with a generated ID.
// The room is validated before being returned.
func NewRoom(name string, coord Coord) (*Room, error) {
	return NewRoomWithID(ulid.Make(), name, coord)
}

// NewRoomWithID creates a new Room with the provided ID.
// The room is validated before being returned.
func NewRoomWithID(id ulid.ULID, name string, coord Coord) (*Room, error) {
	r := &Room{
		ID:        id,
		Name:      name,
		Coord:     coord,
		Paths:     make(map[Direction]*ulid.ULID),
		Occupants: make(map[ulid.ULID]struct{}),
		CreatedAt: time.Now(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that the room has required fields.
func (r *Room) Validate() error {
	if r.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	for d := range r.Paths {
		if err := d.Validate(); err != nil {
			return &ValidationError{Field: "paths", Message: "unknown direction " + d.String()}
		}
	}
	return ValidateDescription(r.Description)
}

// PathCount returns the number of reserved path slots, connected or open.
func (r *Room) PathCount() int {
	return len(r.Paths)
}

// HasPath reports whether the direction has a reserved slot.
func (r *Room) HasPath(d Direction) bool {
	_, ok := r.Paths[d]
	return ok
}

// HasOpenPath reports whether the direction is reserved but not yet
// connected to a materialized room.
func (r *Room) HasOpenPath(d Direction) bool {
	target, ok := r.Paths[d]
	return ok && target == nil
}

// PathTarget returns the room ID connected in the given direction, or
// false if the slot is absent or still open.
func (r *Room) PathTarget(d Direction) (ulid.ULID, bool) {
	target, ok := r.Paths[d]
	if !ok || target == nil {
		return ulid.ULID{}, false
	}
	return *target, true
}

// Exits returns the directions with reserved slots in canonical order.
func (r *Room) Exits() []Direction {
	var out []Direction
	for _, d := range Directions() {
		if r.HasPath(d) {
			out = append(out, d)
		}
	}
	return out
}

// SetDescription replaces the room's description after validation.
func (r *Room) SetDescription(desc string) error {
	if err := ValidateDescription(desc); err != nil {
		return err
	}
	r.Description = desc
	return nil
}
