// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package agent

import (
	"github.com/oklog/ulid/v2"

	"github.com/driftway/driftway/internal/world"
)

// Memory retention limits. Older entries are evicted oldest-first so a
// long game cannot grow an agent's memory without bound.
const (
	MaxRoomMemoryEvents   = 50
	MaxInteractionHistory = 20
)

// Placeholder values for rooms known only secondhand, from events
// witnessed before the agent ever stood in them.
const (
	UnfamiliarRoomName        = "An unfamiliar room"
	UnfamiliarRoomDescription = "A room you've heard about but not seen."
)

// PlayerEntry is what one agent remembers about another: a private,
// possibly stale description plus the direct interactions between them.
type PlayerEntry struct {
	Name           string
	Description    string
	LastSeenRoomID ulid.ULID
	Interactions   []world.Event
}

// RecordInteraction appends an interaction, evicting the oldest when
// the history is full.
func (e *PlayerEntry) RecordInteraction(ev world.Event) {
	e.Interactions = appendBounded(e.Interactions, ev, MaxInteractionHistory)
}

// LastInteraction returns the most recent interaction, or false if
// there is none.
func (e *PlayerEntry) LastInteraction() (world.Event, bool) {
	if len(e.Interactions) == 0 {
		return world.Event{}, false
	}
	return e.Interactions[len(e.Interactions)-1], true
}

// RoomEntry is what one agent remembers about a room. The description
// drifts away from the room's authoritative one as events are
// witnessed and synthesized into it.
type RoomEntry struct {
	RoomID      ulid.ULID
	Name        string
	Description string
	Events      []world.Event
}

// RecordEvent appends a witnessed event, evicting the oldest when the
// log is full.
func (e *RoomEntry) RecordEvent(ev world.Event) {
	e.Events = appendBounded(e.Events, ev, MaxRoomMemoryEvents)
}

// LastEvent returns the most recent witnessed event, or false if there
// is none.
func (e *RoomEntry) LastEvent() (world.Event, bool) {
	if len(e.Events) == 0 {
		return world.Event{}, false
	}
	return e.Events[len(e.Events)-1], true
}

// Memory is an agent's mental model of the world: strictly private,
// built only from what the agent has observed or witnessed, and never
// consulted by the authoritative game state.
type Memory struct {
	Players map[string]*PlayerEntry
	Rooms   map[ulid.ULID]*RoomEntry
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		Players: make(map[string]*PlayerEntry),
		Rooms:   make(map[ulid.ULID]*RoomEntry),
	}
}

// Player returns the entry for a named player, or nil if unknown.
// Entries are never created implicitly.
func (m *Memory) Player(name string) *PlayerEntry {
	return m.Players[name]
}

// AddPlayer stores or replaces the entry for a player.
func (m *Memory) AddPlayer(e *PlayerEntry) {
	m.Players[e.Name] = e
}

// HasPlayer reports whether the agent knows the named player.
func (m *Memory) HasPlayer(name string) bool {
	_, ok := m.Players[name]
	return ok
}

// Room returns the entry for a room, or nil if unknown.
func (m *Memory) Room(id ulid.ULID) *RoomEntry {
	return m.Rooms[id]
}

// AddRoom stores or replaces the entry for a room.
func (m *Memory) AddRoom(e *RoomEntry) {
	m.Rooms[e.RoomID] = e
}

// HasRoom reports whether the agent has any memory of the room.
func (m *Memory) HasRoom(id ulid.ULID) bool {
	_, ok := m.Rooms[id]
	return ok
}

// KnownRoomCount returns the number of rooms the agent remembers.
func (m *Memory) KnownRoomCount() int {
	return len(m.Rooms)
}

func appendBounded(events []world.Event, ev world.Event, limit int) []world.Event {
	events = append(events, ev)
	if len(events) > limit {
		copy(events, events[len(events)-limit:])
		events = events[:limit]
	}
	return events
}
