// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package agent

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/world"
)

// Kind distinguishes human-driven players from autonomous ones.
type Kind string

const (
	KindHuman Kind = "human"
	KindNPC   Kind = "npc"
)

// Validate checks that the kind is recognized.
func (k Kind) Validate() error {
	switch k {
	case KindHuman, KindNPC:
		return nil
	default:
		return &world.ValidationError{Field: "kind", Message: "unknown kind " + string(k)}
	}
}

// Step records one movement in a player's travel history.
type Step struct {
	FromRoomID ulid.ULID
	Direction  world.Direction
}

// Synthesizer folds a witnessed event into an agent's remembered
// description of a player or a room. Implementations call the
// narrative oracle; failures are reported, never papered over, so the
// event bus can decide what to do with a witness that cannot update.
type Synthesizer interface {
	SynthesizePlayerMemory(ctx context.Context, observer *Player, entry *PlayerEntry) (string, error)
	SynthesizeRoomMemory(ctx context.Context, observer *Player, entry *RoomEntry) (string, error)
}

// Player is a game agent, human or autonomous. Its authoritative state
// is identity plus location; everything under Memory is the agent's
// private and possibly wrong view of the world.
type Player struct {
	ID          ulid.ULID
	Name        string
	Kind        Kind
	RoomID      ulid.ULID
	Description string
	Personality Personality // empty for humans
	Memory      *Memory
	History     []Step
	CreatedAt   time.Time

	// Controller drives this player's decisions. It is runtime wiring,
	// not persisted state.
	Controller Controller
}

// NewPlayer creates a player with a generated ID. The name is
// normalized to Initial Caps and validated.
func NewPlayer(name string, kind Kind, roomID ulid.ULID, ctrl Controller) (*Player, error) {
	return NewPlayerWithID(ulid.Make(), name, kind, roomID, ctrl)
}

// NewPlayerWithID creates a player with the provided ID.
func NewPlayerWithID(id ulid.ULID, name string, kind Kind, roomID ulid.ULID, ctrl Controller) (*Player, error) {
	name = world.NormalizeAgentName(name)
	p := &Player{
		ID:         id,
		Name:       name,
		Kind:       kind,
		RoomID:     roomID,
		Memory:     NewMemory(),
		CreatedAt:  time.Now(),
		Controller: ctrl,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the player's authoritative fields.
func (p *Player) Validate() error {
	if p.ID.IsZero() {
		return &world.ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := world.ValidateAgentName(p.Name); err != nil {
		return err
	}
	if err := p.Kind.Validate(); err != nil {
		return err
	}
	if p.RoomID.IsZero() {
		return &world.ValidationError{Field: "room_id", Message: "player must start in a room"}
	}
	if err := p.Personality.Validate(); err != nil {
		return err
	}
	return world.ValidateDescription(p.Description)
}

// MoveTo relocates the player and records the step taken.
func (p *Player) MoveTo(d world.Direction, to ulid.ULID) {
	p.History = append(p.History, Step{FromRoomID: p.RoomID, Direction: d})
	p.RoomID = to
}

// Observe refreshes the player's memory from direct perception of the
// current room: the authoritative room snapshot replaces whatever the
// player remembered, and every unfamiliar occupant gets a first-sight
// entry seeded from their public description.
//
// Observation happens on room entry; it is the only way memory gets
// ground truth.
func (p *Player) Observe(room *world.Room, occupants []*Player) {
	for _, other := range occupants {
		if other.ID == p.ID {
			continue
		}
		if p.Memory.HasPlayer(other.Name) {
			entry := p.Memory.Player(other.Name)
			entry.LastSeenRoomID = room.ID
			continue
		}
		p.Memory.AddPlayer(&PlayerEntry{
			Name:           other.Name,
			Description:    other.Description,
			LastSeenRoomID: room.ID,
		})
	}

	p.Memory.AddRoom(&RoomEntry{
		RoomID:      room.ID,
		Name:        room.Name,
		Description: room.Description,
	})
}

// Witness folds an event the player saw (or heard about) into memory:
// the event is recorded against both the room and the actor, then the
// oracle rewrites the player's remembered descriptions of each from
// the latest event alone. Rooms never visited get a placeholder entry.
//
// A synthesis failure leaves the recorded event in place and returns
// the error; the caller decides whether the witness is skipped.
func (p *Player) Witness(ctx context.Context, ev world.Event, actor *Player, synth Synthesizer) error {
	if !p.Memory.HasPlayer(ev.ActorName) {
		p.Memory.AddPlayer(&PlayerEntry{
			Name:           actor.Name,
			Description:    actor.Description,
			LastSeenRoomID: ev.RoomID,
		})
	}
	if !p.Memory.HasRoom(ev.RoomID) {
		p.Memory.AddRoom(&RoomEntry{
			RoomID:      ev.RoomID,
			Name:        UnfamiliarRoomName,
			Description: UnfamiliarRoomDescription,
		})
	}

	roomEntry := p.Memory.Room(ev.RoomID)
	roomEntry.RecordEvent(ev)
	actorEntry := p.Memory.Player(ev.ActorName)
	actorEntry.RecordInteraction(ev)

	desc, err := synth.SynthesizePlayerMemory(ctx, p, actorEntry)
	if err != nil {
		return oops.
			Code("memory_synthesis_failed").
			With("witness", p.Name).
			With("subject", actorEntry.Name).
			Wrap(err)
	}
	actorEntry.Description = desc

	desc, err = synth.SynthesizeRoomMemory(ctx, p, roomEntry)
	if err != nil {
		return oops.
			Code("memory_synthesis_failed").
			With("witness", p.Name).
			With("room_id", ev.RoomID.String()).
			Wrap(err)
	}
	roomEntry.Description = desc
	return nil
}
