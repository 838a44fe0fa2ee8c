// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ActionType identifies the kind of game event.
type ActionType string

const (
	ActionMoveIn   ActionType = "MOVE_IN"
	ActionMoveOut  ActionType = "MOVE_OUT"
	ActionTalk     ActionType = "TALK"
	ActionInteract ActionType = "INTERACT"
)

// String returns the string representation of the action type.
func (a ActionType) String() string {
	return string(a)
}

// Event is an immutable record of something that happened in a room.
// It is created by the turn system and consumed exactly once by the
// event bus, which hands a copy to each witness.
type Event struct {
	ID         ulid.ULID
	Timestamp  time.Time
	RoomID     ulid.ULID
	ActorID    ulid.ULID
	ActorName  string
	Type       ActionType
	Content    string
	WitnessIDs []ulid.ULID
}

// NewMoveOutEvent creates a MOVE_OUT event for an actor leaving a room.
func NewMoveOutEvent(roomID, actorID ulid.ULID, actorName string) Event {
	return Event{
		ID:        ulid.Make(),
		Timestamp: time.Now(),
		RoomID:    roomID,
		ActorID:   actorID,
		ActorName: actorName,
		Type:      ActionMoveOut,
		Content:   fmt.Sprintf("%s left the room.", actorName),
	}
}

// NewMoveInEvent creates a MOVE_IN event for an actor entering a room.
func NewMoveInEvent(roomID, actorID ulid.ULID, actorName string) Event {
	return Event{
		ID:        ulid.Make(),
		Timestamp: time.Now(),
		RoomID:    roomID,
		ActorID:   actorID,
		ActorName: actorName,
		Type:      ActionMoveIn,
		Content:   fmt.Sprintf("%s entered the room.", actorName),
	}
}

// NewActionEvent creates a TALK or INTERACT event with actor-provided content.
func NewActionEvent(roomID, actorID ulid.ULID, actorName string, action ActionType, content string) Event {
	return Event{
		ID:        ulid.Make(),
		Timestamp: time.Now(),
		RoomID:    roomID,
		ActorID:   actorID,
		ActorName: actorName,
		Type:      action,
		Content:   content,
	}
}

// Validate checks that the event has all required fields.
func (e *Event) Validate() error {
	if e.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if e.RoomID.IsZero() {
		return &ValidationError{Field: "room_id", Message: "cannot be zero"}
	}
	if e.ActorID.IsZero() {
		return &ValidationError{Field: "actor_id", Message: "cannot be zero"}
	}
	if e.ActorName == "" {
		return &ValidationError{Field: "actor_name", Message: "cannot be empty"}
	}
	switch e.Type {
	case ActionMoveIn, ActionMoveOut, ActionTalk, ActionInteract:
	default:
		return &ValidationError{Field: "type", Message: "unknown action type"}
	}
	return ValidateContent(e.Content)
}

// WitnessedBy reports whether the given agent is in the witness list.
func (e *Event) WitnessedBy(id ulid.ULID) bool {
	for _, w := range e.WitnessIDs {
		if w == id {
			return true
		}
	}
	return false
}
