// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package agent

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/driftway/driftway/internal/world"
)

// MaxActionDetailLength caps the free text attached to TALK and
// INTERACT actions.
const MaxActionDetailLength = 200

// ErrQuit is returned by a controller when its player wants to leave
// the game. It propagates up to the turn loop, which shuts down
// cleanly; it is never treated as a failure.
var ErrQuit = errors.New("quit")

// Choice is the high-level action category a controller picks each
// turn.
type Choice string

const (
	ChoiceMove     Choice = "MOVE"
	ChoiceTalk     Choice = "TALK"
	ChoiceInteract Choice = "INTERACT"
)

// ActionSpec describes a non-movement action a player can take.
type ActionSpec struct {
	Choice      Choice
	Description string
	Prompt      string

	// AffectsRoom marks actions whose detail rewrites the room's
	// authoritative description; AffectsPlayers marks actions directed
	// at other occupants.
	AffectsRoom    bool
	AffectsPlayers bool
}

// ActionSpecs returns the non-movement action table in menu order.
func ActionSpecs() []ActionSpec {
	return []ActionSpec{
		{
			Choice:         ChoiceTalk,
			Description:    "Say something to the others in the room",
			Prompt:         "What do you say?",
			AffectsPlayers: true,
		},
		{
			Choice:      ChoiceInteract,
			Description: "Interact with something in the room",
			Prompt:      "What do you do?",
			AffectsRoom: true,
		},
	}
}

// ActionSpecFor returns the spec for a non-movement choice.
func ActionSpecFor(c Choice) (ActionSpec, bool) {
	for _, spec := range ActionSpecs() {
		if spec.Choice == c {
			return spec, true
		}
	}
	return ActionSpec{}, false
}

// EventType maps a non-movement choice to its event type.
func (c Choice) EventType() world.ActionType {
	switch c {
	case ChoiceTalk:
		return world.ActionTalk
	default:
		return world.ActionInteract
	}
}

// View is the slice of game state a controller is allowed to see when
// deciding: the player's current room and who else is standing in it.
// Controllers never touch the graph or other players' state directly.
type View struct {
	Room   *world.Room
	Exits  []world.Direction
	Others []*Player
}

// HasOthers reports whether anyone else shares the room.
func (v View) HasOthers() bool {
	return len(v.Others) > 0
}

// Decision is a controller's resolved choice for one turn: either a
// move in a direction, or an action with its detail text.
type Decision struct {
	Choice    Choice
	Direction world.Direction // set when Choice is ChoiceMove
	Detail    string          // set for TALK and INTERACT
}

// Controller decides what a player does each turn. Implementations
// block as long as they need (human input, oracle calls); the turn
// system passes a context for cancellation.
type Controller interface {
	Decide(ctx context.Context, p *Player, v View) (Decision, error)
}

// clampDetail trims action detail to the allowed length, backing up to
// a rune boundary so a multi-byte character is never split.
func clampDetail(s string) string {
	if len(s) <= MaxActionDetailLength {
		return s
	}
	cut := MaxActionDetailLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
