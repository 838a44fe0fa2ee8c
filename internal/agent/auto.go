// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/driftway/driftway/internal/world"
)

// NPCMoveProbability is the movement chance for agents without a
// personality archetype.
const NPCMoveProbability = 0.2

// Narrator produces the in-character line for an autonomous agent's
// TALK or INTERACT action. Implementations call the narrative oracle.
type Narrator interface {
	ActionLine(ctx context.Context, p *Player, v View, spec ActionSpec) (string, error)
}

// AutoController drives an autonomous player. Action category is a
// weighted draw over the personality's preferences; the line spoken or
// the deed done comes from the narrator, with a canned in-character
// fallback so an oracle outage degrades flavor rather than breaking
// turns.
type AutoController struct {
	rng      *rand.Rand
	narrator Narrator
	logger   *slog.Logger

	lastDirection world.Direction
}

var _ Controller = (*AutoController)(nil)

// NewAutoController creates an autonomous controller.
func NewAutoController(rng *rand.Rand, narrator Narrator, logger *slog.Logger) *AutoController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoController{rng: rng, narrator: narrator, logger: logger}
}

// Decide picks the agent's action for this turn.
func (c *AutoController) Decide(ctx context.Context, p *Player, v View) (Decision, error) {
	choice := c.drawChoice(p, v)
	if choice == ChoiceMove {
		return Decision{Choice: ChoiceMove, Direction: c.pickDirection(v.Exits)}, nil
	}

	spec, _ := ActionSpecFor(choice)
	detail, err := c.narrator.ActionLine(ctx, p, v, spec)
	if err != nil {
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}
		c.logger.WarnContext(ctx, "narrator unavailable, using fallback line",
			"player", p.Name, "choice", string(choice), "error", err)
		detail = fallbackLine(p, choice)
	}
	return Decision{Choice: choice, Detail: clampDetail(detail)}, nil
}

// drawChoice makes a weighted draw over MOVE, TALK, and INTERACT.
func (c *AutoController) drawChoice(p *Player, v View) Choice {
	if len(v.Exits) == 0 {
		if v.HasOthers() && p.Personality.TalkWeight(true) >= p.Personality.InteractWeight(true) {
			return ChoiceTalk
		}
		return ChoiceInteract
	}

	if p.Personality == "" {
		if c.rng.Float64() < NPCMoveProbability {
			return ChoiceMove
		}
		if v.HasOthers() && c.rng.Float64() < 0.5 {
			return ChoiceTalk
		}
		return ChoiceInteract
	}

	weights := p.Personality.ActionWeights(v.HasOthers())
	total := weights[ChoiceMove] + weights[ChoiceTalk] + weights[ChoiceInteract]
	if total <= 0 {
		return ChoiceMove
	}
	r := c.rng.Float64() * total
	for _, choice := range []Choice{ChoiceMove, ChoiceTalk, ChoiceInteract} {
		r -= weights[choice]
		if r < 0 {
			return choice
		}
	}
	return ChoiceMove
}

// pickDirection chooses an exit, avoiding an immediate return to the
// previous room when any other exit exists.
func (c *AutoController) pickDirection(exits []world.Direction) world.Direction {
	if c.lastDirection != "" {
		back := c.lastDirection.Opposite()
		var forward []world.Direction
		for _, d := range exits {
			if d != back {
				forward = append(forward, d)
			}
		}
		if len(forward) > 0 {
			exits = forward
		}
	}
	d := exits[c.rng.Intn(len(exits))]
	c.lastDirection = d
	return d
}

// fallbackLine returns a canned in-character line for when the oracle
// cannot be reached.
func fallbackLine(p *Player, choice Choice) string {
	if choice == ChoiceTalk {
		switch p.Personality {
		case Hostile:
			return fmt.Sprintf("%s growls a low warning at the room.", p.Name)
		case Helpful:
			return fmt.Sprintf("%s offers a friendly greeting.", p.Name)
		default:
			return fmt.Sprintf("%s mutters something under their breath.", p.Name)
		}
	}
	switch p.Personality {
	case Hostile:
		return fmt.Sprintf("%s kicks over something fragile.", p.Name)
	case Helpful:
		return fmt.Sprintf("%s tidies up a corner of the room.", p.Name)
	default:
		return fmt.Sprintf("%s pokes around the room.", p.Name)
	}
}
