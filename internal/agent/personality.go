// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package agent contains the player model: identity, lossy memory,
// personalities, and the controllers that drive decisions each turn.
package agent

import (
	"math/rand"

	"github.com/driftway/driftway/internal/world"
)

// Personality is a behavioral archetype for autonomous agents.
type Personality string

const (
	// Explorer keeps moving to new places and rarely talks.
	Explorer Personality = "explorer"
	// Homebody circles familiar rooms and avoids everyone.
	Homebody Personality = "homebody"
	// Hostile seeks out others to threaten, steal, and break things.
	Hostile Personality = "hostile"
	// Helpful seeks out others to talk to and help.
	Helpful Personality = "helpful"
)

// Personalities returns all archetypes in a fixed order.
func Personalities() [4]Personality {
	return [4]Personality{Explorer, Homebody, Hostile, Helpful}
}

// RandomPersonality picks an archetype uniformly from the RNG.
func RandomPersonality(rng *rand.Rand) Personality {
	all := Personalities()
	return all[rng.Intn(len(all))]
}

// String returns the string representation of the personality.
func (p Personality) String() string {
	return string(p)
}

// Validate checks that the personality is a recognized archetype.
func (p Personality) Validate() error {
	switch p {
	case Explorer, Homebody, Hostile, Helpful, "":
		return nil
	default:
		return &world.ValidationError{Field: "personality", Message: "unknown archetype " + string(p)}
	}
}

// MoveWeight returns the relative preference for moving this turn.
// Hostile and helpful agents roam while alone and settle once they
// have company.
func (p Personality) MoveWeight(hasOthers bool) float64 {
	switch p {
	case Explorer:
		return 0.85
	case Homebody:
		return 0.3
	case Hostile:
		if hasOthers {
			return 0.2
		}
		return 0.6
	case Helpful:
		if hasOthers {
			return 0.1
		}
		return 0.7
	default:
		return 0.5
	}
}

// TalkWeight returns the relative preference for talking this turn.
// Talking to an empty room is pointless, so the weight is zero when
// nobody else is present.
func (p Personality) TalkWeight(hasOthers bool) float64 {
	if !hasOthers {
		return 0
	}
	switch p {
	case Explorer:
		return 0.1
	case Homebody:
		return 0
	case Hostile:
		return 0.3
	case Helpful:
		return 0.8
	default:
		return 0.3
	}
}

// InteractWeight returns the relative preference for interacting with
// the environment this turn.
func (p Personality) InteractWeight(hasOthers bool) float64 {
	switch p {
	case Explorer:
		return 0.4
	case Homebody:
		return 0
	case Hostile:
		return 0.7
	case Helpful:
		return 0.1
	default:
		return 0.3
	}
}

// ActionWeights returns the per-choice preference weights used for
// weighted random selection.
func (p Personality) ActionWeights(hasOthers bool) map[Choice]float64 {
	return map[Choice]float64{
		ChoiceMove:     p.MoveWeight(hasOthers),
		ChoiceTalk:     p.TalkWeight(hasOthers),
		ChoiceInteract: p.InteractWeight(hasOthers),
	}
}

// Description returns the archetype framing used in oracle prompts.
func (p Personality) Description() string {
	switch p {
	case Explorer:
		return "You are an explorer who loves discovering new places. You prefer to keep moving and don't like small talk."
	case Homebody:
		return "You are a homebody who likes familiar places. You stay in your comfort zone and prefer solitude."
	case Hostile:
		return "You are hostile and aggressive. You interact with people and objects to cause trouble, steal, or destroy."
	case Helpful:
		return "You are helpful and friendly. You love talking to people and helping them out."
	default:
		return "You are an adventurer in this world."
	}
}

// TalkTone returns the speaking tone for TALK actions.
func (p Personality) TalkTone() string {
	switch p {
	case Explorer:
		return "brief and distracted"
	case Homebody:
		return "quiet and withdrawn"
	case Hostile:
		return "threatening and aggressive"
	case Helpful:
		return "friendly and warm"
	default:
		return "neutral"
	}
}

// InteractIntent returns the intent framing for INTERACT actions.
func (p Personality) InteractIntent() string {
	switch p {
	case Explorer:
		return "curious examination"
	case Homebody:
		return "cautious observation"
	case Hostile:
		return "destructive or thieving"
	case Helpful:
		return "trying to help or fix"
	default:
		return "investigation"
	}
}
