// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalityWeights(t *testing.T) {
	tests := []struct {
		name        string
		personality Personality
		hasOthers   bool
		move, talk, interact float64
	}{
		{name: "explorer alone", personality: Explorer, hasOthers: false, move: 0.85, talk: 0, interact: 0.4},
		{name: "explorer with company", personality: Explorer, hasOthers: true, move: 0.85, talk: 0.1, interact: 0.4},
		{name: "homebody with company", personality: Homebody, hasOthers: true, move: 0.3, talk: 0, interact: 0},
		{name: "hostile alone roams", personality: Hostile, hasOthers: false, move: 0.6, talk: 0, interact: 0.7},
		{name: "hostile with prey stays", personality: Hostile, hasOthers: true, move: 0.2, talk: 0.3, interact: 0.7},
		{name: "helpful alone seeks", personality: Helpful, hasOthers: false, move: 0.7, talk: 0, interact: 0.1},
		{name: "helpful with company talks", personality: Helpful, hasOthers: true, move: 0.1, talk: 0.8, interact: 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.personality.ActionWeights(tt.hasOthers)
			assert.InDelta(t, tt.move, w[ChoiceMove], 1e-9)
			assert.InDelta(t, tt.talk, w[ChoiceTalk], 1e-9)
			assert.InDelta(t, tt.interact, w[ChoiceInteract], 1e-9)
		})
	}
}

func TestPersonalityNeverTalksAlone(t *testing.T) {
	for _, p := range Personalities() {
		assert.Zero(t, p.TalkWeight(false), "%s must not talk to an empty room", p)
	}
}

func TestPersonalityValidate(t *testing.T) {
	for _, p := range Personalities() {
		require.NoError(t, p.Validate())
	}
	require.NoError(t, Personality("").Validate(), "humans carry no archetype")
	require.Error(t, Personality("chaotic").Validate())
}

func TestRandomPersonality(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := make(map[Personality]bool)
	for i := 0; i < 200; i++ {
		p := RandomPersonality(rng)
		require.NoError(t, p.Validate())
		seen[p] = true
	}
	assert.Len(t, seen, 4, "all archetypes reachable")
}
