// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import (
	"fmt"
	"math/rand"
	"strings"
)

// Room name vocabulary. Names combine an adjective with a place noun;
// collisions across rooms are acceptable (identity is the ULID).
var (
	nameAdjectives = []string{
		"Ancient", "Forgotten", "Gloomy", "Sunken", "Echoing",
		"Crumbling", "Silent", "Misty", "Overgrown", "Shattered",
		"Hollow", "Frozen", "Gilded", "Withered", "Luminous",
		"Dusty", "Vaulted", "Narrow", "Flooded", "Restless",
	}
	namePlaces = []string{
		"Hall", "Passage", "Chamber", "Grotto", "Gallery",
		"Cellar", "Atrium", "Corridor", "Sanctum", "Landing",
		"Archive", "Cloister", "Antechamber", "Stairwell", "Vault",
		"Crossing", "Alcove", "Terrace", "Refectory", "Undercroft",
	}
)

// Character name vocabulary for autonomous agents. Given name plus a
// byname keeps collisions rare within the roster cap.
var (
	nameGiven = []string{
		"Bram", "Mira", "Toil", "Edda", "Corvin", "Lys",
		"Hadric", "Onna", "Pell", "Sable", "Wren", "Galt",
		"Ines", "Dros", "Yara", "Fenn",
	}
	nameBynames = []string{
		"Thorn", "Ashdown", "Mirefold", "Quill", "Harrow", "Vane",
		"Coldwell", "Bracken", "Moss", "Larkspur", "Gloam", "Ridley",
	}
)

// Namer generates room names from a shared RNG so that world
// generation is reproducible under a fixed seed.
type Namer struct {
	rng *rand.Rand
}

// NewNamer creates a Namer drawing from the given RNG.
func NewNamer(rng *rand.Rand) *Namer {
	return &Namer{rng: rng}
}

// RoomName produces a short evocative room name.
func (n *Namer) RoomName() string {
	adj := nameAdjectives[n.rng.Intn(len(nameAdjectives))]
	place := namePlaces[n.rng.Intn(len(namePlaces))]
	return fmt.Sprintf("%s %s", adj, place)
}

// CharacterName produces a name for an autonomous agent. The result
// passes ValidateAgentName.
func (n *Namer) CharacterName() string {
	given := nameGiven[n.rng.Intn(len(nameGiven))]
	byname := nameBynames[n.rng.Intn(len(nameBynames))]
	return fmt.Sprintf("%s %s", given, byname)
}

// IsGeneratedName reports whether the name matches the generator's
// adjective-place shape. Used only in tests.
func IsGeneratedName(name string) bool {
	parts := strings.SplitN(name, " ", 2)
	if len(parts) != 2 {
		return false
	}
	return contains(nameAdjectives, parts[0]) && contains(namePlaces, parts[1])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
