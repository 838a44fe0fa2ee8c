// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package oracle

import (
	"context"
	"hash/fnv"
	"strings"
)

// Static is an offline Generator producing serviceable prose without
// any API. It doubles as the fallback when the real oracle is down and
// as the primary in offline mode and in tests. Output is a pure
// function of the prompt, so games replay identically.
type Static struct{}

var _ Generator = Static{}

var (
	staticRoomLines = []string{
		"Cold air drifts through cracks in the masonry, and the floor is worn smooth by footsteps long gone.",
		"Dust hangs in a shaft of pale light, settling over broken furniture nobody bothered to clear away.",
		"The walls are close and damp, marked here and there with scratches that might be writing.",
		"Something dripped here for years, leaving a dark stain spreading across the flagstones.",
		"Faded tapestries sag from rusted hooks, their patterns lost to rot and time.",
	}
	staticCharacterLines = []string{
		"A traveler with road-worn boots, a patched cloak, and eyes that miss very little.",
		"Lean and quiet, carrying the smell of campfires and a knife that has seen use.",
		"Broad-shouldered and weather-beaten, given to long silences and sudden grins.",
		"Small, quick, and wrapped in too many scarves, with ink-stained fingers.",
	}
	staticMemoryLines = []string{
		"The memory is hazy, but the moment left its mark.",
		"Another detail settles into place, coloring everything remembered before.",
		"The impression sharpens; the picture now holds what just happened.",
	}
)

// Generate picks a deterministic line for the prompt. Memory and
// interaction prompts echo back their source material so remembered
// state visibly drifts with events.
func (Static) Generate(_ context.Context, system, prompt string) (string, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	n := h.Sum32()

	switch {
	case strings.Contains(prompt, "Recent Interaction"):
		return pick(staticMemoryLines, n) + " " + lastSection(prompt), nil
	case strings.Contains(prompt, "Recent Observation"):
		return pick(staticMemoryLines, n) + " " + lastSection(prompt), nil
	case strings.Contains(prompt, "performed the following interaction"):
		return pick(staticRoomLines, n) + " Signs of recent disturbance remain.", nil
	case strings.Contains(prompt, "has just been connected to a new room"):
		return pick(staticRoomLines, n) + " A newly opened passage leads away.", nil
	case strings.Contains(prompt, "description of your character"):
		return pick(staticCharacterLines, n), nil
	case strings.Contains(prompt, "you have decided to"), strings.Contains(prompt, "You have decided to"):
		return "They go about it with quiet deliberation.", nil
	default:
		return pick(staticRoomLines, n), nil
	}
}

func pick(lines []string, n uint32) string {
	return lines[int(n)%len(lines)]
}

// lastSection returns the text after the final "---" separator, which
// in memory prompts is the event being folded in.
func lastSection(prompt string) string {
	parts := strings.Split(prompt, "---")
	tail := strings.TrimSpace(parts[len(parts)-1])
	if i := strings.Index(tail, ":\n"); i >= 0 {
		tail = strings.TrimSpace(tail[i+2:])
	}
	tail = strings.TrimSuffix(tail, "Provide only the updated description, no preamble.")
	return strings.TrimSpace(tail)
}
