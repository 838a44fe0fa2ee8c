// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package oracle

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// System prompts framing every request.
const (
	DMSystemPrompt = "You are the Dungeon Master overseeing a text-based exploration game. " +
		"There are multiple players exploring a world made up of interconnected rooms. " +
		"Your task is to generate descriptions for newly created rooms based on their connections and paths. " +
		"Do not mention anything about the players themselves."

	PlayerSystemPrompt = "You are an adventurer in a text-based exploration game. " +
		"Make decisions based on your surroundings and history."
)

// Default word budgets for generated text.
const (
	RoomDescriptionWords      = 40
	CharacterDescriptionWords = 40
	MemoryDescriptionWords    = 60
)

//go:embed prompts/*.txt
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.txt"))

const noPriorDescription = "No prior description."

func renderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// describeRoomPrompt lists each reserved path as either the neighbor's
// name or "unknown" for a slot still open to exploration.
func describeRoomPrompt(r *world.Room, exits []world.Direction, neighborName func(world.Direction) string) (string, error) {
	paths := make([]string, 0, len(exits))
	for _, d := range exits {
		name := "unknown"
		if neighborName != nil {
			if n := neighborName(d); n != "" {
				name = n
			}
		}
		paths = append(paths, fmt.Sprintf("%s: %s", d, name))
	}
	return renderPrompt("describe_room.txt", map[string]any{
		"WordCount": RoomDescriptionWords,
		"RoomName":  r.Name,
		"RoomPaths": "{" + strings.Join(paths, ", ") + "}",
	})
}

// updateRoomConnectionPrompt asks for a revised description of an
// existing room after a new neighbor connects to it.
func updateRoomConnectionPrompt(r *world.Room, newRoom *world.Room, d world.Direction) (string, error) {
	return renderPrompt("update_room_connection.txt", map[string]any{
		"RoomName":           r.Name,
		"NewRoomName":        newRoom.Name,
		"Direction":          d.String(),
		"CurrentDescription": r.Description,
	})
}

func describeCharacterPrompt(name string, personality agent.Personality) (string, error) {
	framing := ""
	if personality != "" {
		framing = personality.Description()
	}
	return renderPrompt("describe_character.txt", map[string]any{
		"WordCount":   CharacterDescriptionWords,
		"Name":        name,
		"Personality": framing,
	})
}

func updatePlayerMemoryPrompt(entry *agent.PlayerEntry) (string, error) {
	current := entry.Description
	if current == "" {
		current = noPriorDescription
	}
	interaction := "No recent interactions."
	if last, ok := entry.LastInteraction(); ok {
		interaction = last.Content
	}
	return renderPrompt("update_player_memory.txt", map[string]any{
		"PlayerName":         entry.Name,
		"CurrentDescription": current,
		"Interaction":        interaction,
	})
}

func updateRoomMemoryPrompt(entry *agent.RoomEntry) (string, error) {
	current := entry.Description
	if current == "" {
		current = noPriorDescription
	}
	observation := "Nothing notable."
	if last, ok := entry.LastEvent(); ok {
		observation = fmt.Sprintf("%s %s: %s", last.ActorName, last.Type, last.Content)
	}
	return renderPrompt("update_room_memory.txt", map[string]any{
		"RoomName":           entry.Name,
		"CurrentDescription": current,
		"Observation":        observation,
	})
}

func npcActionPrompt(p *agent.Player, v agent.View, spec agent.ActionSpec) (string, error) {
	others := "None"
	if len(v.Others) > 0 {
		names := make([]string, len(v.Others))
		for i, o := range v.Others {
			names[i] = o.Name
		}
		others = strings.Join(names, ", ")
	}

	framing := p.Personality.Description()
	switch spec.Choice {
	case agent.ChoiceTalk:
		framing = fmt.Sprintf("%s Speak in a %s manner.", framing, p.Personality.TalkTone())
	case agent.ChoiceInteract:
		framing = fmt.Sprintf("%s Your intent is %s.", framing, p.Personality.InteractIntent())
	}

	return renderPrompt("npc_action.txt", map[string]any{
		"Name":              p.Name,
		"RoomName":          v.Room.Name,
		"RoomDescription":   v.Room.Description,
		"OtherPlayers":      others,
		"Action":            string(spec.Choice),
		"ActionDescription": spec.Description,
		"Framing":           framing,
		"Prompt":            spec.Prompt,
	})
}

func rewriteRoomPrompt(r *world.Room, interaction string) (string, error) {
	return renderPrompt("rewrite_room.txt", map[string]any{
		"Interaction":        interaction,
		"CurrentDescription": r.Description,
	})
}
