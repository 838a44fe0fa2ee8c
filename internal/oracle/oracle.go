// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package oracle is the narrative engine: every piece of generated
// prose in the game (room descriptions, character sketches, memory
// impressions, NPC lines) comes from here.
package oracle

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// Generator produces text from a system framing and a prompt.
// Implementations are expected to be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// DM is the game's narrative oracle. It renders prompts, calls the
// generator, and bounds the output. With a fallback generator
// configured, a primary outage degrades prose quality instead of
// failing the caller.
type DM struct {
	gen      Generator
	fallback Generator
	logger   *slog.Logger
}

// Compile-time interface checks against the packages that consume the DM.
var (
	_ world.Describer   = (*DM)(nil)
	_ agent.Synthesizer = (*DM)(nil)
	_ agent.Narrator    = (*DM)(nil)
)

// DMOption configures a DM.
type DMOption func(*DM)

// WithFallback sets a secondary generator used when the primary fails.
func WithFallback(gen Generator) DMOption {
	return func(d *DM) { d.fallback = gen }
}

// WithDMLogger sets the logger.
func WithDMLogger(logger *slog.Logger) DMOption {
	return func(d *DM) { d.logger = logger }
}

// NewDM creates a narrative oracle on top of a generator.
func NewDM(gen Generator, opts ...DMOption) *DM {
	d := &DM{gen: gen, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// generate runs the primary generator and bounds the response, falling
// back when configured. An empty response is an error: silence from
// the oracle is never valid prose.
func (d *DM) generate(ctx context.Context, system, prompt string, maxWords int) (string, error) {
	text, err := d.gen.Generate(ctx, system, prompt)
	if err != nil && d.fallback != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		d.logger.WarnContext(ctx, "oracle primary failed, using fallback", "error", err)
		text, err = d.fallback.Generate(ctx, system, prompt)
	}
	if err != nil {
		return "", oops.Code("oracle_failed").Wrap(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", oops.Code("oracle_empty").Errorf("generator returned empty response")
	}
	return boundWords(text, maxWords), nil
}

// DescribeRoom produces the description for a freshly created room.
// neighborName resolves connected exits to room names so the prose can
// reference them; open slots render as "unknown".
func (d *DM) DescribeRoom(ctx context.Context, r *world.Room, exits []world.Direction, neighborName func(world.Direction) string) (string, error) {
	prompt, err := describeRoomPrompt(r, exits, neighborName)
	if err != nil {
		return "", err
	}
	return d.generate(ctx, DMSystemPrompt, prompt, RoomDescriptionWords)
}

// DescribeConnection rewrites an existing room's description after a
// new neighbor connects to it via the given direction.
func (d *DM) DescribeConnection(ctx context.Context, r *world.Room, neighbor *world.Room, dir world.Direction) (string, error) {
	prompt, err := updateRoomConnectionPrompt(r, neighbor, dir)
	if err != nil {
		return "", err
	}
	return d.generate(ctx, DMSystemPrompt, prompt, RoomDescriptionWords*2)
}

// DescribeCharacter produces a player's public self-description at
// join time.
func (d *DM) DescribeCharacter(ctx context.Context, name string, personality agent.Personality) (string, error) {
	prompt, err := describeCharacterPrompt(name, personality)
	if err != nil {
		return "", err
	}
	return d.generate(ctx, PlayerSystemPrompt, prompt, CharacterDescriptionWords)
}

// SynthesizePlayerMemory rewrites an observer's remembered description
// of another player from their latest interaction.
func (d *DM) SynthesizePlayerMemory(ctx context.Context, observer *agent.Player, entry *agent.PlayerEntry) (string, error) {
	prompt, err := updatePlayerMemoryPrompt(entry)
	if err != nil {
		return "", err
	}
	return d.generate(ctx, observerSystemPrompt(observer), prompt, MemoryDescriptionWords)
}

// SynthesizeRoomMemory rewrites an observer's remembered description
// of a room from the latest event witnessed there.
func (d *DM) SynthesizeRoomMemory(ctx context.Context, observer *agent.Player, entry *agent.RoomEntry) (string, error) {
	prompt, err := updateRoomMemoryPrompt(entry)
	if err != nil {
		return "", err
	}
	return d.generate(ctx, observerSystemPrompt(observer), prompt, MemoryDescriptionWords)
}

// ActionLine produces the in-character line for an autonomous agent's
// TALK or INTERACT action.
func (d *DM) ActionLine(ctx context.Context, p *agent.Player, v agent.View, spec agent.ActionSpec) (string, error) {
	prompt, err := npcActionPrompt(p, v, spec)
	if err != nil {
		return "", err
	}
	line, err := d.generate(ctx, observerSystemPrompt(p), prompt, 0)
	if err != nil {
		return "", err
	}
	return boundSentences(line, 2), nil
}

// RewriteRoomDescription folds an interaction into a room's
// authoritative description.
func (d *DM) RewriteRoomDescription(ctx context.Context, r *world.Room, interaction string) (string, error) {
	prompt, err := rewriteRoomPrompt(r, interaction)
	if err != nil {
		return "", err
	}
	return d.generate(ctx, DMSystemPrompt, prompt, RoomDescriptionWords*2)
}

// observerSystemPrompt frames a request as coming from the player's
// own perspective, self-description included.
func observerSystemPrompt(p *agent.Player) string {
	var b strings.Builder
	b.WriteString(PlayerSystemPrompt)
	b.WriteString("\nThese are details about yourself.\nName: ")
	b.WriteString(p.Name)
	if p.Description != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(p.Description)
	}
	return b.String()
}

// boundWords truncates text to at most max words. Zero means no limit.
func boundWords(text string, max int) string {
	if max <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ")
}

// boundSentences keeps at most max sentences of the text.
func boundSentences(text string, max int) string {
	parts := strings.SplitAfter(text, ".")
	if len(parts) <= max {
		return text
	}
	kept := strings.Join(parts[:max], "")
	if strings.TrimSpace(kept) == "" {
		return text
	}
	return strings.TrimSpace(kept)
}
