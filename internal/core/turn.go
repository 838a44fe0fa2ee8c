// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// RoomRewriter folds an interaction into a room's authoritative
// description. Implementations call the narrative oracle.
type RoomRewriter interface {
	RewriteRoomDescription(ctx context.Context, r *world.Room, interaction string) (string, error)
}

// Presenter displays the turn situation. The turn system tells it
// what is happening; how that looks is the renderer's business.
type Presenter interface {
	AnnounceTurn(p *agent.Player, r *world.Room, others []*agent.Player)
	AnnounceDecision(p *agent.Player, d agent.Decision)
}

// TurnSystem runs the round-robin game loop. All world and agent state
// is owned by the loop goroutine; controllers and the oracle are the
// only things it waits on.
type TurnSystem struct {
	graph     *world.Graph
	reg       *agent.Registry
	bus       *EventBus
	rewriter  RoomRewriter
	presenter Presenter
	players   agent.PlayerRepository // optional write-through
	logger    *slog.Logger

	maxRounds int // 0 means run until quit or cancellation
}

// TurnOption configures a TurnSystem.
type TurnOption func(*TurnSystem)

// WithPlayerRepository enables write-through persistence of player
// state after each turn.
func WithPlayerRepository(repo agent.PlayerRepository) TurnOption {
	return func(t *TurnSystem) { t.players = repo }
}

// WithMaxRounds stops the loop after n full rounds. Used for demo runs
// and tests.
func WithMaxRounds(n int) TurnOption {
	return func(t *TurnSystem) { t.maxRounds = n }
}

// WithTurnLogger sets the logger for the turn loop.
func WithTurnLogger(logger *slog.Logger) TurnOption {
	return func(t *TurnSystem) { t.logger = logger }
}

// NewTurnSystem creates a turn system.
func NewTurnSystem(graph *world.Graph, reg *agent.Registry, bus *EventBus, rewriter RoomRewriter, presenter Presenter, opts ...TurnOption) *TurnSystem {
	t := &TurnSystem{
		graph:     graph,
		reg:       reg,
		bus:       bus,
		rewriter:  rewriter,
		presenter: presenter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run executes rounds of turns until a player quits, the context is
// canceled, or the configured round limit is reached. A quit is a
// normal ending and returns nil.
func (t *TurnSystem) Run(ctx context.Context) error {
	for round := 0; t.maxRounds == 0 || round < t.maxRounds; round++ {
		for _, p := range t.reg.All() {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			choice, err := t.TakeTurn(ctx, p)
			if err != nil {
				if errors.Is(err, agent.ErrQuit) {
					t.logger.InfoContext(ctx, "player quit", "player", p.Name)
					return nil
				}
				return err
			}
			RecordTurn(string(p.Kind), string(choice), time.Since(start))
		}
	}
	return nil
}

// TakeTurn runs one player's turn: refresh the occupancy projection,
// announce the situation, get the controller's decision, and apply it.
// Returns the choice that was ultimately applied.
func (t *TurnSystem) TakeTurn(ctx context.Context, p *agent.Player) (agent.Choice, error) {
	t.refreshOccupancy()

	room, err := t.graph.Room(p.RoomID)
	if err != nil {
		return "", oops.Code("turn_failed").With("player", p.Name).Wrap(err)
	}
	others := t.reg.OthersInRoom(p)
	if t.presenter != nil {
		t.presenter.AnnounceTurn(p, room, others)
	}

	view := agent.View{Room: room, Exits: room.Exits(), Others: others}
	decision, err := p.Controller.Decide(ctx, p, view)
	if err != nil {
		return "", err
	}
	decision = t.sanitize(ctx, p, decision, view)
	if t.presenter != nil {
		t.presenter.AnnounceDecision(p, decision)
	}

	switch decision.Choice {
	case agent.ChoiceMove:
		err = t.processMove(ctx, p, room, decision.Direction)
	default:
		err = t.processAction(ctx, p, room, decision, others)
	}
	if err != nil {
		return "", err
	}
	return decision.Choice, nil
}

// sanitize replaces an unusable decision with the first available
// move, or an interaction when the room is a dead end. A controller
// bug costs a turn, never the game.
func (t *TurnSystem) sanitize(ctx context.Context, p *agent.Player, d agent.Decision, v agent.View) agent.Decision {
	valid := false
	switch d.Choice {
	case agent.ChoiceMove:
		for _, exit := range v.Exits {
			if exit == d.Direction {
				valid = true
				break
			}
		}
	case agent.ChoiceTalk:
		// Talking to an empty room publishes an event nobody witnesses.
		valid = d.Detail != "" && v.HasOthers()
	case agent.ChoiceInteract:
		valid = d.Detail != ""
	}
	if valid {
		return d
	}

	t.logger.WarnContext(ctx, "invalid decision, defaulting",
		"player", p.Name, "choice", string(d.Choice))
	if len(v.Exits) > 0 {
		return agent.Decision{Choice: agent.ChoiceMove, Direction: v.Exits[0]}
	}
	return agent.Decision{Choice: agent.ChoiceInteract, Detail: "looks around warily."}
}

func (t *TurnSystem) processMove(ctx context.Context, p *agent.Player, from *world.Room, d world.Direction) error {
	before := t.graph.Len()
	next, err := t.graph.Traverse(ctx, from, d)
	if err != nil {
		return oops.Code("move_failed").With("player", p.Name).With("direction", d.String()).Wrap(err)
	}
	if t.graph.Len() > before {
		RoomsMaterialized.Inc()
	}

	// Those staying behind see the departure before the move lands.
	if err := t.bus.NotifyMoveOut(ctx, t.graph.WorldID(), p, from.ID); err != nil {
		return err
	}

	p.MoveTo(d, next.ID)
	t.refreshOccupancy()
	p.Observe(next, t.reg.InRoom(next.ID))
	if err := t.persistPlayer(ctx, p); err != nil {
		return err
	}

	return t.bus.NotifyMoveIn(ctx, t.graph.WorldID(), p, next.ID)
}

func (t *TurnSystem) processAction(ctx context.Context, p *agent.Player, room *world.Room, d agent.Decision, others []*agent.Player) error {
	spec, ok := agent.ActionSpecFor(d.Choice)
	if !ok {
		return oops.Code("unknown_action").Errorf("no spec for choice %q", d.Choice)
	}

	// Interactions leave a mark: the oracle folds the deed into the
	// room's authoritative description. An oracle failure keeps the
	// old description rather than failing the turn.
	if spec.AffectsRoom && t.rewriter != nil {
		desc, err := t.rewriter.RewriteRoomDescription(ctx, room, d.Detail)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.WarnContext(ctx, "room rewrite skipped: oracle failed",
				"player", p.Name, "room", room.Name, "error", err)
		} else if err := t.graph.UpdateDescription(ctx, room, desc); err != nil {
			return err
		}
	}

	if err := t.bus.NotifyAction(ctx, t.graph.WorldID(), p, room.ID, d.Choice.EventType(), d.Detail); err != nil {
		return err
	}

	// Acting refreshes perception, rewritten description included.
	p.Observe(room, t.reg.InRoom(room.ID))
	return t.persistPlayer(ctx, p)
}

func (t *TurnSystem) persistPlayer(ctx context.Context, p *agent.Player) error {
	if t.players == nil {
		return nil
	}
	if err := t.players.Update(ctx, t.graph.WorldID(), p); err != nil {
		return oops.Code("player_persist_failed").With("player", p.Name).Wrap(err)
	}
	return nil
}

// refreshOccupancy recomputes every room's occupant projection from
// the authoritative player locations.
func (t *TurnSystem) refreshOccupancy() {
	for _, r := range t.graph.Rooms() {
		clear(r.Occupants)
	}
	for _, p := range t.reg.All() {
		if r, err := t.graph.Room(p.RoomID); err == nil {
			r.Occupants[p.ID] = struct{}{}
		}
	}
}
