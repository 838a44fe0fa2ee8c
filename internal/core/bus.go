// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package core runs the game: the turn loop, the event bus, and the
// wiring between the world graph, the agents, and the oracle.
package core

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// EventBus persists events and fans them out to their witnesses.
//
// Delivery is at-least-persisted: the event is appended to the log
// before any witness sees it. A witness whose memory update fails is
// logged and skipped; it never blocks the others and never fails the
// actor's turn.
type EventBus struct {
	events world.EventRepository
	reg    *agent.Registry
	synth  agent.Synthesizer
	logger *slog.Logger
}

// NewEventBus creates an event bus. events may be nil to run without
// persistence.
func NewEventBus(events world.EventRepository, reg *agent.Registry, synth agent.Synthesizer, logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{events: events, reg: reg, synth: synth, logger: logger}
}

// NotifyMoveOut publishes a MOVE_OUT event to the occupants the actor
// is leaving behind.
func (b *EventBus) NotifyMoveOut(ctx context.Context, worldID ulid.ULID, actor *agent.Player, roomID ulid.ULID) error {
	ev := world.NewMoveOutEvent(roomID, actor.ID, actor.Name)
	return b.Publish(ctx, worldID, ev, actor)
}

// NotifyMoveIn publishes a MOVE_IN event to the occupants of the room
// the actor just entered.
func (b *EventBus) NotifyMoveIn(ctx context.Context, worldID ulid.ULID, actor *agent.Player, roomID ulid.ULID) error {
	ev := world.NewMoveInEvent(roomID, actor.ID, actor.Name)
	return b.Publish(ctx, worldID, ev, actor)
}

// NotifyAction publishes a TALK or INTERACT event to the actor's
// fellow occupants.
func (b *EventBus) NotifyAction(ctx context.Context, worldID ulid.ULID, actor *agent.Player, roomID ulid.ULID, action world.ActionType, content string) error {
	ev := world.NewActionEvent(roomID, actor.ID, actor.Name, action, content)
	return b.Publish(ctx, worldID, ev, actor)
}

// Publish stamps the event with its witness list (everyone in the room
// except the actor), appends it to the log, and delivers it to each
// witness in turn.
//
// Persistence failure fails the publish; a single witness's synthesis
// failure does not.
func (b *EventBus) Publish(ctx context.Context, worldID ulid.ULID, ev world.Event, actor *agent.Player) error {
	witnesses := b.reg.InRoom(ev.RoomID)
	ev.WitnessIDs = ev.WitnessIDs[:0]
	for _, w := range witnesses {
		if w.ID != actor.ID {
			ev.WitnessIDs = append(ev.WitnessIDs, w.ID)
		}
	}

	if b.events != nil {
		if err := b.events.Append(ctx, worldID, ev); err != nil {
			return oops.
				Code("event_persist_failed").
				With("event_id", ev.ID.String()).
				With("type", ev.Type.String()).
				Wrap(err)
		}
	}
	EventsPublished.WithLabelValues(ev.Type.String()).Inc()

	for _, w := range witnesses {
		if w.ID == actor.ID {
			continue
		}
		if err := w.Witness(ctx, ev, actor, b.synth); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			WitnessFailures.Inc()
			b.logger.WarnContext(ctx, "witness skipped: memory update failed",
				"witness", w.Name,
				"event_id", ev.ID.String(),
				"event_type", ev.Type.String(),
				"error", err,
			)
		}
	}
	return nil
}
