// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/agent/agenttest"
	"github.com/driftway/driftway/internal/world"
)

// recordingEvents is an in-memory world.EventRepository.
type recordingEvents struct {
	appended []world.Event
	err      error
}

func (r *recordingEvents) Append(_ context.Context, _ ulid.ULID, e world.Event) error {
	if r.err != nil {
		return r.err
	}
	r.appended = append(r.appended, e)
	return nil
}

func (r *recordingEvents) ListByRoom(_ context.Context, _, roomID ulid.ULID, limit int) ([]world.Event, error) {
	var out []world.Event
	for _, e := range r.appended {
		if e.RoomID == roomID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func busFixture(t *testing.T) (*EventBus, *agent.Registry, *recordingEvents, ulid.ULID) {
	t.Helper()
	reg := agent.NewRegistry()
	events := &recordingEvents{}
	bus := NewEventBus(events, reg, &agenttest.Synthesizer{}, nil)
	return bus, reg, events, ulid.Make()
}

func addPlayer(t *testing.T, reg *agent.Registry, name string, roomID ulid.ULID) *agent.Player {
	t.Helper()
	p, err := agent.NewPlayer(name, agent.KindNPC, roomID, &agenttest.Scripted{})
	require.NoError(t, err)
	p.Description = p.Name + " the wanderer."
	require.NoError(t, reg.Add(p))
	return p
}

func TestEventBusPublish(t *testing.T) {
	bus, reg, events, worldID := busFixture(t)
	roomID := ulid.Make()

	actor := addPlayer(t, reg, "Bram", roomID)
	witness := addPlayer(t, reg, "Mira", roomID)
	elsewhere := addPlayer(t, reg, "Wren", ulid.Make())

	err := bus.NotifyAction(context.Background(), worldID, actor, roomID, world.ActionTalk, "Bram says hello.")
	require.NoError(t, err)

	// Event persisted with the witness list, actor excluded.
	require.Len(t, events.appended, 1)
	ev := events.appended[0]
	assert.Equal(t, []ulid.ULID{witness.ID}, ev.WitnessIDs)
	assert.False(t, ev.WitnessedBy(actor.ID))

	// Only the co-located witness remembers it.
	assert.True(t, witness.Memory.HasPlayer("Bram"))
	require.NotNil(t, witness.Memory.Room(roomID))
	assert.Len(t, witness.Memory.Room(roomID).Events, 1)
	assert.False(t, elsewhere.Memory.HasPlayer("Bram"))
	assert.False(t, actor.Memory.HasPlayer("Bram"), "actor never witnesses its own event")
}

func TestEventBusWitnessIsolation(t *testing.T) {
	reg := agent.NewRegistry()
	events := &recordingEvents{}
	synth := &agenttest.Synthesizer{Err: fmt.Errorf("oracle down")}
	bus := NewEventBus(events, reg, synth, nil)

	roomID := ulid.Make()
	actor := addPlayer(t, reg, "Bram", roomID)
	w1 := addPlayer(t, reg, "Mira", roomID)
	w2 := addPlayer(t, reg, "Wren", roomID)

	err := bus.NotifyMoveOut(context.Background(), ulid.Make(), actor, roomID)
	require.NoError(t, err, "witness failures must not fail the publish")

	// The event was still persisted and recorded by both witnesses,
	// even though synthesis failed for each.
	require.Len(t, events.appended, 1)
	assert.Len(t, w1.Memory.Room(roomID).Events, 1)
	assert.Len(t, w2.Memory.Room(roomID).Events, 1)
}

func TestEventBusPersistFailure(t *testing.T) {
	reg := agent.NewRegistry()
	events := &recordingEvents{err: fmt.Errorf("connection refused")}
	bus := NewEventBus(events, reg, &agenttest.Synthesizer{}, nil)

	roomID := ulid.Make()
	actor := addPlayer(t, reg, "Bram", roomID)
	witness := addPlayer(t, reg, "Mira", roomID)

	err := bus.NotifyMoveIn(context.Background(), ulid.Make(), actor, roomID)
	require.Error(t, err, "persistence failure fails the publish")
	assert.False(t, witness.Memory.HasPlayer("Bram"), "no delivery without persistence")
}

func TestEventBusNoWitnesses(t *testing.T) {
	bus, reg, events, worldID := busFixture(t)
	roomID := ulid.Make()
	actor := addPlayer(t, reg, "Bram", roomID)

	err := bus.NotifyAction(context.Background(), worldID, actor, roomID, world.ActionInteract, "Bram kicks the wall.")
	require.NoError(t, err)

	// Unwitnessed events still land in the log.
	require.Len(t, events.appended, 1)
	assert.Empty(t, events.appended[0].WitnessIDs)
}
