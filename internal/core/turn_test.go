// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/agent/agenttest"
	"github.com/driftway/driftway/internal/world"
)

type cannedDescriber struct{}

func (cannedDescriber) DescribeRoom(_ context.Context, r *world.Room, exits []world.Direction, _ func(world.Direction) string) (string, error) {
	return fmt.Sprintf("The %s, with %d ways out.", r.Name, len(exits)), nil
}

func (cannedDescriber) DescribeConnection(_ context.Context, r *world.Room, neighbor *world.Room, _ world.Direction) (string, error) {
	return fmt.Sprintf("The %s, now joined to the %s.", r.Name, neighbor.Name), nil
}

type cannedRewriter struct {
	calls int
	err   error
}

func (c *cannedRewriter) RewriteRoomDescription(_ context.Context, r *world.Room, interaction string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return r.Description + " Someone " + interaction, nil
}

type gameFixture struct {
	graph  *world.Graph
	reg    *agent.Registry
	bus    *EventBus
	rew    *cannedRewriter
	events *recordingEvents
	root   *world.Room
}

func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()
	w, err := world.NewWorld("test world", 42)
	require.NoError(t, err)
	graph := world.NewGraph(w.ID, 42, cannedDescriber{})
	root, err := graph.Seed(context.Background())
	require.NoError(t, err)

	reg := agent.NewRegistry()
	events := &recordingEvents{}
	return &gameFixture{
		graph:  graph,
		reg:    reg,
		bus:    NewEventBus(events, reg, &agenttest.Synthesizer{}, nil),
		rew:    &cannedRewriter{},
		events: events,
		root:   root,
	}
}

func (f *gameFixture) addPlayer(t *testing.T, name string, ctrl agent.Controller) *agent.Player {
	t.Helper()
	p, err := agent.NewPlayer(name, agent.KindNPC, f.root.ID, ctrl)
	require.NoError(t, err)
	p.Description = p.Name + " the wanderer."
	require.NoError(t, f.reg.Add(p))
	return p
}

func (f *gameFixture) turnSystem(opts ...TurnOption) *TurnSystem {
	return NewTurnSystem(f.graph, f.reg, f.bus, f.rew, nil, opts...)
}

func TestTurnSystemMove(t *testing.T) {
	f := newGameFixture(t)
	d := f.root.Exits()[0]

	mover := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceMove, Direction: d}},
	})
	stayer := f.addPlayer(t, "Mira", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceInteract, Detail: "waits."}},
	})

	ts := f.turnSystem()
	choice, err := ts.TakeTurn(context.Background(), mover)
	require.NoError(t, err)
	assert.Equal(t, agent.ChoiceMove, choice)

	// The mover landed in a materialized room and observed it.
	next, err := f.graph.Room(mover.RoomID)
	require.NoError(t, err)
	assert.NotEqual(t, f.root.ID, next.ID)
	require.NotNil(t, mover.Memory.Room(next.ID))
	assert.Equal(t, next.Name, mover.Memory.Room(next.ID).Name)

	// The stayer witnessed the departure but not the arrival.
	require.NotNil(t, stayer.Memory.Room(f.root.ID))
	events := stayer.Memory.Room(f.root.ID).Events
	require.Len(t, events, 1)
	assert.Equal(t, world.ActionMoveOut, events[0].Type)
	assert.Nil(t, stayer.Memory.Room(next.ID))

	// Occupancy projection reflects the move.
	ts.refreshOccupancy()
	assert.NotContains(t, f.root.Occupants, mover.ID)
	assert.Contains(t, next.Occupants, mover.ID)
}

func TestTurnSystemMoveInWitnessedAtDestination(t *testing.T) {
	f := newGameFixture(t)
	d := f.root.Exits()[0]

	mover := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceMove, Direction: d}},
	})
	ts := f.turnSystem()
	_, err := ts.TakeTurn(context.Background(), mover)
	require.NoError(t, err)

	// Put a second player in the destination and walk Bram back and
	// forth so the destination witness sees a MOVE_IN.
	dest, err := f.graph.Room(mover.RoomID)
	require.NoError(t, err)
	watcher := f.addPlayer(t, "Mira", &agenttest.Scripted{})
	watcher.RoomID = dest.ID

	back := d.Opposite()
	mover.Controller = &agenttest.Scripted{Decisions: []agent.Decision{
		{Choice: agent.ChoiceMove, Direction: back},
		{Choice: agent.ChoiceMove, Direction: d},
	}}
	_, err = ts.TakeTurn(context.Background(), mover)
	require.NoError(t, err)
	_, err = ts.TakeTurn(context.Background(), mover)
	require.NoError(t, err)

	var types []world.ActionType
	for _, ev := range watcher.Memory.Room(dest.ID).Events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []world.ActionType{world.ActionMoveOut, world.ActionMoveIn}, types)
}

func TestTurnSystemInteractRewritesRoom(t *testing.T) {
	f := newGameFixture(t)
	p := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceInteract, Detail: "scratches a mark into the wall."}},
	})

	before := f.root.Description
	ts := f.turnSystem()
	_, err := ts.TakeTurn(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, f.rew.calls)
	assert.NotEqual(t, before, f.root.Description, "interaction leaves a mark on the room")
	assert.Contains(t, f.root.Description, "scratches a mark")

	// Re-observation picks up the rewritten description.
	require.NotNil(t, p.Memory.Room(f.root.ID))
	assert.Equal(t, f.root.Description, p.Memory.Room(f.root.ID).Description)
}

func TestTurnSystemInteractOracleFailureKeepsDescription(t *testing.T) {
	f := newGameFixture(t)
	f.rew.err = fmt.Errorf("oracle down")
	p := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceInteract, Detail: "pulls a lever."}},
	})

	before := f.root.Description
	_, err := f.turnSystem().TakeTurn(context.Background(), p)
	require.NoError(t, err, "oracle outage must not fail the turn")
	assert.Equal(t, before, f.root.Description)
}

func TestTurnSystemTalkReachesOccupantsOnly(t *testing.T) {
	f := newGameFixture(t)
	talker := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceTalk, Detail: "We should stick together."}},
	})
	listener := f.addPlayer(t, "Mira", &agenttest.Scripted{})
	far := f.addPlayer(t, "Wren", &agenttest.Scripted{})
	d := f.root.Exits()[0]
	farRoom, err := f.graph.Traverse(context.Background(), f.root, d)
	require.NoError(t, err)
	far.RoomID = farRoom.ID

	_, err = f.turnSystem().TakeTurn(context.Background(), talker)
	require.NoError(t, err)

	require.NotNil(t, listener.Memory.Room(f.root.ID))
	events := listener.Memory.Room(f.root.ID).Events
	require.Len(t, events, 1)
	assert.Equal(t, world.ActionTalk, events[0].Type)
	assert.Equal(t, "We should stick together.", events[0].Content)
	assert.Nil(t, far.Memory.Room(f.root.ID))
}

func TestTurnSystemSoloTalkDefaults(t *testing.T) {
	f := newGameFixture(t)
	p := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceTalk, Detail: "Anyone there?"}},
	})

	choice, err := f.turnSystem().TakeTurn(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, agent.ChoiceMove, choice, "a talk with no audience becomes a move")
	assert.NotEqual(t, f.root.ID, p.RoomID)
	for _, ev := range f.events.appended {
		assert.NotEqual(t, world.ActionTalk, ev.Type, "no talk event reaches the log")
	}
}

func TestTurnSystemInvalidDecisionDefaults(t *testing.T) {
	f := newGameFixture(t)
	p := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceMove, Direction: world.Direction("X")}},
	})

	choice, err := f.turnSystem().TakeTurn(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, agent.ChoiceMove, choice)
	assert.NotEqual(t, f.root.ID, p.RoomID, "defaulted to the first available exit")
}

func TestTurnSystemRunRounds(t *testing.T) {
	f := newGameFixture(t)
	a := f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceInteract, Detail: "paces."}},
	})
	b := f.addPlayer(t, "Mira", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceInteract, Detail: "hums."}},
	})

	ts := f.turnSystem(WithMaxRounds(3))
	require.NoError(t, ts.Run(context.Background()))

	// Each interact turn re-observes; both players know the root room.
	assert.NotNil(t, a.Memory.Room(f.root.ID))
	assert.NotNil(t, b.Memory.Room(f.root.ID))
	assert.Equal(t, 3*2, f.rew.calls, "two players, three rounds, one interact each")
}

func TestTurnSystemQuitEndsRun(t *testing.T) {
	f := newGameFixture(t)
	f.addPlayer(t, "Bram", agenttest.Quitter{})
	f.addPlayer(t, "Mira", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceInteract, Detail: "waves."}},
	})

	ts := f.turnSystem(WithMaxRounds(10))
	require.NoError(t, ts.Run(context.Background()), "quitting is a clean ending")
	assert.Zero(t, f.rew.calls, "the round stops at the quitter")
}

func TestTurnSystemRunCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newGameFixture(t)
	f.addPlayer(t, "Bram", &agenttest.Scripted{
		Decisions: []agent.Decision{{Choice: agent.ChoiceInteract, Detail: "paces."}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	ts := f.turnSystem()

	done := make(chan error, 1)
	go func() { done <- ts.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("turn loop did not stop after cancellation")
	}
}
