// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package oracle

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// scripted is a Generator returning fixed responses.
type scripted struct {
	text  string
	err   error
	calls int

	lastSystem string
	lastPrompt string
}

func (s *scripted) Generate(_ context.Context, system, prompt string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func testRoom(t *testing.T) *world.Room {
	t.Helper()
	r, err := world.NewRoom("Gloomy Hall", world.Coord{})
	require.NoError(t, err)
	r.Paths[world.North] = nil
	require.NoError(t, r.SetDescription("A long dark hall."))
	return r
}

func testPlayer(t *testing.T, name string) *agent.Player {
	t.Helper()
	r := testRoom(t)
	p, err := agent.NewPlayer(name, agent.KindNPC, r.ID, nil)
	require.NoError(t, err)
	p.Personality = agent.Hostile
	p.Description = "A scarred brute."
	return p
}

func TestDMDescribeRoom(t *testing.T) {
	gen := &scripted{text: "A vaulted chamber thick with dust."}
	dm := NewDM(gen)

	desc, err := dm.DescribeRoom(context.Background(), testRoom(t), []world.Direction{world.North}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A vaulted chamber thick with dust.", desc)

	assert.Equal(t, DMSystemPrompt, gen.lastSystem)
	assert.Contains(t, gen.lastPrompt, "Gloomy Hall")
	assert.Contains(t, gen.lastPrompt, "N: unknown", "open paths are presented as unexplored")
	assert.Contains(t, gen.lastPrompt, fmt.Sprintf("%d-word", RoomDescriptionWords))
}

func TestDMDescribeRoomNamesConnectedNeighbors(t *testing.T) {
	gen := &scripted{text: "A vaulted chamber thick with dust."}
	dm := NewDM(gen)

	exits := []world.Direction{world.North, world.East}
	names := map[world.Direction]string{world.North: "Sunken Vault"}
	_, err := dm.DescribeRoom(context.Background(), testRoom(t), exits, func(d world.Direction) string {
		return names[d]
	})
	require.NoError(t, err)

	assert.Contains(t, gen.lastPrompt, "N: Sunken Vault", "connected paths carry the neighbor's name")
	assert.Contains(t, gen.lastPrompt, "E: unknown", "open paths stay unexplored")
}

func TestDMDescribeConnection(t *testing.T) {
	gen := &scripted{text: "The hall, now with a doorway east."}
	dm := NewDM(gen)

	room := testRoom(t)
	neighbor, err := world.NewRoom("Sunken Vault", world.Coord{X: 1, Y: 0})
	require.NoError(t, err)

	desc, err := dm.DescribeConnection(context.Background(), room, neighbor, world.East)
	require.NoError(t, err)
	assert.Equal(t, "The hall, now with a doorway east.", desc)

	assert.Equal(t, DMSystemPrompt, gen.lastSystem)
	assert.Contains(t, gen.lastPrompt, "Gloomy Hall")
	assert.Contains(t, gen.lastPrompt, "Sunken Vault")
	assert.Contains(t, gen.lastPrompt, "via the E path")
	assert.Contains(t, gen.lastPrompt, room.Description)
}

func TestDMBoundsWords(t *testing.T) {
	gen := &scripted{text: strings.Repeat("word ", RoomDescriptionWords+30)}
	dm := NewDM(gen)

	desc, err := dm.DescribeRoom(context.Background(), testRoom(t), nil, nil)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(desc), RoomDescriptionWords)
}

func TestDMEmptyResponse(t *testing.T) {
	dm := NewDM(&scripted{text: "   \n"})
	_, err := dm.DescribeRoom(context.Background(), testRoom(t), nil, nil)
	require.Error(t, err)
}

func TestDMFallback(t *testing.T) {
	primary := &scripted{err: fmt.Errorf("rate limited")}
	fallback := &scripted{text: "A plain stone room."}
	dm := NewDM(primary, WithFallback(fallback))

	desc, err := dm.DescribeRoom(context.Background(), testRoom(t), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "A plain stone room.", desc)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestDMNoFallbackPropagates(t *testing.T) {
	dm := NewDM(&scripted{err: fmt.Errorf("boom")})
	_, err := dm.DescribeRoom(context.Background(), testRoom(t), nil, nil)
	require.Error(t, err)
}

func TestDMSynthesizePlayerMemory(t *testing.T) {
	gen := &scripted{text: "Bram now seems dangerous."}
	dm := NewDM(gen)
	observer := testPlayer(t, "Mira")

	entry := &agent.PlayerEntry{Name: "Bram", Description: "A stranger."}
	entry.RecordInteraction(world.NewActionEvent(observer.RoomID, observer.ID, "Bram", world.ActionTalk, "Bram snarls a threat."))

	desc, err := dm.SynthesizePlayerMemory(context.Background(), observer, entry)
	require.NoError(t, err)
	assert.Equal(t, "Bram now seems dangerous.", desc)
	assert.Contains(t, gen.lastPrompt, "A stranger.")
	assert.Contains(t, gen.lastPrompt, "Bram snarls a threat.")
	assert.Contains(t, gen.lastSystem, "Mira", "synthesis runs in the observer's voice")
}

func TestDMSynthesizeNoPriorDescription(t *testing.T) {
	gen := &scripted{text: "x"}
	dm := NewDM(gen)
	observer := testPlayer(t, "Mira")

	_, err := dm.SynthesizePlayerMemory(context.Background(), observer, &agent.PlayerEntry{Name: "Bram"})
	require.NoError(t, err)
	assert.Contains(t, gen.lastPrompt, "No prior description.")
}

func TestDMActionLine(t *testing.T) {
	gen := &scripted{text: "Kicks the table over. Splinters fly. Then he laughs. And laughs."}
	dm := NewDM(gen)
	p := testPlayer(t, "Bram")
	room := testRoom(t)
	spec, _ := agent.ActionSpecFor(agent.ChoiceInteract)

	line, err := dm.ActionLine(context.Background(), p, agent.View{Room: room}, spec)
	require.NoError(t, err)
	assert.Equal(t, "Kicks the table over. Splinters fly.", line, "NPC lines are capped at two sentences")
	assert.Contains(t, gen.lastPrompt, "destructive or thieving")
}

func TestDMRewriteRoomDescription(t *testing.T) {
	gen := &scripted{text: "The hall, now with a shattered table."}
	dm := NewDM(gen)
	room := testRoom(t)

	desc, err := dm.RewriteRoomDescription(context.Background(), room, "smashes the table")
	require.NoError(t, err)
	assert.NotEmpty(t, desc)
	assert.Contains(t, gen.lastPrompt, "smashes the table")
	assert.Contains(t, gen.lastPrompt, room.Description)
}

func TestRetriableAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, want: true},
		{name: "server error", err: &googleapi.Error{Code: http.StatusInternalServerError}, want: true},
		{name: "unavailable", err: &googleapi.Error{Code: http.StatusServiceUnavailable}, want: true},
		{name: "gateway timeout", err: &googleapi.Error{Code: http.StatusGatewayTimeout}, want: true},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest}, want: false},
		{name: "unauthorized", err: &googleapi.Error{Code: http.StatusUnauthorized}, want: false},
		{name: "wrapped retriable", err: fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusServiceUnavailable}), want: true},
		{name: "plain error", err: fmt.Errorf("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retriableAPIError(tt.err))
		})
	}
}

func TestStaticDeterministic(t *testing.T) {
	s := Static{}
	ctx := context.Background()

	a, err := s.Generate(ctx, DMSystemPrompt, "Provide a 40-word description for the room that has just been created")
	require.NoError(t, err)
	b, err := s.Generate(ctx, DMSystemPrompt, "Provide a 40-word description for the room that has just been created")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestStaticConnectionMentionsPassage(t *testing.T) {
	s := Static{}
	out, err := s.Generate(context.Background(), DMSystemPrompt,
		"The room Gloomy Hall has just been connected to a new room Sunken Vault via the E path.")
	require.NoError(t, err)
	assert.Contains(t, out, "newly opened passage")
}

func TestStaticMemoryEchoesEvent(t *testing.T) {
	observer := testPlayer(t, "Mira")
	entry := &agent.PlayerEntry{Name: "Bram", Description: "A stranger."}
	entry.RecordInteraction(world.NewActionEvent(observer.RoomID, observer.ID, "Bram", world.ActionTalk, "Bram snarls a threat."))

	dm := NewDM(Static{})
	desc, err := dm.SynthesizePlayerMemory(context.Background(), observer, entry)
	require.NoError(t, err)
	assert.Contains(t, desc, "Bram snarls a threat.",
		"offline synthesis still folds the event into the impression")
}
