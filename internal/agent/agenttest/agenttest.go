// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package agenttest provides scripted controllers and canned oracle
// stand-ins for tests.
package agenttest

import (
	"context"
	"fmt"

	"github.com/driftway/driftway/internal/agent"
)

// Scripted is a Controller that replays a fixed decision sequence,
// cycling when it runs out.
type Scripted struct {
	Decisions []agent.Decision
	next      int
}

var _ agent.Controller = (*Scripted)(nil)

// Decide returns the next scripted decision.
func (s *Scripted) Decide(context.Context, *agent.Player, agent.View) (agent.Decision, error) {
	if len(s.Decisions) == 0 {
		return agent.Decision{}, fmt.Errorf("scripted controller has no decisions")
	}
	d := s.Decisions[s.next%len(s.Decisions)]
	s.next++
	return d, nil
}

// Quitter is a Controller that immediately quits.
type Quitter struct{}

var _ agent.Controller = Quitter{}

func (Quitter) Decide(context.Context, *agent.Player, agent.View) (agent.Decision, error) {
	return agent.Decision{}, agent.ErrQuit
}

// Synthesizer implements agent.Synthesizer with deterministic output.
// Set Err to make every synthesis fail.
type Synthesizer struct {
	Err   error
	Calls int
}

var _ agent.Synthesizer = (*Synthesizer)(nil)

func (s *Synthesizer) SynthesizePlayerMemory(_ context.Context, observer *agent.Player, entry *agent.PlayerEntry) (string, error) {
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	last, _ := entry.LastInteraction()
	return fmt.Sprintf("%s remembers %s: %s", observer.Name, entry.Name, last.Content), nil
}

func (s *Synthesizer) SynthesizeRoomMemory(_ context.Context, observer *agent.Player, entry *agent.RoomEntry) (string, error) {
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	last, _ := entry.LastEvent()
	return fmt.Sprintf("%s remembers %s: %s", observer.Name, entry.Name, last.Content), nil
}

// Narrator implements agent.Narrator with deterministic output.
// Set Err to simulate an oracle outage.
type Narrator struct {
	Err error
}

var _ agent.Narrator = (*Narrator)(nil)

func (n *Narrator) ActionLine(_ context.Context, p *agent.Player, _ agent.View, spec agent.ActionSpec) (string, error) {
	if n.Err != nil {
		return "", n.Err
	}
	return fmt.Sprintf("%s performs %s", p.Name, spec.Choice), nil
}
