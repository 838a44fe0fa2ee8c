// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/world"
)

// QuitCommand is the input sentinel a human types to leave the game.
const QuitCommand = "/q"

// HumanController drives a player from interactive terminal input.
// Invalid input never fails a turn: it falls back to a sane default
// with a printed warning, matching the forgiving feel of a game prompt
// rather than a CLI tool.
type HumanController struct {
	in  *bufio.Scanner
	out io.Writer
	rng *rand.Rand
}

var _ Controller = (*HumanController)(nil)

// NewHumanController creates a controller reading decisions from in
// and writing prompts to out.
func NewHumanController(in io.Reader, out io.Writer, rng *rand.Rand) *HumanController {
	return &HumanController{
		in:  bufio.NewScanner(in),
		out: out,
		rng: rng,
	}
}

// Decide presents the action menu and resolves the player's input into
// a Decision. Returns ErrQuit when the player types the quit command.
func (c *HumanController) Decide(ctx context.Context, p *Player, v View) (Decision, error) {
	type option struct {
		choice Choice
		label  string
	}
	var options []option
	if len(v.Exits) > 0 {
		options = append(options, option{
			choice: ChoiceMove,
			label:  fmt.Sprintf("Move to another room (%s)", joinDirections(v.Exits)),
		})
	}
	for _, spec := range ActionSpecs() {
		// Actions aimed at other occupants are off the menu when the
		// room is empty.
		if spec.AffectsPlayers && !v.HasOthers() {
			continue
		}
		options = append(options, option{choice: spec.Choice, label: spec.Description})
	}
	if len(options) == 0 {
		return Decision{}, oops.Code("no_options").Errorf("player %s has no available actions", p.Name)
	}

	fmt.Fprintln(c.out, "\nWhat would you like to do?")
	for i, opt := range options {
		fmt.Fprintf(c.out, "%d. %s: %s\n", i+1, opt.choice, opt.label)
	}

	line, err := c.readLine(ctx, "Choose an option (number, or /q to quit): ")
	if err != nil {
		return Decision{}, err
	}

	chosen := options[0].choice
	if idx, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && idx >= 1 && idx <= len(options) {
		chosen = options[idx-1].choice
	} else {
		fmt.Fprintf(c.out, "Invalid choice. Defaulting to %s\n", chosen)
	}

	switch chosen {
	case ChoiceMove:
		d, err := c.decideMove(ctx, v)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Choice: ChoiceMove, Direction: d}, nil
	default:
		spec, _ := ActionSpecFor(chosen)
		detail, err := c.readLine(ctx, spec.Prompt+" (or /q to quit): ")
		if err != nil {
			return Decision{}, err
		}
		return Decision{Choice: chosen, Detail: clampDetail(strings.TrimSpace(detail))}, nil
	}
}

func (c *HumanController) decideMove(ctx context.Context, v View) (world.Direction, error) {
	fmt.Fprintf(c.out, "\nAvailable directions: %s\n", joinDirections(v.Exits))
	line, err := c.readLine(ctx, "Choose a direction to move (or /q to quit): ")
	if err != nil {
		return "", err
	}

	d, perr := world.ParseDirection(line)
	if perr == nil {
		for _, exit := range v.Exits {
			if exit == d {
				return d, nil
			}
		}
	}
	fallback := v.Exits[c.rng.Intn(len(v.Exits))]
	fmt.Fprintf(c.out, "Invalid direction. Defaulting to %s\n", fallback)
	return fallback, nil
}

// readLine prompts and reads one input line, honoring both the quit
// command and context cancellation between prompts.
func (c *HumanController) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", oops.Code("input_failed").Wrap(err)
		}
		// EOF on stdin means the player is gone.
		return "", ErrQuit
	}
	line := c.in.Text()
	if strings.TrimSpace(line) == QuitCommand {
		return "", ErrQuit
	}
	return line, nil
}

func joinDirections(dirs []world.Direction) string {
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
