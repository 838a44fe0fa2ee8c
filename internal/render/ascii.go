// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package render draws the terminal view: the ASCII world map and the
// turn announcements.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/core"
	"github.com/driftway/driftway/internal/world"
)

// Map cell geometry. Adjacent rooms share a border line, so a cell
// contributes width-1 columns and height-1 rows to the grid.
const (
	cellWidth  = 9
	cellHeight = 5
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD75F")).
			Bold(true)

	roomStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	speechStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87D7FF"))
)

// CLI renders the game to a terminal writer.
type CLI struct {
	out   io.Writer
	graph *world.Graph
	reg   *agent.Registry
}

var _ core.Presenter = (*CLI)(nil)

// New creates a CLI renderer.
func New(out io.Writer, graph *world.Graph, reg *agent.Registry) *CLI {
	return &CLI{out: out, graph: graph, reg: reg}
}

// AnnounceTurn draws the map and the turn banner for a player.
func (c *CLI) AnnounceTurn(p *agent.Player, r *world.Room, others []*agent.Player) {
	fmt.Fprintln(c.out, c.DrawMap(p))
	fmt.Fprintln(c.out, bannerStyle.Render(fmt.Sprintf("--- %s's Turn ---", p.Name)))
	fmt.Fprintln(c.out, roomStyle.Render("You are in room: "+r.Name))
	fmt.Fprintln(c.out, roomStyle.Render("Room description: "+r.Description))
	if len(others) == 0 {
		fmt.Fprintln(c.out, mutedStyle.Render("You are alone in this room."))
		return
	}
	names := make([]string, len(others))
	for i, o := range others {
		names[i] = o.Name
	}
	fmt.Fprintln(c.out, mutedStyle.Render("Other players in the room: "+strings.Join(names, ", ")))
}

// AnnounceDecision prints what a player chose to do.
func (c *CLI) AnnounceDecision(p *agent.Player, d agent.Decision) {
	switch d.Choice {
	case agent.ChoiceMove:
		fmt.Fprintln(c.out, mutedStyle.Render(fmt.Sprintf("%s moves %s.", p.Name, d.Direction)))
	case agent.ChoiceTalk:
		fmt.Fprintln(c.out, speechStyle.Render(fmt.Sprintf("%s says: %q", p.Name, d.Detail)))
	default:
		fmt.Fprintln(c.out, speechStyle.Render(fmt.Sprintf("%s interacts: %s", p.Name, d.Detail)))
	}
}

// DrawMap renders the materialized world grid. Rooms are boxes, path
// slots are gaps in the walls, and occupants show as letters with the
// viewer as '@'.
func (c *CLI) DrawMap(viewer *agent.Player) string {
	rooms := c.graph.Rooms()
	if len(rooms) == 0 {
		return "The map is empty."
	}

	minX, maxX := rooms[0].Coord.X, rooms[0].Coord.X
	minY, maxY := rooms[0].Coord.Y, rooms[0].Coord.Y
	for _, r := range rooms {
		minX, maxX = min(minX, r.Coord.X), max(maxX, r.Coord.X)
		minY, maxY = min(minY, r.Coord.Y), max(maxY, r.Coord.Y)
	}

	gridW := (maxX-minX+1)*(cellWidth-1) + 1
	gridH := (maxY-minY+1)*(cellHeight-1) + 1
	grid := make([][]rune, gridH)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", gridW))
	}

	for _, r := range rooms {
		cx := (r.Coord.X - minX) * (cellWidth - 1)
		cy := (maxY - r.Coord.Y) * (cellHeight - 1)

		for i := 0; i < cellWidth; i++ {
			grid[cy][cx+i] = '-'
			grid[cy+cellHeight-1][cx+i] = '-'
		}
		for i := 0; i < cellHeight; i++ {
			grid[cy+i][cx] = '|'
			grid[cy+i][cx+cellWidth-1] = '|'
		}
		grid[cy][cx] = '+'
		grid[cy][cx+cellWidth-1] = '+'
		grid[cy+cellHeight-1][cx] = '+'
		grid[cy+cellHeight-1][cx+cellWidth-1] = '+'

		// Path slots are doorways: gaps in the wall.
		if r.HasPath(world.North) {
			grid[cy][cx+cellWidth/2] = ' '
		}
		if r.HasPath(world.South) {
			grid[cy+cellHeight-1][cx+cellWidth/2] = ' '
		}
		if r.HasPath(world.West) {
			grid[cy+cellHeight/2][cx] = ' '
		}
		if r.HasPath(world.East) {
			grid[cy+cellHeight/2][cx+cellWidth-1] = ' '
		}

		chars := c.occupantChars(r, viewer)
		start := (cellWidth - len(chars)) / 2
		for i, ch := range chars {
			grid[cy+cellHeight/2][cx+start+i] = ch
		}
	}

	var b strings.Builder
	header := " MAP (@: You, Letters: Others) "
	b.WriteString(headerStyle.Render(centerPad(header, gridW, '=')))
	b.WriteByte('\n')
	for _, row := range grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	b.WriteString(headerStyle.Render(strings.Repeat("=", gridW)))
	return b.String()
}

// occupantChars returns one rune per occupant, viewer first as '@',
// the rest as the initial of their name.
func (c *CLI) occupantChars(r *world.Room, viewer *agent.Player) []rune {
	var chars []rune
	for _, p := range c.reg.InRoom(r.ID) {
		if viewer != nil && p.ID == viewer.ID {
			chars = append([]rune{'@'}, chars...)
			continue
		}
		initial := []rune(strings.ToUpper(p.Name))
		if len(initial) > 0 {
			chars = append(chars, initial[0])
		} else {
			chars = append(chars, '?')
		}
	}
	if len(chars) > cellWidth-2 {
		chars = chars[:cellWidth-2]
	}
	return chars
}

func centerPad(s string, width int, fill rune) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), right)
}
