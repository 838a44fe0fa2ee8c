// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package world contains the world model domain types and the graph
// generation logic.
package world

import (
	"errors"
	"strings"
)

// Direction identifies one of the four cardinal movement directions.
type Direction string

// Cardinal directions.
const (
	North Direction = "N"
	South Direction = "S"
	East  Direction = "E"
	West  Direction = "W"
)

// Directions returns the cardinal directions in canonical order.
// Graph generation iterates this order so behavior is reproducible
// under a fixed RNG seed.
func Directions() [4]Direction {
	return [4]Direction{North, South, East, West}
}

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// ErrInvalidDirection indicates an unrecognized direction value.
var ErrInvalidDirection = errors.New("invalid direction")

// Validate checks that the direction is a recognized value.
func (d Direction) Validate() error {
	switch d {
	case North, South, East, West:
		return nil
	default:
		return ErrInvalidDirection
	}
}

// Opposite returns the pole of the direction (North↔South, East↔West).
// Opposite is an involution: d.Opposite().Opposite() == d.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return d
	}
}

// Delta returns the unit coordinate translation for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// ParseDirection parses a direction from user input. Matching is
// case-insensitive and accepts both the short form ("n") and the full
// name ("north").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N", "NORTH":
		return North, nil
	case "S", "SOUTH":
		return South, nil
	case "E", "EAST":
		return East, nil
	case "W", "WEST":
		return West, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Coord is an integer 2D coordinate on the world grid.
type Coord struct {
	X int
	Y int
}

// Translate returns the coordinate one step in the given direction.
func (c Coord) Translate(d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}
