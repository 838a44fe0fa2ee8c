// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Direction
	}{
		{North, South},
		{South, North},
		{East, West},
		{West, East},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dir.Opposite())
			assert.Equal(t, tt.dir, tt.dir.Opposite().Opposite(), "opposite must be an involution")
		})
	}
}

func TestDirectionDelta(t *testing.T) {
	tests := []struct {
		dir    Direction
		dx, dy int
	}{
		{North, 0, 1},
		{South, 0, -1},
		{East, 1, 0},
		{West, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			dx, dy := tt.dir.Delta()
			assert.Equal(t, tt.dx, dx)
			assert.Equal(t, tt.dy, dy)
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Direction
		wantErr bool
	}{
		{name: "short lowercase", input: "n", want: North},
		{name: "short uppercase", input: "E", want: East},
		{name: "full name", input: "south", want: South},
		{name: "mixed case full name", input: "WeSt", want: West},
		{name: "surrounding whitespace", input: "  north ", want: North},
		{name: "empty", input: "", wantErr: true},
		{name: "diagonal", input: "NE", wantErr: true},
		{name: "gibberish", input: "up", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDirection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoordTranslate(t *testing.T) {
	origin := Coord{X: 0, Y: 0}
	assert.Equal(t, Coord{X: 0, Y: 1}, origin.Translate(North))
	assert.Equal(t, Coord{X: 3, Y: -2}, Coord{X: 2, Y: -2}.Translate(East))

	// A step and its reverse cancel out.
	for _, d := range Directions() {
		assert.Equal(t, origin, origin.Translate(d).Translate(d.Opposite()))
	}
}
