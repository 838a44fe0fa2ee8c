// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package world

import "errors"

// Sentinel errors for world operations.
var (
	// ErrNotFound indicates a room or world lookup missed. Callers treat
	// this as a recoverable condition (skip the turn step), never fatal.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCoordinate indicates an attempt to create a room at an
	// occupied coordinate. This is a programming error: the caller must
	// check RoomAt before creating. It is never silently tolerated.
	ErrDuplicateCoordinate = errors.New("room already exists at coordinate")

	// ErrAsymmetricPath indicates a connected path whose reverse slot
	// does not point back. This is an invariant violation, a fatal bug.
	ErrAsymmetricPath = errors.New("asymmetric path")

	// ErrDuplicateWorld indicates a world name collision. World names are
	// unique so the selection menu can address them by name.
	ErrDuplicateWorld = errors.New("world name already taken")
)
