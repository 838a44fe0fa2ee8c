// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package store

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation. Each table carries at most one unique
// constraint beyond its primary key, so the caller knows which domain
// error it maps to.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Paths, memory, and history ride as JSONB documents. The entities
// marshal cleanly: ULIDs serialize as their canonical text form, open
// path slots as JSON null.

func encodePaths(paths map[world.Direction]*ulid.ULID) ([]byte, error) {
	data, err := json.Marshal(paths)
	if err != nil {
		return nil, oops.With("operation", "encode paths").Wrap(err)
	}
	return data, nil
}

func decodePaths(data []byte) (map[world.Direction]*ulid.ULID, error) {
	paths := make(map[world.Direction]*ulid.ULID)
	if len(data) == 0 {
		return paths, nil
	}
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, oops.With("operation", "decode paths").Wrap(err)
	}
	return paths, nil
}

func encodeMemory(m *agent.Memory) ([]byte, error) {
	if m == nil {
		m = agent.NewMemory()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, oops.With("operation", "encode memory").Wrap(err)
	}
	return data, nil
}

func decodeMemory(data []byte) (*agent.Memory, error) {
	m := agent.NewMemory()
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, oops.With("operation", "decode memory").Wrap(err)
	}
	if m.Players == nil {
		m.Players = make(map[string]*agent.PlayerEntry)
	}
	if m.Rooms == nil {
		m.Rooms = make(map[ulid.ULID]*agent.RoomEntry)
	}
	return m, nil
}

func encodeHistory(steps []agent.Step) ([]byte, error) {
	if steps == nil {
		steps = []agent.Step{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return nil, oops.With("operation", "encode history").Wrap(err)
	}
	return data, nil
}

func decodeHistory(data []byte) ([]agent.Step, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var steps []agent.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, oops.With("operation", "decode history").Wrap(err)
	}
	return steps, nil
}

// ulidsToStrings converts a ULID slice for a text[] column.
func ulidsToStrings(ids []ulid.ULID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// parseULIDs converts a text[] column back to ULIDs.
func parseULIDs(strs []string, fieldName string) ([]ulid.ULID, error) {
	if len(strs) == 0 {
		return nil, nil
	}
	out := make([]ulid.ULID, len(strs))
	for i, s := range strs {
		id, err := ulid.Parse(s)
		if err != nil {
			return nil, oops.With("operation", "parse "+fieldName).With(fieldName, s).Wrap(err)
		}
		out[i] = id
	}
	return out, nil
}
