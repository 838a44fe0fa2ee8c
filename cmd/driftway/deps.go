// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package main

import (
	"context"
	"io"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/config"
	"github.com/driftway/driftway/internal/oracle"
	"github.com/driftway/driftway/internal/store"
	"github.com/driftway/driftway/internal/world"
)

// GameStores bundles the repositories a game session needs.
type GameStores struct {
	Worlds  world.WorldRepository
	Rooms   world.RoomRepository
	Players agent.PlayerRepository
	Events  world.EventRepository
}

// PlayDeps contains injectable dependencies for the play command.
// All nil fields use their default implementations.
type PlayDeps struct {
	// StoresFactory opens the repositories. Default: in-memory stores
	// offline, store.Open against cfg.Database.URL otherwise.
	StoresFactory func(ctx context.Context, cfg config.Config) (*GameStores, func(), error)

	// GeneratorFactory creates the oracle generator. Default: Gemini for
	// the gemini provider, Static otherwise.
	GeneratorFactory func(ctx context.Context, cfg config.Config) (oracle.Generator, func(), error)

	// In and Out override the command's stdin/stdout.
	In  io.Reader
	Out io.Writer
}

func defaultStoresFactory(ctx context.Context, cfg config.Config) (*GameStores, func(), error) {
	if cfg.Offline {
		return &GameStores{
			Worlds:  store.NewMemWorldRepository(),
			Rooms:   store.NewMemRoomRepository(),
			Players: store.NewMemPlayerRepository(),
			Events:  store.NewMemEventRepository(),
		}, func() {}, nil
	}

	s, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return &GameStores{
		Worlds:  s.Worlds,
		Rooms:   s.Rooms,
		Players: s.Players,
		Events:  s.Events,
	}, s.Close, nil
}

func defaultGeneratorFactory(ctx context.Context, cfg config.Config) (oracle.Generator, func(), error) {
	if cfg.Oracle.Provider != config.OracleGemini {
		return oracle.Static{}, func() {}, nil
	}

	var opts []oracle.GeminiOption
	if cfg.Oracle.Model != "" {
		opts = append(opts, oracle.WithModel(cfg.Oracle.Model))
	}
	g, err := oracle.NewGemini(ctx, cfg.Oracle.APIKey, opts...)
	if err != nil {
		return nil, nil, err
	}
	return g, func() { _ = g.Close() }, nil
}
