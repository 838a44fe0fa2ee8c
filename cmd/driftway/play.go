// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/config"
	"github.com/driftway/driftway/internal/core"
	"github.com/driftway/driftway/internal/logging"
	"github.com/driftway/driftway/internal/oracle"
	"github.com/driftway/driftway/internal/render"
	"github.com/driftway/driftway/internal/world"
)

// DefaultWorldName is used when the player creates a world without
// naming it.
const DefaultWorldName = "Default World"

// DefaultCharacterName is offered when the player declines to name
// their character.
const DefaultCharacterName = "Oliver"

// NewPlayCmd creates the play subcommand.
func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start or resume a game",
		Long: `Start or resume a game. Without --world you are prompted to pick from
the saved worlds or create a new one.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, &PlayDeps{})
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().String("world", "", "world to play, created if it does not exist")
	cmd.Flags().String("name", "", "your character's name")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func runPlay(cmd *cobra.Command, deps *PlayDeps) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("driftway", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storesFactory := deps.StoresFactory
	if storesFactory == nil {
		storesFactory = defaultStoresFactory
	}
	stores, closeStores, err := storesFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	genFactory := deps.GeneratorFactory
	if genFactory == nil {
		genFactory = defaultGeneratorFactory
	}
	gen, closeGen, err := genFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGen()

	dmOpts := []oracle.DMOption{oracle.WithDMLogger(logger)}
	if cfg.Oracle.Provider == config.OracleGemini {
		// A flaky upstream downgrades flavor, never breaks the game.
		dmOpts = append(dmOpts, oracle.WithFallback(oracle.Static{}))
	}
	dm := oracle.NewDM(gen, dmOpts...)

	promReg := prometheus.NewRegistry()
	core.RegisterMetrics(promReg)
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		shutdown := serveMetrics(addr, promReg, logger)
		defer shutdown()
	}

	in := deps.In
	if in == nil {
		in = cmd.InOrStdin()
	}
	out := deps.Out
	if out == nil {
		out = cmd.OutOrStdout()
	}
	br := bufio.NewReader(in)

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	worldFlag, _ := cmd.Flags().GetString("world")
	w, err := selectWorld(ctx, br, out, stores.Worlds, worldFlag, seed)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "world selected", "world", w.Name, "seed", w.Seed)

	s := &session{
		cfg:    cfg,
		stores: stores,
		dm:     dm,
		reg:    agent.NewRegistry(),
		br:     br,
		out:    out,
		rng:    rand.New(rand.NewSource(w.Seed)),
		logger: logger,
	}

	s.graph = world.NewGraph(w.ID, w.Seed, dm,
		world.WithMaxPaths(cfg.Game.MaxPaths),
		world.WithRoomRepository(stores.Rooms),
		world.WithLogger(logger),
	)
	if err := s.graph.Load(ctx); err != nil {
		return err
	}
	root := s.graph.RoomAt(world.Coord{})
	if root == nil {
		if root, err = s.graph.Seed(ctx); err != nil {
			return err
		}
	}

	nameFlag, _ := cmd.Flags().GetString("name")
	if err := s.setupPlayers(ctx, w, root, nameFlag); err != nil {
		return err
	}

	presenter := render.New(out, s.graph, s.reg)
	bus := core.NewEventBus(stores.Events, s.reg, dm, logger)
	ts := core.NewTurnSystem(s.graph, s.reg, bus, dm, presenter,
		core.WithPlayerRepository(stores.Players),
		core.WithMaxRounds(cfg.Game.MaxRounds),
		core.WithTurnLogger(logger),
	)

	fmt.Fprintf(out, "\nEntering %s with %d adventurers. Type %s to quit.\n",
		w.Name, s.reg.Len(), agent.QuitCommand)

	if err := ts.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(out, "\nInterrupted. Progress is saved.")
			return nil
		}
		return err
	}
	fmt.Fprintln(out, "\nThanks for playing.")
	return nil
}

// session bundles the wiring a running game needs. It exists so player
// setup does not drag a dozen parameters around.
type session struct {
	cfg    config.Config
	stores *GameStores
	dm     *oracle.DM
	graph  *world.Graph
	reg    *agent.Registry
	br     *bufio.Reader
	out    io.Writer
	rng    *rand.Rand
	logger *slog.Logger
}

// selectWorld resolves which world to play. A --world flag selects or
// creates by name; otherwise the saved worlds are listed and the player
// picks one or types 'new'. Unparseable input falls back to the first
// listed world: a fumbled keystroke should start a game, not abort one.
func selectWorld(ctx context.Context, br *bufio.Reader, out io.Writer, worlds world.WorldRepository, name string, seed int64) (*world.World, error) {
	if name != "" {
		w, err := worlds.GetByName(ctx, name)
		switch {
		case err == nil:
			return w, worlds.Touch(ctx, w.ID)
		case errors.Is(err, world.ErrNotFound):
			return createWorld(ctx, worlds, name, seed)
		default:
			return nil, err
		}
	}

	saved, err := worlds.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		fmt.Fprintln(out, "No saved worlds. Creating a new one.")
		return promptNewWorld(ctx, br, out, worlds, seed)
	}

	fmt.Fprintln(out, "\nSaved worlds:")
	for i, w := range saved {
		fmt.Fprintf(out, "%d. %s (created %s, last played %s)\n",
			i+1, w.Name,
			w.CreatedAt.Format("2006-01-02"),
			w.LastPlayedAt.Format("2006-01-02 15:04"))
	}
	line, err := promptLine(br, out, fmt.Sprintf("Select a world [1-%d] or 'new': ", len(saved)), "1")
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(line), "new") {
		return promptNewWorld(ctx, br, out, worlds, seed)
	}

	choice := saved[0]
	if idx, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && idx >= 1 && idx <= len(saved) {
		choice = saved[idx-1]
	} else {
		fmt.Fprintf(out, "Didn't catch that. Resuming %s.\n", choice.Name)
	}
	return choice, worlds.Touch(ctx, choice.ID)
}

func promptNewWorld(ctx context.Context, br *bufio.Reader, out io.Writer, worlds world.WorldRepository, seed int64) (*world.World, error) {
	name, err := promptLine(br, out, fmt.Sprintf("Name the new world [%s]: ", DefaultWorldName), DefaultWorldName)
	if err != nil {
		return nil, err
	}
	return createWorld(ctx, worlds, name, seed)
}

func createWorld(ctx context.Context, worlds world.WorldRepository, name string, seed int64) (*world.World, error) {
	w, err := world.NewWorld(name, seed)
	if err != nil {
		return nil, err
	}
	if err := worlds.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// setupPlayers fills the roster: resumed from the store when the world
// already has players, otherwise created interactively.
func (s *session) setupPlayers(ctx context.Context, w *world.World, root *world.Room, nameFlag string) error {
	persisted, err := s.stores.Players.ListByWorld(ctx, w.ID)
	if err != nil {
		return err
	}
	if len(persisted) > 0 {
		return s.resumePlayers(ctx, persisted)
	}
	return s.createPlayers(ctx, w, root, nameFlag)
}

func (s *session) resumePlayers(ctx context.Context, persisted []*agent.Player) error {
	for _, p := range persisted {
		switch p.Kind {
		case agent.KindHuman:
			p.Controller = agent.NewHumanController(s.br, s.out, s.rng)
		default:
			p.Controller = agent.NewAutoController(s.rng, s.dm, s.logger)
		}
		if err := s.reg.Add(p); err != nil {
			return err
		}
	}
	s.logger.InfoContext(ctx, "roster resumed", "players", len(persisted))
	return nil
}

func (s *session) createPlayers(ctx context.Context, w *world.World, root *world.Room, nameFlag string) error {
	name := nameFlag
	if name == "" {
		var err error
		name, err = promptLine(s.br, s.out, fmt.Sprintf("What is your character's name? [%s]: ", DefaultCharacterName), DefaultCharacterName)
		if err != nil {
			return err
		}
	}

	human, err := agent.NewPlayer(name, agent.KindHuman, root.ID, agent.NewHumanController(s.br, s.out, s.rng))
	if err != nil {
		return err
	}
	s.describe(ctx, human)
	if err := s.reg.Add(human); err != nil {
		return err
	}

	namer := world.NewNamer(s.rng)
	for i := 0; i < s.cfg.Game.NPCCount; i++ {
		npc, err := s.spawnNPC(ctx, namer, root)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s wanders in.\n", npc.Name)
	}

	// Everyone starts in the same room and gets a first look at it and
	// at each other before the first turn.
	for _, p := range s.reg.All() {
		p.Observe(root, s.reg.InRoom(root.ID))
		if err := s.stores.Players.Create(ctx, w.ID, p); err != nil {
			return err
		}
	}
	return nil
}

// spawnNPC creates one autonomous player with a generated name,
// retrying on the rare in-roster name collision.
func (s *session) spawnNPC(ctx context.Context, namer *world.Namer, root *world.Room) (*agent.Player, error) {
	const maxAttempts = 20
	for attempt := 0; attempt < maxAttempts; attempt++ {
		npc, err := agent.NewPlayer(namer.CharacterName(), agent.KindNPC, root.ID,
			agent.NewAutoController(s.rng, s.dm, s.logger))
		if err != nil {
			return nil, err
		}
		npc.Personality = agent.RandomPersonality(s.rng)
		if err := s.reg.Add(npc); err != nil {
			if errors.Is(err, agent.ErrNameTaken) {
				continue
			}
			return nil, err
		}
		s.describe(ctx, npc)
		return npc, nil
	}
	return nil, oops.Code("naming_exhausted").Errorf("could not find a free character name in %d attempts", maxAttempts)
}

// describe asks the oracle for a character description. Failure is
// tolerated: the player keeps an empty description until the first
// witnessed event fills one in.
func (s *session) describe(ctx context.Context, p *agent.Player) {
	desc, err := s.dm.DescribeCharacter(ctx, p.Name, p.Personality)
	if err != nil {
		s.logger.WarnContext(ctx, "character description skipped: oracle failed",
			"player", p.Name, "error", err)
		return
	}
	p.Description = desc
}

// promptLine prints a prompt and reads one line, returning def on empty
// input or EOF.
func promptLine(br *bufio.Reader, out io.Writer, prompt, def string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", oops.Code("input_failed").Wrap(err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
}
