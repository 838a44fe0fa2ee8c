// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

// Package config loads game configuration with layered precedence:
// built-in defaults, then an optional YAML file, then command-line
// flags. Secrets (database URL, oracle API key) may also come from the
// environment.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/driftway/driftway/internal/agent"
	"github.com/driftway/driftway/internal/world"
)

// Oracle providers.
const (
	OracleGemini = "gemini"
	OracleStatic = "static"
)

// Config is the full game configuration.
type Config struct {
	// Offline runs without a database or oracle API: in-memory stores
	// and the static generator.
	Offline bool `koanf:"offline"`

	Database Database `koanf:"database"`
	Oracle   Oracle   `koanf:"oracle"`
	Game     Game     `koanf:"game"`
	Log      Log      `koanf:"log"`
}

// Database holds connection settings.
type Database struct {
	URL string `koanf:"url"`
}

// Oracle holds narrative oracle settings.
type Oracle struct {
	Provider string `koanf:"provider"`
	APIKey   string `koanf:"api_key"`
	Model    string `koanf:"model"`
}

// Game holds world generation and turn loop settings.
type Game struct {
	MaxPaths  int   `koanf:"max_paths"`
	NPCCount  int   `koanf:"npc_count"`
	MaxRounds int   `koanf:"max_rounds"`
	Seed      int64 `koanf:"seed"`
}

// Log holds logging settings.
type Log struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Oracle: Oracle{
			Provider: OracleGemini,
		},
		Game: Game{
			MaxPaths: world.DefaultMaxRoomPaths,
			NPCCount: agent.DefaultNPCCount,
		},
		Log: Log{
			Format: "json",
			Level:  "info",
		},
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"offline":      "offline",
	"db-url":       "database.url",
	"oracle":       "oracle.provider",
	"gemini-model": "oracle.model",
	"max-paths":    "game.max_paths",
	"npcs":         "game.npc_count",
	"max-rounds":   "game.max_rounds",
	"seed":         "game.seed",
	"log-format":   "log.format",
	"log-level":    "log.level",
}

// RegisterFlags defines the configuration flags on a flag set.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Bool("offline", false, "play offline: in-memory storage and canned narration")
	fs.String("db-url", "", "PostgreSQL connection URL (default: $DATABASE_URL)")
	fs.String("oracle", d.Oracle.Provider, "narrative oracle provider (gemini or static)")
	fs.String("gemini-model", "", "Gemini model name (default: the oracle package default)")
	fs.Int("max-paths", d.Game.MaxPaths, "maximum path slots per room (2-4)")
	fs.Int("npcs", d.Game.NPCCount, "autonomous players to spawn in a new world")
	fs.Int("max-rounds", 0, "stop after this many rounds (0 = play until quit)")
	fs.Int64("seed", 0, "world generation seed (0 = random)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
}

// Load builds the configuration from the optional YAML file at path and
// the given flags. Empty secrets fall back to DATABASE_URL and
// GEMINI_API_KEY in the environment.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, oops.Code("config_file_failed").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return cfg, oops.Code("config_flags_failed").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.Code("config_unmarshal_failed").Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Offline {
		cfg.Oracle.Provider = OracleStatic
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	switch c.Oracle.Provider {
	case OracleGemini, OracleStatic:
	default:
		return oops.Code("invalid_config").
			Errorf("oracle provider must be %q or %q, got %q", OracleGemini, OracleStatic, c.Oracle.Provider)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("invalid_config").Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	if c.Game.MaxPaths < 2 || c.Game.MaxPaths > 4 {
		return oops.Code("invalid_config").Errorf("max paths must be between 2 and 4, got %d", c.Game.MaxPaths)
	}
	if c.Game.NPCCount < 0 || c.Game.NPCCount >= agent.MaxPlayers {
		return oops.Code("invalid_config").
			Errorf("npc count must be between 0 and %d, got %d", agent.MaxPlayers-1, c.Game.NPCCount)
	}
	if c.Game.MaxRounds < 0 {
		return oops.Code("invalid_config").Errorf("max rounds cannot be negative, got %d", c.Game.MaxRounds)
	}
	return nil
}
