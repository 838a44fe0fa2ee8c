// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/driftway/driftway/internal/config"
)

// NewWorldsCmd creates the worlds subcommand.
func NewWorldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "List saved worlds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorlds(cmd, defaultStoresFactory)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runWorlds(cmd *cobra.Command, factory func(ctx context.Context, cfg config.Config) (*GameStores, func(), error)) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	stores, closeStores, err := factory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	saved, err := stores.Worlds.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		cmd.Println("No saved worlds.")
		return nil
	}

	for _, w := range saved {
		cmd.Printf("%s\tcreated %s\tlast played %s\n",
			w.Name,
			w.CreatedAt.Format("2006-01-02"),
			w.LastPlayedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
