// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftway Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Driftway CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driftway",
		Short: "Driftway - a procedurally generated multi-agent text adventure",
		Long: `Driftway is a turn-based text adventure in a lazily generated world.
Autonomous characters explore, talk, and meddle alongside you, each
remembering the world in their own unreliable way.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewWorldsCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
