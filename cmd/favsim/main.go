// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

// favsim runs end-to-end favorites sync scenarios against an in-process
// favorites service, and can query TheSportsDB for team metadata.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/GabiApc/SportsApp/internal/simulator"
	"github.com/GabiApc/SportsApp/sportsapi"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "favsim",
		Short:         "Favorites sync scenario simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	logger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(newListCmd(), newRunCmd(logger), newTeamsCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, sc := range simulator.Scenarios() {
				fmt.Printf("%-20s %s\n", sc.Name, sc.Description)
			}
			return nil
		},
	}
}

func newRunCmd(logger func() *slog.Logger) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run one or more scenarios, each in a fresh environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if all {
				names = nil
				for _, sc := range simulator.Scenarios() {
					names = append(names, sc.Name)
				}
			}
			if len(names) == 0 {
				return fmt.Errorf("no scenarios given; use --all or `favsim list`")
			}
			log := logger()
			for _, name := range names {
				if err := simulator.RunScenario(cmd.Context(), name, log); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "run every scenario")
	return cmd
}

func newTeamsCmd() *cobra.Command {
	var apiKey string
	cmd := &cobra.Command{
		Use:   "teams <league>",
		Short: "List teams in a league from TheSportsDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := sportsapi.NewClient(apiKey)
			teams, err := client.SearchAllTeams(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, t := range teams {
				fmt.Printf("%-8s %-30s %s\n", t.ID, t.Name, t.League)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "TheSportsDB API key (default: public test key)")
	return cmd
}
