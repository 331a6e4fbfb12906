// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"fmt"
	"log/slog"
)

// Scenario is one named end-to-end flow.
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, env *Env) error
}

// Scenarios returns all registered scenarios in a stable order.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:        "online-toggle",
			Description: "Logged-in user favorites a team while online; the document lands remotely and flows back through the watch stream",
			Run:         runOnlineToggle,
		},
		{
			Name:        "offline-queue",
			Description: "User toggles a favorite while offline; the change applies locally and queues for replay",
			Run:         runOfflineQueue,
		},
		{
			Name:        "reconnect-drain",
			Description: "Connectivity returns and the pending queue drains to the service in order",
			Run:         runReconnectDrain,
		},
		{
			Name:        "offline-cold-start",
			Description: "App restarts fully offline with no live session and restores favorites from the cached identity",
			Run:         runOfflineColdStart,
		},
		{
			Name:        "offline-flip-flop",
			Description: "Removing and re-adding the same team offline queues both operations; replay preserves the net effect",
			Run:         runOfflineFlipFlop,
		},
		{
			Name:        "user-switch",
			Description: "Logout clears local state and a different user never sees the previous user's favorites",
			Run:         runUserSwitch,
		},
	}
}

// RunScenario executes one scenario in a fresh environment.
func RunScenario(ctx context.Context, name string, logger *slog.Logger) error {
	for _, sc := range Scenarios() {
		if sc.Name != name {
			continue
		}
		env, err := NewEnv(logger)
		if err != nil {
			return fmt.Errorf("failed to create environment: %w", err)
		}
		defer env.Close()
		logger.Info("running scenario", "name", sc.Name)
		if err := sc.Run(ctx, env); err != nil {
			return fmt.Errorf("scenario %s failed: %w", sc.Name, err)
		}
		logger.Info("scenario passed", "name", sc.Name)
		return nil
	}
	return fmt.Errorf("unknown scenario %q", name)
}
