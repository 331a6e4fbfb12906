// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import "log/slog"

// NotificationPolicy decides how user-visible favorite events are surfaced.
// It is injected per Synchronizer instance rather than held as mutable
// global handler state, so the active session alone controls whether events
// are shown.
type NotificationPolicy interface {
	// FavoriteAdded fires after a team is added to favorites, whether the
	// add went straight to the remote store or was applied optimistically
	// while offline.
	FavoriteAdded(team FavoriteTeam)
}

// SilentNotifications suppresses all notifications.
type SilentNotifications struct{}

func (SilentNotifications) FavoriteAdded(FavoriteTeam) {}

// LogNotifications writes notifications to a structured logger. It stands
// in for a toast surface in headless environments.
type LogNotifications struct {
	Logger *slog.Logger
}

func (n LogNotifications) FavoriteAdded(team FavoriteTeam) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("team added to favorites", "team_id", team.ID, "name", team.Name)
}
