// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestScenarios runs every registered scenario end to end: real SQLite
// caches, the real favorites service over HTTP with JWT auth, and the real
// SSE watch stream.
func TestScenarios(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, sc := range Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			require.NoError(t, RunScenario(ctx, sc.Name, logger))
		})
	}
}

func TestRunScenarioUnknownName(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := RunScenario(context.Background(), "no-such-scenario", logger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown scenario")
}

func TestScenarioNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, sc := range Scenarios() {
		require.NotEmpty(t, sc.Name)
		require.NotEmpty(t, sc.Description)
		require.NotNil(t, sc.Run)
		require.False(t, seen[sc.Name], "duplicate scenario name %q", sc.Name)
		seen[sc.Name] = true
	}
}
