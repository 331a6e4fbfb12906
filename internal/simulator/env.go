// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

// Package simulator runs end-to-end favorites sync scenarios against an
// in-process favorites service, simulating devices that toggle favorites
// while moving between online and offline states.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"time"

	"github.com/GabiApc/SportsApp/favserver"
	"github.com/GabiApc/SportsApp/favsync"
)

const jwtSecret = "favsim-secret"

// Fixture teams used by scenarios; ids match TheSportsDB.
var (
	TeamChelsea = favsync.FavoriteTeam{
		ID: "61", Name: "Chelsea F.C.",
		LogoURI: "https://r2.thesportsdb.com/images/media/team/badge/chelsea.png", LeagueInfo: "English Premier League",
	}
	TeamManCity = favsync.FavoriteTeam{
		ID: "66", Name: "Manchester City",
		LogoURI: "https://r2.thesportsdb.com/images/media/team/badge/mancity.png", LeagueInfo: "English Premier League",
	}
)

// Env is one simulation environment: an in-process favorites service plus
// a scratch directory for device databases.
type Env struct {
	Store  *favserver.MemStore
	Broker *favserver.MemoryBroker
	JWT    *favserver.JWTAuth
	Server *httptest.Server
	Logger *slog.Logger

	dir string
}

// NewEnv starts the in-process service.
func NewEnv(logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir, err := os.MkdirTemp("", "favsim-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	store := favserver.NewMemStore()
	broker := favserver.NewMemoryBroker()
	jwtAuth := favserver.NewJWTAuth(jwtSecret)
	handlers := favserver.NewHTTPHandlers(store, broker, jwtAuth, logger)
	server := httptest.NewServer(handlers.Router())
	return &Env{
		Store:  store,
		Broker: broker,
		JWT:    jwtAuth,
		Server: server,
		Logger: logger,
		dir:    dir,
	}, nil
}

// Close shuts the service down and removes device databases.
func (e *Env) Close() {
	e.Server.Close()
	_ = os.RemoveAll(e.dir)
}

// RemoteFavorites reads the service-side collection directly, for
// verification.
func (e *Env) RemoteFavorites(ctx context.Context, userID string) ([]favsync.FavoriteTeam, error) {
	return e.Store.List(ctx, userID)
}

// RemoteHas reports whether the service-side collection contains a team.
func (e *Env) RemoteHas(ctx context.Context, userID, teamID string) (bool, error) {
	teams, err := e.Store.List(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, t := range teams {
		if t.ID == teamID {
			return true, nil
		}
	}
	return false, nil
}

// waitFor polls cond until it holds or the timeout expires. Sync events
// (SSE deliveries, drains) are asynchronous, so scenarios converge rather
// than assert immediately.
func waitFor(timeout time.Duration, cond func() bool) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("condition not met within %s", timeout)
}
