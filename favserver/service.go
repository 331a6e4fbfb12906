// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

// Package favserver implements the remote favorites document service: a
// per-user collection of team documents keyed by team id, with
// last-write-wins semantics and live full-collection change notification.
package favserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GabiApc/SportsApp/favsync"
)

// Store is the favorites document store contract. Documents are keyed by
// (user id, team id); Upsert replaces the whole document and Delete of an
// absent document succeeds.
type Store interface {
	Upsert(ctx context.Context, userID string, team favsync.FavoriteTeam) error
	Delete(ctx context.Context, userID, teamID string) error
	List(ctx context.Context, userID string) ([]favsync.FavoriteTeam, error)
}

// PGStore is the Postgres-backed Store.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPGStore creates the store and initializes its schema.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*PGStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store := &PGStore{pool: pool, logger: logger}
	if err := store.initializeSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize favorites schema: %w", err)
	}
	return store, nil
}

func (s *PGStore) initializeSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS favsync`,
		`CREATE TABLE IF NOT EXISTS favsync.favorites (
			user_id     TEXT NOT NULL,
			team_id     TEXT NOT NULL,
			name        TEXT NOT NULL DEFAULT '',
			logo_uri    TEXT NOT NULL DEFAULT '',
			league_info TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, team_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *PGStore) Upsert(ctx context.Context, userID string, team favsync.FavoriteTeam) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO favsync.favorites (user_id, team_id, name, logo_uri, league_info)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, team_id) DO UPDATE SET
			name = EXCLUDED.name,
			logo_uri = EXCLUDED.logo_uri,
			league_info = EXCLUDED.league_info,
			updated_at = now()
	`, userID, team.ID, team.Name, team.LogoURI, team.LeagueInfo)
	if err != nil {
		return fmt.Errorf("failed to upsert favorite %s/%s: %w", userID, team.ID, err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, userID, teamID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM favsync.favorites WHERE user_id = $1 AND team_id = $2
	`, userID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite %s/%s: %w", userID, teamID, err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, userID string) ([]favsync.FavoriteTeam, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT team_id, name, logo_uri, league_info
		FROM favsync.favorites
		WHERE user_id = $1
		ORDER BY team_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for %s: %w", userID, err)
	}
	defer rows.Close()

	teams := make([]favsync.FavoriteTeam, 0)
	for rows.Next() {
		var t favsync.FavoriteTeam
		if err := rows.Scan(&t.ID, &t.Name, &t.LogoURI, &t.LeagueInfo); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return teams, nil
}
