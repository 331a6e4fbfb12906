// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

// Package sportsapi is a thin read-only client for the TheSportsDB public
// API, used to source team and league metadata. It owns no wire format of
// its own; the favorites sync core only ever sees the converted
// FavoriteTeam values.
package sportsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/GabiApc/SportsApp/favsync"
)

// DefaultAPIKey is the public test key documented by TheSportsDB.
const DefaultAPIKey = "3"

// Client queries TheSportsDB.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for the given API key. An empty key uses the
// public test key.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	return &Client{
		BaseURL: "https://www.thesportsdb.com/api/v1/json/" + apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Team is one team record as returned by the API.
type Team struct {
	ID     string `json:"idTeam"`
	Name   string `json:"strTeam"`
	Badge  string `json:"strBadge"`
	League string `json:"strLeague"`
}

// Favorite converts an API team into the shape the sync core stores.
func (t Team) Favorite() favsync.FavoriteTeam {
	return favsync.FavoriteTeam{
		ID:         t.ID,
		Name:       t.Name,
		LogoURI:    t.Badge,
		LeagueInfo: t.League,
	}
}

// Event is one past event (match) record.
type Event struct {
	ID        string `json:"idEvent"`
	Name      string `json:"strEvent"`
	Date      string `json:"dateEvent"`
	HomeScore string `json:"intHomeScore"`
	AwayScore string `json:"intAwayScore"`
}

// TableEntry is one league standings row.
type TableEntry struct {
	TeamID string `json:"idTeam"`
	Team   string `json:"strTeam"`
	Rank   string `json:"intRank"`
	Played string `json:"intPlayed"`
	Points string `json:"intPoints"`
}

// SearchAllTeams fetches all teams in a league, including details.
func (c *Client) SearchAllTeams(ctx context.Context, league string) ([]Team, error) {
	var out struct {
		Teams []Team `json:"teams"`
	}
	q := url.Values{"l": {league}}
	if err := c.get(ctx, "/search_all_teams.php", q, &out); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

// LastEvents fetches the most recent events for a team.
func (c *Client) LastEvents(ctx context.Context, teamID string) ([]Event, error) {
	var out struct {
		Results []Event `json:"results"`
	}
	q := url.Values{"id": {teamID}}
	if err := c.get(ctx, "/eventslast.php", q, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// LookupTable fetches the league table for a season.
func (c *Client) LookupTable(ctx context.Context, leagueID, season string) ([]TableEntry, error) {
	var out struct {
		Table []TableEntry `json:"table"`
	}
	q := url.Values{"l": {leagueID}, "s": {season}}
	if err := c.get(ctx, "/lookuptable.php", q, &out); err != nil {
		return nil, err
	}
	return out.Table, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.BaseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("sports api request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sports api returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode sports api response: %w", err)
	}
	return nil
}
