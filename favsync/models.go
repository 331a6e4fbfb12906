// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

// Package favsync implements the offline-tolerant favorites synchronization
// core: it keeps a user's favorite-teams list consistent across a local
// persistent cache, an in-memory view, and a remote per-user document
// collection while the device moves between online and offline states.
package favsync

// FavoriteTeam identifies one team marked as favorite. Within a single
// user's favorites set the ID is unique; no ordering is meaningful.
type FavoriteTeam struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LogoURI    string `json:"logoUri"`
	LeagueInfo string `json:"leagueInfo"`
}

// Action is the kind of deferred favorite mutation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// PendingOp is a deferred mutation awaiting remote application. Team is
// populated for add operations only; it carries the data needed to recreate
// the remote document.
type PendingOp struct {
	TeamID string        `json:"teamId"`
	Action Action        `json:"action"`
	Team   *FavoriteTeam `json:"team,omitempty"`
}

// SessionUser is the minimal identity used to scope favorites. All cache
// and queue keys are namespaced by its ID.
type SessionUser struct {
	ID string `json:"id"`
}

// TeamDocument is the wire shape of one remote favorites document. The
// document key (team id) travels separately, in the URL path.
type TeamDocument struct {
	Name       string `json:"name"`
	LogoURI    string `json:"logoUri"`
	LeagueInfo string `json:"leagueInfo"`
}

// DocumentFor returns the remote document payload for a team.
func DocumentFor(t FavoriteTeam) TeamDocument {
	return TeamDocument{
		Name:       t.Name,
		LogoURI:    t.LogoURI,
		LeagueInfo: t.LeagueInfo,
	}
}

// Team converts a remote document back into a FavoriteTeam under the given
// document key. Missing optional fields stay empty strings.
func (d TeamDocument) Team(id string) FavoriteTeam {
	return FavoriteTeam{
		ID:         id,
		Name:       d.Name,
		LogoURI:    d.LogoURI,
		LeagueInfo: d.LeagueInfo,
	}
}
