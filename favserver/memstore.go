// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favserver

import (
	"context"
	"sort"
	"sync"

	"github.com/GabiApc/SportsApp/favsync"
)

// MemStore is an in-memory Store used by tests and the simulator.
type MemStore struct {
	mu    sync.RWMutex
	users map[string]map[string]favsync.FavoriteTeam
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{users: make(map[string]map[string]favsync.FavoriteTeam)}
}

func (s *MemStore) Upsert(_ context.Context, userID string, team favsync.FavoriteTeam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.users[userID]
	if docs == nil {
		docs = make(map[string]favsync.FavoriteTeam)
		s.users[userID] = docs
	}
	docs[team.ID] = team
	return nil
}

func (s *MemStore) Delete(_ context.Context, userID, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users[userID], teamID)
	return nil
}

func (s *MemStore) List(_ context.Context, userID string) ([]favsync.FavoriteTeam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.users[userID]
	teams := make([]favsync.FavoriteTeam, 0, len(docs))
	for _, t := range docs {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}
