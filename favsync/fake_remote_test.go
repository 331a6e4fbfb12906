// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// fakeRemote is an in-memory RemoteStore with failure injection and
// explicit snapshot delivery, so tests control exactly when "remote"
// events happen.
type fakeRemote struct {
	mu         sync.Mutex
	docs       map[string]map[string]FavoriteTeam
	failUpsert map[string]error // team id -> injected error
	failDelete map[string]error
	watchErr   error
	calls      []string
	watchers   map[int]fakeWatcher
	nextID     int
}

type fakeWatcher struct {
	userID     string
	onSnapshot func([]FavoriteTeam)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs:       make(map[string]map[string]FavoriteTeam),
		failUpsert: make(map[string]error),
		failDelete: make(map[string]error),
		watchers:   make(map[int]fakeWatcher),
	}
}

func (f *fakeRemote) Upsert(_ context.Context, userID string, team FavoriteTeam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upsert:"+team.ID)
	if err := f.failUpsert[team.ID]; err != nil {
		return err
	}
	if f.docs[userID] == nil {
		f.docs[userID] = make(map[string]FavoriteTeam)
	}
	f.docs[userID][team.ID] = team
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, userID, teamID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+teamID)
	if err := f.failDelete[teamID]; err != nil {
		return err
	}
	delete(f.docs[userID], teamID)
	return nil
}

func (f *fakeRemote) Watch(_ context.Context, userID string, onSnapshot func([]FavoriteTeam), _ func(error)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	id := f.nextID
	f.nextID++
	f.watchers[id] = fakeWatcher{userID: userID, onSnapshot: onSnapshot}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.watchers, id)
	}, nil
}

// deliver pushes the current collection to the user's watchers,
// synchronously, from the caller's goroutine.
func (f *fakeRemote) deliver(userID string) {
	f.deliverSnapshot(userID, f.snapshot(userID))
}

// deliverSnapshot pushes an arbitrary collection to the user's watchers.
func (f *fakeRemote) deliverSnapshot(userID string, teams []FavoriteTeam) {
	f.mu.Lock()
	targets := make([]func([]FavoriteTeam), 0, len(f.watchers))
	for _, w := range f.watchers {
		if w.userID == userID {
			targets = append(targets, w.onSnapshot)
		}
	}
	f.mu.Unlock()
	for _, fn := range targets {
		fn(teams)
	}
}

func (f *fakeRemote) snapshot(userID string) []FavoriteTeam {
	f.mu.Lock()
	defer f.mu.Unlock()
	teams := make([]FavoriteTeam, 0, len(f.docs[userID]))
	for _, t := range f.docs[userID] {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

func (f *fakeRemote) has(userID, teamID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[userID][teamID]
	return ok
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeRemote) activeWatchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

func (f *fakeRemote) injectUpsertFailure(teamID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpsert[teamID] = fmt.Errorf("injected upsert failure for %s", teamID)
}

func (f *fakeRemote) clearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpsert = make(map[string]error)
	f.failDelete = make(map[string]error)
}
