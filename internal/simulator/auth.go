// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"sync"

	"github.com/GabiApc/SportsApp/favsync"
)

// StaticAuth is an Auth collaborator driven by explicit SetUser calls,
// standing in for the app's authentication service.
type StaticAuth struct {
	mu     sync.Mutex
	user   *favsync.SessionUser
	subs   map[int]func(*favsync.SessionUser)
	nextID int
}

// NewStaticAuth creates an auth source with the given initial session;
// nil means logged out.
func NewStaticAuth(user *favsync.SessionUser) *StaticAuth {
	return &StaticAuth{user: user, subs: make(map[int]func(*favsync.SessionUser))}
}

func (a *StaticAuth) CurrentUser() *favsync.SessionUser {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

func (a *StaticAuth) OnAuthStateChanged(fn func(*favsync.SessionUser)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// SetUser changes the session and notifies listeners outside the lock.
func (a *StaticAuth) SetUser(user *favsync.SessionUser) {
	a.mu.Lock()
	a.user = user
	listeners := make([]func(*favsync.SessionUser), 0, len(a.subs))
	for _, fn := range a.subs {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()
	for _, fn := range listeners {
		fn(user)
	}
}
