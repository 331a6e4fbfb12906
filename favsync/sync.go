// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrAuthRequired is returned by ToggleFavorite when no effective user is
// known. It is a control-flow signal for the caller to start a login flow,
// not a fault to be logged.
var ErrAuthRequired = errors.New("favsync: authentication required")

// Auth is the authentication collaborator. Any non-nil user is a valid
// scoping key; nil means logged out.
type Auth interface {
	// CurrentUser returns the live session user, or nil.
	CurrentUser() *SessionUser
	// OnAuthStateChanged registers a listener for session changes. The
	// returned func cancels the subscription.
	OnAuthStateChanged(fn func(*SessionUser)) (cancel func())
}

// Options tunes optional Synchronizer behavior.
type Options struct {
	// Notifications receives user-visible favorite events. Defaults to
	// SilentNotifications.
	Notifications NotificationPolicy
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Synchronizer owns the authoritative in-memory favorites state and
// reconciles it against the local cache, the remote collection, and the
// pending-operation queue. It is the sole mutator of all three in-memory
// structures.
//
// Event handlers (connectivity transitions, remote snapshot deliveries,
// session changes, toggles) are serialized by a mutex: each runs to
// completion before the next is processed.
type Synchronizer struct {
	cache   *CacheStore
	remote  RemoteStore
	monitor Monitor
	auth    Auth
	notify  NotificationPolicy
	logger  *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	user        *SessionUser
	items       []FavoriteTeam
	ids         map[string]struct{}
	queue       *Queue
	cancelWatch func()
	cancels     []func()
	started     bool
}

// NewSynchronizer wires the synchronizer to its collaborators. Call Start
// to begin syncing.
func NewSynchronizer(cache *CacheStore, remote RemoteStore, monitor Monitor, auth Auth, opts *Options) *Synchronizer {
	if opts == nil {
		opts = &Options{}
	}
	notify := opts.Notifications
	if notify == nil {
		notify = SilentNotifications{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		cache:   cache,
		remote:  remote,
		monitor: monitor,
		auth:    auth,
		notify:  notify,
		logger:  logger,
		ids:     make(map[string]struct{}),
		queue:   NewQueue(nil),
	}
}

// Start resolves the effective user, loads cached state, and, when both a
// user and connectivity are available, opens the remote watch and drains
// the pending queue. The context bounds the synchronizer's lifetime.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.ctx = ctx
	s.cancels = append(s.cancels,
		s.monitor.Subscribe(s.onConnectivity),
		s.auth.OnAuthStateChanged(s.onAuthChange),
	)
	s.initLocked(ctx)
}

// Stop cancels the remote watch and all subscriptions. In-memory state is
// left as is.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelWatchLocked()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.started = false
}

// initLocked performs the mount sequence: resolve user (live session first,
// cached identity second), load cache, then go remote if possible.
func (s *Synchronizer) initLocked(ctx context.Context) {
	user := s.auth.CurrentUser()
	if user != nil {
		// Cache the live identity so a later cold start can resolve the
		// user without a session.
		if err := s.cache.WriteUser(ctx, user); err != nil {
			s.logger.Warn("failed to cache session user", "error", err)
		}
	} else {
		user = s.cache.ReadUser(ctx)
	}
	if user == nil {
		s.user = nil
		s.items = nil
		s.ids = make(map[string]struct{})
		s.queue = NewQueue(nil)
		return
	}
	s.user = user
	s.setItemsLocked(s.cache.ReadFavorites(ctx, user.ID))
	s.queue = NewQueue(s.cache.ReadPendingOps(ctx, user.ID))
	if s.monitor.Connected(ctx) {
		s.openWatchLocked()
		s.drainLocked(ctx)
	}
}

// ToggleFavorite flips the favorite state of a team for the effective user.
//
// Online, the mutation goes straight to the remote store and the resulting
// snapshot delivery updates local state; nothing is queued and a remote
// failure is logged without speculative rollback. Offline, the mutation is
// applied optimistically to in-memory state, persisted to the cache, and
// appended to the pending queue; this path never touches the network.
//
// Returns ErrAuthRequired when no effective user is known.
func (s *Synchronizer) ToggleFavorite(ctx context.Context, team FavoriteTeam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ErrAuthRequired
	}
	_, favorited := s.ids[team.ID]

	if s.monitor.Connected(ctx) {
		if favorited {
			if err := s.remote.Delete(ctx, s.user.ID, team.ID); err != nil {
				s.logger.Warn("failed to delete remote favorite", "team_id", team.ID, "error", err)
			}
		} else {
			if err := s.remote.Upsert(ctx, s.user.ID, team); err != nil {
				s.logger.Warn("failed to add remote favorite", "team_id", team.ID, "error", err)
			} else {
				s.notify.FavoriteAdded(team)
			}
		}
		return nil
	}

	if favorited {
		items := make([]FavoriteTeam, 0, len(s.items))
		for _, t := range s.items {
			if t.ID != team.ID {
				items = append(items, t)
			}
		}
		s.setItemsLocked(items)
		s.persistFavoritesLocked(ctx)
		s.queue.Append(PendingOp{TeamID: team.ID, Action: ActionRemove})
	} else {
		added := team
		s.setItemsLocked(append(s.items, added))
		s.persistFavoritesLocked(ctx)
		s.queue.Append(PendingOp{TeamID: team.ID, Action: ActionAdd, Team: &added})
		s.notify.FavoriteAdded(team)
	}
	s.persistQueueLocked(ctx)
	return nil
}

// SyncPending triggers an explicit drain of the pending queue. It is a
// no-op unless a user is known and the device is connected.
func (s *Synchronizer) SyncPending(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked(ctx)
}

// RefreshFromCache re-reads the cached snapshot into memory while offline.
// Call on focus regain to pick up cache writes made by another screen
// instance; online, the remote watch already supersedes the cache.
func (s *Synchronizer) RefreshFromCache(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.monitor.Connected(ctx) {
		return
	}
	s.setItemsLocked(s.cache.ReadFavorites(ctx, s.user.ID))
}

// Favorites returns a copy of the current in-memory favorites.
func (s *Synchronizer) Favorites() []FavoriteTeam {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FavoriteTeam, len(s.items))
	copy(out, s.items)
	return out
}

// IsFavorite reports whether the team id is currently favorited.
func (s *Synchronizer) IsFavorite(teamID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[teamID]
	return ok
}

// PendingCount returns the number of queued offline operations. Callers
// may use it to derive an "unsynced changes" indicator.
func (s *Synchronizer) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// User returns the effective user, or nil when logged out.
func (s *Synchronizer) User() *SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Synchronizer) onConnectivity(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.user == nil {
		return
	}
	if !online {
		// Remote writes will fail until reconnect; the watch stream is left
		// to die on its own and is re-established on the next transition.
		return
	}
	s.openWatchLocked()
	s.drainLocked(s.ctx)
}

func (s *Synchronizer) onAuthChange(user *SessionUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	if user == nil {
		s.logoutLocked(s.ctx)
		return
	}
	if s.user != nil && s.user.ID == user.ID {
		return
	}
	// User switch: tear down the previous subscription before anything of
	// the new user's becomes visible.
	s.cancelWatchLocked()
	if err := s.cache.WriteUser(s.ctx, user); err != nil {
		s.logger.Warn("failed to cache session user", "error", err)
	}
	s.user = user
	s.setItemsLocked(s.cache.ReadFavorites(s.ctx, user.ID))
	s.queue = NewQueue(s.cache.ReadPendingOps(s.ctx, user.ID))
	if s.monitor.Connected(s.ctx) {
		s.openWatchLocked()
		s.drainLocked(s.ctx)
	}
}

// logoutLocked clears in-memory state, the subscription, and the user's
// cache entries so a later user cannot observe them.
func (s *Synchronizer) logoutLocked(ctx context.Context) {
	s.cancelWatchLocked()
	if s.user != nil {
		if err := s.cache.Clear(ctx, s.user.ID); err != nil {
			s.logger.Warn("failed to clear cache on logout", "error", err)
		}
	}
	if err := s.cache.RemoveUser(ctx); err != nil {
		s.logger.Warn("failed to remove cached user on logout", "error", err)
	}
	s.user = nil
	s.items = nil
	s.ids = make(map[string]struct{})
	s.queue = NewQueue(nil)
}

// onSnapshot applies a remote delivery: the delivered collection replaces
// in-memory state in full and is mirrored to the cache. Remote is
// authoritative once reachable; optimistic changes whose queued operations
// have not landed yet may be overwritten until the next drain completes.
func (s *Synchronizer) onSnapshot(teams []FavoriteTeam) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	s.setItemsLocked(teams)
	s.persistFavoritesLocked(s.ctx)
}

func (s *Synchronizer) onWatchError(err error) {
	// Non-fatal: the UI keeps the last known snapshot; a reconnect or user
	// change re-establishes the watch.
	s.logger.Warn("favorites watch failed", "error", err)
}

// openWatchLocked establishes the remote subscription, tearing down any
// prior one first. Exactly one watch is live at a time.
func (s *Synchronizer) openWatchLocked() {
	s.cancelWatchLocked()
	if s.user == nil {
		return
	}
	cancel, err := s.remote.Watch(s.ctx, s.user.ID, s.onSnapshot, s.onWatchError)
	if err != nil {
		s.logger.Warn("failed to open favorites watch", "user_id", s.user.ID, "error", err)
		return
	}
	s.cancelWatch = cancel
}

func (s *Synchronizer) cancelWatchLocked() {
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
}

func (s *Synchronizer) drainLocked(ctx context.Context) {
	if s.user == nil || s.queue.Len() == 0 || !s.monitor.Connected(ctx) {
		return
	}
	applied := s.queue.Drain(ctx, s.user.ID, s.remote, s.logger)
	s.persistQueueLocked(ctx)
	if applied > 0 {
		s.logger.Info("drained pending favorite operations",
			"applied", applied, "remaining", s.queue.Len())
	}
}

func (s *Synchronizer) setItemsLocked(items []FavoriteTeam) {
	s.items = items
	s.ids = make(map[string]struct{}, len(items))
	for _, t := range items {
		s.ids[t.ID] = struct{}{}
	}
}

func (s *Synchronizer) persistFavoritesLocked(ctx context.Context) {
	if err := s.cache.WriteFavorites(ctx, s.user.ID, s.items); err != nil {
		s.logger.Warn("failed to persist favorites snapshot", "error", err)
	}
}

func (s *Synchronizer) persistQueueLocked(ctx context.Context) {
	if err := s.cache.WritePendingOps(ctx, s.user.ID, s.queue.Ops()); err != nil {
		s.logger.Warn("failed to persist pending operations", "error", err)
	}
}
