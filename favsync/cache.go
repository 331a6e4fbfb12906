// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// Cache key layout: a fixed prefix plus the user id, so two users on the
// same device can never observe each other's favorites.
const (
	favoritesKeyPrefix = "@cached_favorites_"
	pendingKeyPrefix   = "@pending_favorite_ops_"
	cachedUserKey      = "@cached_user"
)

// KV is the minimal persistent key-value contract the cache store needs.
// Values are JSON-serialized strings; a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SQLiteKV is a KV backed by a single SQLite table. The caller owns the
// *sql.DB and its lifecycle.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV prepares the backing table and returns the store.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS _favsync_kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM _favsync_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO _favsync_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM _favsync_kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// CacheStore provides durable per-user persistence for the favorites
// snapshot, the pending-operation queue, and the cached session identity.
//
// Favorites are a convenience feature, not a correctness-critical ledger:
// read failures and malformed persisted JSON are treated as "no data" and
// logged, never surfaced as fatal errors.
type CacheStore struct {
	kv     KV
	logger *slog.Logger
}

// NewCacheStore creates a cache store over the given KV. A nil logger
// falls back to slog.Default().
func NewCacheStore(kv KV, logger *slog.Logger) *CacheStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheStore{kv: kv, logger: logger}
}

// ReadFavorites returns the cached favorites snapshot for the user, or nil
// if absent or unreadable.
func (s *CacheStore) ReadFavorites(ctx context.Context, userID string) []FavoriteTeam {
	var items []FavoriteTeam
	s.readJSON(ctx, favoritesKeyPrefix+userID, &items)
	return items
}

// WriteFavorites overwrites the cached favorites snapshot for the user.
// Last write wins; there is no versioning.
func (s *CacheStore) WriteFavorites(ctx context.Context, userID string, items []FavoriteTeam) error {
	return s.writeJSON(ctx, favoritesKeyPrefix+userID, items)
}

// ReadPendingOps returns the persisted pending-operation queue for the
// user, or nil if absent or unreadable.
func (s *CacheStore) ReadPendingOps(ctx context.Context, userID string) []PendingOp {
	var ops []PendingOp
	s.readJSON(ctx, pendingKeyPrefix+userID, &ops)
	return ops
}

// WritePendingOps overwrites the persisted pending-operation queue.
func (s *CacheStore) WritePendingOps(ctx context.Context, userID string, ops []PendingOp) error {
	return s.writeJSON(ctx, pendingKeyPrefix+userID, ops)
}

// ReadUser returns the cached session identity, or nil when absent,
// unreadable, or missing an id. Used to resolve the effective user on cold
// start while offline.
func (s *CacheStore) ReadUser(ctx context.Context) *SessionUser {
	var user SessionUser
	if !s.readJSON(ctx, cachedUserKey, &user) || user.ID == "" {
		return nil
	}
	return &user
}

// WriteUser caches the session identity.
func (s *CacheStore) WriteUser(ctx context.Context, user *SessionUser) error {
	return s.writeJSON(ctx, cachedUserKey, user)
}

// RemoveUser drops the cached session identity.
func (s *CacheStore) RemoveUser(ctx context.Context) error {
	return s.kv.Remove(ctx, cachedUserKey)
}

// Clear removes the user's favorites snapshot and pending queue. Called on
// logout so a later user cannot observe the previous user's data.
func (s *CacheStore) Clear(ctx context.Context, userID string) error {
	var errs []error
	if err := s.kv.Remove(ctx, favoritesKeyPrefix+userID); err != nil {
		errs = append(errs, err)
	}
	if err := s.kv.Remove(ctx, pendingKeyPrefix+userID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// readJSON reports whether the key held a well-formed value. Storage errors
// and corrupt JSON are logged and reported as absence.
func (s *CacheStore) readJSON(ctx context.Context, key string, out any) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("cache entry is malformed, treating as absent", "key", key, "error", err)
		return false
	}
	return true
}

func (s *CacheStore) writeJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(data))
}
