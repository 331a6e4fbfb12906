// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *CacheStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	kv, err := NewSQLiteKV(db)
	require.NoError(t, err)
	return NewCacheStore(kv, nil)
}

func TestSQLiteKVRoundtrip(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	kv, err := NewSQLiteKV(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2")) // overwrite

	value, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", value)

	require.NoError(t, kv.Remove(ctx, "k"))
	require.NoError(t, kv.Remove(ctx, "k")) // removing absent key is fine
	_, ok, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheStoreFavoritesRoundtrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.Empty(t, cache.ReadFavorites(ctx, "u1"))

	teams := []FavoriteTeam{
		{ID: "61", Name: "Chelsea F.C.", LeagueInfo: "English Premier League"},
		{ID: "66", Name: "Manchester City"},
	}
	require.NoError(t, cache.WriteFavorites(ctx, "u1", teams))
	require.Equal(t, teams, cache.ReadFavorites(ctx, "u1"))

	// Full overwrite, not incremental.
	require.NoError(t, cache.WriteFavorites(ctx, "u1", teams[:1]))
	require.Equal(t, teams[:1], cache.ReadFavorites(ctx, "u1"))
}

func TestCacheStorePendingOpsRoundtrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	team := FavoriteTeam{ID: "66", Name: "Manchester City"}
	ops := []PendingOp{
		{TeamID: "61", Action: ActionRemove},
		{TeamID: "66", Action: ActionAdd, Team: &team},
	}
	require.NoError(t, cache.WritePendingOps(ctx, "u1", ops))
	require.Equal(t, ops, cache.ReadPendingOps(ctx, "u1"))
}

func TestCacheStoreMalformedDataTreatedAsAbsent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	kv, err := NewSQLiteKV(db)
	require.NoError(t, err)
	cache := NewCacheStore(kv, nil)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, favoritesKeyPrefix+"u1", "{not json"))
	require.NoError(t, kv.Set(ctx, pendingKeyPrefix+"u1", "also not json"))
	require.NoError(t, kv.Set(ctx, cachedUserKey, "nope"))

	require.Empty(t, cache.ReadFavorites(ctx, "u1"))
	require.Empty(t, cache.ReadPendingOps(ctx, "u1"))
	require.Nil(t, cache.ReadUser(ctx))
}

func TestCacheStorePerUserScoping(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.WriteFavorites(ctx, "userA", []FavoriteTeam{{ID: "61"}}))
	require.Empty(t, cache.ReadFavorites(ctx, "userB"))

	require.NoError(t, cache.WritePendingOps(ctx, "userA", []PendingOp{{TeamID: "61", Action: ActionRemove}}))
	require.Empty(t, cache.ReadPendingOps(ctx, "userB"))
}

func TestCacheStoreClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.WriteFavorites(ctx, "u1", []FavoriteTeam{{ID: "61"}}))
	require.NoError(t, cache.WritePendingOps(ctx, "u1", []PendingOp{{TeamID: "61", Action: ActionRemove}}))
	require.NoError(t, cache.WriteFavorites(ctx, "u2", []FavoriteTeam{{ID: "66"}}))

	require.NoError(t, cache.Clear(ctx, "u1"))
	require.Empty(t, cache.ReadFavorites(ctx, "u1"))
	require.Empty(t, cache.ReadPendingOps(ctx, "u1"))
	// Other users are untouched.
	require.Len(t, cache.ReadFavorites(ctx, "u2"), 1)
}

func TestCacheStoreUserIdentity(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.Nil(t, cache.ReadUser(ctx))

	require.NoError(t, cache.WriteUser(ctx, &SessionUser{ID: "u1"}))
	user := cache.ReadUser(ctx)
	require.NotNil(t, user)
	require.Equal(t, "u1", user.ID)

	require.NoError(t, cache.RemoveUser(ctx))
	require.Nil(t, cache.ReadUser(ctx))
}

func TestCacheStoreUserWithoutIDTreatedAsAbsent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	kv, err := NewSQLiteKV(db)
	require.NoError(t, err)
	cache := NewCacheStore(kv, nil)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, cachedUserKey, `{"name":"no id"}`))
	require.Nil(t, cache.ReadUser(ctx))
}
