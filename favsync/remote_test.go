// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package favsync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticToken(token string) TokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

func TestHTTPRemoteStoreUpsert(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := NewHTTPRemoteStore(srv.URL, staticToken("tok-123"), nil)
	team := FavoriteTeam{ID: "61", Name: "Chelsea F.C.", LogoURI: "chelsea.png", LeagueInfo: "English Premier League"}
	require.NoError(t, store.Upsert(context.Background(), "u1", team))

	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/users/u1/favorites/61", gotPath)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, "application/json", gotContentType)

	var doc TeamDocument
	require.NoError(t, json.Unmarshal(gotBody, &doc))
	require.Equal(t, DocumentFor(team), doc)
}

func TestHTTPRemoteStoreDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := NewHTTPRemoteStore(srv.URL, staticToken("tok"), nil)
	require.NoError(t, store.Delete(context.Background(), "u1", "61"))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/users/u1/favorites/61", gotPath)
}

func TestHTTPRemoteStoreErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	store := NewHTTPRemoteStore(srv.URL, staticToken("tok"), nil)
	err := store.Upsert(context.Background(), "u1", FavoriteTeam{ID: "61"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestHTTPRemoteStoreSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/u1/favorites", r.URL.Path)
		fmt.Fprint(w, `[
			{"id":"61","name":"Chelsea F.C.","logoUri":"chelsea.png","leagueInfo":"English Premier League"},
			{"id":"66","name":"Manchester City"}
		]`)
	}))
	defer srv.Close()

	store := NewHTTPRemoteStore(srv.URL, staticToken("tok"), nil)
	teams, err := store.Snapshot(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []FavoriteTeam{
		{ID: "61", Name: "Chelsea F.C.", LogoURI: "chelsea.png", LeagueInfo: "English Premier League"},
		{ID: "66", Name: "Manchester City"},
	}, teams)
}

func TestHTTPRemoteStoreWatchDeliversSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/u1/favorites/watch", r.URL.Path)
		require.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: [{\"id\":\"61\",\"name\":\"Chelsea F.C.\"}]\n\n")
		flusher.Flush()
		fmt.Fprint(w, "data: [{\"id\":\"61\",\"name\":\"Chelsea F.C.\"},{\"id\":\"66\",\"name\":\"Manchester City\"}]\n\n")
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	snapshots := make(chan []FavoriteTeam, 8)
	store := NewHTTPRemoteStore(srv.URL, staticToken("tok"), nil)
	cancel, err := store.Watch(context.Background(), "u1",
		func(teams []FavoriteTeam) { snapshots <- teams },
		func(err error) { t.Errorf("unexpected watch error: %v", err) })
	require.NoError(t, err)
	defer cancel()

	first := waitSnapshot(t, snapshots)
	require.Len(t, first, 1)
	require.Equal(t, "61", first[0].ID)

	second := waitSnapshot(t, snapshots)
	require.Len(t, second, 2)
}

func TestHTTPRemoteStoreWatchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewHTTPRemoteStore(srv.URL, staticToken("expired"), nil)
	_, err := store.Watch(context.Background(), "u1", func([]FavoriteTeam) {}, func(error) {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestHTTPRemoteStoreWatchReportsStreamDrop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: []\n\n")
		// Handler returns, closing the stream from the server side.
	}))
	defer srv.Close()

	errs := make(chan error, 1)
	store := NewHTTPRemoteStore(srv.URL, staticToken("tok"), nil)
	cancel, err := store.Watch(context.Background(), "u1",
		func([]FavoriteTeam) {}, func(err error) { errs <- err })
	require.NoError(t, err)
	defer cancel()

	select {
	case err := <-errs:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch error")
	}
}

func TestHTTPRemoteStoreWatchCancelIsSilent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	store := NewHTTPRemoteStore(srv.URL, staticToken("tok"), nil)
	cancel, err := store.Watch(context.Background(), "u1",
		func([]FavoriteTeam) {},
		func(err error) { t.Errorf("canceled watch must not report an error, got: %v", err) })
	require.NoError(t, err)

	cancel()
	time.Sleep(100 * time.Millisecond) // let the reader goroutine observe the cancel
}

func TestDecodeSnapshotDropsInvalidRecords(t *testing.T) {
	teams := decodeSnapshot([]byte(`[
		{"id":"61","name":"Chelsea F.C."},
		{"name":"no id, dropped"},
		{"id":"66"}
	]`), discardLogger())
	require.Equal(t, []FavoriteTeam{
		{ID: "61", Name: "Chelsea F.C."},
		{ID: "66"},
	}, teams)
}

func TestDecodeSnapshotMalformedBodyYieldsEmpty(t *testing.T) {
	require.Nil(t, decodeSnapshot([]byte(`{not json`), discardLogger()))
	require.Empty(t, decodeSnapshot([]byte(`[]`), discardLogger()))
}

func waitSnapshot(t *testing.T, ch <-chan []FavoriteTeam) []FavoriteTeam {
	t.Helper()
	select {
	case teams := <-ch:
		return teams
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot delivery")
		return nil
	}
}
